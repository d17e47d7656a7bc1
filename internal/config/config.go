package config

import (
	"github.com/SlothFi/ido-launchpad/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Sale      SaleConfig      `mapstructure:"sale"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LedgerConfig 资产账本配置
type LedgerConfig struct {
	Mode string `mapstructure:"mode"` // memory 或 chain
}

// ChainConfig 链配置，ledger.mode 为 chain 时使用
type ChainConfig struct {
	ChainId    int64             `mapstructure:"chain_id"`    // 链ID
	RpcUrl     string            `mapstructure:"rpc_url"`     // RPC节点URL
	PrivateKey string            `mapstructure:"private_key"` // 托管账户私钥
	Tokens     map[string]string `mapstructure:"tokens"`      // 资产ID -> ERC20合约地址
}

// SaleConfig 销售默认参数
type SaleConfig struct {
	CollateralPolicy string `mapstructure:"collateral_policy"` // refund 或 retain
}

type SchedulerConfig struct {
	Interval int `mapstructure:"interval"` // 秒
	PoolSize int `mapstructure:"pool_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/ido-launchpad")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "ido_launchpad")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("ledger.mode", "memory")
	viper.SetDefault("sale.collateral_policy", "refund")
	viper.SetDefault("scheduler.interval", 60)
	viper.SetDefault("scheduler.pool_size", 8)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
