package main

import (
	"github.com/SlothFi/ido-launchpad/internal/config"
	"github.com/SlothFi/ido-launchpad/internal/database"
	"github.com/SlothFi/ido-launchpad/internal/ethereum"
	"github.com/SlothFi/ido-launchpad/internal/logger"
	"github.com/SlothFi/ido-launchpad/internal/logic"
	"github.com/SlothFi/ido-launchpad/internal/router"
	"github.com/SlothFi/ido-launchpad/internal/sale"
	"github.com/SlothFi/ido-launchpad/internal/scheduler"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化资产账本
	var ledger sale.AssetLedger
	switch cfg.Ledger.Mode {
	case "chain":
		chainLedger, err := ethereum.Init(cfg.Chain)
		if err != nil {
			logger.Fatal("Failed to initialize chain ledger: %v", err)
		}
		ledger = chainLedger
	case "memory":
		ledger = sale.NewMemoryLedger()
	default:
		logger.Fatal("Unknown ledger mode: %s", cfg.Ledger.Mode)
	}

	// 初始化引擎注册表并从存档重建
	registry := sale.NewRegistry(ledger, sale.SystemClock{})
	saleLogic := logic.NewSaleLogic(db, registry, sale.CollateralPolicy(cfg.Sale.CollateralPolicy))
	if err := saleLogic.Bootstrap(); err != nil {
		logger.Fatal("Failed to restore sales: %v", err)
	}
	participateLogic := logic.NewParticipateLogic(db, saleLogic)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(saleLogic, participateLogic)

	// 启动定时任务
	manager, err := scheduler.Start(saleLogic, cfg)
	if err != nil {
		logger.Fatal("Failed to start scheduler: %v", err)
	}
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
