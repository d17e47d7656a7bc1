package logic

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/SlothFi/ido-launchpad/internal/logger"
	"github.com/SlothFi/ido-launchpad/internal/model"
	"github.com/SlothFi/ido-launchpad/internal/sale"
	"gorm.io/gorm"
)

// ErrSaleNotFound 销售不存在
var ErrSaleNotFound = errors.New("sale not found")

// SaleLogic 销售业务逻辑。引擎状态为准，数据库行是审计存档
type SaleLogic struct {
	db       *gorm.DB
	registry *sale.Registry
	policy   sale.CollateralPolicy
}

// NewSaleLogic 创建销售业务逻辑
func NewSaleLogic(db *gorm.DB, registry *sale.Registry, policy sale.CollateralPolicy) *SaleLogic {
	return &SaleLogic{db: db, registry: registry, policy: policy}
}

// CreateSaleInput 创建销售入参
type CreateSaleInput struct {
	RaiseAsset         string
	OfferAsset         string
	CollateralAsset    string
	StartTime          time.Time
	EndTime            time.Time
	ClaimTime          time.Time
	OfferingAmount     string
	RaisingAmount      string
	MaxContribution    string
	RequiredCollateral string
	AdminAddress       string
	CollateralPolicy   string
}

// CreateSale 创建销售：先落档取得编号，再以同一编号注册引擎实例
func (l *SaleLogic) CreateSale(input CreateSaleInput) (*model.Sale, error) {
	cfg, err := l.buildConfig(input)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	record := &model.Sale{
		RaiseAsset:         cfg.RaiseAsset,
		OfferAsset:         cfg.OfferAsset,
		CollateralAsset:    cfg.CollateralAsset,
		StartTime:          cfg.StartTime,
		EndTime:            cfg.EndTime,
		ClaimTime:          cfg.ClaimTime,
		OfferingAmount:     cfg.OfferingAmount.String(),
		RaisingAmount:      cfg.RaisingAmount.String(),
		MaxContribution:    cfg.MaxContribution.String(),
		RequiredCollateral: cfg.RequiredCollateral.String(),
		AdminAddress:       cfg.AdminAddress,
		CollateralPolicy:   string(cfg.CollateralPolicy),
		Status:             model.SaleStatusPending,
		TotalContributed:   "0",
		TotalWithdrawn:     "0",
	}
	if err := l.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("创建销售存档失败: %w", err)
	}

	instance, err := l.registry.AdoptSale(int64(record.ID), cfg)
	if err != nil {
		// 引擎注册失败时回收存档，避免半创建状态
		l.db.Unscoped().Delete(record)
		return nil, err
	}

	record.Custody = instance.Custody()
	record.Status = model.SaleStatus(instance.Phase())
	if err := l.db.Save(record).Error; err != nil {
		logger.Error("Failed to update sale %d custody: %v", record.ID, err)
	}

	logger.Info("Sale %d created: offering %s %s for %s %s", record.ID,
		record.OfferingAmount, record.OfferAsset, record.RaisingAmount, record.RaiseAsset)
	return record, nil
}

// GetSales 获取销售列表
func (l *SaleLogic) GetSales() ([]model.Sale, error) {
	var sales []model.Sale
	if err := l.db.Order("id").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("获取销售列表失败: %w", err)
	}
	return sales, nil
}

// GetSale 获取销售详情
func (l *SaleLogic) GetSale(id int64) (*model.Sale, error) {
	var record model.Sale
	if err := l.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("获取销售详情失败: %w", err)
	}
	return &record, nil
}

// Instance 获取引擎实例
func (l *SaleLogic) Instance(id int64) (*sale.Sale, error) {
	instance, ok := l.registry.Get(id)
	if !ok {
		return nil, ErrSaleNotFound
	}
	return instance, nil
}

// GetSaleStats 获取销售统计
func (l *SaleLogic) GetSaleStats(id int64) (map[string]interface{}, error) {
	instance, err := l.Instance(id)
	if err != nil {
		return nil, err
	}

	var contributorCount int64
	if err := l.db.Model(&model.ContributeRecord{}).
		Where("sale_id = ?", id).
		Distinct("address").
		Count(&contributorCount).Error; err != nil {
		return nil, fmt.Errorf("统计参与者数量失败: %w", err)
	}

	var contributionCount int64
	if err := l.db.Model(&model.ContributeRecord{}).
		Where("sale_id = ?", id).
		Count(&contributionCount).Error; err != nil {
		return nil, fmt.Errorf("统计贡献次数失败: %w", err)
	}

	var harvestedCount int64
	if err := l.db.Model(&model.HarvestRecord{}).
		Where("sale_id = ?", id).
		Count(&harvestedCount).Error; err != nil {
		return nil, fmt.Errorf("统计领取次数失败: %w", err)
	}

	cfg := instance.Snapshot()
	total := instance.TotalContributed()

	// 募集进度（百分比）
	progress := new(big.Float).Quo(
		new(big.Float).SetInt(total),
		new(big.Float).SetInt(cfg.RaisingAmount),
	)
	progress.Mul(progress, big.NewFloat(100))
	progressValue, _ := progress.Float64()

	return map[string]interface{}{
		"sale_id":            id,
		"phase":              string(instance.Phase()),
		"total_contributed":  total.String(),
		"total_withdrawn":    instance.TotalWithdrawn().String(),
		"raising_amount":     cfg.RaisingAmount.String(),
		"offering_amount":    cfg.OfferingAmount.String(),
		"progress_percent":   progressValue,
		"oversubscribed":     total.Cmp(cfg.RaisingAmount) > 0,
		"contributor_count":  contributorCount,
		"contribution_count": contributionCount,
		"harvested_count":    harvestedCount,
	}, nil
}

// SyncSaleStatus 将引擎阶段与累计金额回写存档，由调度任务周期调用
func (l *SaleLogic) SyncSaleStatus(id int64) error {
	instance, err := l.Instance(id)
	if err != nil {
		return err
	}
	return l.db.Model(&model.Sale{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            string(instance.Phase()),
			"total_contributed": instance.TotalContributed().String(),
			"total_withdrawn":   instance.TotalWithdrawn().String(),
			"max_contribution":  instance.Snapshot().MaxContribution.String(),
		}).Error
}

// Bootstrap 服务启动时从存档重建全部引擎实例
func (l *SaleLogic) Bootstrap() error {
	var sales []model.Sale
	if err := l.db.Order("id").Find(&sales).Error; err != nil {
		return fmt.Errorf("加载销售存档失败: %w", err)
	}

	for _, record := range sales {
		cfg, err := l.configFromRecord(&record)
		if err != nil {
			return fmt.Errorf("销售 %d 存档损坏: %w", record.ID, err)
		}
		instance, err := l.registry.AdoptSale(int64(record.ID), cfg)
		if err != nil {
			return fmt.Errorf("重建销售 %d 失败: %w", record.ID, err)
		}
		if err := l.replayRecords(instance, record.ID); err != nil {
			return err
		}
	}

	logger.Info("Restored %d sales from archive", len(sales))
	return nil
}

// replayRecords 将审计记录回放进引擎实例
func (l *SaleLogic) replayRecords(instance *sale.Sale, saleID uint) error {
	var collaterals []model.CollateralRecord
	if err := l.db.Where("sale_id = ?", saleID).Order("id").Find(&collaterals).Error; err != nil {
		return fmt.Errorf("加载质押记录失败: %w", err)
	}

	var contributions []model.ContributeRecord
	if err := l.db.Where("sale_id = ?", saleID).Order("id").Find(&contributions).Error; err != nil {
		return fmt.Errorf("加载贡献记录失败: %w", err)
	}

	var harvests []model.HarvestRecord
	if err := l.db.Where("sale_id = ?", saleID).Order("id").Find(&harvests).Error; err != nil {
		return fmt.Errorf("加载领取记录失败: %w", err)
	}

	contributed := make(map[string]*big.Int)
	for _, r := range contributions {
		amount, err := parseAmount(r.Amount)
		if err != nil {
			return fmt.Errorf("贡献记录 %d 金额非法: %w", r.ID, err)
		}
		if contributed[r.Address] == nil {
			contributed[r.Address] = new(big.Int)
		}
		contributed[r.Address].Add(contributed[r.Address], amount)
	}

	harvested := make(map[string]bool)
	for _, r := range harvests {
		harvested[r.Address] = true
	}

	seen := make(map[string]bool)
	for _, r := range collaterals {
		instance.RestoreParticipant(r.Address, true, contributed[r.Address], harvested[r.Address])
		seen[r.Address] = true
	}
	for addr, amount := range contributed {
		// 正常流程下质押先于贡献，这里兜底存档缺失的情况
		if !seen[addr] {
			logger.Warn("Sale %d: contribution without collateral record for %s", saleID, addr)
			instance.RestoreParticipant(addr, true, amount, harvested[addr])
		}
	}

	var withdrawals []model.WithdrawRecord
	if err := l.db.Where("sale_id = ?", saleID).Order("id").Find(&withdrawals).Error; err != nil {
		return fmt.Errorf("加载提取记录失败: %w", err)
	}
	withdrawn := new(big.Int)
	for _, r := range withdrawals {
		amount, err := parseAmount(r.Amount)
		if err != nil {
			return fmt.Errorf("提取记录 %d 金额非法: %w", r.ID, err)
		}
		withdrawn.Add(withdrawn, amount)
	}
	if withdrawn.Sign() > 0 {
		instance.RestoreWithdrawn(withdrawn)
	}

	return nil
}

func (l *SaleLogic) buildConfig(input CreateSaleInput) (sale.Config, error) {
	var cfg sale.Config
	var err error

	if cfg.OfferingAmount, err = parseAmount(input.OfferingAmount); err != nil {
		return cfg, fmt.Errorf("offering amount: %w", err)
	}
	if cfg.RaisingAmount, err = parseAmount(input.RaisingAmount); err != nil {
		return cfg, fmt.Errorf("raising amount: %w", err)
	}
	if cfg.MaxContribution, err = parseAmount(input.MaxContribution); err != nil {
		return cfg, fmt.Errorf("max contribution: %w", err)
	}
	if cfg.RequiredCollateral, err = parseAmount(input.RequiredCollateral); err != nil {
		return cfg, fmt.Errorf("required collateral: %w", err)
	}

	cfg.RaiseAsset = input.RaiseAsset
	cfg.OfferAsset = input.OfferAsset
	cfg.CollateralAsset = input.CollateralAsset
	cfg.StartTime = input.StartTime
	cfg.EndTime = input.EndTime
	cfg.ClaimTime = input.ClaimTime
	cfg.AdminAddress = input.AdminAddress

	cfg.CollateralPolicy = sale.CollateralPolicy(input.CollateralPolicy)
	if cfg.CollateralPolicy == "" {
		cfg.CollateralPolicy = l.policy
	}
	return cfg, nil
}

func (l *SaleLogic) configFromRecord(record *model.Sale) (sale.Config, error) {
	return l.buildConfig(CreateSaleInput{
		RaiseAsset:         record.RaiseAsset,
		OfferAsset:         record.OfferAsset,
		CollateralAsset:    record.CollateralAsset,
		StartTime:          record.StartTime,
		EndTime:            record.EndTime,
		ClaimTime:          record.ClaimTime,
		OfferingAmount:     record.OfferingAmount,
		RaisingAmount:      record.RaisingAmount,
		MaxContribution:    record.MaxContribution,
		RequiredCollateral: record.RequiredCollateral,
		AdminAddress:       record.AdminAddress,
		CollateralPolicy:   record.CollateralPolicy,
	})
}

// parseAmount 解析十进制金额字符串
func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}
