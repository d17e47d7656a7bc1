package logic

import (
	"fmt"
	"math/big"

	"github.com/SlothFi/ido-launchpad/internal/logger"
	"github.com/SlothFi/ido-launchpad/internal/model"
	"github.com/SlothFi/ido-launchpad/internal/sale"
	"gorm.io/gorm"
)

// ParticipateLogic 参与流程业务逻辑：质押、贡献、领取、管理员操作
type ParticipateLogic struct {
	db    *gorm.DB
	sales *SaleLogic
}

// NewParticipateLogic 创建参与流程业务逻辑
func NewParticipateLogic(db *gorm.DB, sales *SaleLogic) *ParticipateLogic {
	return &ParticipateLogic{db: db, sales: sales}
}

// DepositCollateral 质押准入资产
func (l *ParticipateLogic) DepositCollateral(saleID int64, address string) error {
	instance, err := l.sales.Instance(saleID)
	if err != nil {
		return err
	}
	if err := instance.DepositCollateral(address); err != nil {
		return err
	}

	record := &model.CollateralRecord{
		SaleID:  uint(saleID),
		Address: address,
		Amount:  instance.Snapshot().RequiredCollateral.String(),
	}
	if err := l.db.Create(record).Error; err != nil {
		// 存档失败不回滚引擎，记录日志供对账
		logger.Error("Failed to archive collateral record for sale %d, %s: %v", saleID, address, err)
	}
	return nil
}

// Contribute 贡献募集资产
func (l *ParticipateLogic) Contribute(saleID int64, address, amount string) error {
	instance, err := l.sales.Instance(saleID)
	if err != nil {
		return err
	}
	value, err := parseAmount(amount)
	if err != nil {
		return err
	}
	if err := instance.Deposit(address, value); err != nil {
		return err
	}

	record := &model.ContributeRecord{
		SaleID:  uint(saleID),
		Address: address,
		Amount:  value.String(),
	}
	if err := l.db.Create(record).Error; err != nil {
		logger.Error("Failed to archive contribute record for sale %d, %s: %v", saleID, address, err)
	}
	l.updateTotals(saleID, instance)
	return nil
}

// Harvest 领取发售资产及退款
func (l *ParticipateLogic) Harvest(saleID int64, address string) (*sale.HarvestResult, error) {
	instance, err := l.sales.Instance(saleID)
	if err != nil {
		return nil, err
	}
	result, err := instance.Harvest(address)
	if err != nil {
		return nil, err
	}

	record := &model.HarvestRecord{
		SaleID:             uint(saleID),
		Address:            address,
		OfferAmount:        result.OfferAmount.String(),
		Refund:             result.Refund.String(),
		CollateralReturned: result.CollateralReturned.String(),
	}
	if err := l.db.Create(record).Error; err != nil {
		logger.Error("Failed to archive harvest record for sale %d, %s: %v", saleID, address, err)
	}

	logger.Info("Sale %d: %s harvested %s offer, %s refund", saleID, address,
		result.OfferAmount.String(), result.Refund.String())
	return result, nil
}

// Withdraw 管理员提取募集资产
func (l *ParticipateLogic) Withdraw(saleID int64, caller, amount string) error {
	instance, err := l.sales.Instance(saleID)
	if err != nil {
		return err
	}
	value, err := parseAmount(amount)
	if err != nil {
		return err
	}
	if err := instance.FinalWithdraw(caller, value); err != nil {
		return err
	}

	record := &model.WithdrawRecord{
		SaleID:  uint(saleID),
		Address: caller,
		Amount:  value.String(),
	}
	if err := l.db.Create(record).Error; err != nil {
		logger.Error("Failed to archive withdraw record for sale %d: %v", saleID, err)
	}
	l.updateTotals(saleID, instance)
	return nil
}

// SetMaxContribution 管理员调整单人贡献上限
func (l *ParticipateLogic) SetMaxContribution(saleID int64, caller, newCap string) error {
	instance, err := l.sales.Instance(saleID)
	if err != nil {
		return err
	}
	value, err := parseAmount(newCap)
	if err != nil {
		return err
	}
	if err := instance.SetMaxContribution(caller, value); err != nil {
		return err
	}

	if err := l.db.Model(&model.Sale{}).
		Where("id = ?", saleID).
		Update("max_contribution", value.String()).Error; err != nil {
		logger.Error("Failed to archive max contribution for sale %d: %v", saleID, err)
	}
	return nil
}

// UserAllocation 查询参与者配额（百万分之一）
func (l *ParticipateLogic) UserAllocation(saleID int64, address string) (*big.Int, error) {
	instance, err := l.sales.Instance(saleID)
	if err != nil {
		return nil, err
	}
	return instance.UserAllocation(address), nil
}

// HasCollateral 查询参与者是否已质押
func (l *ParticipateLogic) HasCollateral(saleID int64, address string) (bool, error) {
	instance, err := l.sales.Instance(saleID)
	if err != nil {
		return false, err
	}
	return instance.HasCollateral(address), nil
}

// GetParticipant 查询参与者记录
func (l *ParticipateLogic) GetParticipant(saleID int64, address string) (*sale.Participant, error) {
	instance, err := l.sales.Instance(saleID)
	if err != nil {
		return nil, err
	}
	return instance.ParticipantState(address), nil
}

// GetSaleContributions 分页获取贡献记录
func (l *ParticipateLogic) GetSaleContributions(saleID int64, page, pageSize int) ([]model.ContributeRecord, int64, error) {
	if _, err := l.sales.GetSale(saleID); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := l.db.Model(&model.ContributeRecord{}).
		Where("sale_id = ?", saleID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计贡献记录失败: %w", err)
	}

	var records []model.ContributeRecord
	if err := l.db.Where("sale_id = ?", saleID).
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("获取贡献记录失败: %w", err)
	}

	return records, total, nil
}

func (l *ParticipateLogic) updateTotals(saleID int64, instance *sale.Sale) {
	err := l.db.Model(&model.Sale{}).
		Where("id = ?", saleID).
		Updates(map[string]interface{}{
			"total_contributed": instance.TotalContributed().String(),
			"total_withdrawn":   instance.TotalWithdrawn().String(),
		}).Error
	if err != nil {
		logger.Error("Failed to update totals for sale %d: %v", saleID, err)
	}
}
