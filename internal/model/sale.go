package model

import (
	"time"

	"gorm.io/gorm"
)

// Sale IDO销售存档，配置与累计金额的快照，引擎状态为准
type Sale struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// 资产信息
	RaiseAsset      string `json:"raise_asset" gorm:"not null"`
	OfferAsset      string `json:"offer_asset" gorm:"not null"`
	CollateralAsset string `json:"collateral_asset" gorm:"not null"`

	// 时间窗口
	StartTime time.Time `json:"start_time" gorm:"not null"`
	EndTime   time.Time `json:"end_time" gorm:"not null"`
	ClaimTime time.Time `json:"claim_time" gorm:"not null"`

	// 金额（代币最小单位，十进制字符串）
	OfferingAmount     string `json:"offering_amount" gorm:"type:varchar(78);not null"`
	RaisingAmount      string `json:"raising_amount" gorm:"type:varchar(78);not null"`
	MaxContribution    string `json:"max_contribution" gorm:"type:varchar(78);not null"`
	RequiredCollateral string `json:"required_collateral" gorm:"type:varchar(78);not null"`

	AdminAddress     string `json:"admin_address" gorm:"not null"`
	CollateralPolicy string `json:"collateral_policy" gorm:"default:'refund'"`
	Custody          string `json:"custody"`

	// 运行状态
	Status           SaleStatus `json:"status" gorm:"default:'pending'"`
	TotalContributed string     `json:"total_contributed" gorm:"type:varchar(78);default:'0'"`
	TotalWithdrawn   string     `json:"total_withdrawn" gorm:"type:varchar(78);default:'0'"`

	// 关联
	Contributions []ContributeRecord `json:"contributions,omitempty" gorm:"foreignKey:SaleID"`
	Harvests      []HarvestRecord    `json:"harvests,omitempty" gorm:"foreignKey:SaleID"`
}

// SaleStatus 销售状态，与引擎阶段一一对应
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"   // 未开始
	SaleStatusOpen      SaleStatus = "open"      // 募集中
	SaleStatusClosed    SaleStatus = "closed"    // 已结束
	SaleStatusClaimable SaleStatus = "claimable" // 可领取
)
