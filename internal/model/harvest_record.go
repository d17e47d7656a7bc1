package model

import (
	"time"

	"gorm.io/gorm"
)

// HarvestRecord 领取记录，一个参与者一条
type HarvestRecord struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	SaleID  uint   `json:"sale_id" gorm:"not null;index"`
	Address string `json:"address" gorm:"not null;index"`

	OfferAmount        string `json:"offer_amount" gorm:"type:varchar(78);not null"`
	Refund             string `json:"refund" gorm:"type:varchar(78);default:'0'"`
	CollateralReturned string `json:"collateral_returned" gorm:"type:varchar(78);default:'0'"`

	// 关联
	Sale Sale `json:"sale,omitempty" gorm:"foreignKey:SaleID"`
}
