package model

import (
	"time"

	"gorm.io/gorm"
)

// ContributeRecord 贡献记录
type ContributeRecord struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	SaleID  uint   `json:"sale_id" gorm:"not null;index"`
	Address string `json:"address" gorm:"not null;index"`
	Amount  string `json:"amount" gorm:"type:varchar(78);not null"`

	// 关联
	Sale Sale `json:"sale,omitempty" gorm:"foreignKey:SaleID"`
}
