package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog row. Unit is the on-hand stock quantity and is the
// only field the order workflow mutates; decrements are conditional so stock
// never goes negative.
type Product struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Category    string          `gorm:"column:category" json:"category"`
	Description *string         `gorm:"column:description" json:"description"`
	Image       *string         `gorm:"column:image" json:"image"`
	Unit        int             `gorm:"column:unit;not null;default:0" json:"unit"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	CGST        decimal.Decimal `gorm:"column:cgst;type:numeric(5,2);not null;default:0" json:"cgst"`
	SGST        decimal.Decimal `gorm:"column:sgst;type:numeric(5,2);not null;default:0" json:"sgst"`
	DeliveryFee decimal.Decimal `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0" json:"delivery_fee"`
	Seasonal    bool            `gorm:"column:seasonal;not null;default:false" json:"seasonal"`
	Active      bool            `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
