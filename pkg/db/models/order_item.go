package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem snapshots one purchased line. UnitPrice is copied from the
// catalog at creation time and never re-priced.
type OrderItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"column:order_id;not null" json:"order_id"`
	ProductID int64           `gorm:"column:product_id;not null" json:"product_id"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null" json:"line_total"`
	Notes     *string         `gorm:"column:notes" json:"notes"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
