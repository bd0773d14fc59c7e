package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/velumart/velumart-backend/pkg/enums"
)

// Procurement is a restock request raised by admin, vendor, or farmer.
// Items holds the serialized line array as submitted; per-item unit_price
// changes inside it participate in negotiation detection.
type Procurement struct {
	ID                   int64                   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderCode            string                  `gorm:"column:order_code;uniqueIndex:ux_procurements_order_code;not null" json:"order_code"`
	Type                 enums.ProcurementType   `gorm:"column:type;not null" json:"type"`
	VendorID             *int64                  `gorm:"column:vendor_id" json:"vendor_id"`
	VendorName           *string                 `gorm:"column:vendor_name" json:"vendor_name"`
	DriverID             *int64                  `gorm:"column:driver_id" json:"driver_id"`
	Items                string                  `gorm:"column:items;not null" json:"items"`
	Category             string                  `gorm:"column:category" json:"category"`
	ProductImage         *string                 `gorm:"column:product_image" json:"product_image"`
	Unit                 decimal.Decimal         `gorm:"column:unit;type:numeric(12,2);not null" json:"unit"`
	Price                decimal.Decimal         `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	CGST                 decimal.Decimal         `gorm:"column:cgst;type:numeric(6,2);not null;default:0" json:"cgst"`
	SGST                 decimal.Decimal         `gorm:"column:sgst;type:numeric(6,2);not null;default:0" json:"sgst"`
	DeliveryFee          decimal.Decimal         `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0" json:"delivery_fee"`
	TotalAmount          decimal.Decimal         `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	OrderDate            string                  `gorm:"column:order_date;type:date;not null" json:"order_date"`
	ExpectedDeliveryDate string                  `gorm:"column:expected_delivery_date;type:date;not null" json:"expected_delivery_date"`
	ActualDeliveryDate   *string                 `gorm:"column:actual_delivery_date;type:date" json:"actual_delivery_date"`
	Notes                string                  `gorm:"column:notes;not null" json:"notes"`
	Status               enums.ProcurementStatus `gorm:"column:status;not null" json:"status"`
	Vendor               *Vendor                 `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Driver               *Driver                 `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	CreatedAt            time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
