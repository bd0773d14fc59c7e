package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/velumart/velumart-backend/pkg/enums"
)

// Order is a customer purchase. The address block is snapshotted at creation
// and never rewritten by workflow code.
type Order struct {
	ID                   int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderCode            string              `gorm:"column:order_code;uniqueIndex:ux_orders_order_code;not null" json:"order_code"`
	CustomerID           int64               `gorm:"column:customer_id;not null" json:"customer_id"`
	DriverID             *int64              `gorm:"column:driver_id" json:"driver_id"`
	OrderDate            string              `gorm:"column:order_date;type:date;not null" json:"order_date"`
	Status               enums.OrderStatus   `gorm:"column:status;not null" json:"status"`
	DeliveryDate         *string             `gorm:"column:delivery_date;type:date" json:"delivery_date"`
	ActualDeliveryDate   *string             `gorm:"column:actual_delivery_date;type:date" json:"actual_delivery_date"`
	DeliveryTime         *string             `gorm:"column:delivery_time" json:"delivery_time"`
	SpecialInstructions  *string             `gorm:"column:special_instructions" json:"special_instructions"`
	TotalAmount          decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	PaymentMethod        enums.PaymentMethod `gorm:"column:payment_method;not null" json:"payment_method"`
	InvoiceGenerated     bool                `gorm:"column:invoice_generated;not null;default:false" json:"invoice_generated"`
	Address              string              `gorm:"column:address;not null" json:"address"`
	City                 string              `gorm:"column:city;not null" json:"city"`
	State                string              `gorm:"column:state;not null" json:"state"`
	PostalCode           string              `gorm:"column:postal_code;not null" json:"postal_code"`
	DeliveryContactName  string              `gorm:"column:delivery_contact_name;not null" json:"delivery_contact_name"`
	DeliveryContactPhone string              `gorm:"column:delivery_contact_phone;not null" json:"delivery_contact_phone"`
	Items                []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Customer             *Customer           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Driver               *Driver             `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
