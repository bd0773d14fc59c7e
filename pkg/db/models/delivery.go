package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/velumart/velumart-backend/pkg/enums"
)

// Delivery is one driver-executed fulfillment leg. Exactly one of OrderID
// and ProcurementID is non-null. Charges accumulate while PaymentStatus is
// Receive and freeze at Received.
type Delivery struct {
	ID            int64                       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DeliveryNo    string                      `gorm:"column:delivery_no;uniqueIndex:ux_deliveries_delivery_no;not null" json:"delivery_no"`
	OrderID       *int64                      `gorm:"column:order_id" json:"order_id"`
	ProcurementID *int64                      `gorm:"column:procurement_id" json:"procurement_id"`
	DriverID      int64                       `gorm:"column:driver_id;not null" json:"driver_id"`
	Date          string                      `gorm:"column:date;type:date;not null" json:"date"`
	TimeSlot      string                      `gorm:"column:time_slot;not null" json:"time_slot"`
	Image         *string                     `gorm:"column:delivery_image" json:"delivery_image"`
	Status        enums.DeliveryStatus        `gorm:"column:status;not null;default:'Pending'" json:"status"`
	Type          enums.DeliveryType          `gorm:"column:type;not null" json:"type"`
	Charges       decimal.Decimal             `gorm:"column:charges;type:numeric(12,2);not null;default:0" json:"charges"`
	PaymentStatus enums.DeliveryPaymentStatus `gorm:"column:payment_status;not null;default:'Receive'" json:"payment_status"`
	Driver        *Driver                     `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	CreatedAt     time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
