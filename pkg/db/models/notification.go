package models

import "time"

// Notification is an append-only message addressed to exactly one of
// customer, vendor, driver, or admin, optionally cross-referencing the
// order or procurement that produced it. Workflow code only ever creates
// rows and flips IsRead.
type Notification struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID       *int64    `gorm:"column:order_id" json:"order_id"`
	ProcurementID *int64    `gorm:"column:procurement_id" json:"procurement_id"`
	CustomerID    *int64    `gorm:"column:customer_id" json:"customer_id"`
	VendorID      *int64    `gorm:"column:vendor_id" json:"vendor_id"`
	DriverID      *int64    `gorm:"column:driver_id" json:"driver_id"`
	AdminID       *int64    `gorm:"column:admin_id" json:"admin_id"`
	Message       string    `gorm:"column:message;not null" json:"message"`
	IsRead        bool      `gorm:"column:is_read;not null;default:false" json:"is_read"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
