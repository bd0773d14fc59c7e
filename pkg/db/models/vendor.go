package models

import "time"

// Vendor supplies procurement requests. ContactPerson doubles as the
// human-readable vendor name the procurement flow resolves against when a
// request arrives with a name instead of an id.
type Vendor struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BusinessName  string    `gorm:"column:business_name;not null" json:"business_name"`
	ContactPerson string    `gorm:"column:contact_person;not null" json:"contact_person"`
	Email         *string   `gorm:"column:email" json:"email"`
	Phone         string    `gorm:"column:phone;not null" json:"phone"`
	Address       string    `gorm:"column:address" json:"address"`
	City          string    `gorm:"column:city" json:"city"`
	State         string    `gorm:"column:state" json:"state"`
	GSTNumber     *string   `gorm:"column:gst_number" json:"gst_number"`
	Active        bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
