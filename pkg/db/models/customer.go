package models

import "time"

// Customer is the buyer side of an order. The order row snapshots the
// delivery address at creation time, so edits here never rewrite history.
type Customer struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Email     *string   `gorm:"column:email" json:"email"`
	Phone     string    `gorm:"column:phone;not null" json:"phone"`
	Address   string    `gorm:"column:address" json:"address"`
	City      string    `gorm:"column:city" json:"city"`
	State     string    `gorm:"column:state" json:"state"`
	Pincode   string    `gorm:"column:pincode" json:"pincode"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
