package models

import (
	"time"

	"github.com/velumart/velumart-backend/pkg/enums"
)

// Driver carries deliveries for both orders and procurements. Status flips
// to On Delivery on assignment and back to Available once the run is done.
type Driver struct {
	ID            int64              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FirstName     string             `gorm:"column:first_name;not null" json:"first_name"`
	LastName      string             `gorm:"column:last_name" json:"last_name"`
	Phone         string             `gorm:"column:phone;not null" json:"phone"`
	LicenseNumber *string            `gorm:"column:license_number" json:"license_number"`
	VehicleType   string             `gorm:"column:vehicle_type" json:"vehicle_type"`
	VehicleNumber string             `gorm:"column:vehicle_number" json:"vehicle_number"`
	Status        enums.DriverStatus `gorm:"column:status;not null;default:'Available'" json:"status"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
