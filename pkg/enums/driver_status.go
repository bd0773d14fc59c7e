package enums

// DriverStatus reflects a driver's availability for new legs.
type DriverStatus string

const (
	DriverStatusAvailable  DriverStatus = "Available"
	DriverStatusOnDelivery DriverStatus = "On Delivery"
	DriverStatusInactive   DriverStatus = "Inactive"
)

// IsValid reports whether the value is a known DriverStatus.
func (d DriverStatus) IsValid() bool {
	switch d {
	case DriverStatusAvailable, DriverStatusOnDelivery, DriverStatusInactive:
		return true
	default:
		return false
	}
}
