package enums

import "fmt"

// DeliveryStatus tracks one fulfillment leg. Customer-type legs end at
// Delivered; procurement/admin-marked legs end at Completed.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "Pending"
	DeliveryStatusDelivered DeliveryStatus = "Delivered"
	DeliveryStatusCompleted DeliveryStatus = "Completed"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusDelivered,
	DeliveryStatusCompleted,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}

// DeliveryPaymentStatus is the orthogonal payment sub-state. Receive means
// charges may still accumulate; Received freezes them. The move is one-way.
type DeliveryPaymentStatus string

const (
	DeliveryPaymentStatusReceive  DeliveryPaymentStatus = "Receive"
	DeliveryPaymentStatusReceived DeliveryPaymentStatus = "Received"
)

// IsValid reports whether the value is a known DeliveryPaymentStatus.
func (d DeliveryPaymentStatus) IsValid() bool {
	return d == DeliveryPaymentStatusReceive || d == DeliveryPaymentStatusReceived
}

// DeliveryType distinguishes customer order legs from vendor procurement legs.
type DeliveryType string

const (
	DeliveryTypeCustomer DeliveryType = "Customer"
	DeliveryTypeVendor   DeliveryType = "Vendor"
)

// IsValid reports whether the value is a known DeliveryType.
func (d DeliveryType) IsValid() bool {
	return d == DeliveryTypeCustomer || d == DeliveryTypeVendor
}

// ParseDeliveryType converts raw input into a DeliveryType.
func ParseDeliveryType(value string) (DeliveryType, error) {
	if DeliveryType(value).IsValid() {
		return DeliveryType(value), nil
	}
	return "", fmt.Errorf("invalid delivery type %q", value)
}
