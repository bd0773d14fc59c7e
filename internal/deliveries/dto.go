package deliveries

import "github.com/shopspring/decimal"

// CreateInput carries a new delivery assignment. Exactly one of OrderID and
// ProcurementID must be set.
type CreateInput struct {
	OrderID       *int64           `json:"order_id" validate:"omitempty,gt=0"`
	ProcurementID *int64           `json:"procurement_id" validate:"omitempty,gt=0"`
	DriverID      int64            `json:"driver_id" validate:"required,gt=0"`
	Date          string           `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot      string           `json:"time_slot" validate:"required,max=50"`
	Type          string           `json:"type" validate:"required,oneof=Customer Vendor"`
	Charges       *decimal.Decimal `json:"charges"`
}

// UpdateInput is a partial merge driven by the ordered update rules: an
// uploaded image forces Delivered, charges accumulate only while payment is
// still open.
type UpdateInput struct {
	Status   *string          `json:"status"`
	Date     *string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	TimeSlot *string          `json:"time_slot" validate:"omitempty,max=50"`
	Charges  *decimal.Decimal `json:"charges"`
	Image    *string          `json:"delivery_image"`
}

// MarkPaidInput lists the deliveries to settle.
type MarkPaidInput struct {
	DeliveryIDs []int64 `json:"deliveryIds" validate:"required,min=1,dive,gt=0"`
}
