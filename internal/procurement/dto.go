package procurement

import "github.com/shopspring/decimal"

// Item is one line inside the serialized items payload. Per-line unit price
// changes are what negotiation detection compares.
type Item struct {
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInput carries a new procurement request. Numeric fields arrive as
// decimals parsed from the multipart form by the controller.
type CreateInput struct {
	Type                 string           `json:"type" validate:"required,oneof=vendor admin farmer"`
	VendorID             *int64           `json:"vendor_id" validate:"omitempty,gt=0"`
	VendorName           *string          `json:"vendor_name" validate:"omitempty,max=200"`
	Items                string           `json:"items" validate:"required"`
	Category             string           `json:"category" validate:"required,max=100"`
	Unit                 decimal.Decimal  `json:"unit"`
	Price                decimal.Decimal  `json:"price"`
	CGST                 decimal.Decimal  `json:"cgst"`
	SGST                 decimal.Decimal  `json:"sgst"`
	DeliveryFee          decimal.Decimal  `json:"delivery_fee"`
	OrderDate            string           `json:"order_date" validate:"required,datetime=2006-01-02"`
	ExpectedDeliveryDate string           `json:"expected_delivery_date" validate:"required,datetime=2006-01-02"`
	Notes                string           `json:"notes" validate:"required"`
	ProductImage         *string          `json:"product_image"`
}

// UpdateInput is a partial merge; nil fields are left untouched.
// NegotiationType says which side is renegotiating when prices move.
type UpdateInput struct {
	Status               *string          `json:"status"`
	DriverID             *int64           `json:"driver_id" validate:"omitempty,gt=0"`
	VendorID             *int64           `json:"vendor_id" validate:"omitempty,gt=0"`
	VendorName           *string          `json:"vendor_name" validate:"omitempty,max=200"`
	Items                *string          `json:"items"`
	Category             *string          `json:"category" validate:"omitempty,max=100"`
	Unit                 *decimal.Decimal `json:"unit"`
	Price                *decimal.Decimal `json:"price"`
	CGST                 *decimal.Decimal `json:"cgst"`
	SGST                 *decimal.Decimal `json:"sgst"`
	DeliveryFee          *decimal.Decimal `json:"delivery_fee"`
	OrderDate            *string          `json:"order_date" validate:"omitempty,datetime=2006-01-02"`
	ExpectedDeliveryDate *string          `json:"expected_delivery_date" validate:"omitempty,datetime=2006-01-02"`
	ActualDeliveryDate   *string          `json:"actual_delivery_date" validate:"omitempty,datetime=2006-01-02"`
	Notes                *string          `json:"notes"`
	ProductImage         *string          `json:"product_image"`
	NegotiationType      *string          `json:"negotiation_type" validate:"omitempty,oneof=vendor admin"`
}
