package orders

// CreateItemInput is one requested line on a new order. Pricing always comes
// from the live catalog, never from the request.
type CreateItemInput struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

// CreateInput carries everything needed to place an order.
type CreateInput struct {
	CustomerID           int64             `json:"customer_id" validate:"required,gt=0"`
	OrderDate            string            `json:"order_date" validate:"required,datetime=2006-01-02"`
	DeliveryDate         *string           `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	DeliveryTime         *string           `json:"delivery_time" validate:"omitempty,max=50"`
	SpecialInstructions  *string           `json:"special_instructions" validate:"omitempty,max=1000"`
	PaymentMethod        string            `json:"payment_method" validate:"required"`
	Address              string            `json:"address" validate:"required"`
	City                 string            `json:"city" validate:"required"`
	State                string            `json:"state" validate:"required"`
	PostalCode           string            `json:"postal_code" validate:"required"`
	DeliveryContactName  string            `json:"delivery_contact_name" validate:"required"`
	DeliveryContactPhone string            `json:"delivery_contact_phone" validate:"required"`
	Items                []CreateItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateInput is a partial merge; nil fields are left untouched.
type UpdateInput struct {
	Status              *string `json:"status" validate:"omitempty"`
	DriverID            *int64  `json:"driver_id" validate:"omitempty,gt=0"`
	DeliveryDate        *string `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	ActualDeliveryDate  *string `json:"actual_delivery_date" validate:"omitempty,datetime=2006-01-02"`
	DeliveryTime        *string `json:"delivery_time" validate:"omitempty,max=50"`
	SpecialInstructions *string `json:"special_instructions" validate:"omitempty,max=1000"`
	PaymentMethod       *string `json:"payment_method" validate:"omitempty"`
	InvoiceGenerated    *bool   `json:"invoice_generated"`
}
