package deliveries

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/velumart/velumart-backend/pkg/db/models"
	"github.com/velumart/velumart-backend/pkg/enums"
)

// DriverView is the driver summary embedded in delivery responses.
type DriverView struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	VehicleNumber string `json:"vehicle_number"`
}

// View is the API shape of a delivery. The real delivery number is only
// revealed once the delivery is Completed; before that a synthetic DLV code
// stands in. Charges stay hidden until Completed or Delivered.
type View struct {
	ID            int64                       `json:"id"`
	DeliveryNo    string                      `json:"delivery_no"`
	OrderID       *int64                      `json:"order_id"`
	ProcurementID *int64                      `json:"procurement_id"`
	DriverID      int64                       `json:"driver_id"`
	Date          string                      `json:"date"`
	TimeSlot      string                      `json:"time_slot"`
	Image         *string                     `json:"delivery_image"`
	Status        enums.DeliveryStatus        `json:"status"`
	Type          enums.DeliveryType          `json:"type"`
	Charges       *decimal.Decimal            `json:"charges,omitempty"`
	PaymentStatus enums.DeliveryPaymentStatus `json:"payment_status"`
	Driver        *DriverView                 `json:"driver,omitempty"`
}

// Format maps a delivery row to its API shape.
func Format(d models.Delivery) View {
	view := View{
		ID:            d.ID,
		DeliveryNo:    fmt.Sprintf("DLV-%04d", d.ID),
		OrderID:       d.OrderID,
		ProcurementID: d.ProcurementID,
		DriverID:      d.DriverID,
		Date:          d.Date,
		TimeSlot:      d.TimeSlot,
		Image:         d.Image,
		Status:        d.Status,
		Type:          d.Type,
		PaymentStatus: d.PaymentStatus,
	}
	if d.Status == enums.DeliveryStatusCompleted {
		view.DeliveryNo = d.DeliveryNo
	}
	if d.Status == enums.DeliveryStatusCompleted || d.Status == enums.DeliveryStatusDelivered {
		charges := d.Charges
		view.Charges = &charges
	}
	if d.Driver != nil {
		view.Driver = &DriverView{
			ID:            d.Driver.ID,
			FirstName:     d.Driver.FirstName,
			LastName:      d.Driver.LastName,
			Phone:         d.Driver.Phone,
			VehicleNumber: d.Driver.VehicleNumber,
		}
	}
	return view
}

// FormatAll maps a list of deliveries to their API shapes.
func FormatAll(rows []models.Delivery) []View {
	views := make([]View, 0, len(rows))
	for _, d := range rows {
		views = append(views, Format(d))
	}
	return views
}
