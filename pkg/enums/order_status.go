package enums

import "fmt"

// OrderStatus tracks the customer order lifecycle.
type OrderStatus string

const (
	OrderStatusNew                OrderStatus = "New Order"
	OrderStatusConfirmed          OrderStatus = "Confirmed"
	OrderStatusWaitingForApproval OrderStatus = "Waiting for Approval"
	OrderStatusCompleted          OrderStatus = "Completed"
	OrderStatusOutForDelivery     OrderStatus = "Out for Delivery"
	OrderStatusDelivered          OrderStatus = "Delivered"
	OrderStatusCancelled          OrderStatus = "Cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusConfirmed,
	OrderStatusWaitingForApproval,
	OrderStatusCompleted,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// orderTransitions is the explicit transition table. Cancelled is reachable
// from every non-terminal state; Delivered is terminal. Reopening a
// cancelled order is gated separately (see CanTransitionOrder).
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusNew:                {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:          {OrderStatusWaitingForApproval, OrderStatusCancelled},
	OrderStatusWaitingForApproval: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:          {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery:     {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:          {},
	OrderStatusCancelled:          {},
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// CanTransitionOrder reports whether from -> to is a legal transition.
// allowCancelledReopen additionally permits Cancelled -> New Order.
func CanTransitionOrder(from, to OrderStatus, allowCancelledReopen bool) bool {
	if from == to {
		return true
	}
	if from == OrderStatusCancelled && to == OrderStatusNew {
		return allowCancelledReopen
	}
	for _, candidate := range orderTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
