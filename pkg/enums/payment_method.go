package enums

import "fmt"

// PaymentMethod enumerates how a customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash on delivery"
	PaymentMethodUPI            PaymentMethod = "UPI"
	PaymentMethodNetBanking     PaymentMethod = "Net Banking"
	PaymentMethodBankTransfer   PaymentMethod = "Bank Transfer"
	PaymentMethodOnline         PaymentMethod = "Online"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCashOnDelivery,
	PaymentMethodUPI,
	PaymentMethodNetBanking,
	PaymentMethodBankTransfer,
	PaymentMethodOnline,
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
