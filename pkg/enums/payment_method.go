package enums

import "fmt"

// PaymentMethod describes how a supporter settles an order.
type PaymentMethod string

const (
	PaymentMethodVietQR PaymentMethod = "vietqr"
	PaymentMethodCash   PaymentMethod = "cash"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodVietQR,
	PaymentMethodCash,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
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

// APIValue returns the wire form expected by the order API.
func (p PaymentMethod) APIValue() string {
	switch p {
	case PaymentMethodVietQR:
		return "VIETQR"
	case PaymentMethodCash:
		return "CASH"
	}
	return ""
}

// ParsePaymentMethod converts raw input into a PaymentMethod. It accepts both
// the local form ("vietqr") and the API form ("VIETQR").
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value || candidate.APIValue() == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
