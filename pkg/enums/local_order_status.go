package enums

import "fmt"

// LocalOrderStatus tracks the locally bookkept lifecycle of a placed order.
type LocalOrderStatus string

const (
	LocalOrderStatusPending   LocalOrderStatus = "pending"
	LocalOrderStatusConfirmed LocalOrderStatus = "confirmed"
	LocalOrderStatusShipped   LocalOrderStatus = "shipped"
	LocalOrderStatusDelivered LocalOrderStatus = "delivered"
	LocalOrderStatusCancelled LocalOrderStatus = "cancelled"
)

var validLocalOrderStatuses = []LocalOrderStatus{
	LocalOrderStatusPending,
	LocalOrderStatusConfirmed,
	LocalOrderStatusShipped,
	LocalOrderStatusDelivered,
	LocalOrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s LocalOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LocalOrderStatus.
func (s LocalOrderStatus) IsValid() bool {
	for _, candidate := range validLocalOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLocalOrderStatus converts raw input into a LocalOrderStatus.
func ParseLocalOrderStatus(value string) (LocalOrderStatus, error) {
	for _, candidate := range validLocalOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid local order status %q", value)
}
