// Package lookup answers "where is my order": substring search over the
// session's local records plus the merged status badges shown next to each
// result.
package lookup

import (
	"strings"

	"github.com/ityouth/xtn-storefront/pkg/db/models"
	"github.com/ityouth/xtn-storefront/pkg/enums"
)

// Badge is one display label with its color token.
type Badge struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Color  string `json:"color"`
}

var paymentBadges = map[string]Badge{
	"SUCCESS":  {Status: "SUCCESS", Label: "Đã thanh toán", Color: "green"},
	"CASH":     {Status: "CASH", Label: "Tiền mặt khi nhận", Color: "blue"},
	"PENDING":  {Status: "PENDING", Label: "Chờ thanh toán", Color: "amber"},
	"FAILED":   {Status: "FAILED", Label: "Thanh toán thất bại", Color: "red"},
	"REFUNDED": {Status: "REFUNDED", Label: "Đã hoàn tiền", Color: "purple"},
}

var orderBadges = map[string]Badge{
	"PENDING":    {Status: "PENDING", Label: "Chờ xác nhận", Color: "amber"},
	"PAID":       {Status: "PAID", Label: "Đã thanh toán", Color: "blue"},
	"CONFIRMED":  {Status: "CONFIRMED", Label: "Đã xác nhận", Color: "blue"},
	"FULFILLING": {Status: "FULFILLING", Label: "Đang giao", Color: "purple"},
	"SHIPPED":    {Status: "SHIPPED", Label: "Đang giao", Color: "purple"},
	"FULFILLED":  {Status: "FULFILLED", Label: "Đã nhận", Color: "green"},
	"DELIVERED":  {Status: "DELIVERED", Label: "Đã nhận", Color: "green"},
	"CANCELLED":  {Status: "CANCELLED", Label: "Đã huỷ", Color: "red"},
}

var unknownBadge = Badge{Status: "UNKNOWN", Label: "Không rõ", Color: "gray"}

// PaymentBadge maps a payment status onto its display badge.
func PaymentBadge(status string) Badge {
	if badge, ok := paymentBadges[strings.ToUpper(strings.TrimSpace(status))]; ok {
		return badge
	}
	return unknownBadge
}

// OrderBadge maps a fulfillment status onto its display badge.
func OrderBadge(status string) Badge {
	if badge, ok := orderBadges[strings.ToUpper(strings.TrimSpace(status))]; ok {
		return badge
	}
	return unknownBadge
}

// ResolvePaymentStatus merges the backend payment status with the local
// heuristics: cash orders always count as settled, a delivered or confirmed
// local status implies the transfer went through, anything else is pending.
func ResolvePaymentStatus(order models.LocalOrder) string {
	if order.BackendPaymentStatus != nil && *order.BackendPaymentStatus != "" {
		return strings.ToUpper(*order.BackendPaymentStatus)
	}
	if order.PaymentMethod == enums.PaymentMethodCash {
		return "CASH"
	}
	if order.Status == enums.LocalOrderStatusDelivered || order.Status == enums.LocalOrderStatusConfirmed {
		return "SUCCESS"
	}
	return "PENDING"
}

// ResolveOrderStatus prefers the backend fulfillment status and falls back to
// the locally tracked one.
func ResolveOrderStatus(order models.LocalOrder) string {
	if order.BackendOrderStatus != nil && *order.BackendOrderStatus != "" {
		return strings.ToUpper(*order.BackendOrderStatus)
	}
	if order.Status != "" {
		return strings.ToUpper(order.Status.String())
	}
	return "UNKNOWN"
}
