package models

import (
	"time"

	"github.com/ityouth/xtn-storefront/pkg/enums"
)

// LocalOrderItem is the cart line frozen into an order record.
type LocalOrderItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PriceVND       int64  `json:"price_vnd"`
	Quantity       int    `json:"quantity"`
	ImageID        string `json:"image_id,omitempty"`
	VariantID      string `json:"variant_id"`
	ComboID        string `json:"combo_id,omitempty"`
	PriceVersion   int    `json:"price_version"`
	ClientPriceVND int64  `json:"client_price_vnd"`
}

// LocalOrderItems is stored as a JSON column.
type LocalOrderItems []LocalOrderItem

// LocalOrder is the browser-local order record of the original storefront,
// promoted to an explicit repository row. ID is generated locally and stays
// stable even when the backend never acknowledged the order; BackendCode
// carries the remote order code when one exists.
type LocalOrder struct {
	ID                   string                 `gorm:"column:id;primaryKey" json:"id"`
	SessionID            string                 `gorm:"column:session_id;index;not null" json:"-"`
	BackendCode          *string                `gorm:"column:backend_code;index" json:"backendCode,omitempty"`
	Items                LocalOrderItems        `gorm:"column:items;serializer:json" json:"items"`
	TotalVND             int64                  `gorm:"column:total_vnd;not null" json:"total"`
	CustomerName         string                 `gorm:"column:customer_name;not null" json:"customerName"`
	CustomerEmail        string                 `gorm:"column:customer_email" json:"customerEmail"`
	CustomerPhone        string                 `gorm:"column:customer_phone;index;not null" json:"customerPhone"`
	CustomerAddress      *string                `gorm:"column:customer_address" json:"customerAddress,omitempty"`
	Note                 *string                `gorm:"column:note" json:"note,omitempty"`
	DeliveryType         enums.DeliveryType     `gorm:"column:delivery_type;not null" json:"deliveryType"`
	Status               enums.LocalOrderStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	PaymentMethod        enums.PaymentMethod    `gorm:"column:payment_method;not null" json:"paymentMethod"`
	BackendPaymentStatus *string                `gorm:"column:backend_payment_status" json:"backendPaymentStatus,omitempty"`
	BackendOrderStatus   *string                `gorm:"column:backend_order_status" json:"backendOrderStatus,omitempty"`
	CreatedAt            time.Time              `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

// TableName keeps the table name stable across drivers.
func (LocalOrder) TableName() string {
	return "local_orders"
}
