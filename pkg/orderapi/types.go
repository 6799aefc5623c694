package orderapi

// CheckoutItem is one order line as submitted to the order API.
type CheckoutItem struct {
	Quantity       int    `json:"quantity"`
	PriceVersion   int    `json:"price_version"`
	ClientPriceVND int64  `json:"client_price_vnd"`
	VariantID      string `json:"variant_id"`
	ComboID        string `json:"combo_id,omitempty"`
}

// CheckoutRequest mirrors the order API's checkout payload. IdemKey must be
// fresh for every distinct submission attempt; the backend dedupes retries of
// the same key within IdemScope.
type CheckoutRequest struct {
	FullName        string         `json:"full_name"`
	Phone           string         `json:"phone"`
	Email           string         `json:"email,omitempty"`
	Address         string         `json:"address,omitempty"`
	Note            string         `json:"note,omitempty"`
	FulfillmentType string         `json:"fulfillment_type"`
	PaymentMethod   string         `json:"payment_method"`
	IdemScope       string         `json:"idem_scope"`
	IdemKey         string         `json:"idem_key"`
	Items           []CheckoutItem `json:"items"`
}

// OrderItem is a computed order line returned by the order API.
type OrderItem struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPriceVND int64  `json:"unit_price_vnd"`
	LineTotalVND int64  `json:"line_total_vnd"`
	VariantID    string `json:"variant_id,omitempty"`
}

// Order is the backend's view of a created order.
type Order struct {
	Code          string      `json:"code"`
	Items         []OrderItem `json:"items"`
	GrandTotalVND int64       `json:"grand_total_vnd"`
	PaymentStatus string      `json:"payment_status"`
	OrderStatus   string      `json:"order_status"`
}

// BankAccount carries the receiving account of a payment intent.
type BankAccount struct {
	BankCode    string `json:"bank_code"`
	AccountNo   string `json:"account_no"`
	AccountName string `json:"account_name"`
	Name        string `json:"name,omitempty"`
	ShortName   string `json:"short_name,omitempty"`
}

// PaymentIntent holds the transfer instructions for a pending VietQR payment.
type PaymentIntent struct {
	Bank            BankAccount `json:"bank"`
	AmountVND       int64       `json:"amount_vnd"`
	TransferContent string      `json:"transfer_content"`
}

// DisplayBankName prefers the human bank name, then the short name, then the code.
func (p PaymentIntent) DisplayBankName() string {
	if p.Bank.Name != "" {
		return p.Bank.Name
	}
	if p.Bank.ShortName != "" {
		return p.Bank.ShortName
	}
	return p.Bank.BankCode
}

// ProductVariant is one purchasable variant of a catalog product.
type ProductVariant struct {
	ID           string `json:"id"`
	SKU          string `json:"sku,omitempty"`
	PriceVND     int64  `json:"price_vnd"`
	PriceVersion int    `json:"price_version"`
	Stock        int    `json:"stock"`
	Option1      string `json:"option1,omitempty"`
	Option2      string `json:"option2,omitempty"`
}

// Product is a catalog entry with its variants.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Variants    []ProductVariant `json:"variants"`
}

type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}
