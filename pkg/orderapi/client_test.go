package orderapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
)

func TestCheckoutSuccess(t *testing.T) {
	t.Parallel()

	var received CheckoutRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/checkout" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Order{
			Code:          "XTN-0042",
			GrandTotalVND: 100000,
			PaymentStatus: "PENDING",
			OrderStatus:   "PENDING",
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	order, err := client.Checkout(context.Background(), CheckoutRequest{
		FullName:        "Nguyen Van A",
		Phone:           "0912345678",
		FulfillmentType: "DELIVERY",
		PaymentMethod:   "VIETQR",
		IdemScope:       "checkout",
		IdemKey:         "key-1",
		Items:           []CheckoutItem{{Quantity: 2, PriceVersion: 1, ClientPriceVND: 50000, VariantID: "v1"}},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.Code != "XTN-0042" {
		t.Fatalf("unexpected order code %q", order.Code)
	}
	if received.IdemKey != "key-1" || received.IdemScope != "checkout" {
		t.Fatalf("idempotency fields not forwarded: %+v", received)
	}
}

func TestCheckoutRequiresIdempotencyKey(t *testing.T) {
	t.Parallel()

	client, err := NewClient("http://localhost:1")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Checkout(context.Background(), CheckoutRequest{IdemScope: "checkout"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckoutSurfacesServerMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error_code": "PRICE_MISMATCH",
			"message":    "Giá sản phẩm đã thay đổi, vui lòng tải lại trang.",
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Checkout(context.Background(), CheckoutRequest{
		IdemScope: "checkout",
		IdemKey:   "key-2",
	})
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Message() != "Giá sản phẩm đã thay đổi, vui lòng tải lại trang." {
		t.Fatalf("server message not preserved: %q", typed.Message())
	}
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code for 400, got %s", typed.Code())
	}
}

func TestPaymentIntent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/XTN-0042/payment-intent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(PaymentIntent{
			Bank:            BankAccount{BankCode: "970436", AccountNo: "123456789", AccountName: "QUY XTN", ShortName: "VCB"},
			AmountVND:       100000,
			TransferContent: "XTN-0042",
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	intent, err := client.PaymentIntent(context.Background(), "XTN-0042")
	if err != nil {
		t.Fatalf("payment intent: %v", err)
	}
	if intent.TransferContent != "XTN-0042" {
		t.Fatalf("unexpected transfer content %q", intent.TransferContent)
	}
	if got := intent.DisplayBankName(); got != "VCB" {
		t.Fatalf("expected short name fallback, got %q", got)
	}
}

func TestListProducts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]Product{
			{ID: "p1", Name: "Nui chiên", Variants: []ProductVariant{{ID: "v1", PriceVND: 35000, PriceVersion: 1, Stock: 10}}},
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 1 || products[0].Variants[0].PriceVND != 35000 {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for empty base url")
	}
}
