package checkout

import (
	"testing"

	"github.com/ityouth/xtn-storefront/internal/cart"
	"github.com/ityouth/xtn-storefront/pkg/enums"
	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
)

func validForm() Form {
	return Form{
		Name:         "Nguyễn Văn A",
		Phone:        "0912345678",
		Email:        "a@example.com",
		DeliveryType: enums.DeliveryTypePickup,
	}
}

func filledCart() *cart.Cart {
	return &cart.Cart{Items: []cart.Item{{ID: "p1", PriceVND: 50000, Quantity: 2, VariantID: "v1"}}}
}

func TestValidateForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Form)
		cart    *cart.Cart
		wantMsg string
	}{
		{
			name:   "valid pickup",
			mutate: func(*Form) {},
			cart:   filledCart(),
		},
		{
			name:    "missing name",
			mutate:  func(f *Form) { f.Name = "" },
			cart:    filledCart(),
			wantMsg: msgMissingRequired,
		},
		{
			name:    "missing email",
			mutate:  func(f *Form) { f.Email = "" },
			cart:    filledCart(),
			wantMsg: msgMissingRequired,
		},
		{
			name:    "short phone",
			mutate:  func(f *Form) { f.Phone = "09123456" },
			cart:    filledCart(),
			wantMsg: msgInvalidPhone,
		},
		{
			name:    "phone without leading zero",
			mutate:  func(f *Form) { f.Phone = "9912345678" },
			cart:    filledCart(),
			wantMsg: msgInvalidPhone,
		},
		{
			name:    "bad email",
			mutate:  func(f *Form) { f.Email = "not-an-email" },
			cart:    filledCart(),
			wantMsg: msgInvalidEmail,
		},
		{
			name: "delivery without address",
			mutate: func(f *Form) {
				f.DeliveryType = enums.DeliveryTypeDelivery
				f.Address = ""
			},
			cart:    filledCart(),
			wantMsg: msgMissingAddress,
		},
		{
			name: "pickup accepts empty address",
			mutate: func(f *Form) {
				f.DeliveryType = enums.DeliveryTypePickup
				f.Address = ""
			},
			cart: filledCart(),
		},
		{
			name:    "empty cart",
			mutate:  func(*Form) {},
			cart:    &cart.Cart{},
			wantMsg: msgEmptyCart,
		},
		{
			name: "required fields beat phone format",
			mutate: func(f *Form) {
				f.Name = ""
				f.Phone = "bad"
			},
			cart:    filledCart(),
			wantMsg: msgMissingRequired,
		},
		{
			name:    "phone format beats empty cart",
			mutate:  func(f *Form) { f.Phone = "123" },
			cart:    &cart.Cart{},
			wantMsg: msgInvalidPhone,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			form := validForm()
			tc.mutate(&form)
			err := validateForm(form, tc.cart)

			if tc.wantMsg == "" {
				if err != nil {
					t.Fatalf("expected pass, got %v", err)
				}
				return
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if typed.Message() != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, typed.Message())
			}
		})
	}
}
