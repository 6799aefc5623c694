// Package checkout drives the four-step donation checkout: collect supporter
// info, choose a payment method, wait out the VietQR transfer, done. Cash
// settles at handover and skips the transfer step.
package checkout

import (
	"regexp"
	"strings"

	"github.com/ityouth/xtn-storefront/internal/cart"
	"github.com/ityouth/xtn-storefront/pkg/enums"
	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
)

// Form is the supporter info collected at step 1.
type Form struct {
	Name         string             `json:"name"`
	Phone        string             `json:"phone"`
	Email        string             `json:"email"`
	Address      string             `json:"address"`
	Note         string             `json:"note"`
	DeliveryType enums.DeliveryType `json:"delivery_type"`
}

var (
	phonePattern = regexp.MustCompile(`^0\d{9}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Supporter-facing messages. Exactly one is surfaced per failed validation,
// in the fixed priority order below.
const (
	msgMissingRequired = "Vui lòng nhập đầy đủ thông tin bắt buộc (Tên, SĐT và Email)"
	msgInvalidPhone    = "Số điện thoại không hợp lệ (Phải là 10 số, bắt đầu bằng 0)"
	msgInvalidEmail    = "Địa chỉ Email không hợp lệ (Vui lòng kiểm tra lại @)"
	msgMissingAddress  = "Vui lòng nhập địa chỉ giao hàng"
	msgEmptyCart       = "Giỏ hàng của bạn đang trống."

	msgSubmitFallback = "Có lỗi xảy ra khi tạo đơn hàng. Vui lòng thử lại."
	msgIntentFallback = "Không lấy được thông tin thanh toán. Vui lòng thử lại."
)

// validateForm checks the step-1 rules in priority order: required fields,
// phone format, email format, address when delivering, non-empty cart. The
// first failing rule wins.
func validateForm(form Form, currentCart *cart.Cart) error {
	if strings.TrimSpace(form.Name) == "" ||
		strings.TrimSpace(form.Phone) == "" ||
		strings.TrimSpace(form.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, msgMissingRequired)
	}
	if !phonePattern.MatchString(form.Phone) {
		return pkgerrors.New(pkgerrors.CodeValidation, msgInvalidPhone)
	}
	if !emailPattern.MatchString(form.Email) {
		return pkgerrors.New(pkgerrors.CodeValidation, msgInvalidEmail)
	}
	if form.DeliveryType == enums.DeliveryTypeDelivery && strings.TrimSpace(form.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, msgMissingAddress)
	}
	if currentCart == nil || len(currentCart.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, msgEmptyCart)
	}
	return nil
}
