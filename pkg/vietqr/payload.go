package vietqr

import (
	"net/url"
	"strconv"

	"github.com/ityouth/xtn-storefront/pkg/orderapi"
)

const (
	// TemplateCompact renders the QR with bank branding and amount.
	TemplateCompact = "compact"
	// TemplateQROnly renders the bare QR matrix.
	TemplateQROnly = "qr_only"
)

// Payload is the request body for the VietQR generate endpoint.
type Payload struct {
	AcqID       string `json:"acqId"`
	AccountNo   string `json:"accountNo"`
	AccountName string `json:"accountName"`
	Amount      int64  `json:"amount"`
	AddInfo     string `json:"addInfo"`
	Format      string `json:"format"`
	Template    string `json:"template"`
}

// BuildPayload maps a payment intent onto the VietQR request. It returns nil
// when any required field is missing; callers must not issue a network call
// in that case.
func BuildPayload(intent *orderapi.PaymentIntent, template string) *Payload {
	if intent == nil {
		return nil
	}
	if intent.Bank.BankCode == "" || intent.Bank.AccountNo == "" || intent.Bank.AccountName == "" {
		return nil
	}
	if intent.AmountVND == 0 || intent.TransferContent == "" {
		return nil
	}
	if template != TemplateQROnly {
		template = TemplateCompact
	}
	return &Payload{
		AcqID:       intent.Bank.BankCode,
		AccountNo:   intent.Bank.AccountNo,
		AccountName: intent.Bank.AccountName,
		Amount:      intent.AmountVND,
		AddInfo:     intent.TransferContent,
		Format:      "text",
		Template:    template,
	}
}

// ImageURL builds the deterministic GET fallback for the same payload, so a
// scannable code survives a failed generate call. Empty when the intent is
// incomplete.
func ImageURL(imageBaseURL string, intent *orderapi.PaymentIntent, template string) string {
	payload := BuildPayload(intent, template)
	if payload == nil {
		return ""
	}

	params := url.Values{}
	params.Set("amount", strconv.FormatInt(payload.Amount, 10))
	params.Set("addInfo", payload.AddInfo)
	params.Set("accountName", payload.AccountName)

	return imageBaseURL + "/" +
		url.PathEscape(payload.AcqID) + "-" +
		url.PathEscape(payload.AccountNo) + "-" +
		payload.Template + ".png?" + params.Encode()
}
