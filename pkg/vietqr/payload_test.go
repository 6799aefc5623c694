package vietqr

import (
	"strings"
	"testing"

	"github.com/ityouth/xtn-storefront/pkg/orderapi"
)

func completeIntent() *orderapi.PaymentIntent {
	return &orderapi.PaymentIntent{
		Bank: orderapi.BankAccount{
			BankCode:    "970436",
			AccountNo:   "123456789",
			AccountName: "QUY XTN",
		},
		AmountVND:       100000,
		TransferContent: "XTN-0042",
	}
}

func TestBuildPayloadComplete(t *testing.T) {
	t.Parallel()

	payload := BuildPayload(completeIntent(), TemplateCompact)
	if payload == nil {
		t.Fatal("expected payload for complete intent")
	}
	if payload.AcqID != "970436" || payload.Amount != 100000 || payload.AddInfo != "XTN-0042" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Format != "text" || payload.Template != TemplateCompact {
		t.Fatalf("unexpected format/template %+v", payload)
	}
}

func TestBuildPayloadMissingFields(t *testing.T) {
	t.Parallel()

	if BuildPayload(nil, TemplateCompact) != nil {
		t.Fatal("nil intent must produce nil payload")
	}

	missingTransfer := completeIntent()
	missingTransfer.TransferContent = ""
	if BuildPayload(missingTransfer, TemplateCompact) != nil {
		t.Fatal("missing transfer content must produce nil payload")
	}

	missingBank := completeIntent()
	missingBank.Bank.BankCode = ""
	if BuildPayload(missingBank, TemplateCompact) != nil {
		t.Fatal("missing bank code must produce nil payload")
	}

	zeroAmount := completeIntent()
	zeroAmount.AmountVND = 0
	if BuildPayload(zeroAmount, TemplateCompact) != nil {
		t.Fatal("zero amount must produce nil payload")
	}
}

func TestBuildPayloadNormalizesTemplate(t *testing.T) {
	t.Parallel()

	if p := BuildPayload(completeIntent(), "fancy"); p == nil || p.Template != TemplateCompact {
		t.Fatalf("unknown template should normalize to compact, got %+v", p)
	}
	if p := BuildPayload(completeIntent(), TemplateQROnly); p == nil || p.Template != TemplateQROnly {
		t.Fatalf("qr_only should be preserved, got %+v", p)
	}
}

func TestImageURL(t *testing.T) {
	t.Parallel()

	url := ImageURL("https://img.vietqr.io/image", completeIntent(), TemplateCompact)
	if url == "" {
		t.Fatal("expected url for complete intent")
	}
	if !strings.HasPrefix(url, "https://img.vietqr.io/image/970436-123456789-compact.png?") {
		t.Fatalf("unexpected url prefix: %q", url)
	}
	for _, fragment := range []string{"amount=100000", "addInfo=XTN-0042", "accountName=QUY+XTN"} {
		if !strings.Contains(url, fragment) {
			t.Fatalf("url missing %q: %q", fragment, url)
		}
	}

	incomplete := completeIntent()
	incomplete.TransferContent = ""
	if got := ImageURL("https://img.vietqr.io/image", incomplete, TemplateCompact); got != "" {
		t.Fatalf("expected empty url for incomplete intent, got %q", got)
	}
}
