package terminal

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func scanThenComplete(t *testing.T, handler http.HandlerFunc) *testHarness {
	t.Helper()
	h := newHarness(t, handler)
	h.session.HandleScan(context.Background(), "123456789012")
	return h
}

func TestCashInsufficientBlocksSubmission(t *testing.T) {
	completes := 0
	h := scanThenComplete(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.PostFormValue("action") {
		case "scan_barcode":
			writeJSON(w, soapScanReply)
		case "complete_sale":
			completes++
		}
	})

	h.session.CompleteSale(context.Background(), PaymentDraft{
		Method:        MethodCash,
		MoneyReceived: "20",
	})

	if completes != 0 {
		t.Errorf("%d completion requests sent, want 0", completes)
	}
	if len(h.notifier.errors) != 1 {
		t.Fatalf("errors = %v", h.notifier.errors)
	}
	msg := h.notifier.errors[0]
	if !strings.Contains(msg, "20.00") || !strings.Contains(msg, "50.00") {
		t.Errorf("error %q should carry both amounts to two decimals", msg)
	}
}

func TestCashSufficientCompletesAndRedirects(t *testing.T) {
	h := scanThenComplete(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.PostFormValue("action") {
		case "scan_barcode":
			writeJSON(w, soapScanReply)
		case "complete_sale":
			if got := r.PostFormValue("payment_method"); got != "Cash" {
				t.Errorf("payment_method = %q", got)
			}
			if got := r.PostFormValue("money_received"); got != "100" {
				t.Errorf("money_received = %q", got)
			}
			writeJSON(w, `{"success":true,"sale_number":"SALE-20260829-0001","print_success":true}`)
		}
	})

	h.session.CompleteSale(context.Background(), PaymentDraft{
		Method:        MethodCash,
		MoneyReceived: "100",
	})

	if h.modal.lastState() != "succeeded" {
		t.Errorf("modal states = %v", h.modal.states)
	}
	if len(h.redirects) != 1 || h.redirects[0] != "/sales/new" {
		t.Errorf("redirects = %v", h.redirects)
	}
	if h.session.ModalActive() {
		t.Error("modal lock still held after redirect")
	}
}

func TestPrintFailureStillRedirects(t *testing.T) {
	h := scanThenComplete(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.PostFormValue("action") {
		case "scan_barcode":
			writeJSON(w, soapScanReply)
		case "complete_sale":
			writeJSON(w, `{"success":true,"sale_number":"SALE-20260829-0002","print_success":false,"print_message":"Print server not running. Please start the print service."}`)
		}
	})

	h.session.CompleteSale(context.Background(), PaymentDraft{
		Method:        MethodCash,
		MoneyReceived: "50",
	})

	if len(h.redirects) != 1 {
		t.Errorf("redirects = %v; print failure must not block completion", h.redirects)
	}
}

func TestDebtValidation(t *testing.T) {
	tests := []struct {
		name    string
		draft   PaymentDraft
		blocked bool
	}{
		{
			name:    "missing first name",
			draft:   PaymentDraft{Method: MethodDebt, SecondName: "Otieno", Phone: "0712345678"},
			blocked: true,
		},
		{
			name:    "missing second name",
			draft:   PaymentDraft{Method: MethodDebt, FirstName: "Akinyi", Phone: "0712345678"},
			blocked: true,
		},
		{
			name:    "missing phone",
			draft:   PaymentDraft{Method: MethodDebt, FirstName: "Akinyi", SecondName: "Otieno"},
			blocked: true,
		},
		{
			name:    "malformed email",
			draft:   PaymentDraft{Method: MethodDebt, FirstName: "Akinyi", SecondName: "Otieno", Phone: "0712345678", Email: "foo"},
			blocked: true,
		},
		{
			name:    "phone too short",
			draft:   PaymentDraft{Method: MethodDebt, FirstName: "Akinyi", SecondName: "Otieno", Phone: "12345"},
			blocked: true,
		},
		{
			name:    "ten digit phone passes",
			draft:   PaymentDraft{Method: MethodDebt, FirstName: "Akinyi", SecondName: "Otieno", Phone: "0712345678"},
			blocked: false,
		},
		{
			name:    "separators stripped before matching",
			draft:   PaymentDraft{Method: MethodDebt, FirstName: "Akinyi", SecondName: "Otieno", Phone: "(071) 234-5678"},
			blocked: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completes := 0
			h := scanThenComplete(t, func(w http.ResponseWriter, r *http.Request) {
				switch r.PostFormValue("action") {
				case "scan_barcode":
					writeJSON(w, soapScanReply)
				case "complete_sale":
					completes++
					writeJSON(w, `{"success":true,"sale_number":"SALE-20260829-0003","print_success":true}`)
				}
			})

			h.session.CompleteSale(context.Background(), tt.draft)

			if tt.blocked && completes != 0 {
				t.Errorf("request sent for invalid draft")
			}
			if !tt.blocked && completes != 1 {
				t.Errorf("valid draft did not submit")
			}
		})
	}
}

func TestPayBillRequiresConfirmation(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})

	h.confirmed = false
	if h.session.SelectMethod(MethodPayBill) {
		t.Error("declined confirmation must not select PayBill")
	}
	if h.session.SelectedMethod() == MethodPayBill {
		t.Error("method changed despite declined confirmation")
	}

	h.confirmed = true
	if !h.session.SelectMethod(MethodPayBill) {
		t.Error("confirmed PayBill selection rejected")
	}
}

func TestPayBillSubmitsConfirmedMpesa(t *testing.T) {
	h := scanThenComplete(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.PostFormValue("action") {
		case "scan_barcode":
			writeJSON(w, soapScanReply)
		case "complete_sale":
			if got := r.PostFormValue("payment_method"); got != "M-Pesa" {
				t.Errorf("payment_method = %q, want M-Pesa", got)
			}
			if got := r.PostFormValue("paybill_confirmed"); got != "1" {
				t.Errorf("paybill_confirmed = %q, want 1", got)
			}
			writeJSON(w, `{"success":true,"sale_number":"SALE-20260829-0004","print_success":true}`)
		}
	})

	h.session.CompleteSale(context.Background(), PaymentDraft{Method: MethodPayBill})

	if len(h.redirects) != 1 {
		t.Errorf("redirects = %v", h.redirects)
	}
}
