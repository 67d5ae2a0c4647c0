package terminal

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

// mpesaHandler initiates on the first complete_sale, answers polls from the
// queued statuses, and settles the final completion call.
func mpesaHandler(t *testing.T, statuses []string, polls *int, finals *int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/payments/status":
			if *polls >= len(statuses) {
				t.Errorf("poll %d exceeds scripted statuses", *polls+1)
				writeJSON(w, `{"success":true,"status":"PENDING"}`)
				return
			}
			status := statuses[*polls]
			*polls++
			writeJSON(w, `{"success":true,"status":"`+status+`","message":"scripted"}`)
		case r.PostFormValue("action") == "scan_barcode":
			writeJSON(w, soapScanReply)
		case r.PostFormValue("action") == "complete_sale":
			if ref := r.PostFormValue("transaction_reference"); ref != "" {
				*finals++
				writeJSON(w, `{"success":true,"sale_number":"SALE-20260829-0005","print_success":true}`)
				return
			}
			writeJSON(w, `{"success":true,"payment_initiated":true,"transaction_reference":"SALE-0005-ABCDEF","message":"Check your phone"}`)
		}
	}
}

func repeat(status string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = status
	}
	return out
}

func TestPollsExactlySixtyTimesBeforeSuccess(t *testing.T) {
	polls, finals := 0, 0
	statuses := append(repeat(StatusPending, 59), StatusSuccess)
	h := newHarness(t, mpesaHandler(t, statuses, &polls, &finals))
	h.session.HandleScan(context.Background(), "123456789012")

	h.session.CompleteSale(context.Background(), PaymentDraft{
		Method:       MethodMpesa,
		MobileNumber: "0712345678",
	})

	if polls != 60 {
		t.Errorf("polled %d times, want exactly 60", polls)
	}
	if finals != 1 {
		t.Errorf("final completion called %d times, want 1", finals)
	}
	if len(h.redirects) != 1 {
		t.Errorf("redirects = %v", h.redirects)
	}

	var states []string
	for _, s := range h.modal.states {
		if len(states) == 0 || states[len(states)-1] != s {
			states = append(states, s)
		}
	}
	want := "initiating awaiting succeeded printing succeeded"
	if got := strings.Join(states, " "); got != want {
		t.Errorf("modal states = %q, want %q", got, want)
	}
}

func TestAllPendingTimesOut(t *testing.T) {
	polls, finals := 0, 0
	h := newHarness(t, mpesaHandler(t, repeat(StatusPending, 60), &polls, &finals))
	h.session.HandleScan(context.Background(), "123456789012")

	h.session.CompleteSale(context.Background(), PaymentDraft{
		Method:       MethodMpesa,
		MobileNumber: "0712345678",
	})

	if polls != 60 {
		t.Errorf("polled %d times, want 60", polls)
	}
	if finals != 0 {
		t.Errorf("final completion called %d times on timeout, want 0", finals)
	}
	if h.modal.lastState() != "failed" {
		t.Errorf("modal states = %v, want failed terminal state", h.modal.states)
	}
	if len(h.redirects) != 0 {
		t.Errorf("timed out flow must not redirect, got %v", h.redirects)
	}
}

func TestFailedStatusStopsPolling(t *testing.T) {
	polls, finals := 0, 0
	statuses := append(repeat(StatusPending, 2), StatusFailed)
	h := newHarness(t, mpesaHandler(t, statuses, &polls, &finals))
	h.session.HandleScan(context.Background(), "123456789012")

	h.session.CompleteSale(context.Background(), PaymentDraft{
		Method:       MethodMpesa,
		MobileNumber: "0712345678",
	})

	if polls != 3 {
		t.Errorf("polled %d times, want 3", polls)
	}
	if h.modal.lastState() != "failed" {
		t.Errorf("modal states = %v", h.modal.states)
	}
}

func TestFirstPollRunsWithoutDelay(t *testing.T) {
	polls, finals := 0, 0
	h := newHarness(t, mpesaHandler(t, []string{StatusSuccess}, &polls, &finals))
	h.session.HandleScan(context.Background(), "123456789012")

	h.session.CompleteSale(context.Background(), PaymentDraft{
		Method:       MethodMpesa,
		MobileNumber: "0712345678",
	})

	if polls != 1 {
		t.Errorf("polled %d times, want 1", polls)
	}
	// A payment confirmed on the first check never waits a poll interval;
	// the only recorded sleep is the success pause before the redirect.
	for _, d := range h.sleeps {
		if d == DefaultPollPolicy.Interval {
			t.Errorf("slept %v before the first status check", d)
		}
	}
	if len(h.redirects) != 1 {
		t.Errorf("redirects = %v", h.redirects)
	}
}

func TestTransientPollErrorsTolerated(t *testing.T) {
	polls, finals := 0, 0
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/payments/status":
			polls++
			if polls < 3 {
				// Garbage body: parse failure on the client.
				w.Write([]byte("<html>502</html>"))
				return
			}
			writeJSON(w, `{"success":true,"status":"SUCCESS","message":"ok"}`)
		case r.PostFormValue("action") == "scan_barcode":
			writeJSON(w, soapScanReply)
		case r.PostFormValue("action") == "complete_sale":
			if r.PostFormValue("transaction_reference") != "" {
				finals++
				writeJSON(w, `{"success":true,"sale_number":"SALE-20260829-0006","print_success":true}`)
				return
			}
			writeJSON(w, `{"success":true,"payment_initiated":true,"transaction_reference":"SALE-0006-ABCDEF"}`)
		}
	})
	h.session.HandleScan(context.Background(), "123456789012")

	h.session.CompleteSale(context.Background(), PaymentDraft{
		Method:       MethodMpesa,
		MobileNumber: "0712345678",
	})

	if polls != 3 {
		t.Errorf("polled %d times, want 3", polls)
	}
	if finals != 1 {
		t.Errorf("final completion called %d times, want 1", finals)
	}
}

// The status endpoint reports the payment outcome inside the envelope: a
// FAILED payment still arrives as success:true with status FAILED. The client
// must decode all three shapes rather than treating them as request failures.
func TestPaymentStatusDecodesBackendBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "completed payment",
			body: `{"success":true,"status":"SUCCESS","amount":"150.00","transaction_reference":"SALE-SALE-20260829-0001-ABCDEF","mpesa_receipt":"TH29XYZ","message":"Payment successful"}`,
			want: StatusSuccess,
		},
		{
			name: "failed payment",
			body: `{"success":true,"status":"FAILED","amount":"150.00","transaction_reference":"SALE-SALE-20260829-0001-ABCDEF","message":"Payment failed: cancelled by user"}`,
			want: StatusFailed,
		},
		{
			name: "unknown reference pending",
			body: `{"success":true,"status":"PENDING","message":"Payment verification in progress"}`,
			want: StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/payments/status" {
					t.Errorf("path = %q", r.URL.Path)
				}
				writeJSON(w, tt.body)
			})

			status, _, err := h.session.client.PaymentStatus(context.Background(), "SALE-SALE-20260829-0001-ABCDEF")
			if err != nil {
				t.Fatalf("PaymentStatus() error = %v", err)
			}
			if status != tt.want {
				t.Errorf("status = %q, want %q", status, tt.want)
			}
		})
	}
}

func TestCancelReleasesModalLock(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.PostFormValue("action") {
		case "scan_barcode":
			writeJSON(w, soapScanReply)
		case "complete_sale":
			writeJSON(w, `{"success":false,"error":"Payment initiation failed"}`)
		}
	})
	h.session.HandleScan(context.Background(), "123456789012")

	h.session.CompleteSale(context.Background(), PaymentDraft{
		Method:       MethodMpesa,
		MobileNumber: "0712345678",
	})
	if !h.session.ModalActive() {
		t.Fatal("modal lock should be held after failed initiation")
	}

	h.session.CancelPayment()

	if h.session.ModalActive() {
		t.Error("modal lock held after cancel")
	}
	if h.modal.lastState() != "closed" {
		t.Errorf("modal states = %v", h.modal.states)
	}
}

func TestRetryResubmitsWholeCompletion(t *testing.T) {
	initiations := 0
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.PostFormValue("action") {
		case "scan_barcode":
			writeJSON(w, soapScanReply)
		case "complete_sale":
			initiations++
			writeJSON(w, `{"success":false,"error":"Payment initiation failed"}`)
		}
	})
	h.session.HandleScan(context.Background(), "123456789012")

	h.session.CompleteSale(context.Background(), PaymentDraft{
		Method:       MethodMpesa,
		MobileNumber: "0712345678",
	})
	h.session.RetryPayment(context.Background())

	if initiations != 2 {
		t.Errorf("initiation requests = %d, want 2", initiations)
	}
}
