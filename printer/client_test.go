package printer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"beizuri/models"
)

func sampleSale() *models.Sale {
	received := 200.0
	change := 50.0
	completed := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)
	return &models.Sale{
		SaleID:        "s1",
		SaleNumber:    "SALE-20260829-0001",
		SaleType:      models.SaleTypeRetail,
		CashierName:   "Akinyi Otieno",
		TotalAmount:   150,
		FinalAmount:   150,
		PaymentMethod: "Cash",
		MoneyReceived: &received,
		ChangeAmount:  &change,
		CompletedAt:   &completed,
		Items: []models.SaleItem{
			{Name: "Soap", Quantity: 3, UnitPrice: 50, Total: 150},
		},
	}
}

func TestFormatReceipt(t *testing.T) {
	r := FormatReceipt(sampleSale())

	if r.SaleNumber != "SALE-20260829-0001" {
		t.Errorf("sale number = %q", r.SaleNumber)
	}
	if len(r.Items) != 1 || r.Items[0].UnitPrice != "50.00" || r.Items[0].Total != "150.00" {
		t.Errorf("items = %+v", r.Items)
	}
	if r.Total != "150.00" || r.MoneyReceived != "200.00" || r.ChangeAmount != "50.00" {
		t.Errorf("amounts = %q/%q/%q", r.Total, r.MoneyReceived, r.ChangeAmount)
	}
	if !strings.HasSuffix(r.QRCodeData, "/receipt/s1") {
		t.Errorf("qr target = %q", r.QRCodeData)
	}
}

func TestFormatReceiptDefaultsMethod(t *testing.T) {
	sale := sampleSale()
	sale.PaymentMethod = ""

	if got := FormatReceipt(sale).PaymentMethod; got != "Cash" {
		t.Errorf("payment method = %q, want Cash", got)
	}
}

func TestPrintReceipt(t *testing.T) {
	var got Receipt
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/print" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var payload struct {
			Receipt Receipt `json:"receipt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatal(err)
		}
		got = payload.Receipt
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()
	t.Setenv("PRINT_SERVER_URL", server.URL)

	ok, msg := PrintReceipt(sampleSale())
	if !ok {
		t.Fatalf("print failed: %s", msg)
	}
	if got.SaleNumber != "SALE-20260829-0001" {
		t.Errorf("printed sale number = %q", got.SaleNumber)
	}
}

func TestPrintReceiptServerDown(t *testing.T) {
	t.Setenv("PRINT_SERVER_URL", "http://127.0.0.1:1")

	ok, msg := PrintReceipt(sampleSale())
	if ok {
		t.Fatal("print reported success with no server")
	}
	if msg != "Print server not running. Please start the print service." {
		t.Errorf("message = %q", msg)
	}
}

func TestCheckStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"message":"Printer ready"}`))
	}))
	defer server.Close()
	t.Setenv("PRINT_SERVER_URL", server.URL)

	ready, msg := CheckStatus()
	if !ready || msg != "Printer ready" {
		t.Errorf("status = %v %q", ready, msg)
	}
}
