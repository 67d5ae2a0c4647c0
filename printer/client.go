package printer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"beizuri/models"
	"beizuri/utils"
)

// ReceiptItem is one printed line.
type ReceiptItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// Receipt is the payload the hardware print server renders.
type Receipt struct {
	ShopName      string        `json:"shop_name"`
	Address       string        `json:"address"`
	Phone         string        `json:"phone"`
	SaleNumber    string        `json:"sale_number"`
	Date          string        `json:"date"`
	SaleType      string        `json:"sale_type"`
	Cashier       string        `json:"cashier"`
	Items         []ReceiptItem `json:"items"`
	Subtotal      string        `json:"subtotal"`
	SpecialAmount string        `json:"special_amount"`
	Discount      string        `json:"discount_amount"`
	Total         string        `json:"total"`
	PaymentMethod string        `json:"payment_method"`
	MoneyReceived string        `json:"money_received,omitempty"`
	ChangeAmount  string        `json:"change_amount"`
	QRCodeData    string        `json:"qr_code_data"`
}

func serverURL() string {
	if u := os.Getenv("PRINT_SERVER_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func receiptBaseURL() string {
	if u := os.Getenv("RECEIPT_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:4000"
}

// FormatReceipt projects a completed sale into the print payload.
func FormatReceipt(sale *models.Sale) Receipt {
	items := make([]ReceiptItem, 0, len(sale.Items))
	for _, it := range sale.Items {
		items = append(items, ReceiptItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: utils.FormatAmount(it.UnitPrice),
			Total:     utils.FormatAmount(it.Total),
		})
	}

	date := time.Now()
	if sale.CompletedAt != nil {
		date = *sale.CompletedAt
	}
	if loc, err := time.LoadLocation("Africa/Nairobi"); err == nil {
		date = date.In(loc)
	}

	method := sale.PaymentMethod
	if method == "" {
		method = "Cash"
	}

	receipt := Receipt{
		ShopName:      "BEIZURI",
		Address:       "Bondo Town, Siaya",
		Phone:         "Tel: +254 785 053 060",
		SaleNumber:    sale.SaleNumber,
		Date:          date.Format("02/01/2006 15:04"),
		SaleType:      sale.SaleType,
		Cashier:       sale.CashierName,
		Items:         items,
		Subtotal:      utils.FormatAmount(sale.TotalAmount),
		SpecialAmount: utils.FormatAmount(sale.SpecialAmount),
		Discount:      utils.FormatAmount(sale.DiscountAmount),
		Total:         utils.FormatAmount(sale.FinalAmount),
		PaymentMethod: method,
		ChangeAmount:  "0.00",
		QRCodeData:    fmt.Sprintf("%s/receipt/%s", receiptBaseURL(), sale.SaleID),
	}

	if sale.MoneyReceived != nil {
		receipt.MoneyReceived = utils.FormatAmount(*sale.MoneyReceived)
	}
	if sale.ChangeAmount != nil {
		receipt.ChangeAmount = utils.FormatAmount(*sale.ChangeAmount)
	}

	return receipt
}

// PrintReceipt sends the sale to the print server. It reports failure without
// error wrapping because printing never blocks sale completion.
func PrintReceipt(sale *models.Sale) (bool, string) {
	payload, err := json.Marshal(map[string]any{"receipt": FormatReceipt(sale)})
	if err != nil {
		return false, fmt.Sprintf("Print error: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, serverURL()+"/print", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Sprintf("Print error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			log.Printf("Print timeout for sale %s", sale.SaleNumber)
			return false, "Print request timed out"
		}
		log.Printf("Print server not accessible for sale %s: %v", sale.SaleNumber, err)
		return false, "Print server not running. Please start the print service."
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Print server returned status %d", resp.StatusCode)
		return false, fmt.Sprintf("Print server error: %d", resp.StatusCode)
	}

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Sprintf("Print error: %v", err)
	}

	if !result.Success {
		log.Printf("Print failed for sale %s: %s", sale.SaleNumber, result.Error)
		return false, result.Error
	}

	log.Printf("Receipt printed for sale %s", sale.SaleNumber)
	return true, "Receipt printed successfully"
}

// CheckStatus asks the print server whether the hardware printer is ready.
func CheckStatus() (bool, string) {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(serverURL() + "/status")
	if err != nil {
		return false, "Print server not running"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("Server returned status %d", resp.StatusCode)
	}

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err.Error()
	}
	return result.Success, result.Message
}

// PrintTest triggers the print server's self-test page.
func PrintTest() (bool, string) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(serverURL() + "/test")
	if err != nil {
		return false, "Print server not running"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("Server error: %d", resp.StatusCode)
	}

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err.Error()
	}
	if !result.Success {
		if result.Error == "" {
			result.Error = "Test print failed"
		}
		return false, result.Error
	}
	return true, "Test receipt printed successfully"
}
