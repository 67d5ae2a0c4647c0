package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StkResult is the normalized outcome of a gateway call.
type StkResult struct {
	Success    bool
	Message    string
	CheckoutID string
	IsComplete bool
	IsFailed   bool
	IsPending  bool
	ResultDesc string
	ReceiptNo  string
}

var gatewayClient = &http.Client{Timeout: 30 * time.Second}

func gatewayURL() string {
	if u := os.Getenv("HASHPAY_API_URL"); u != "" {
		return u
	}
	return "https://api.hashback.co.ke"
}

func mockMode() bool {
	return os.Getenv("USE_MOCK_STK_PUSH") == "true"
}

// NormalizePhoneNumber rewrites local formats into the 254 MSISDN form the
// gateway expects.
func NormalizePhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "+")

	switch {
	case strings.HasPrefix(phone, "0"):
		return "254" + phone[1:]
	case strings.HasPrefix(phone, "7"), strings.HasPrefix(phone, "1"):
		return "254" + phone
	case strings.HasPrefix(phone, "254"):
		return phone
	default:
		return "254" + phone
	}
}

// InitiateSTKPush asks the gateway to push a payment prompt to the phone.
func InitiateSTKPush(phone string, amount float64, reference string) StkResult {
	phone = NormalizePhoneNumber(phone)

	amountInt := int(amount)
	if amountInt <= 0 {
		return StkResult{Success: false, Message: "Invalid amount. Amount must be greater than 0."}
	}

	if mockMode() {
		log.Println("Using mock STK Push gateway")
		return StkResult{
			Success:    true,
			Message:    "STK Push initiated successfully",
			CheckoutID: "ws_CO_" + uuid.NewString(),
		}
	}

	payload, _ := json.Marshal(map[string]string{
		"api_key":    os.Getenv("HASHPAY_API_KEY"),
		"account_id": os.Getenv("HASHPAY_ACCOUNT_ID"),
		"amount":     fmt.Sprintf("%d", amountInt),
		"msisdn":     phone,
		"reference":  reference,
	})

	resp, err := gatewayClient.Post(gatewayURL()+"/initiatestk", "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("STK push request failed for %s: %v", reference, err)
		return StkResult{Success: false, Message: "Unable to reach payment gateway"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 202 {
		log.Printf("STK push gateway returned status %d for %s", resp.StatusCode, reference)
		return StkResult{Success: false, Message: fmt.Sprintf("Gateway error: %d", resp.StatusCode)}
	}

	var result struct {
		ResponseCode        json.Number `json:"ResponseCode"`
		ResponseDescription string      `json:"ResponseDescription"`
		CheckoutRequestID   string      `json:"CheckoutRequestID"`
		ErrorMessage        string      `json:"errorMessage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return StkResult{Success: false, Message: "Invalid gateway response"}
	}

	if result.ResponseCode.String() == "0" && result.CheckoutRequestID != "" {
		return StkResult{
			Success:    true,
			Message:    "STK Push initiated successfully",
			CheckoutID: result.CheckoutRequestID,
		}
	}

	msg := result.ResponseDescription
	if msg == "" {
		msg = result.ErrorMessage
	}
	if msg == "" {
		msg = "Failed to initiate STK Push"
	}
	return StkResult{Success: false, Message: msg}
}

// CheckTransactionStatus queries the gateway for a pending checkout.
func CheckTransactionStatus(checkoutID string) StkResult {
	if mockMode() {
		// Mock payments complete on the first status check.
		return StkResult{Success: true, IsComplete: true, ResultDesc: "Mock payment completed", ReceiptNo: "MOCK" + uuid.NewString()[:8]}
	}

	payload, _ := json.Marshal(map[string]string{
		"api_key":             os.Getenv("HASHPAY_API_KEY"),
		"account_id":          os.Getenv("HASHPAY_ACCOUNT_ID"),
		"checkout_request_id": checkoutID,
	})

	resp, err := gatewayClient.Post(gatewayURL()+"/transactionstatus", "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("Status check failed for %s: %v", checkoutID, err)
		return StkResult{Success: false, Message: "Unable to reach payment gateway"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StkResult{Success: false, Message: fmt.Sprintf("Gateway error: %d", resp.StatusCode)}
	}

	var result struct {
		ResultCode         json.Number `json:"ResultCode"`
		ResultDesc         string      `json:"ResultDesc"`
		MpesaReceiptNumber string      `json:"MpesaReceiptNumber"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return StkResult{Success: false, Message: "Invalid gateway response"}
	}

	out := StkResult{Success: true, ResultDesc: result.ResultDesc, ReceiptNo: result.MpesaReceiptNumber}
	switch result.ResultCode.String() {
	case "0":
		out.IsComplete = true
	case "1032", "1037", "1", "2001":
		// Cancelled by user, timeout waiting for input, insufficient funds.
		out.IsFailed = true
	default:
		out.IsPending = true
	}
	return out
}
