package payments

import (
	"context"
	"log"
	"net/http"
	"time"

	"beizuri/db"
	"beizuri/models"
	"beizuri/rdx"
	"beizuri/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Poll statuses reported to the terminal.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusPending = "PENDING"
)

// CheckPaymentStatus is polled by the terminal every few seconds while a
// mobile-money prompt is outstanding. Pending payments are refreshed against
// the gateway; terminal statuses are cached in Redis so repeated polls after
// settlement stay cheap. Every reply is a successful lookup envelope; the
// payment outcome travels in the status field, so a FAILED payment is still
// success:true on the wire.
func CheckPaymentStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	reference := r.URL.Query().Get("transaction_reference")
	if reference == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Transaction reference required")
		return
	}

	if cached, err := rdx.RdxGet("paystatus:" + reference); err == nil && cached != "" {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success":               true,
			"status":                cached,
			"transaction_reference": reference,
			"message":               messageFor(cached),
		})
		return
	}

	var payment models.Payment
	err := db.PaymentsCollection.FindOne(context.TODO(),
		bson.M{"transaction_reference": reference}).Decode(&payment)
	if err != nil {
		// Callback may not have landed yet; report pending rather than error.
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success": true,
			"status":  StatusPending,
			"message": "Payment verification in progress",
		})
		return
	}

	if payment.Status == models.PaymentPending && payment.CheckoutRequestID != "" {
		refreshFromGateway(&payment)
	}

	switch payment.Status {
	case models.PaymentCompleted:
		cacheStatus(reference, StatusSuccess)
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success":               true,
			"status":                StatusSuccess,
			"amount":                utils.FormatAmount(payment.Amount),
			"transaction_reference": payment.TransactionReference,
			"mpesa_receipt":         payment.MpesaReceiptNumber,
			"message":               "Payment successful",
		})
	case models.PaymentFailed, models.PaymentCancelled:
		cacheStatus(reference, StatusFailed)
		msg := payment.Notes
		if msg == "" {
			msg = "Payment failed"
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success":               true,
			"status":                StatusFailed,
			"amount":                utils.FormatAmount(payment.Amount),
			"transaction_reference": payment.TransactionReference,
			"message":               msg,
		})
	default:
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success":               true,
			"status":                StatusPending,
			"amount":                utils.FormatAmount(payment.Amount),
			"transaction_reference": payment.TransactionReference,
			"message":               "Payment still processing",
		})
	}
}

func refreshFromGateway(payment *models.Payment) {
	result := CheckTransactionStatus(payment.CheckoutRequestID)
	if !result.Success {
		return
	}

	switch {
	case result.IsComplete:
		payment.Status = models.PaymentCompleted
		payment.MpesaReceiptNumber = result.ReceiptNo
		payment.Notes = "Payment completed via status check. " + result.ResultDesc
	case result.IsFailed:
		payment.Status = models.PaymentFailed
		payment.Notes = "Payment failed: " + result.ResultDesc
	default:
		return
	}

	_, err := db.PaymentsCollection.UpdateOne(context.TODO(),
		bson.M{"transaction_reference": payment.TransactionReference},
		bson.M{"$set": bson.M{
			"status":               payment.Status,
			"mpesa_receipt_number": payment.MpesaReceiptNumber,
			"notes":                payment.Notes,
			"updated_at":           time.Now(),
		}},
	)
	if err != nil {
		log.Printf("Failed to persist gateway status for %s: %v", payment.TransactionReference, err)
	}
}

func cacheStatus(reference, status string) {
	if err := rdx.RdxSetWithTTL("paystatus:"+reference, status, 10*time.Minute); err != nil {
		log.Printf("Failed to cache payment status for %s: %v", reference, err)
	}
}

func messageFor(status string) string {
	switch status {
	case StatusSuccess:
		return "Payment successful"
	case StatusFailed:
		return "Payment failed"
	default:
		return "Payment still processing"
	}
}
