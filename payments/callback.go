package payments

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"beizuri/db"
	"beizuri/models"
	"beizuri/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Callback receives the gateway's asynchronous payment result.
func Callback(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		CheckoutRequestID  string      `json:"CheckoutRequestID"`
		ResultCode         json.Number `json:"ResultCode"`
		ResultDesc         string      `json:"ResultDesc"`
		MpesaReceiptNumber string      `json:"MpesaReceiptNumber"`
		Reference          string      `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid callback payload")
		return
	}

	filter := bson.M{"checkout_request_id": body.CheckoutRequestID}
	if body.CheckoutRequestID == "" && body.Reference != "" {
		filter = bson.M{"transaction_reference": body.Reference}
	}

	var payment models.Payment
	if err := db.PaymentsCollection.FindOne(context.TODO(), filter).Decode(&payment); err != nil {
		log.Printf("Callback for unknown payment (checkout %q, ref %q)", body.CheckoutRequestID, body.Reference)
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ignored"})
		return
	}

	update := bson.M{"updated_at": time.Now()}
	if body.ResultCode.String() == "0" {
		update["status"] = models.PaymentCompleted
		update["mpesa_receipt_number"] = body.MpesaReceiptNumber
		update["notes"] = "Payment completed via callback. " + body.ResultDesc
		cacheStatus(payment.TransactionReference, StatusSuccess)
	} else {
		update["status"] = models.PaymentFailed
		update["notes"] = "Payment failed: " + body.ResultDesc
		cacheStatus(payment.TransactionReference, StatusFailed)
	}

	_, err := db.PaymentsCollection.UpdateOne(context.TODO(), filter, bson.M{"$set": update})
	if err != nil {
		log.Printf("Failed to update payment %s from callback: %v", payment.TransactionReference, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record payment result")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
}

// CreatePayment inserts a payment record and returns it.
func CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	_, err := db.PaymentsCollection.InsertOne(ctx, p)
	return p, err
}

// DeletePayment removes a payment whose initiation failed.
func DeletePayment(ctx context.Context, reference string) {
	if _, err := db.PaymentsCollection.DeleteOne(ctx, bson.M{"transaction_reference": reference}); err != nil {
		log.Printf("Failed to delete payment %s: %v", reference, err)
	}
}

// FindByReference loads a payment by its transaction reference.
func FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := db.PaymentsCollection.FindOne(ctx, bson.M{"transaction_reference": reference}).Decode(&payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
