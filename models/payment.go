package models

import "time"

// Payment types
const (
	PaymentTypeMpesa    = "mpesa"
	PaymentTypeCash     = "cash"
	PaymentTypeDebt     = "debt"
	PaymentTypeDelivery = "delivery"
	PaymentTypeOther    = "other"
)

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentCancelled = "cancelled"
)

// Payment records one settlement attempt against a sale.
type Payment struct {
	PaymentID            string    `json:"payment_id" bson:"payment_id"`
	PaymentType          string    `json:"payment_type" bson:"payment_type"`
	Amount               float64   `json:"amount" bson:"amount"`
	TransactionReference string    `json:"transaction_reference" bson:"transaction_reference"`
	MpesaReceiptNumber   string    `json:"mpesa_receipt_number,omitempty" bson:"mpesa_receipt_number,omitempty"`
	PhoneNumber          string    `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	CheckoutRequestID    string    `json:"checkout_request_id,omitempty" bson:"checkout_request_id,omitempty"`
	Status               string    `json:"status" bson:"status"`
	Notes                string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" bson:"updated_at"`
}

// Debt statuses
const (
	DebtUnpaid  = "unpaid"
	DebtPartial = "partial"
	DebtCleared = "cleared"
)

// Debt tracks an unpaid sale owed by a walk-in customer. The cashier who
// recorded it is responsible for collection.
type Debt struct {
	DebtID             string    `json:"debt_id" bson:"debt_id"`
	PaymentID          string    `json:"payment_id" bson:"payment_id"`
	CashierID          string    `json:"cashier_id" bson:"cashier_id"`
	CustomerFirstName  string    `json:"customer_first_name" bson:"customer_first_name"`
	CustomerSecondName string    `json:"customer_second_name,omitempty" bson:"customer_second_name,omitempty"`
	CustomerPhone      string    `json:"customer_phone" bson:"customer_phone"`
	CustomerEmail      string    `json:"customer_email,omitempty" bson:"customer_email,omitempty"`
	AmountOwed         float64   `json:"amount_owed" bson:"amount_owed"`
	AmountPaid         float64   `json:"amount_paid" bson:"amount_paid"`
	Status             string    `json:"status" bson:"status"`
	Notes              string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at"`
}
