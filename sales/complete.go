package sales

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"beizuri/db"
	"beizuri/delivery"
	"beizuri/models"
	"beizuri/mq"
	"beizuri/payments"
	"beizuri/printer"
	"beizuri/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// completeSale settles an open sale. The branch taken depends on the payment
// method; only M-Pesa is asynchronous (STK push + polling), everything else
// finalizes immediately and reports print status. Printing failure never
// blocks completion.
func completeSale(ctx context.Context, w http.ResponseWriter, r *http.Request, sale *models.Sale) {
	if sale.IsHeld {
		utils.RespondWithError(w, http.StatusOK, "Cannot complete a sale that is on hold")
		return
	}

	if len(sale.Items) == 0 {
		utils.RespondWithError(w, http.StatusOK, "Cannot complete sale with no items")
		return
	}

	method := r.PostFormValue("payment_method")
	if method == "" {
		method = "Cash"
	}

	switch {
	case method == "Cash":
		completeCashSale(ctx, w, r, sale)
	case method == "M-Pesa" || method == "M-PESA":
		completeMpesaSale(ctx, w, r, sale)
	case method == "Debt":
		completeDebtSale(ctx, w, r, sale)
	default:
		completeOtherSale(ctx, w, sale, method)
	}
}

func completeCashSale(ctx context.Context, w http.ResponseWriter, r *http.Request, sale *models.Sale) {
	received, err := strconv.ParseFloat(r.PostFormValue("money_received"), 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusOK, "Enter money received")
		return
	}

	total := sale.Subtotal()
	if received < total {
		utils.RespondWithError(w, http.StatusOK, fmt.Sprintf(
			"Amount received (%s) is less than total (%s)",
			utils.FormatAmount(received), utils.FormatAmount(total)))
		return
	}

	change := received - total
	sale.MoneyReceived = &received
	sale.ChangeAmount = &change

	if err := finalize(ctx, sale, "Cash"); err != nil {
		log.Println("completeCashSale finalize error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to complete sale")
		return
	}

	ref := utils.NewTransactionReference(sale.SaleNumber)
	_, err = payments.CreatePayment(ctx, models.Payment{
		PaymentID:            uuid.NewString(),
		PaymentType:          models.PaymentTypeCash,
		Amount:               sale.FinalAmount,
		Status:               models.PaymentCompleted,
		TransactionReference: ref,
		Notes:                "Cash payment for Sale #" + sale.SaleNumber,
	})
	if err != nil {
		log.Println("completeCashSale payment error:", err)
	}

	respondCompleted(w, sale)
}

func completeMpesaSale(ctx context.Context, w http.ResponseWriter, r *http.Request, sale *models.Sale) {
	// PayBill sales are confirmed at the till, not pushed to a phone.
	if r.PostFormValue("paybill_confirmed") != "" {
		ref := utils.NewTransactionReference(sale.SaleNumber)
		_, err := payments.CreatePayment(ctx, models.Payment{
			PaymentID:            uuid.NewString(),
			PaymentType:          models.PaymentTypeMpesa,
			Amount:               sale.Subtotal(),
			Status:               models.PaymentCompleted,
			TransactionReference: ref,
			Notes:                "PayBill payment for Sale #" + sale.SaleNumber,
		})
		if err != nil {
			log.Println("completeMpesaSale paybill payment error:", err)
		}

		if err := finalize(ctx, sale, "M-Pesa"); err != nil {
			log.Println("completeMpesaSale finalize error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to complete sale")
			return
		}
		respondCompleted(w, sale)
		return
	}

	// Second leg: the terminal confirmed the pushed payment and is now
	// binding the sale to its transaction reference.
	if ref := r.PostFormValue("transaction_reference"); ref != "" {
		payment, err := payments.FindByReference(ctx, ref)
		if err == nil && payment.Status == models.PaymentCompleted {
			if sale.CompletedAt == nil {
				if err := finalize(ctx, sale, "M-Pesa"); err != nil {
					log.Println("completeMpesaSale finalize error:", err)
					utils.RespondWithError(w, http.StatusInternalServerError, "Failed to complete sale")
					return
				}
			}
			respondCompleted(w, sale)
			return
		}
	}

	// First leg: initiate the STK push.
	mobile := strings.TrimSpace(r.PostFormValue("mobile_number"))
	if mobile == "" {
		utils.RespondWithError(w, http.StatusOK, "Mobile number is required for M-PESA payment")
		return
	}

	total := sale.Subtotal()
	if total <= 0 {
		utils.RespondWithError(w, http.StatusOK, "Sale amount must be greater than 0")
		return
	}

	ref := utils.NewTransactionReference(sale.SaleNumber)
	_, err := payments.CreatePayment(ctx, models.Payment{
		PaymentID:            uuid.NewString(),
		PaymentType:          models.PaymentTypeMpesa,
		Amount:               total,
		PhoneNumber:          mobile,
		Status:               models.PaymentPending,
		TransactionReference: ref,
		Notes:                "Payment for Sale #" + sale.SaleNumber,
	})
	if err != nil {
		log.Println("completeMpesaSale payment error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record payment")
		return
	}

	result := payments.InitiateSTKPush(mobile, total, ref)
	if !result.Success {
		payments.DeletePayment(ctx, ref)
		utils.RespondWithError(w, http.StatusOK, result.Message)
		return
	}

	if result.CheckoutID != "" {
		_, err = db.PaymentsCollection.UpdateOne(ctx,
			bson.M{"transaction_reference": ref},
			bson.M{"$set": bson.M{"checkout_request_id": result.CheckoutID, "updated_at": time.Now()}},
		)
		if err != nil {
			log.Println("completeMpesaSale checkout id error:", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":               true,
		"payment_initiated":     true,
		"transaction_reference": ref,
		"message":               "Payment initiated. Please check your phone and complete the payment.",
	})
}

func completeDebtSale(ctx context.Context, w http.ResponseWriter, r *http.Request, sale *models.Sale) {
	firstName := strings.TrimSpace(r.PostFormValue("customer_first_name"))
	secondName := strings.TrimSpace(r.PostFormValue("customer_second_name"))
	phone := strings.TrimSpace(r.PostFormValue("customer_phone"))
	email := strings.TrimSpace(r.PostFormValue("customer_email"))

	if firstName == "" || phone == "" {
		utils.RespondWithError(w, http.StatusOK,
			"Customer first name and phone number are required for debt sales")
		return
	}

	if err := finalize(ctx, sale, "Debt"); err != nil {
		log.Println("completeDebtSale finalize error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to complete sale")
		return
	}

	ref := utils.NewTransactionReference(sale.SaleNumber)
	payment, err := payments.CreatePayment(ctx, models.Payment{
		PaymentID:            uuid.NewString(),
		PaymentType:          models.PaymentTypeDebt,
		Amount:               sale.FinalAmount,
		Status:               models.PaymentPending,
		TransactionReference: ref,
		Notes:                "Debt payment for Sale #" + sale.SaleNumber,
	})
	if err != nil {
		log.Println("completeDebtSale payment error:", err)
	}

	debt := models.Debt{
		DebtID:             uuid.NewString(),
		PaymentID:          payment.PaymentID,
		CashierID:          sale.CashierID,
		CustomerFirstName:  firstName,
		CustomerSecondName: secondName,
		CustomerPhone:      phone,
		CustomerEmail:      email,
		AmountOwed:         sale.FinalAmount,
		Status:             models.DebtUnpaid,
		Notes: fmt.Sprintf("Debt for Sale #%s. Cashier %s is responsible for collection.",
			sale.SaleNumber, sale.CashierName),
		CreatedAt: time.Now(),
	}
	if _, err := db.DebtsCollection.InsertOne(ctx, debt); err != nil {
		log.Println("completeDebtSale debt error:", err)
	}

	printOK, printMsg := printer.PrintReceipt(sale)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":                true,
		"sale_number":            sale.SaleNumber,
		"print_success":          printOK,
		"print_message":          printMsg,
		"responsibility_message": fmt.Sprintf("You are responsible for collecting this debt from %s.", firstName),
	})
}

func completeOtherSale(ctx context.Context, w http.ResponseWriter, sale *models.Sale, method string) {
	if err := finalize(ctx, sale, method); err != nil {
		log.Println("completeOtherSale finalize error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to complete sale")
		return
	}

	ref := utils.NewTransactionReference(sale.SaleNumber)
	_, err := payments.CreatePayment(ctx, models.Payment{
		PaymentID:            uuid.NewString(),
		PaymentType:          models.PaymentTypeOther,
		Amount:               sale.FinalAmount,
		Status:               models.PaymentCompleted,
		TransactionReference: ref,
		Notes:                "Payment for Sale #" + sale.SaleNumber,
	})
	if err != nil {
		log.Println("completeOtherSale payment error:", err)
	}

	respondCompleted(w, sale)
}

// assignDelivery hands a sale to a delivery agent and completes it in one
// step; payment is collected on delivery.
func assignDelivery(ctx context.Context, w http.ResponseWriter, r *http.Request, sale *models.Sale) {
	if sale.IsHeld {
		utils.RespondWithError(w, http.StatusOK, "Sale is on hold")
		return
	}

	if len(sale.Items) == 0 {
		utils.RespondWithError(w, http.StatusOK, "Cannot assign delivery for empty sale")
		return
	}

	guyID := r.PostFormValue("delivery_guy_id")
	address := strings.TrimSpace(r.PostFormValue("delivery_address"))
	notes := strings.TrimSpace(r.PostFormValue("notes"))

	if guyID == "" {
		utils.RespondWithError(w, http.StatusOK, "Delivery guy is required")
		return
	}
	if address == "" {
		utils.RespondWithError(w, http.StatusOK, "Delivery address is required")
		return
	}

	var guy models.User
	err := db.UserCollection.FindOne(ctx, bson.M{
		"userid":    guyID,
		"role":      models.RoleDeliveryGuy,
		"is_active": true,
	}).Decode(&guy)
	if err != nil {
		utils.RespondWithError(w, http.StatusOK, "Delivery guy not found")
		return
	}

	active, err := delivery.ActiveFor(ctx, guyID)
	if err != nil {
		log.Println("assignDelivery busy check error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error assigning delivery")
		return
	}
	if active != nil {
		utils.RespondWithError(w, http.StatusOK, fmt.Sprintf(
			"Delivery guy %s is currently busy with another delivery", guy.FullName()))
		return
	}

	d, err := delivery.Assign(ctx, sale, sale.CashierID, guyID, address, notes)
	if err != nil {
		log.Println("assignDelivery insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error assigning delivery")
		return
	}

	if err := finalize(ctx, sale, "Delivery"); err != nil {
		log.Println("assignDelivery finalize error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to complete sale")
		return
	}

	ref := utils.NewTransactionReference(sale.SaleNumber)
	_, err = payments.CreatePayment(ctx, models.Payment{
		PaymentID:            uuid.NewString(),
		PaymentType:          models.PaymentTypeDelivery,
		Amount:               sale.FinalAmount,
		Status:               models.PaymentPending,
		TransactionReference: ref,
		Notes:                "Delivery payment for Sale #" + sale.SaleNumber,
	})
	if err != nil {
		log.Println("assignDelivery payment error:", err)
	}

	printOK, printMsg := printer.PrintReceipt(sale)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":         true,
		"sale_number":     sale.SaleNumber,
		"delivery_number": d.DeliveryNumber,
		"print_success":   printOK,
		"print_message":   printMsg,
		"message":         "Delivery assigned to " + guy.FullName(),
	})
}

// finalize stamps the sale completed, locks in totals, decrements stock and
// publishes the sale event. Idempotent: a completed sale is left untouched.
func finalize(ctx context.Context, sale *models.Sale, method string) error {
	if sale.CompletedAt != nil {
		return nil
	}

	now := time.Now()
	sale.CompletedAt = &now
	sale.PaymentMethod = method
	sale.DiscountAmount = 0
	sale.TotalAmount = sale.Subtotal()
	sale.FinalAmount = sale.TotalAmount - sale.DiscountAmount

	for _, item := range sale.Items {
		_, err := db.ProductsCollection.UpdateOne(ctx,
			bson.M{"product_id": item.ProductID},
			bson.M{"$inc": bson.M{"quantity": -item.Quantity}},
		)
		if err != nil {
			log.Printf("Stock decrement failed for %s: %v", item.ProductID, err)
		}
	}

	set := bson.M{
		"completed_at":    sale.CompletedAt,
		"payment_method":  sale.PaymentMethod,
		"discount_amount": sale.DiscountAmount,
		"total_amount":    sale.TotalAmount,
		"final_amount":    sale.FinalAmount,
	}
	if sale.MoneyReceived != nil {
		set["money_received"] = *sale.MoneyReceived
	}
	if sale.ChangeAmount != nil {
		set["change_amount"] = *sale.ChangeAmount
	}

	_, err := db.SalesCollection.UpdateOne(ctx, bson.M{"sale_id": sale.SaleID}, bson.M{"$set": set})
	if err != nil {
		return err
	}

	mq.Emit(ctx, mq.SaleEvent{
		Event:         "completed",
		SaleID:        sale.SaleID,
		SaleNumber:    sale.SaleNumber,
		PaymentMethod: method,
		Amount:        sale.FinalAmount,
	})
	return nil
}

func respondCompleted(w http.ResponseWriter, sale *models.Sale) {
	printOK, printMsg := printer.PrintReceipt(sale)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":       true,
		"sale_number":   sale.SaleNumber,
		"print_success": printOK,
		"print_message": printMsg,
	})
}
