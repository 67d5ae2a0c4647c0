package terminal

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Payment methods offered on the completion screen.
const (
	MethodCash    = "Cash"
	MethodMpesa   = "M-Pesa"
	MethodAirtel  = "Airtel"
	MethodDebt    = "Debt"
	MethodPayBill = "PayBill"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneSeparator = regexp.MustCompile(`[\s\-()]`)
	phonePattern   = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// PaymentDraft holds the method-specific form fields gathered while the
// completion modal is open. It is discarded on close or submit.
type PaymentDraft struct {
	Method        string
	MoneyReceived string
	MobileNumber  string
	FirstName     string
	SecondName    string
	Email         string
	Phone         string
	Notes         string
}

// formFields builds the complete_sale request. PayBill is a confirmed M-Pesa
// settlement: the backend completes it immediately without a phone push.
func (d *PaymentDraft) formFields() url.Values {
	fields := url.Values{}
	method := d.Method
	if method == MethodPayBill {
		method = MethodMpesa
		fields.Set("paybill_confirmed", "1")
	}
	fields.Set("payment_method", method)

	switch d.Method {
	case MethodCash:
		fields.Set("money_received", d.MoneyReceived)
	case MethodMpesa:
		fields.Set("mobile_number", d.MobileNumber)
	case MethodDebt:
		fields.Set("customer_first_name", strings.TrimSpace(d.FirstName))
		fields.Set("customer_second_name", strings.TrimSpace(d.SecondName))
		fields.Set("customer_phone", strings.TrimSpace(d.Phone))
		fields.Set("customer_email", strings.TrimSpace(d.Email))
	}
	if d.Notes != "" {
		fields.Set("notes", d.Notes)
	}
	return fields
}

// SelectMethod records the cashier's choice. PayBill requires an extra
// confirmation before it enters the standard completion flow; declining
// leaves the previous selection untouched.
func (s *Session) SelectMethod(method string) bool {
	if method == MethodPayBill {
		if s.confirm == nil || !s.confirm("Confirm that the PayBill payment has been received?") {
			return false
		}
	}
	s.method = method
	return true
}

func (s *Session) SelectedMethod() string { return s.method }

// validateDraft runs the client-side checks that block submission before any
// request is sent. The server re-validates everything.
func (s *Session) validateDraft(d *PaymentDraft) error {
	switch d.Method {
	case MethodCash:
		received, _ := strconv.ParseFloat(strings.TrimSpace(d.MoneyReceived), 64)
		total := float64(s.totals.Total)
		if received < total {
			return fmt.Errorf("Amount received (%.2f) is less than total (%.2f)", received, total)
		}
	case MethodDebt:
		if strings.TrimSpace(d.FirstName) == "" ||
			strings.TrimSpace(d.SecondName) == "" ||
			strings.TrimSpace(d.Phone) == "" {
			return fmt.Errorf("Customer first name, second name and phone number are required")
		}
		if email := strings.TrimSpace(d.Email); email != "" && !emailPattern.MatchString(email) {
			return fmt.Errorf("Enter a valid email address")
		}
		phone := phoneSeparator.ReplaceAllString(strings.TrimSpace(d.Phone), "")
		if !phonePattern.MatchString(phone) {
			return fmt.Errorf("Enter a valid phone number (10-15 digits)")
		}
	}
	return nil
}

// CompleteSale validates the draft, takes the modal lock and branches: pure
// M-Pesa goes through the confirmation state machine, everything else submits
// immediately and shows printing progress. Print failure never blocks the
// redirect; the sale exists server-side regardless.
func (s *Session) CompleteSale(ctx context.Context, draft PaymentDraft) {
	if draft.Method == "" {
		draft.Method = s.method
	}
	if draft.Method == "" {
		s.notify.Error("Select a payment method")
		return
	}

	if err := s.validateDraft(&draft); err != nil {
		s.notify.Error(err.Error())
		return
	}

	s.modalActive = true

	if draft.Method == MethodMpesa {
		s.confirmPayment(ctx, draft)
		return
	}

	s.modal.ShowPrinting()
	res, err := s.client.Complete(ctx, draft.formFields())
	if err != nil {
		s.modal.ShowFailed(err.Error())
		s.redirectAfterDelay()
		return
	}

	s.finishCompleted(res)
}

// finishCompleted surfaces the outcome of a settled sale and schedules the
// redirect to a fresh sale.
func (s *Session) finishCompleted(res *CompletionResult) {
	if res.PrintSuccess {
		s.modal.ShowSucceeded("Sale " + res.SaleNumber + " completed")
	} else {
		message := res.PrintMessage
		if message == "" {
			message = "Receipt printing failed"
		}
		s.modal.ShowSucceeded("Sale " + res.SaleNumber + " completed. " + message)
	}
	s.redirectAfterDelay()
}

func (s *Session) redirectAfterDelay() {
	s.sleep(s.redirectDelay)
	s.modalActive = false
	s.redirect(s.newSaleURL)
}
