package terminal

import (
	"context"
	"time"
)

// Poll statuses returned by the payment status endpoint.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusPending = "PENDING"
)

// PollPolicy bounds the confirmation loop. The defaults give a five-minute
// ceiling: one poll every five seconds, sixty attempts.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

var DefaultPollPolicy = PollPolicy{Interval: 5 * time.Second, MaxAttempts: 60}

// confirmPayment runs Initiating -> AwaitingPayment -> terminal state. The
// initiation request creates the payment server-side; its transaction
// reference drives the polls and the final completion call.
func (s *Session) confirmPayment(ctx context.Context, draft PaymentDraft) {
	gen := s.generation.Add(1)
	s.lastDraft = &draft

	s.modal.ShowInitiating()
	res, err := s.client.Complete(ctx, draft.formFields())
	if err != nil {
		s.modal.ShowFailed(err.Error())
		return
	}

	if !res.PaymentInitiated || res.TransactionReference == "" {
		// Settled without a push, e.g. an already confirmed payment.
		s.finishCompleted(res)
		return
	}

	message := res.Message
	if message == "" {
		message = "Please check your phone and complete the payment"
	}
	s.modal.ShowAwaiting(message)
	s.awaitPayment(ctx, gen, res.TransactionReference, draft)
}

// awaitPayment checks the status right away, then polls strictly
// sequentially: each later attempt is scheduled only after the previous
// response is handled. Transient errors are tolerated until attempts run out.
func (s *Session) awaitPayment(ctx context.Context, gen uint64, reference string, draft PaymentDraft) {
	for attempt := 1; attempt <= s.poll.MaxAttempts; attempt++ {
		if attempt > 1 {
			s.sleep(s.poll.Interval)
		}
		if s.generation.Load() != gen {
			// Superseded by a retry or cancel; drop this loop.
			return
		}

		status, message, err := s.client.PaymentStatus(ctx, reference)
		if err != nil {
			if attempt == s.poll.MaxAttempts {
				s.modal.ShowFailed("Could not verify the payment. Please retry.")
				return
			}
			continue
		}

		switch status {
		case StatusSuccess:
			if message == "" {
				message = "Payment received"
			}
			s.modal.ShowSucceeded(message)
			s.sleep(s.successPause)
			s.finalizeConfirmed(ctx, reference, draft)
			return
		case StatusFailed:
			if message == "" {
				message = "Payment failed"
			}
			s.modal.ShowFailed(message)
			return
		}
	}

	s.modal.ShowFailed("Payment confirmation timed out. Please retry.")
}

// finalizeConfirmed binds the sale to the confirmed payment and redirects
// whether or not the receipt printed.
func (s *Session) finalizeConfirmed(ctx context.Context, reference string, draft PaymentDraft) {
	s.modal.ShowPrinting()

	fields := draft.formFields()
	fields.Set("transaction_reference", reference)
	res, err := s.client.Complete(ctx, fields)
	if err != nil {
		s.modal.ShowFailed(err.Error())
		s.redirectAfterDelay()
		return
	}

	s.finishCompleted(res)
}

// RetryPayment resubmits the whole completion request; there is no partial
// resume of a confirmation session.
func (s *Session) RetryPayment(ctx context.Context) {
	if s.lastDraft == nil {
		return
	}
	s.confirmPayment(ctx, *s.lastDraft)
}

// CancelPayment discards the confirmation session, releases the modal lock
// and returns the cashier to the completion modal.
func (s *Session) CancelPayment() {
	s.generation.Add(1)
	s.lastDraft = nil
	s.modalActive = false
	s.modal.Close()
}
