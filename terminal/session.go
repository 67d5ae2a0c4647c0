package terminal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Display is the rendering surface for the sale screen. Implementations keep
// the affected row visible after UpsertLine.
type Display interface {
	UpsertLine(line CartLine)
	SetLineQuantity(itemID ID, quantity int)
	SetLineTotal(itemID ID, total string)
	RemoveLine(itemID ID)
	ShowEmptyState()
	SetTotals(subtotal, total string)
	SetCompleteEnabled(enabled bool)
	FocusScanField()
	SetPrinterStatus(ready bool, message string)
}

// Notifier shows transient success/error toasts.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// PaymentModal is the completion/confirmation overlay.
type PaymentModal interface {
	ShowInitiating()
	ShowAwaiting(message string)
	ShowSucceeded(message string)
	ShowFailed(message string)
	ShowPrinting()
	Close()
}

// Config wires a Session to its surroundings. Sleep and Poll exist so tests
// can run the five-minute confirmation flow instantly.
type Config struct {
	Client     *Client
	Display    Display
	Notifier   Notifier
	Modal      PaymentModal
	Redirect   func(url string)
	Confirm    func(prompt string) bool
	NewSaleURL string
	Poll       PollPolicy
	Sleep      func(time.Duration)
}

// Session owns the state the sale screen shares between components: the cart
// model, the hold flag, the selected payment method and the modal lock that
// serializes the asynchronous completion flow against modal dismissal.
type Session struct {
	client   *Client
	cart     *Cart
	display  Display
	notify   Notifier
	modal    PaymentModal
	redirect func(url string)
	confirm  func(prompt string) bool

	newSaleURL    string
	poll          PollPolicy
	sleep         func(time.Duration)
	successPause  time.Duration
	redirectDelay time.Duration

	held        bool
	modalActive bool
	method      string
	totals      Totals
	lastDraft   *PaymentDraft

	// Bumped on every new completion attempt and on cancel; an in-flight
	// poll loop holding a stale value abandons its response.
	generation atomic.Uint64
}

func NewSession(cfg Config) *Session {
	s := &Session{
		client:        cfg.Client,
		cart:          &Cart{},
		display:       cfg.Display,
		notify:        cfg.Notifier,
		modal:         cfg.Modal,
		redirect:      cfg.Redirect,
		confirm:       cfg.Confirm,
		newSaleURL:    cfg.NewSaleURL,
		poll:          cfg.Poll,
		sleep:         cfg.Sleep,
		successPause:  2 * time.Second,
		redirectDelay: 3 * time.Second,
	}
	if s.poll.Interval == 0 && s.poll.MaxAttempts == 0 {
		s.poll = DefaultPollPolicy
	}
	if s.sleep == nil {
		s.sleep = time.Sleep
	}
	return s
}

func (s *Session) Cart() *Cart { return s.cart }

func (s *Session) Held() bool { return s.held }

// ModalActive reports the global modal lock. While set, background clicks and
// Escape must not dismiss any modal.
func (s *Session) ModalActive() bool { return s.modalActive }

// HandleScan looks the barcode up server-side and mirrors the result.
func (s *Session) HandleScan(ctx context.Context, barcode string) {
	if s.held {
		s.notify.Error("Sale is on hold")
		return
	}

	res, err := s.client.Scan(ctx, barcode)
	if err != nil {
		s.notify.Error(err.Error())
		return
	}

	s.applyScan(res)
	s.notify.Success(res.Product.Name + " added to sale")
}

// HandleQuantityEdit validates the raw input, reverting the displayed value
// and skipping the request on anything below 1 or non-numeric. An unchanged
// value issues no request at all.
func (s *Session) HandleQuantityEdit(ctx context.Context, itemID ID, raw string) {
	if s.held {
		s.notify.Error("Sale is on hold")
		return
	}

	line := s.cart.ByItem(itemID)
	if line == nil {
		return
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || quantity < 1 {
		s.display.SetLineQuantity(itemID, line.Quantity)
		s.notify.Error(fmt.Sprintf("Invalid quantity for %s", line.Name))
		return
	}

	if quantity == line.Quantity {
		return
	}

	res, err := s.client.UpdateQuantity(ctx, itemID, quantity)
	if err != nil {
		s.display.SetLineQuantity(itemID, line.Quantity)
		s.notify.Error(err.Error())
		return
	}

	line.Quantity = quantity
	line.Total = res.ItemTotal
	s.display.SetLineQuantity(itemID, quantity)
	s.display.SetLineTotal(itemID, res.ItemTotal.Display())
	s.applyTotals(res.Totals)
}

func (s *Session) RemoveItem(ctx context.Context, itemID ID) {
	if s.held {
		s.notify.Error("Sale is on hold")
		return
	}

	res, err := s.client.RemoveItem(ctx, itemID)
	if err != nil {
		s.notify.Error(err.Error())
		return
	}

	s.cart.remove(itemID)
	s.display.RemoveLine(itemID)
	s.applyTotals(res.Totals)
}

func (s *Session) HoldSale(ctx context.Context) {
	message, err := s.client.Hold(ctx)
	if err != nil {
		s.notify.Error(err.Error())
		return
	}
	s.held = true
	s.notify.Success(message)
}

func (s *Session) RecallSale(ctx context.Context) {
	message, err := s.client.Recall(ctx)
	if err != nil {
		s.notify.Error(err.Error())
		return
	}
	s.held = false
	s.notify.Success(message)
}
