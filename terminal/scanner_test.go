package terminal

import (
	"context"
	"net/http"
	"testing"
)

func TestScanFieldSubmitsOnEnter(t *testing.T) {
	var scanned string
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		scanned = r.PostFormValue("barcode")
		writeJSON(w, soapScanReply)
	})
	field := NewScanField(h.session)

	for _, r := range "  123456789012 " {
		field.Handle(context.Background(), KeyEvent{Rune: r})
	}
	field.Handle(context.Background(), KeyEvent{Key: "Enter"})

	if scanned != "123456789012" {
		t.Errorf("scanned = %q, want trimmed barcode", scanned)
	}
	if field.Value() != "" {
		t.Errorf("field not cleared after submit: %q", field.Value())
	}
	if h.display.focusCount == 0 {
		t.Error("field not refocused after submit")
	}
}

func TestScanFieldCapturesStrayKeystrokes(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	field := NewScanField(h.session)
	field.Blur()

	field.Handle(context.Background(), KeyEvent{Rune: '4'})

	if field.Value() != "4" {
		t.Errorf("value = %q, want captured keystroke", field.Value())
	}
	if h.display.focusCount == 0 {
		t.Error("focus not redirected to the scan field")
	}
}

func TestScanFieldIgnoresNamedKeysWhenBlurred(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	field := NewScanField(h.session)
	for _, r := range "123" {
		field.Handle(context.Background(), KeyEvent{Rune: r})
	}
	field.Blur()

	field.Handle(context.Background(), KeyEvent{Key: "Enter"})

	if field.Value() != "123" {
		t.Errorf("value = %q; Enter outside the field must not submit", field.Value())
	}
}

func TestScanFieldBackspace(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	field := NewScanField(h.session)

	for _, r := range "129" {
		field.Handle(context.Background(), KeyEvent{Rune: r})
	}
	field.Handle(context.Background(), KeyEvent{Key: "Backspace"})

	if field.Value() != "12" {
		t.Errorf("value = %q, want 12", field.Value())
	}
}

func TestEmptyScanNotSubmitted(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty scan")
	})
	field := NewScanField(h.session)

	field.Handle(context.Background(), KeyEvent{Key: "Enter"})

	_ = h
}
