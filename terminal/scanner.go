package terminal

import (
	"context"
	"strings"
	"unicode"
)

// KeyEvent is a normalized keystroke. Named keys carry Key ("Enter",
// "Backspace"); printable characters carry Rune.
type KeyEvent struct {
	Key  string
	Rune rune
}

// ScanField captures barcode scanner input. Hardware scanners type into
// whatever has focus, so printable keys and Backspace arriving while focus is
// elsewhere are redirected into the field.
type ScanField struct {
	session *Session
	buf     []rune
	focused bool
}

func NewScanField(session *Session) *ScanField {
	return &ScanField{session: session, focused: true}
}

func (f *ScanField) Focus() {
	f.focused = true
	f.session.display.FocusScanField()
}

func (f *ScanField) Blur() { f.focused = false }

func (f *ScanField) Value() string { return string(f.buf) }

// Handle routes one keystroke. Enter submits the buffered scan; everything
// else edits the buffer, capturing focus first if needed.
func (f *ScanField) Handle(ctx context.Context, ev KeyEvent) {
	if !f.focused {
		if ev.Key != "Backspace" && !(ev.Key == "" && unicode.IsPrint(ev.Rune)) {
			return
		}
		f.Focus()
	}

	switch {
	case ev.Key == "Enter":
		f.Submit(ctx)
	case ev.Key == "Backspace":
		if len(f.buf) > 0 {
			f.buf = f.buf[:len(f.buf)-1]
		}
	case ev.Key == "" && unicode.IsPrint(ev.Rune):
		f.buf = append(f.buf, ev.Rune)
	}
}

// Submit reads-and-clears the field, refocuses it, and forwards the trimmed
// value. Empty scans are dropped.
func (f *ScanField) Submit(ctx context.Context) {
	value := strings.TrimSpace(string(f.buf))
	f.buf = f.buf[:0]
	f.Focus()

	if value == "" {
		return
	}
	f.session.HandleScan(ctx, value)
}
