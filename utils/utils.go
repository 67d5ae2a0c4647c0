package utils

import (
	"fmt"
	rndm "math/rand"
	"net/http"
	"strings"

	"beizuri/globals"

	"github.com/google/uuid"
)

// --- Random String and ID Generators ---

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789_ABCDEFGHIJKLMNOPQRSTUVWXYZ")
var digitRunes = []rune("0123456789")

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

// GenerateRandomDigitString creates a random numeric string of length n.
func GenerateRandomDigitString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = digitRunes[rndm.Intn(len(digitRunes))]
	}
	return string(b)
}

// NewTransactionReference builds the opaque reference that ties a payment
// to its sale, e.g. SALE-SALE-20250101-0001-A1B2C3.
func NewTransactionReference(saleNumber string) string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("SALE-%s-%s", saleNumber, suffix)
}

// --- Request helpers ---

func GetUserIDFromRequest(r *http.Request) string {
	if v, ok := r.Context().Value(globals.UserIDKey).(string); ok {
		return v
	}
	return ""
}

// FormatAmount renders money the way the terminal displays it.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
