package payments

import "testing"

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"712345678", "254712345678"},
		{"112345678", "254112345678"},
		{"254712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{" 0712345678 ", "254712345678"},
	}

	for _, tt := range tests {
		if got := NormalizePhoneNumber(tt.in); got != tt.want {
			t.Errorf("NormalizePhoneNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInitiateSTKPushRejectsZeroAmount(t *testing.T) {
	res := InitiateSTKPush("0712345678", 0, "SALE-0001-ABCDEF")
	if res.Success {
		t.Error("zero amount must not initiate a push")
	}
}

func TestMockModeInitiates(t *testing.T) {
	t.Setenv("USE_MOCK_STK_PUSH", "true")

	res := InitiateSTKPush("0712345678", 150, "SALE-0001-ABCDEF")
	if !res.Success {
		t.Fatalf("mock initiation failed: %s", res.Message)
	}
	if res.CheckoutID == "" {
		t.Error("mock initiation returned no checkout id")
	}

	status := CheckTransactionStatus(res.CheckoutID)
	if !status.IsComplete {
		t.Error("mock payments should complete on first status check")
	}
}
