package models

import "testing"

func TestSubtotal(t *testing.T) {
	sale := &Sale{Items: []SaleItem{
		{Quantity: 3, UnitPrice: 50, Total: 150},
		{Quantity: 1, UnitPrice: 49.50, Total: 49.50},
	}}
	if got := sale.Subtotal(); got != 199.50 {
		t.Errorf("Subtotal() = %v", got)
	}
}

func TestPriceFor(t *testing.T) {
	p := &Product{SellingPrice: 100, WholesalePrice: 80, SpecialPrice: 60}

	tests := []struct {
		saleType string
		want     float64
	}{
		{SaleTypeRetail, 100},
		{SaleTypeWholesale, 80},
		{SaleTypeSpecial, 60},
	}
	for _, tt := range tests {
		if got := p.PriceFor(tt.saleType); got != tt.want {
			t.Errorf("PriceFor(%s) = %v, want %v", tt.saleType, got, tt.want)
		}
	}

	// Unset tier prices fall back to the selling price.
	bare := &Product{SellingPrice: 100}
	if got := bare.PriceFor(SaleTypeWholesale); got != 100 {
		t.Errorf("fallback PriceFor = %v", got)
	}
}

func TestUserRoles(t *testing.T) {
	cashier := &User{Username: "akinyi", Role: []string{RoleCashier}}
	if !cashier.CanProcessSales() {
		t.Error("cashier should process sales")
	}
	guy := &User{Username: "odhiambo", Role: []string{RoleDeliveryGuy}}
	if guy.CanProcessSales() {
		t.Error("delivery guy should not process sales")
	}
}

func TestFullNameFallsBackToUsername(t *testing.T) {
	u := &User{Username: "akinyi"}
	if got := u.FullName(); got != "akinyi" {
		t.Errorf("FullName() = %q", got)
	}
	u.FirstName, u.LastName = "Akinyi", "Otieno"
	if got := u.FullName(); got != "Akinyi Otieno" {
		t.Errorf("FullName() = %q", got)
	}
}
