package models

import "time"

// Sale types
const (
	SaleTypeRetail    = "RETAIL"
	SaleTypeWholesale = "WHOLESALE"
	SaleTypeSpecial   = "SPECIAL"
)

// SaleItem is a single line on a sale. Items are embedded in the sale
// document; ItemID identifies the line once the server has created it.
type SaleItem struct {
	ItemID    string    `json:"item_id" bson:"item_id"`
	ProductID string    `json:"product_id" bson:"product_id"`
	Name      string    `json:"name" bson:"name"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	UnitPrice float64   `json:"unit_price" bson:"unit_price"`
	Total     float64   `json:"total" bson:"total"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Sale is one receipt in progress or completed.
type Sale struct {
	SaleID         string     `json:"sale_id" bson:"sale_id"`
	SaleNumber     string     `json:"sale_number" bson:"sale_number"`
	SaleType       string     `json:"sale_type" bson:"sale_type"`
	CashierID      string     `json:"cashier_id" bson:"cashier_id"`
	CashierName    string     `json:"cashier_name,omitempty" bson:"cashier_name,omitempty"`
	Items          []SaleItem `json:"items" bson:"items"`
	TotalAmount    float64    `json:"total_amount" bson:"total_amount"`
	SpecialAmount  float64    `json:"special_amount" bson:"special_amount"`
	DiscountAmount float64    `json:"discount_amount" bson:"discount_amount"`
	FinalAmount    float64    `json:"final_amount" bson:"final_amount"`
	PaymentMethod  string     `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	MoneyReceived  *float64   `json:"money_received,omitempty" bson:"money_received,omitempty"`
	ChangeAmount   *float64   `json:"change_amount,omitempty" bson:"change_amount,omitempty"`
	Notes          string     `json:"notes,omitempty" bson:"notes,omitempty"`
	IsHeld         bool       `json:"is_held" bson:"is_held"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// Subtotal is the sum of line totals. The server recomputes this on every
// mutation; clients never derive totals themselves.
func (s *Sale) Subtotal() float64 {
	var sum float64
	for _, it := range s.Items {
		sum += float64(it.Quantity) * it.UnitPrice
	}
	return sum
}

// ItemByID returns a pointer into Items or nil.
func (s *Sale) ItemByID(itemID string) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ItemID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// ItemByProduct returns the line holding productID or nil.
func (s *Sale) ItemByProduct(productID string) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return &s.Items[i]
		}
	}
	return nil
}

// Totals is the totals block returned with every cart mutation.
type Totals struct {
	ItemsCount int    `json:"items_count"`
	Subtotal   string `json:"subtotal"`
	Special    string `json:"special_total"`
	Total      string `json:"total"`
}
