package models

import "time"

// Product is an item that can be scanned onto a sale.
type Product struct {
	ProductID      string    `json:"id" bson:"product_id"`
	SKU            string    `json:"sku" bson:"sku"`
	Name           string    `json:"name" bson:"name"`
	Description    string    `json:"description,omitempty" bson:"description,omitempty"`
	SellingPrice   float64   `json:"selling_price" bson:"selling_price"`
	WholesalePrice float64   `json:"wholesale_price,omitempty" bson:"wholesale_price,omitempty"`
	SpecialPrice   float64   `json:"special_price,omitempty" bson:"special_price,omitempty"`
	Quantity       int       `json:"quantity" bson:"quantity"`
	IsActive       bool      `json:"is_active" bson:"is_active"`
	Image          string    `json:"image,omitempty" bson:"image,omitempty"`
	Thumb          string    `json:"thumb,omitempty" bson:"thumb,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// PriceFor returns the unit price a sale type pays for this product.
func (p *Product) PriceFor(saleType string) float64 {
	switch saleType {
	case SaleTypeWholesale:
		if p.WholesalePrice > 0 {
			return p.WholesalePrice
		}
	case SaleTypeSpecial:
		if p.SpecialPrice > 0 {
			return p.SpecialPrice
		}
	}
	return p.SellingPrice
}

// Barcode maps a scanned code onto a product. A product may carry several.
type Barcode struct {
	Barcode   string    `json:"barcode" bson:"barcode"`
	ProductID string    `json:"product_id" bson:"product_id"`
	IsActive  bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
