package models

import "time"

// Delivery statuses
const (
	DeliveryAssigned  = "assigned"
	DeliveryInTransit = "in_transit"
	DeliveryDelivered = "delivered"
	DeliveryCancelled = "cancelled"
)

// Delivery assigns a completed sale to a delivery agent.
type Delivery struct {
	DeliveryID      string    `json:"delivery_id" bson:"delivery_id"`
	DeliveryNumber  string    `json:"delivery_number" bson:"delivery_number"`
	SaleID          string    `json:"sale_id" bson:"sale_id"`
	CashierID       string    `json:"cashier_id" bson:"cashier_id"`
	DeliveryGuyID   string    `json:"delivery_guy_id" bson:"delivery_guy_id"`
	DeliveryAddress string    `json:"delivery_address" bson:"delivery_address"`
	Notes           string    `json:"notes,omitempty" bson:"notes,omitempty"`
	Status          string    `json:"status" bson:"status"`
	PaymentStatus   string    `json:"payment_status" bson:"payment_status"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// DeliveryGuy is the list entry the terminal renders in the assignment panel.
type DeliveryGuy struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	Phone          string `json:"phone"`
	ActiveDelivery string `json:"active_delivery,omitempty"`
}
