package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"beizuri/db"
	"beizuri/rdx"

	"go.mongodb.org/mongo-driver/bson"
)

const saleEventsChannel = "sale-events"

// SaleEvent is published whenever a sale reaches a terminal state.
type SaleEvent struct {
	Event         string  `json:"event"` // completed, returned, delivery_assigned
	SaleID        string  `json:"sale_id"`
	SaleNumber    string  `json:"sale_number"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Amount        float64 `json:"amount"`
}

// Emit publishes a sale event to Redis for the sync worker.
func Emit(ctx context.Context, event SaleEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Emit] Failed to marshal sale event: %v", err)
		return
	}

	if err := rdx.Conn.Publish(context.Background(), saleEventsChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish sale event: %v", err)
		return
	}
}

// StartSyncWorker listens for sale events and stamps the corresponding sale
// documents as synced. The upstream back office polls the synced_at marker.
func StartSyncWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, saleEventsChannel)
	ch := sub.Channel()

	log.Println("[SyncWorker] Listening for sale events...")

	for msg := range ch {
		var event SaleEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[SyncWorker] Failed to parse event: %v", err)
			continue
		}

		_, err := db.SalesCollection.UpdateOne(ctx,
			bson.M{"sale_id": event.SaleID},
			bson.M{"$set": bson.M{"synced_at": time.Now()}},
		)
		if err != nil {
			log.Printf("[SyncWorker] Failed to mark sale %s synced: %v", event.SaleNumber, err)
			continue
		}
	}
}
