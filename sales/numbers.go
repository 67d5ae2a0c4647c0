package sales

import (
	"context"
	"fmt"
	"time"

	"beizuri/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// nextSaleNumber allocates SALE-YYYYMMDD-NNNN from an atomic per-day counter.
func nextSaleNumber(ctx context.Context) (string, error) {
	today := time.Now().Format("20060102")

	var counter struct {
		Seq int `bson:"seq"`
	}
	err := db.CountersCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": "sale-" + today},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("SALE-%s-%04d", today, counter.Seq), nil
}
