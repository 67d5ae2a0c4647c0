package delivery

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"beizuri/db"
	"beizuri/models"
	"beizuri/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const numberChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func newDeliveryNumber() string {
	id := strings.ToUpper(uuid.NewString())
	b := make([]byte, 0, 8)
	for _, c := range id {
		if strings.ContainsRune(numberChars, c) {
			b = append(b, byte(c))
		}
		if len(b) == 8 {
			break
		}
	}
	return "DEL-" + string(b)
}

// ActiveFor returns the delivery an agent is currently working, if any.
func ActiveFor(ctx context.Context, deliveryGuyID string) (*models.Delivery, error) {
	var d models.Delivery
	err := db.DeliveriesCollection.FindOne(ctx, bson.M{
		"delivery_guy_id": deliveryGuyID,
		"status":          bson.M{"$in": []string{models.DeliveryAssigned, models.DeliveryInTransit}},
	}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Assign creates a delivery record binding a sale to an agent.
func Assign(ctx context.Context, sale *models.Sale, cashierID, deliveryGuyID, address, notes string) (models.Delivery, error) {
	d := models.Delivery{
		DeliveryID:      uuid.NewString(),
		DeliveryNumber:  newDeliveryNumber(),
		SaleID:          sale.SaleID,
		CashierID:       cashierID,
		DeliveryGuyID:   deliveryGuyID,
		DeliveryAddress: address,
		Notes:           notes,
		Status:          models.DeliveryAssigned,
		PaymentStatus:   models.PaymentPending,
		CreatedAt:       time.Now(),
	}
	_, err := db.DeliveriesCollection.InsertOne(ctx, d)
	return d, err
}

// ListDeliveryGuys serves the assignment panel: all active delivery agents,
// optionally filtered server-side by a search term, each flagged with the
// delivery number they are currently busy with.
func ListDeliveryGuys(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	filter := bson.M{"role": models.RoleDeliveryGuy, "is_active": true}
	if search != "" {
		filter["$or"] = []bson.M{
			{"username": bson.M{"$regex": search, "$options": "i"}},
			{"first_name": bson.M{"$regex": search, "$options": "i"}},
			{"last_name": bson.M{"$regex": search, "$options": "i"}},
			{"phone_number": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	cursor, err := db.UserCollection.Find(ctx, filter)
	if err != nil {
		log.Println("ListDeliveryGuys Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load delivery guys")
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		log.Println("ListDeliveryGuys cursor error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load delivery guys")
		return
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}

	busy := map[string]string{}
	if len(ids) > 0 {
		dcur, err := db.DeliveriesCollection.Find(ctx, bson.M{
			"delivery_guy_id": bson.M{"$in": ids},
			"status":          bson.M{"$in": []string{models.DeliveryAssigned, models.DeliveryInTransit}},
		})
		if err == nil {
			var active []models.Delivery
			if err := dcur.All(ctx, &active); err == nil {
				for _, d := range active {
					busy[d.DeliveryGuyID] = d.DeliveryNumber
				}
			}
			dcur.Close(ctx)
		}
	}

	result := make([]models.DeliveryGuy, 0, len(users))
	for _, u := range users {
		result = append(result, models.DeliveryGuy{
			ID:             u.UserID,
			Name:           u.FullName(),
			Username:       u.Username,
			Phone:          u.PhoneNumber,
			ActiveDelivery: busy[u.UserID],
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":       true,
		"delivery_guys": result,
	})
}
