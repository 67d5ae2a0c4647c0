package sales

import (
	"context"
	"log"
	"net/http"
	"strconv"
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

// ProcessAction is the single mutation endpoint for an open sale. The
// terminal posts form-encoded bodies with an action discriminator, exactly
// one sale per cashier at a time.
func ProcessAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := r.ParseForm(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	sale, err := loadSale(ctx, ps.ByName("saleid"), utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Sale not found")
		return
	}

	if sale.CompletedAt != nil && r.PostFormValue("action") != "complete_sale" {
		utils.RespondWithError(w, http.StatusOK, "Sale is already completed")
		return
	}

	switch r.PostFormValue("action") {
	case "scan_barcode":
		scanBarcode(ctx, w, r, sale)
	case "update_quantity":
		updateQuantity(ctx, w, r, sale)
	case "remove_item":
		removeItem(ctx, w, r, sale)
	case "hold_sale":
		holdSale(ctx, w, sale)
	case "recall_sale":
		recallSale(ctx, w, sale)
	case "complete_sale":
		completeSale(ctx, w, r, sale)
	case "assign_delivery":
		assignDelivery(ctx, w, r, sale)
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown action")
	}
}

// scanBarcode resolves a scanned code to a product (SKU first, then the
// barcode table) and adds one unit to the sale, merging into an existing
// line when the product is already on it.
func scanBarcode(ctx context.Context, w http.ResponseWriter, r *http.Request, sale *models.Sale) {
	if sale.IsHeld {
		utils.RespondWithError(w, http.StatusOK, "Sale is on hold")
		return
	}

	barcode := strings.TrimSpace(r.PostFormValue("barcode"))
	if barcode == "" {
		utils.RespondWithError(w, http.StatusOK, "No barcode provided")
		return
	}

	product, err := resolveProduct(ctx, barcode)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.Println("scanBarcode lookup error:", err)
		}
		utils.RespondWithError(w, http.StatusOK, "Product not found")
		return
	}

	if sale.SaleType == models.SaleTypeSpecial && product.SpecialPrice <= 0 {
		utils.RespondWithError(w, http.StatusOK, product.Name+" has no special price for special sale")
		return
	}

	unitPrice := product.PriceFor(sale.SaleType)

	item := sale.ItemByProduct(product.ProductID)
	if item != nil {
		item.Quantity++
		item.Total = float64(item.Quantity) * item.UnitPrice
	} else {
		sale.Items = append(sale.Items, models.SaleItem{
			ItemID:    uuid.NewString(),
			ProductID: product.ProductID,
			Name:      product.Name,
			Quantity:  1,
			UnitPrice: unitPrice,
			Total:     unitPrice,
			CreatedAt: time.Now(),
		})
		item = &sale.Items[len(sale.Items)-1]
	}

	if err := persistItems(ctx, sale); err != nil {
		log.Println("scanBarcode persist error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update sale")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"item_id": item.ItemID,
		"product": utils.M{
			"id":       product.ProductID,
			"name":     product.Name,
			"price":    utils.FormatAmount(item.UnitPrice),
			"quantity": item.Quantity,
			"total":    utils.FormatAmount(item.Total),
		},
		"totals": totalsFor(sale),
	})
}

func updateQuantity(ctx context.Context, w http.ResponseWriter, r *http.Request, sale *models.Sale) {
	if sale.IsHeld {
		utils.RespondWithError(w, http.StatusOK, "Sale is on hold")
		return
	}

	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil || quantity < 1 {
		utils.RespondWithError(w, http.StatusOK, "Quantity must be at least 1")
		return
	}

	item := sale.ItemByID(r.PostFormValue("item_id"))
	if item == nil {
		utils.RespondWithError(w, http.StatusOK, "Item not found in sale")
		return
	}

	item.Quantity = quantity
	item.Total = float64(quantity) * item.UnitPrice

	if err := persistItems(ctx, sale); err != nil {
		log.Println("updateQuantity persist error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update sale")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":    true,
		"item_total": utils.FormatAmount(item.Total),
		"totals":     totalsFor(sale),
	})
}

func removeItem(ctx context.Context, w http.ResponseWriter, r *http.Request, sale *models.Sale) {
	if sale.IsHeld {
		utils.RespondWithError(w, http.StatusOK, "Sale is on hold")
		return
	}

	itemID := r.PostFormValue("item_id")
	kept := sale.Items[:0]
	found := false
	for _, it := range sale.Items {
		if it.ItemID == itemID {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		utils.RespondWithError(w, http.StatusOK, "Item not found in sale")
		return
	}
	sale.Items = kept

	if err := persistItems(ctx, sale); err != nil {
		log.Println("removeItem persist error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update sale")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"totals":  totalsFor(sale),
	})
}

func holdSale(ctx context.Context, w http.ResponseWriter, sale *models.Sale) {
	if sale.IsHeld {
		utils.RespondWithError(w, http.StatusOK, "Sale is already on hold")
		return
	}

	if err := setHeld(ctx, sale, true); err != nil {
		log.Println("holdSale error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to hold sale")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "Sale " + sale.SaleNumber + " has been put on hold",
	})
}

func recallSale(ctx context.Context, w http.ResponseWriter, sale *models.Sale) {
	if !sale.IsHeld {
		utils.RespondWithError(w, http.StatusOK, "Sale is not on hold")
		return
	}

	if err := setHeld(ctx, sale, false); err != nil {
		log.Println("recallSale error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to recall sale")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "Sale " + sale.SaleNumber + " has been recalled",
	})
}

func resolveProduct(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	err := db.ProductsCollection.FindOne(ctx, bson.M{"sku": code, "is_active": true}).Decode(&product)
	if err == nil {
		return &product, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	var barcode models.Barcode
	err = db.BarcodesCollection.FindOne(ctx, bson.M{"barcode": code, "is_active": true}).Decode(&barcode)
	if err != nil {
		return nil, err
	}

	err = db.ProductsCollection.FindOne(ctx, bson.M{
		"product_id": barcode.ProductID,
		"is_active":  true,
	}).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func persistItems(ctx context.Context, sale *models.Sale) error {
	_, err := db.SalesCollection.UpdateOne(ctx,
		bson.M{"sale_id": sale.SaleID},
		bson.M{"$set": bson.M{"items": sale.Items}},
	)
	return err
}

func setHeld(ctx context.Context, sale *models.Sale, held bool) error {
	sale.IsHeld = held
	_, err := db.SalesCollection.UpdateOne(ctx,
		bson.M{"sale_id": sale.SaleID},
		bson.M{"$set": bson.M{"is_held": held}},
	)
	return err
}
