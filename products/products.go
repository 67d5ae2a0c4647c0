package products

import (
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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetProduct returns one product by id.
func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()

	var product models.Product
	err := db.ProductsCollection.FindOne(ctx, bson.M{"product_id": ps.ByName("id")}).Decode(&product)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "product": product})
}

// ListProducts lists active products, optionally filtered by a search term
// matched against name and SKU.
func ListProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	filter := bson.M{"is_active": true}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": q, "$options": "i"}},
			bson.M{"sku": bson.M{"$regex": q, "$options": "i"}},
		}
	}

	limit := int64(50)
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 200 {
		limit = int64(n)
	}

	cur, err := db.ProductsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"name": 1}).SetLimit(limit))
	if err != nil {
		log.Println("ListProducts error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load products")
		return
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		log.Println("ListProducts decode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load products")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "products": products})
}

// CreateProduct registers a new product with its barcodes.
func CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	sku := strings.TrimSpace(r.PostFormValue("sku"))
	if name == "" || sku == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name and SKU are required")
		return
	}

	err := db.ProductsCollection.FindOne(ctx, bson.M{"sku": sku}).Err()
	if err == nil {
		utils.RespondWithError(w, http.StatusConflict, "A product with this SKU already exists")
		return
	}
	if err != mongo.ErrNoDocuments {
		log.Println("CreateProduct sku check error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	now := time.Now()
	product := models.Product{
		ProductID:      uuid.NewString(),
		SKU:            sku,
		Name:           name,
		Description:    strings.TrimSpace(r.PostFormValue("description")),
		SellingPrice:   parsePrice(r.PostFormValue("selling_price")),
		WholesalePrice: parsePrice(r.PostFormValue("wholesale_price")),
		SpecialPrice:   parsePrice(r.PostFormValue("special_price")),
		Quantity:       parseQuantity(r.PostFormValue("quantity")),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if product.SellingPrice <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Selling price must be greater than 0")
		return
	}

	if img, thumb, err := saveProductImage(r, product.ProductID); err == nil {
		product.Image = img
		product.Thumb = thumb
	}

	if _, err := db.ProductsCollection.InsertOne(ctx, product); err != nil {
		log.Println("CreateProduct insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	for _, code := range splitBarcodes(r.PostFormValue("barcodes")) {
		_, err := db.BarcodesCollection.InsertOne(ctx, models.Barcode{
			Barcode:   code,
			ProductID: product.ProductID,
			IsActive:  true,
			CreatedAt: now,
		})
		if err != nil {
			log.Println("CreateProduct barcode insert error:", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "product": product})
}

// UpdateProduct patches the fields present in the form.
func UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	productID := ps.ByName("id")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
	}

	set := bson.M{"updated_at": time.Now()}
	for _, field := range []string{"name", "description", "sku"} {
		if v := strings.TrimSpace(r.PostFormValue(field)); v != "" {
			set[field] = v
		}
	}
	for _, field := range []string{"selling_price", "wholesale_price", "special_price"} {
		if v := r.PostFormValue(field); v != "" {
			set[field] = parsePrice(v)
		}
	}
	if v := r.PostFormValue("quantity"); v != "" {
		set["quantity"] = parseQuantity(v)
	}
	if v := r.PostFormValue("is_active"); v != "" {
		set["is_active"] = v == "1" || v == "true"
	}

	if img, thumb, err := saveProductImage(r, productID); err == nil {
		set["image"] = img
		set["thumb"] = thumb
	}

	res, err := db.ProductsCollection.UpdateOne(ctx,
		bson.M{"product_id": productID}, bson.M{"$set": set})
	if err != nil {
		log.Println("UpdateProduct error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// DeleteProduct soft-deletes: scanned barcodes stop resolving but history keeps
// its product names.
func DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	productID := ps.ByName("id")

	res, err := db.ProductsCollection.UpdateOne(ctx,
		bson.M{"product_id": productID},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}})
	if err != nil {
		log.Println("DeleteProduct error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	_, err = db.BarcodesCollection.UpdateMany(ctx,
		bson.M{"product_id": productID}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		log.Println("DeleteProduct barcode error:", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseQuantity(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func splitBarcodes(raw string) []string {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
