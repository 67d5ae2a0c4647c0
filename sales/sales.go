package sales

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"beizuri/db"
	"beizuri/models"
	"beizuri/printer"
	"beizuri/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var errSaleNotFound = errors.New("sale not found")

// NewSale discards any uncompleted sale of the cashier and opens a fresh one.
// Each cashier works exactly one sale at a time.
func NewSale(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	_, err := db.SalesCollection.DeleteMany(ctx, bson.M{
		"cashier_id":   userID,
		"completed_at": nil,
	})
	if err != nil {
		log.Println("NewSale cleanup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to start sale")
		return
	}

	saleType := r.FormValue("sale_type")
	if saleType != models.SaleTypeWholesale && saleType != models.SaleTypeSpecial {
		saleType = models.SaleTypeRetail
	}

	number, err := nextSaleNumber(ctx)
	if err != nil {
		log.Println("NewSale number error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to start sale")
		return
	}

	var cashier models.User
	cashierName := ""
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&cashier); err == nil {
		cashierName = cashier.FullName()
	}

	sale := models.Sale{
		SaleID:      uuid.NewString(),
		SaleNumber:  number,
		SaleType:    saleType,
		CashierID:   userID,
		CashierName: cashierName,
		Items:       []models.SaleItem{},
		CreatedAt:   time.Now(),
	}

	if _, err := db.SalesCollection.InsertOne(ctx, sale); err != nil {
		log.Println("NewSale insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to start sale")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success":     true,
		"sale_id":     sale.SaleID,
		"sale_number": sale.SaleNumber,
		"sale_type":   sale.SaleType,
	})
}

// GetSale returns the current state of an open sale so a terminal can resume.
func GetSale(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sale, err := loadSale(ctx, ps.ByName("saleid"), utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Sale not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"sale":    sale,
		"totals":  totalsFor(sale),
	})
}

// PrinterStatus reflects the hardware printer's availability to the terminal.
func PrinterStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ready, message := printer.CheckStatus()
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":         true,
		"printer_ready":   ready,
		"printer_message": message,
	})
}

// TestPrinter triggers the print server's self test.
func TestPrinter(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ok, message := printer.PrintTest()
	if !ok {
		utils.RespondWithError(w, http.StatusOK, "Test print failed: "+message)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": message})
}

// ReprintReceipt reprints a completed sale's receipt.
func ReprintReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var sale models.Sale
	err := db.SalesCollection.FindOne(ctx, bson.M{
		"sale_id":      ps.ByName("saleid"),
		"completed_at": bson.M{"$ne": nil},
	}).Decode(&sale)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Sale not found")
		return
	}

	ok, message := printer.PrintReceipt(&sale)
	if !ok {
		utils.RespondWithError(w, http.StatusOK, "Print failed: "+message)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Receipt reprinted successfully"})
}

// PublicReceipt serves the receipt data linked from the printed QR code.
// No auth: the sale id acts as the capability.
func PublicReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var sale models.Sale
	err := db.SalesCollection.FindOne(ctx, bson.M{
		"sale_id":      ps.ByName("saleid"),
		"completed_at": bson.M{"$ne": nil},
	}).Decode(&sale)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Receipt not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"receipt": printer.FormatReceipt(&sale),
	})
}

func loadSale(ctx context.Context, saleID, cashierID string) (*models.Sale, error) {
	var sale models.Sale
	err := db.SalesCollection.FindOne(ctx, bson.M{
		"sale_id":    saleID,
		"cashier_id": cashierID,
	}).Decode(&sale)
	if err == mongo.ErrNoDocuments {
		return nil, errSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func totalsFor(sale *models.Sale) models.Totals {
	subtotal := sale.Subtotal()
	return models.Totals{
		ItemsCount: len(sale.Items),
		Subtotal:   utils.FormatAmount(subtotal),
		Special:    utils.FormatAmount(0),
		Total:      utils.FormatAmount(subtotal),
	}
}
