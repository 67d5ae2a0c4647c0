package printer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"beizuri/db"
	"beizuri/models"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

// DownloadReceipt renders a completed sale as an A4 PDF with a QR code
// linking to the public receipt page.
func DownloadReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	saleID := ps.ByName("saleid")

	var sale models.Sale
	err := db.SalesCollection.FindOne(context.TODO(), bson.M{
		"sale_id":      saleID,
		"completed_at": bson.M{"$ne": nil},
	}).Decode(&sale)
	if err != nil {
		http.Error(w, "Sale not found", http.StatusNotFound)
		return
	}

	receipt := FormatReceipt(&sale)

	qrPNG, err := qrcode.Encode(receipt.QRCodeData, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, receipt.ShopName)
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, receipt.Address)
	pdf.Ln(5)
	pdf.Cell(0, 6, receipt.Phone)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Receipt %s", receipt.SaleNumber))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", receipt.Date))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Cashier: %s", receipt.Cashier))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Sale type: %s", receipt.SaleType))
	pdf.Ln(10)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range receipt.Items {
		pdf.CellFormat(80, 7, item.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, item.UnitPrice, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, item.Total, "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(135, 7, "Subtotal", "T", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, receipt.Subtotal, "T", 1, "R", false, 0, "")
	pdf.CellFormat(135, 7, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, receipt.Total, "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(135, 7, "Payment method", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, receipt.PaymentMethod, "", 1, "R", false, 0, "")
	if receipt.MoneyReceived != "" {
		pdf.CellFormat(135, 7, "Received", "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, receipt.MoneyReceived, "", 1, "R", false, 0, "")
		pdf.CellFormat(135, 7, "Change", "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, receipt.ChangeAmount, "", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("receipt-qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("receipt-qr", 80, pdf.GetY(), 50, 50, false, imageOpts, 0, "")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, receipt.SaleNumber))
	if err := pdf.Output(w); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
	}
}
