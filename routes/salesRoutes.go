package routes

import (
	"beizuri/delivery"
	"beizuri/middleware"
	"beizuri/models"
	"beizuri/printer"
	"beizuri/ratelim"
	"beizuri/sales"

	"github.com/julienschmidt/httprouter"
)

// AddSalesRoutes wires the sale lifecycle: open, mutate via actions, complete,
// print. Every route but the public receipt requires a till role.
func AddSalesRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	till := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles(models.RoleAdmin, models.RoleCashier, models.RoleSupervisor),
	)

	router.POST("/api/v1/sales/new", till(sales.NewSale))
	router.GET("/api/v1/sales/:saleid", till(sales.GetSale))
	router.POST("/api/v1/sales/:saleid/process", till(sales.ProcessAction))
	router.POST("/api/v1/sales/:saleid/reprint", till(sales.ReprintReceipt))
	router.GET("/api/v1/sales/:saleid/receipt.pdf", till(printer.DownloadReceipt))

	router.GET("/api/v1/printer/status", till(sales.PrinterStatus))
	router.POST("/api/v1/printer/test", till(sales.TestPrinter))

	router.GET("/api/v1/delivery/guys", till(delivery.ListDeliveryGuys))

	// QR code target on printed receipts; customers hit this unauthenticated.
	router.GET("/receipt/:saleid", sales.PublicReceipt)
}
