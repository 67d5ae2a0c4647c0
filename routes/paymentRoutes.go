package routes

import (
	"beizuri/middleware"
	"beizuri/models"
	"beizuri/payments"
	"beizuri/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddPaymentRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	till := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles(models.RoleAdmin, models.RoleCashier, models.RoleSupervisor),
	)

	// Polled by terminals while an STK push is outstanding.
	router.GET("/api/v1/payments/status", till(payments.CheckPaymentStatus))

	// Gateway posts results here; it cannot carry our JWT.
	router.POST("/api/v1/payments/callback", rateLimiter.Limit(payments.Callback))
}
