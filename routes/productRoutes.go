package routes

import (
	"beizuri/middleware"
	"beizuri/models"
	"beizuri/products"
	"beizuri/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddProductRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	till := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles(models.RoleAdmin, models.RoleCashier, models.RoleSupervisor),
	)
	manage := middleware.Chain(
		rateLimiter.Limit,
		middleware.Authenticate,
		middleware.RequireRoles(models.RoleAdmin, models.RoleSupervisor),
	)

	router.GET("/api/v1/products", till(products.ListProducts))
	router.GET("/api/v1/products/:id", till(products.GetProduct))
	router.POST("/api/v1/products", manage(products.CreateProduct))
	router.PUT("/api/v1/products/:id", manage(products.UpdateProduct))
	router.DELETE("/api/v1/products/:id", manage(products.DeleteProduct))
}
