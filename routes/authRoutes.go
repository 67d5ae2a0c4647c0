package routes

import (
	"beizuri/auth"
	"beizuri/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/v1/auth/login", rateLimiter.Limit(auth.Login))
	router.POST("/api/v1/auth/register", rateLimiter.Limit(auth.Register))
}
