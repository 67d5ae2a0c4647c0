package routes

import (
	"beizuri/middleware"
	"beizuri/ratelim"
	"beizuri/settings"

	"github.com/julienschmidt/httprouter"
)

func AddSettingsRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.GET("/api/v1/settings", authed(settings.GetUserSettings))
	router.PUT("/api/v1/settings/:type", authed(settings.UpdateUserSetting))
}
