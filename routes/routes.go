// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"formfill-server/commons"
	"formfill-server/handlers"
	"formfill-server/middlewares"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	commons.Logger.Debug("Registering v1 routes")
	api_v1 := e.Group("/v1")
	api_v1.POST("/auth/signup", handlers.SignupHandler)
	api_v1.POST("/auth/login", handlers.LoginHandler)
	api_v1.POST("/auth/logout", handlers.LogoutHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.POST("/auth/api-keys", handlers.CreateAPIKeyHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.GET("/auth/api-keys", handlers.GetAllAPIKeyHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.DELETE("/auth/api-keys/:key_id", handlers.DeleteAPIKeyHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.POST("/payments/verify", handlers.VerifyPaymentHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession, middlewares.AuthMethodAPIKey))
	api_v1.POST("/payments/verify-subscription", handlers.VerifySubscriptionHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession, middlewares.AuthMethodAPIKey))
	api_v1.GET("/payments", handlers.GetPaymentsHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession, middlewares.AuthMethodAPIKey))
	api_v1.GET("/plans", handlers.GetPlansHandler)
	api_v1.GET("/users/", handlers.GetUserHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.PUT("/users/webhook", handlers.UpdateWebhookHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession))
	api_v1.POST("/forms/consume", handlers.ConsumeFormHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession, middlewares.AuthMethodAPIKey))
	api_v1.GET("/event-logs", handlers.GetEventLogsHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession, middlewares.AuthMethodAPIKey))
	api_v1.GET("/event-logs/summary", handlers.GetEventLogsSummaryHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession, middlewares.AuthMethodAPIKey))
	commons.Logger.Info("v1 routes registered successfully")
}
