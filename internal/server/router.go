package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/emocare/emocare-backend/internal/handlers"
	"github.com/emocare/emocare-backend/internal/middleware"
	"github.com/emocare/emocare-backend/internal/types"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	UserHandler         *handlers.UserHandler
	PsychologistHandler *handlers.PsychologistHandler
	BookingHandler      *handlers.BookingHandler
	ChatHandler         *handlers.ChatHandler
	EmotionHandler      *handlers.EmotionHandler
	AnalyticsHandler    *handlers.AnalyticsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("emocare-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.GET("/psychologists", cfg.PsychologistHandler.List)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.POST("/user/upgrade", cfg.UserHandler.Upgrade)
	// Bookings
	protected.POST("/bookings", cfg.AuthMiddleware.RequireRole(types.RoleUser), cfg.BookingHandler.Create)
	protected.GET("/bookings", cfg.BookingHandler.ListForUser)
	protected.GET("/psychologist/bookings", cfg.AuthMiddleware.RequireRole(types.RolePsychologist), cfg.BookingHandler.ListForPsychologist)
	protected.PATCH("/bookings/:id/status", cfg.BookingHandler.UpdateStatus)
	protected.POST("/bookings/:id/cancel", cfg.BookingHandler.Cancel)
	// Chat
	protected.POST("/chat/messages", cfg.ChatHandler.SendMessage)
	protected.GET("/chat/messages", cfg.ChatHandler.ListMessages)
	// Emotions
	protected.POST("/emotions", cfg.AuthMiddleware.RequireRole(types.RoleUser), cfg.EmotionHandler.Create)
	protected.GET("/emotions", cfg.EmotionHandler.List)
	protected.GET("/emotions/stats", cfg.EmotionHandler.Stats)
	// Admin
	protected.GET("/admin/analytics", cfg.AuthMiddleware.RequireRole(types.RoleAdmin), cfg.AnalyticsHandler.AdminAnalytics)

	return router
}
