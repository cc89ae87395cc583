package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/emocare/emocare-backend/internal/chatbot"
	"github.com/emocare/emocare-backend/internal/db"
	"github.com/emocare/emocare-backend/internal/handlers"
	"github.com/emocare/emocare-backend/internal/logger"
	"github.com/emocare/emocare-backend/internal/middleware"
	"github.com/emocare/emocare-backend/internal/observability"
	"github.com/emocare/emocare-backend/internal/repos"
	"github.com/emocare/emocare-backend/internal/server"
	"github.com/emocare/emocare-backend/internal/services"
	"github.com/emocare/emocare-backend/internal/utils"

	redisclient "github.com/emocare/emocare-backend/internal/clients/redis"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	chatbotConfigPath := utils.GetEnv("CHATBOT_CONFIG", "configs/chatbot.yaml", log)

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "emocare-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	bookingRepo := repos.NewBookingRepo(thePG, log)
	emotionEntryRepo := repos.NewEmotionEntryRepo(thePG, log)
	chatMessageRepo := repos.NewChatMessageRepo(thePG, log)

	// Chatbot
	log.Info("Loading chatbot rules from main...")
	chatbotConfig, err := chatbot.LoadConfig(chatbotConfigPath, log)
	if err != nil {
		log.Error("Could not load chatbot config", "error", err)
		os.Exit(1)
	}
	freeResponder := chatbot.NewFreeResponder(chatbotConfig)
	goldResponder := chatbot.NewGoldResponder(chatbotConfig)

	// Usage counter, redis with in-memory fallback
	var usageCounter services.UsageCounter
	redisCounter, err := redisclient.NewUsageCounter(log)
	if err != nil {
		log.Warn("Redis usage counter unavailable, using in-memory counter", "error", err)
		usageCounter = services.NewMemoryUsageCounter()
	} else {
		defer redisCounter.Close()
		usageCounter = redisCounter
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	bookingService := services.NewBookingService(thePG, log, bookingRepo, userRepo)
	chatService := services.NewChatService(thePG, log, chatMessageRepo, freeResponder, goldResponder, chatbotConfig, usageCounter)
	emotionService := services.NewEmotionService(thePG, log, emotionEntryRepo)
	analyticsService := services.NewAnalyticsService(thePG, log, userRepo, bookingRepo, emotionEntryRepo, chatMessageRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	psychologistHandler := handlers.NewPsychologistHandler(userService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	chatHandler := handlers.NewChatHandler(chatService)
	emotionHandler := handlers.NewEmotionHandler(emotionService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:         authHandler,
		AuthMiddleware:      authMiddleware,
		UserHandler:         userHandler,
		PsychologistHandler: psychologistHandler,
		BookingHandler:      bookingHandler,
		ChatHandler:         chatHandler,
		EmotionHandler:      emotionHandler,
		AnalyticsHandler:    analyticsHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server failed", "error", err)
	}
}
