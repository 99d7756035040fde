package main

import (
	"github.com/georgemichailidhs/meet2rent-sub001/internal/handler"
	"github.com/georgemichailidhs/meet2rent-sub001/internal/middleware"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/cache"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/config"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/database"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/gateway"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/jwtutil"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/logger"
	"github.com/georgemichailidhs/meet2rent-sub001/prometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting meet2rent service...", zap.String("environment", cfg.Server.Env))

	// Initialize database (includes migrations)
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Optional Redis cache for listing reads
	cache.InitRedis(&cfg.Redis)

	// Initialize JWT utility and handler configuration
	jwtutil.Initialize(&cfg.JWT)
	handler.InitContractHandler(cfg)
	handler.InitPaymentHandler(cfg, gateway.NewStripeGateway(&cfg.Stripe))
	handler.InitWebhookHandler(cfg)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/", handler.Hello)
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", prometheus.HandlerFunc())

	e.POST("/auth/register", handler.Register)
	e.POST("/auth/login", handler.Login)

	// Browsing listings is public
	e.GET("/properties", handler.ListProperties)
	e.GET("/properties/:id", handler.GetProperty)

	// Gateway webhooks authenticate via signature, not session
	e.POST("/webhooks/payment", handler.HandlePaymentWebhook)

	// Authenticated routes
	api := e.Group("", middleware.AuthMiddleware)

	api.POST("/properties", handler.CreateProperty)
	api.PATCH("/properties/:id", handler.UpdateProperty)

	api.POST("/bookings", handler.CreateBooking)
	api.GET("/bookings", handler.ListBookings)
	api.PATCH("/bookings/:id", handler.UpdateBooking)

	api.GET("/applications", handler.ListApplications)
	api.PATCH("/applications/:id", handler.ReviewApplication)

	api.POST("/contracts", handler.CreateContract)
	api.GET("/contracts/:id", handler.GetContract)
	api.PATCH("/contracts/:id", handler.SignContract)

	api.POST("/payments", handler.CreatePayment)
	api.POST("/subscriptions", handler.CreateSubscription)

	api.GET("/notifications", handler.ListNotifications)
	api.PATCH("/notifications/:id/read", handler.MarkNotificationRead)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
