package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"tanapark/internal/handler"
	"tanapark/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	VehicleHandler *handler.VehicleHandler
	PaymentHandler *handler.PaymentHandler
	PricingHandler *handler.PricingHandler
	ValetHandler   *handler.ValetHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Vehicle routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("", deps.VehicleHandler.CheckIn)
			vehicles.GET("", deps.VehicleHandler.ListVehicles)
			vehicles.GET("/:id", deps.VehicleHandler.GetVehicle)
			vehicles.GET("/:id/fee", deps.PaymentHandler.QuoteFee)
			vehicles.POST("/:id/checkout", deps.PaymentHandler.ManualCheckout)
			vehicles.POST("/:id/checkout/initialize", deps.PaymentHandler.InitiateHourlyCheckout)
			vehicles.POST("/:id/flag", deps.VehicleHandler.FlagVehicle)
			vehicles.POST("/:id/unflag", deps.VehicleHandler.UnflagVehicle)
		}

		// Package registration routes.
		packages := v1.Group("/packages")
		{
			packages.POST("/initialize", deps.PaymentHandler.InitiatePackageRegistration)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("/:txRef/verify", deps.PaymentHandler.VerifyPayment)
		}

		// Pricing routes.
		pricing := v1.Group("/pricing")
		{
			pricing.GET("", deps.PricingHandler.GetPricing)
			pricing.PUT("", deps.PricingHandler.SavePricing)
		}

		// Valet routes.
		valets := v1.Group("/valets")
		{
			valets.POST("", deps.ValetHandler.Register)
			valets.GET("", deps.ValetHandler.GetAll)
		}
	}

	return router
}
