package server

import (
	"net/http"

	bidding "bidding-marketplace/internal/biddingService"
	collection "bidding-marketplace/internal/collectionService"
	identity "bidding-marketplace/internal/identityService"
	handler "bidding-marketplace/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

// Services bundles the business services the routes dispatch to
type Services struct {
	Identity    *identity.IdentityService
	Collections *collection.CollectionService
	Bidding     *bidding.BiddingService
}

// RateLimit configures the per-IP limiter in front of /auth
type RateLimit struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(services Services, limit RateLimit) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(TracingMiddleware)       // server span per request
	router.Use(RequestLoggerMiddleware) // custom request logging

	authHandler := handler.NewAuthHandler(services.Identity)
	collectionHandler := handler.NewCollectionHandler(services.Collections)
	biddingHandler := handler.NewBiddingHandler(services.Bidding)

	requireAuth := AuthMiddleware(services.Identity)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	if limit.Enabled {
		auth.Use(RateLimitMiddleware(limit.RPS, limit.Burst))
	}
	{
		auth.POST("/register", authHandler.RegisterHandler)
		auth.POST("/login", authHandler.LoginHandler)
		auth.GET("/profile", requireAuth, authHandler.ProfileHandler)
	}

	users := router.Group("/users", requireAuth)
	{
		users.POST("", authHandler.CreateUserHandler)
		users.GET("", authHandler.ListUsersHandler)
		users.GET("/:id", authHandler.GetUserHandler)
		users.PATCH("/:id", authHandler.UpdateUserHandler)
		users.DELETE("/:id", authHandler.DeleteUserHandler)
	}

	collections := router.Group("/collections")
	{
		collections.GET("", collectionHandler.ListCollectionsHandler)
		collections.GET("/:id", collectionHandler.GetCollectionHandler)
		collections.POST("", requireAuth, collectionHandler.CreateCollectionHandler)
		collections.PATCH("/:id", requireAuth, collectionHandler.UpdateCollectionHandler)
		collections.DELETE("/:id", requireAuth, collectionHandler.DeleteCollectionHandler)
	}

	bids := router.Group("/bids")
	{
		bids.GET("", biddingHandler.GetBidsByCollectionHandler)
		bids.GET("/:id", biddingHandler.GetBidHandler)
		bids.POST("", requireAuth, biddingHandler.PlaceBidHandler)
		bids.PATCH("/:id", requireAuth, biddingHandler.UpdateBidHandler)
		bids.DELETE("/:id", requireAuth, biddingHandler.CancelBidHandler)
		bids.POST("/accept/:collectionId/:bidId", requireAuth, biddingHandler.AcceptBidHandler)
		bids.POST("/reject/:collectionId/:bidId", requireAuth, biddingHandler.RejectBidHandler)
	}

	return router
}
