package server

import (
	"net/http"

	"vehicle-auction/internal/events"
	handler "vehicle-auction/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

// Dependencies are the services the HTTP API is built on
type Dependencies struct {
	Bidding    handler.BiddingServiceInterface
	Engagement handler.EngagementServiceInterface
	Moderation handler.ModerationGateInterface
	Events     events.Subscriber
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery()) // recover from panics
	router.Use(IdentityMiddleware)
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(deps.Bidding)
	engagementHandler := handler.NewEngagementHandler(deps.Engagement)
	moderationHandler := handler.NewModerationHandler(deps.Moderation)
	streamHandler := handler.NewStreamHandler(deps.Bidding, deps.Events)

	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	bids := router.Group("/bids")
	{
		bids.POST("", biddingHandler.RecordBidHandler)
	}

	listings := router.Group("/listings")
	{
		listings.POST("", biddingHandler.CreateListingHandler)
		listings.GET("/:vehicle_id", biddingHandler.GetListingHandler)
		listings.GET("/:vehicle_id/bids", biddingHandler.GetBidsByListingHandler)
		listings.GET("/:vehicle_id/winning", biddingHandler.GetWinningBidHandler)
		listings.GET("/:vehicle_id/events", streamHandler.ListingEventsHandler)

		listings.PUT("/:vehicle_id/watch", engagementHandler.WatchHandler)
		listings.DELETE("/:vehicle_id/watch", engagementHandler.UnwatchHandler)
		listings.GET("/:vehicle_id/comments", engagementHandler.ListCommentsHandler)
		listings.POST("/:vehicle_id/comments", engagementHandler.PostCommentHandler)
	}

	router.DELETE("/comments/:comment_id", engagementHandler.DeleteCommentHandler)

	users := router.Group("/users")
	{
		users.GET("/:user_id/listings", biddingHandler.GetListingsByUserHandler)
	}

	me := router.Group("/me")
	{
		me.GET("/watches", engagementHandler.ListWatchesHandler)
		me.GET("/notifications", engagementHandler.ListNotificationsHandler)
		me.POST("/notifications/:notification_id/read", engagementHandler.MarkNotificationReadHandler)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/listings/:vehicle_id/moderation", moderationHandler.DecideHandler)
	}

	return router
}
