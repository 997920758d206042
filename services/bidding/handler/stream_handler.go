package handler

import (
	"io"
	"time"

	"vehicle-auction/internal/events"
	"vehicle-auction/services/bidding/helpers"
	"vehicle-auction/utils"

	"github.com/gin-gonic/gin"
)

const streamKeepAlive = 15 * time.Second

type StreamHandler struct {
	listings   BiddingServiceInterface
	subscriber events.Subscriber
	keepAlive  time.Duration
}

func NewStreamHandler(listings BiddingServiceInterface, subscriber events.Subscriber) *StreamHandler {
	return &StreamHandler{listings: listings, subscriber: subscriber, keepAlive: streamKeepAlive}
}

// ListingEventsHandler handles GET /listings/:vehicle_id/events as a
// server-sent event stream. The first event is a "listing" snapshot; live
// events follow until the client disconnects.
func (h *StreamHandler) ListingEventsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	vehicleID := c.Param("vehicle_id")

	listing, err := h.listings.GetListing(ctx, vehicleID)
	if err != nil {
		helpers.RespondError(c, err)
		return
	}

	stream, err := h.subscriber.Subscribe(ctx, vehicleID)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Error("ListingEventsHandler: subscribe failed", map[string]any{"vehicle_id": vehicleID, "error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("listing", listingResponse(listing))
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	utils.Debug("ListingEventsHandler: stream opened", map[string]any{"vehicle_id": vehicleID})
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case e, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent(string(e.Type), e)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
	utils.Debug("ListingEventsHandler: stream closed", map[string]any{"vehicle_id": vehicleID})
}
