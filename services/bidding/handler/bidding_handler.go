package handler

import (
	"context"
	"errors"
	"net/http"

	bidding "vehicle-auction/internal/biddingService"
	"vehicle-auction/internal/biddingerrors"
	model "vehicle-auction/internal/models"
	"vehicle-auction/services/bidding/helpers"
	"vehicle-auction/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, vehicleID, bidderID string, amount decimal.Decimal) (model.BidResult, error)
	CreateListing(ctx context.Context, sellerID string, draft model.ListingDraft) (model.Listing, error)
	GetListing(ctx context.Context, vehicleID string) (model.Listing, error)
	GetBidsForListing(ctx context.Context, vehicleID string) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, vehicleID string) (model.Bid, error)
	GetListingsByBidder(ctx context.Context, bidderID string) ([]model.Listing, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

func listingResponse(l model.Listing) helpers.ListingResponse {
	return helpers.ListingResponse{
		Listing:        l,
		ReserveMet:     l.ReserveMet(),
		MinimumNextBid: bidding.MinimumNextBid(l),
	}
}

// RecordBidHandler handles POST /bids
func (h *BiddingHandler) RecordBidHandler(c *gin.Context) {
	bidderID, ok := helpers.RequireUser(c, "RecordBidHandler")
	if !ok {
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}

	result, err := h.service.PlaceBid(c.Request.Context(), req.VehicleID, bidderID, req.Amount)
	if err != nil {
		status := helpers.RespondError(c, err)
		fields := map[string]any{
			"handler":    "RecordBidHandler",
			"vehicle_id": req.VehicleID,
			"bidder_id":  bidderID,
			"amount":     req.Amount.String(),
			"error":      err.Error(),
		}
		if status >= http.StatusInternalServerError {
			utils.Error("RecordBidHandler: failed to record bid", fields)
		} else {
			utils.Info("RecordBidHandler: bid rejected", fields)
		}
		return
	}

	utils.JSONResponse(c, http.StatusCreated, result, "bid recorded successfully")
	helpers.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     result.Bid.ID,
		"vehicle_id": req.VehicleID,
		"bidder_id":  bidderID,
		"amount":     req.Amount.String(),
		"bid_count":  result.NewBidCount,
	})
}

// CreateListingHandler handles POST /listings
func (h *BiddingHandler) CreateListingHandler(c *gin.Context) {
	sellerID, ok := helpers.RequireUser(c, "CreateListingHandler")
	if !ok {
		return
	}

	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	listing, err := h.service.CreateListing(c.Request.Context(), sellerID, req.Draft())
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("CreateListingHandler: failed to create listing", map[string]any{"seller_id": sellerID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, listingResponse(listing), "listing submitted for approval")
	helpers.LogSuccess("CreateListingHandler", "listing created", map[string]any{"vehicle_id": listing.ID, "seller_id": sellerID})
}

// GetListingHandler handles GET /listings/:vehicle_id
func (h *BiddingHandler) GetListingHandler(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")
	listing, err := h.service.GetListing(c.Request.Context(), vehicleID)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("GetListingHandler: error retrieving listing", map[string]any{"vehicle_id": vehicleID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, listingResponse(listing), "listing retrieved successfully")
}

// GetBidsByListingHandler handles GET /listings/:vehicle_id/bids
func (h *BiddingHandler) GetBidsByListingHandler(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")
	bids, err := h.service.GetBidsForListing(c.Request.Context(), vehicleID)
	if err != nil && !errors.Is(err, biddingerrors.ErrNoBids) {
		helpers.RespondError(c, err)
		utils.Warn("GetBidsByListingHandler: error retrieving bids", map[string]any{"vehicle_id": vehicleID, "error": err.Error()})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByListingHandler", "bids retrieved successfully", map[string]any{
		"vehicle_id": vehicleID,
		"count":      len(bids),
	})
}

// GetWinningBidHandler handles GET /listings/:vehicle_id/winning
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")
	bid, err := h.service.GetWinningBid(c.Request.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no winning bid found")
			utils.Info("GetWinningBidHandler: no winning bid found", map[string]any{"vehicle_id": vehicleID})
			return
		}
		helpers.RespondError(c, err)
		utils.Warn("GetWinningBidHandler: winning bid error", map[string]any{"vehicle_id": vehicleID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bid, "winning bid retrieved successfully")
}

// GetListingsByUserHandler handles GET /users/:user_id/listings
func (h *BiddingHandler) GetListingsByUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	listings, err := h.service.GetListingsByBidder(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, biddingerrors.ErrUserNoBids) {
		helpers.RespondError(c, err)
		utils.Warn("GetListingsByUserHandler: error retrieving listings", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	resp := make([]helpers.ListingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, listingResponse(l))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "listings retrieved successfully")
	helpers.LogSuccess("GetListingsByUserHandler", "listings retrieved successfully", map[string]any{
		"user_id":        userID,
		"listings_count": len(resp),
	})
}
