package helpers

import (
	"time"

	model "vehicle-auction/internal/models"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	VehicleID string          `json:"vehicle_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

type CreateListingRequest struct {
	Title          string              `json:"title" binding:"required"`
	Make           string              `json:"make" binding:"required"`
	Model          string              `json:"model" binding:"required"`
	Year           int                 `json:"year" binding:"required,gte=1886"`
	ImageURLs      []string            `json:"image_urls" binding:"omitempty,dive,url"`
	AuctionEndTime time.Time           `json:"auction_end_time" binding:"required"`
	StartingBid    decimal.Decimal     `json:"starting_bid"`
	ReservePrice   decimal.NullDecimal `json:"reserve_price"`
}

func (r CreateListingRequest) Draft() model.ListingDraft {
	return model.ListingDraft{
		Title:          r.Title,
		Make:           r.Make,
		Model:          r.Model,
		Year:           r.Year,
		ImageURLs:      r.ImageURLs,
		AuctionEndTime: r.AuctionEndTime,
		ReservePrice:   r.ReservePrice,
		StartingBid:    r.StartingBid,
	}
}

// ListingResponse adds the derived bidding figures to a listing. The reserve
// price itself is never exposed.
type ListingResponse struct {
	model.Listing
	ReserveMet     bool            `json:"reserve_met"`
	MinimumNextBid decimal.Decimal `json:"minimum_next_bid"`
}

type BidTooLowData struct {
	MinimumRequired decimal.Decimal `json:"minimum_required"`
}

// WatchRequest flags default to true when omitted
type WatchRequest struct {
	NotifyOnSale *bool `json:"notify_on_sale"`
	NotifyOnBid  *bool `json:"notify_on_bid"`
}

func (r WatchRequest) Flags() (onSale, onBid bool) {
	onSale, onBid = true, true
	if r.NotifyOnSale != nil {
		onSale = *r.NotifyOnSale
	}
	if r.NotifyOnBid != nil {
		onBid = *r.NotifyOnBid
	}
	return onSale, onBid
}

type CommentRequest struct {
	Body string `json:"body" binding:"required"`
}

type ModerationRequest struct {
	Decision model.ApprovalStatus `json:"decision" binding:"required,oneof=approved declined"`
	Note     string               `json:"note"`
}
