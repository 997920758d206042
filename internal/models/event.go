package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType names a state change on a listing
type EventType string

const (
	EventAuctionEnding EventType = "auction_ending"
	EventAuctionEnded  EventType = "auction_ended"
	EventNewBid        EventType = "new_bid"
	EventNewComment    EventType = "new_comment"
	EventOutbid        EventType = "outbid"
)

// Deduplicated reports whether at most one notification per user and listing
// may exist for the event type.
func (t EventType) Deduplicated() bool {
	return t == EventAuctionEnding || t == EventAuctionEnded
}

// DedupKey builds the (user, vehicle, type) key for lifecycle notifications
func DedupKey(userID, vehicleID string, t EventType) string {
	return userID + ":" + vehicleID + ":" + string(t)
}

// Event is published to real-time subscribers of a listing
type Event struct {
	Type       EventType       `json:"type"`
	VehicleID  string          `json:"vehicle_id"`
	ActorID    string          `json:"actor_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	BidCount   int             `json:"bid_count"`
	Status     ListingStatus   `json:"status"`
	OccurredAt time.Time       `json:"occurred_at"`
}
