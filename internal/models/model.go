package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

func init() {
	// amounts are rendered as JSON numbers, matching what clients send
	decimal.MarshalJSONWithoutQuotes = true
}

// ListingStatus is the lifecycle state of a listing. It only moves forward.
type ListingStatus string

const (
	StatusActive ListingStatus = "active"
	StatusEnded  ListingStatus = "ended"
	StatusSold   ListingStatus = "sold"
)

// ApprovalStatus is the moderation state of a listing
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalDeclined ApprovalStatus = "declined"
)

// Listing represents a vehicle auction record
type Listing struct {
	bun.BaseModel `bun:"table:listings,alias:l"`

	ID             string              `bun:"id,pk" json:"id"`
	SellerID       string              `bun:"seller_id,notnull" json:"seller_id"`
	Title          string              `bun:"title" json:"title"`
	Make           string              `bun:"make" json:"make"`
	Model          string              `bun:"model" json:"model"`
	Year           int                 `bun:"year" json:"year"`
	ImageURLs      []string            `bun:"image_urls,array" json:"image_urls"`
	AuctionEndTime time.Time           `bun:"auction_end_time,notnull" json:"auction_end_time"`
	ReservePrice   decimal.NullDecimal `bun:"reserve_price,type:numeric(14,2)" json:"-"`
	StartingBid    decimal.Decimal     `bun:"starting_bid,type:numeric(14,2),notnull" json:"starting_bid"`
	CurrentBid     decimal.Decimal     `bun:"current_bid,type:numeric(14,2),notnull" json:"current_bid"`
	BidCount       int                 `bun:"bid_count,notnull,default:0" json:"bid_count"`
	HighBidderID   string              `bun:"high_bidder_id" json:"high_bidder_id,omitempty"`
	Status         ListingStatus       `bun:"status,notnull" json:"status"`
	ApprovalStatus ApprovalStatus      `bun:"approval_status,notnull" json:"approval_status"`
	ModerationNote string              `bun:"moderation_note" json:"moderation_note,omitempty"`
	Version        int64               `bun:"version,notnull,default:1" json:"-"`
	CreatedAt      time.Time           `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time           `bun:"updated_at,notnull" json:"updated_at"`
}

// IsOpen reports whether the auction window is still running at now
func (l Listing) IsOpen(now time.Time) bool {
	return l.Status == StatusActive && now.Before(l.AuctionEndTime)
}

// IsBiddable reports whether the listing accepts bids at now
func (l Listing) IsBiddable(now time.Time) bool {
	return l.ApprovalStatus == ApprovalApproved && l.IsOpen(now)
}

// ReserveMet reports whether the current bid reaches the reserve price.
// Listings without a reserve always meet it.
func (l Listing) ReserveMet() bool {
	if !l.ReservePrice.Valid {
		return true
	}
	return l.BidCount > 0 && l.CurrentBid.GreaterThanOrEqual(l.ReservePrice.Decimal)
}

// FinalStatus returns the status an expired listing settles into
func (l Listing) FinalStatus(enforceReserve bool) ListingStatus {
	if l.BidCount == 0 {
		return StatusEnded
	}
	if enforceReserve && !l.ReserveMet() {
		return StatusEnded
	}
	return StatusSold
}

// DisplayName is the human readable name used in notifications
func (l Listing) DisplayName() string {
	if l.Title != "" {
		return l.Title
	}
	name := strings.TrimSpace(fmt.Sprintf("%s %s", l.Make, l.Model))
	if l.Year > 0 {
		name = fmt.Sprintf("%d %s", l.Year, name)
	}
	if name == "" {
		return l.ID
	}
	return name
}

// ListingDraft carries the seller supplied fields of a new listing
type ListingDraft struct {
	Title          string
	Make           string
	Model          string
	Year           int
	ImageURLs      []string
	AuctionEndTime time.Time
	ReservePrice   decimal.NullDecimal
	StartingBid    decimal.Decimal
}

// Bid represents an admitted bid. Bids are never updated or deleted.
type Bid struct {
	bun.BaseModel `bun:"table:bids,alias:b"`

	ID        string          `bun:"id,pk" json:"bid_id"`
	VehicleID string          `bun:"vehicle_id,notnull" json:"vehicle_id"`
	BidderID  string          `bun:"bidder_id,notnull" json:"bidder_id"`
	Amount    decimal.Decimal `bun:"amount,type:numeric(14,2),notnull" json:"amount"`
	CreatedAt time.Time       `bun:"created_at,notnull" json:"created_at"`
}

// BidResult is returned for an admitted bid
type BidResult struct {
	Bid           Bid             `json:"bid"`
	NewCurrentBid decimal.Decimal `json:"new_current_bid"`
	NewBidCount   int             `json:"new_bid_count"`
}

// Watch registers a user's interest in a listing
type Watch struct {
	bun.BaseModel `bun:"table:watches,alias:w"`

	UserID       string    `bun:"user_id,pk" json:"user_id"`
	VehicleID    string    `bun:"vehicle_id,pk" json:"vehicle_id"`
	NotifyOnSale bool      `bun:"notify_on_sale,notnull" json:"notify_on_sale"`
	NotifyOnBid  bool      `bun:"notify_on_bid,notnull" json:"notify_on_bid"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Notification is a per-user message produced by fan-out
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        string    `bun:"id,pk" json:"id"`
	UserID    string    `bun:"user_id,notnull" json:"user_id"`
	VehicleID string    `bun:"vehicle_id,notnull" json:"vehicle_id"`
	Type      EventType `bun:"type,notnull" json:"type"`
	Message   string    `bun:"message,notnull" json:"message"`
	IsRead    bool      `bun:"is_read,notnull,default:false" json:"is_read"`
	DedupKey  string    `bun:"dedup_key,nullzero,unique" json:"-"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Comment is a public message on a listing
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c"`

	ID        string    `bun:"id,pk" json:"id"`
	VehicleID string    `bun:"vehicle_id,notnull" json:"vehicle_id"`
	AuthorID  string    `bun:"author_id,notnull" json:"author_id"`
	Body      string    `bun:"body,notnull" json:"body"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
