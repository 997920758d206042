package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"vehicle-auction/internal/biddingerrors"
	model "vehicle-auction/internal/models"
)

// AdmitFunc decides whether a bid is admitted against the listing state read
// inside the store's atomic unit. It returns the bid to append, or the
// rejection.
type AdmitFunc func(listing model.Listing) (model.Bid, error)

// ListingStore holds vehicle listings
type ListingStore interface {
	CreateListing(ctx context.Context, listing model.Listing) error
	GetListing(ctx context.Context, vehicleID string) (model.Listing, error)
	UpdateApproval(ctx context.Context, vehicleID string, status model.ApprovalStatus, note string, now time.Time) (model.Listing, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]model.Listing, error)
	ListEndingBetween(ctx context.Context, from, until time.Time) ([]model.Listing, error)
	// FinalizeListing moves an expired active listing to sold or ended.
	// changed is false when the listing was already finalized or not yet expired.
	FinalizeListing(ctx context.Context, vehicleID string, now time.Time, enforceReserve bool) (listing model.Listing, changed bool, err error)
}

// BidLedger is the append-only bid record
type BidLedger interface {
	// AdmitBid runs admit and, when it succeeds, appends the bid and updates
	// current_bid, bid_count and high_bidder_id as one atomic unit per listing.
	AdmitBid(ctx context.Context, vehicleID string, admit AdmitFunc) (model.Listing, model.Bid, error)
	GetBidsByListing(ctx context.Context, vehicleID string) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, vehicleID string) (model.Bid, error)
	GetListingsByBidder(ctx context.Context, bidderID string) ([]model.Listing, error)
}

// AuctionDB defines the listing and bid storage used by the auction engine
type AuctionDB interface {
	ListingStore
	BidLedger
}

// WatchStore holds watch registrations
type WatchStore interface {
	UpsertWatch(ctx context.Context, watch model.Watch) (model.Watch, error)
	DeleteWatch(ctx context.Context, userID, vehicleID string) error
	GetWatchers(ctx context.Context, vehicleID string) ([]model.Watch, error)
	GetWatchesByUser(ctx context.Context, userID string) ([]model.Watch, error)
}

// NotificationStore holds per-user notifications
type NotificationStore interface {
	// CreateNotification returns false without error when a notification with
	// the same dedup key already exists.
	CreateNotification(ctx context.Context, n model.Notification) (bool, error)
	GetNotificationsByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) (model.Notification, error)
}

// CommentStore holds listing comments
type CommentStore interface {
	CreateComment(ctx context.Context, comment model.Comment) error
	GetComment(ctx context.Context, commentID string) (model.Comment, error)
	GetCommentsByListing(ctx context.Context, vehicleID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, commentID string) error
}

// Store is the full persistence surface of the service
type Store interface {
	AuctionDB
	WatchStore
	NotificationStore
	CommentStore
}

// MemoryRepo is a concurrency-safe in-memory implementation of Store.
// Bid admission is serialized per listing; reads only take the map lock.
type MemoryRepo struct {
	mu             sync.RWMutex
	listings       map[string]model.Listing          // key: vehicleID
	bids           map[string][]model.Bid            // key: vehicleID -> bids in admission order
	bidderListings map[string][]string               // key: bidderID -> vehicleIDs bid on
	watches        map[string]map[string]model.Watch // key: vehicleID -> userID -> watch
	notifications  map[string][]model.Notification   // key: userID
	dedupKeys      map[string]struct{}
	comments       map[string]model.Comment // key: commentID

	listingLocks sync.Map // vehicleID -> *sync.Mutex
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		listings:       make(map[string]model.Listing),
		bids:           make(map[string][]model.Bid),
		bidderListings: make(map[string][]string),
		watches:        make(map[string]map[string]model.Watch),
		notifications:  make(map[string][]model.Notification),
		dedupKeys:      make(map[string]struct{}),
		comments:       make(map[string]model.Comment),
	}
}

func (r *MemoryRepo) lockListing(vehicleID string) func() {
	v, _ := r.listingLocks.LoadOrStore(vehicleID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// CreateListing stores a new listing
func (r *MemoryRepo) CreateListing(ctx context.Context, listing model.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.listings[listing.ID]; exists {
		return fmt.Errorf("create listing %s: %w - duplicate id", listing.ID, biddingerrors.ErrInvalidListing)
	}
	r.listings[listing.ID] = cloneListing(listing)
	return nil
}

// GetListing returns a listing by id
func (r *MemoryRepo) GetListing(ctx context.Context, vehicleID string) (model.Listing, error) {
	if err := ctx.Err(); err != nil {
		return model.Listing{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[vehicleID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", vehicleID, biddingerrors.ErrListingNotFound)
	}
	return cloneListing(listing), nil
}

// UpdateApproval sets the moderation state of a listing
func (r *MemoryRepo) UpdateApproval(ctx context.Context, vehicleID string, status model.ApprovalStatus, note string, now time.Time) (model.Listing, error) {
	unlock := r.lockListing(vehicleID)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return model.Listing{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[vehicleID]
	if !ok {
		return model.Listing{}, fmt.Errorf("update approval for listing %s: %w", vehicleID, biddingerrors.ErrListingNotFound)
	}
	listing.ApprovalStatus = status
	listing.ModerationNote = note
	listing.Version++
	listing.UpdatedAt = now
	r.listings[vehicleID] = listing
	return cloneListing(listing), nil
}

// ListExpiredActive returns active listings whose end time is at or before now
func (r *MemoryRepo) ListExpiredActive(ctx context.Context, now time.Time) ([]model.Listing, error) {
	return r.filterListings(ctx, func(l model.Listing) bool {
		return l.Status == model.StatusActive && !now.Before(l.AuctionEndTime)
	})
}

// ListEndingBetween returns active listings ending in (from, until]
func (r *MemoryRepo) ListEndingBetween(ctx context.Context, from, until time.Time) ([]model.Listing, error) {
	return r.filterListings(ctx, func(l model.Listing) bool {
		return l.Status == model.StatusActive && l.AuctionEndTime.After(from) && !l.AuctionEndTime.After(until)
	})
}

func (r *MemoryRepo) filterListings(ctx context.Context, keep func(model.Listing) bool) ([]model.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Listing
	for _, l := range r.listings {
		if keep(l) {
			out = append(out, cloneListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AuctionEndTime.Before(out[j].AuctionEndTime) })
	return out, nil
}

// FinalizeListing settles an expired active listing; finalized listings are left untouched
func (r *MemoryRepo) FinalizeListing(ctx context.Context, vehicleID string, now time.Time, enforceReserve bool) (model.Listing, bool, error) {
	unlock := r.lockListing(vehicleID)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return model.Listing{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[vehicleID]
	if !ok {
		return model.Listing{}, false, fmt.Errorf("finalize listing %s: %w", vehicleID, biddingerrors.ErrListingNotFound)
	}
	if listing.Status != model.StatusActive || now.Before(listing.AuctionEndTime) {
		return cloneListing(listing), false, nil
	}

	listing.Status = listing.FinalStatus(enforceReserve)
	listing.Version++
	listing.UpdatedAt = now
	r.listings[vehicleID] = listing
	return cloneListing(listing), true, nil
}

// AdmitBid applies admit under the listing lock and records the bid
func (r *MemoryRepo) AdmitBid(ctx context.Context, vehicleID string, admit AdmitFunc) (model.Listing, model.Bid, error) {
	unlock := r.lockListing(vehicleID)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return model.Listing{}, model.Bid{}, err
	}

	r.mu.RLock()
	listing, ok := r.listings[vehicleID]
	r.mu.RUnlock()
	if !ok {
		return model.Listing{}, model.Bid{}, fmt.Errorf("admit bid for listing %s: %w", vehicleID, biddingerrors.ErrListingNotFound)
	}

	bid, err := admit(cloneListing(listing))
	if err != nil {
		return model.Listing{}, model.Bid{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.listings[vehicleID]
	if current.Version != listing.Version {
		return model.Listing{}, model.Bid{}, fmt.Errorf("admit bid for listing %s: %w", vehicleID, biddingerrors.ErrConcurrentModification)
	}

	current.CurrentBid = bid.Amount
	current.BidCount++
	current.HighBidderID = bid.BidderID
	current.Version++
	current.UpdatedAt = bid.CreatedAt
	r.listings[vehicleID] = current
	r.bids[vehicleID] = append(r.bids[vehicleID], bid)

	for _, id := range r.bidderListings[bid.BidderID] {
		if id == vehicleID {
			return cloneListing(current), bid, nil
		}
	}
	r.bidderListings[bid.BidderID] = append(r.bidderListings[bid.BidderID], vehicleID)

	return cloneListing(current), bid, nil
}

// GetBidsByListing returns all bids for a listing in admission order
func (r *MemoryRepo) GetBidsByListing(ctx context.Context, vehicleID string) ([]model.Bid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[vehicleID]; !ok {
		return nil, fmt.Errorf("get bids for listing %s: %w", vehicleID, biddingerrors.ErrListingNotFound)
	}
	bids := r.bids[vehicleID]
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for listing %s: %w", vehicleID, biddingerrors.ErrNoBids)
	}
	return append([]model.Bid(nil), bids...), nil
}

// GetWinningBid returns the highest bid for a listing
func (r *MemoryRepo) GetWinningBid(ctx context.Context, vehicleID string) (model.Bid, error) {
	if err := ctx.Err(); err != nil {
		return model.Bid{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[vehicleID]; !ok {
		return model.Bid{}, fmt.Errorf("get winning bid for listing %s: %w", vehicleID, biddingerrors.ErrListingNotFound)
	}
	bids := r.bids[vehicleID]
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get winning bid for listing %s: %w", vehicleID, biddingerrors.ErrNoBids)
	}

	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount.GreaterThan(winning.Amount) || (b.Amount.Equal(winning.Amount) && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
		}
	}
	return winning, nil
}

// GetListingsByBidder returns all listings a user has bid on
func (r *MemoryRepo) GetListingsByBidder(ctx context.Context, bidderID string) ([]model.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	vehicleIDs, ok := r.bidderListings[bidderID]
	if !ok || len(vehicleIDs) == 0 {
		return nil, fmt.Errorf("get listings for bidder %s: %w", bidderID, biddingerrors.ErrUserNoBids)
	}

	listings := make([]model.Listing, 0, len(vehicleIDs))
	for _, id := range vehicleIDs {
		if l, exists := r.listings[id]; exists {
			listings = append(listings, cloneListing(l))
		}
	}
	return listings, nil
}

func cloneListing(l model.Listing) model.Listing {
	l.ImageURLs = append([]string(nil), l.ImageURLs...)
	return l
}
