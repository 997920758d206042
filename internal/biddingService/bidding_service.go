package bidding

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"vehicle-auction/internal/biddingerrors"
	"vehicle-auction/internal/clock"
	"vehicle-auction/internal/events"
	"vehicle-auction/internal/identity"
	"vehicle-auction/internal/models"
	"vehicle-auction/internal/notification"
	"vehicle-auction/internal/repository"
	"vehicle-auction/utils"
)

const (
	// MinIncrement is the smallest raise over the current bid
	MinIncrement = 100
	// MinFirstBid is the floor for the first bid when the starting bid is lower
	MinFirstBid = 100

	maxAdmitAttempts = 3
)

var (
	minIncrement = decimal.NewFromInt(MinIncrement)
	minFirstBid  = decimal.NewFromInt(MinFirstBid)
)

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo      repository.AuctionDB
	clock     clock.Clock
	admins    identity.Directory
	publisher events.Publisher
	notifier  notification.Notifier
}

// Option configures a BiddingService
type Option func(*BiddingService)

func WithClock(c clock.Clock) Option {
	return func(s *BiddingService) { s.clock = c }
}

func WithAdminDirectory(d identity.Directory) Option {
	return func(s *BiddingService) { s.admins = d }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *BiddingService) { s.publisher = p }
}

func WithNotifier(n notification.Notifier) Option {
	return func(s *BiddingService) { s.notifier = n }
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, opts ...Option) *BiddingService {
	s := &BiddingService{
		repo:      repo,
		clock:     clock.SystemClock{},
		admins:    identity.NewStaticDirectory(),
		publisher: events.NopPublisher{},
		notifier:  notification.NopNotifier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MinimumNextBid is the smallest amount the listing would currently admit
func MinimumNextBid(listing models.Listing) decimal.Decimal {
	if listing.CurrentBid.GreaterThan(decimal.Zero) {
		return listing.CurrentBid.Add(minIncrement)
	}
	return decimal.Max(listing.StartingBid, minFirstBid)
}

// PlaceBid validates and atomically admits a bid. On a context error the
// outcome is unknown: the bid may have committed and callers must re-read the
// listing before retrying.
func (s *BiddingService) PlaceBid(ctx context.Context, vehicleID, bidderID string, amount decimal.Decimal) (models.BidResult, error) {
	if err := validateBid(vehicleID, bidderID, amount); err != nil {
		return models.BidResult{}, err
	}

	isAdmin, err := s.admins.IsAdmin(ctx, bidderID)
	if err != nil {
		return models.BidResult{}, fmt.Errorf("service: resolve role of bidder %s: %w: %w", bidderID, biddingerrors.ErrStorageUnavailable, err)
	}

	var previousHighBidder string
	admit := func(listing models.Listing) (models.Bid, error) {
		if err := s.checkAdmission(listing, bidderID, isAdmin, amount); err != nil {
			return models.Bid{}, err
		}
		previousHighBidder = listing.HighBidderID
		return models.Bid{
			ID:        utils.GenerateID(),
			VehicleID: listing.ID,
			BidderID:  bidderID,
			Amount:    amount,
			CreatedAt: s.clock.Now(),
		}, nil
	}

	var (
		listing models.Listing
		bid     models.Bid
	)
	for attempt := 1; ; attempt++ {
		listing, bid, err = s.repo.AdmitBid(ctx, vehicleID, admit)
		if err == nil {
			break
		}
		if errors.Is(err, biddingerrors.ErrConcurrentModification) && attempt < maxAdmitAttempts {
			utils.Warn("service: concurrent modification, retrying bid", map[string]any{
				"vehicle_id": vehicleID,
				"bidder_id":  bidderID,
				"attempt":    attempt,
			})
			continue
		}
		return models.BidResult{}, classifyAdmitError(vehicleID, bidderID, attempt, err)
	}

	s.afterAdmit(ctx, listing, bid, previousHighBidder)

	return models.BidResult{
		Bid:           bid,
		NewCurrentBid: listing.CurrentBid,
		NewBidCount:   listing.BidCount,
	}, nil
}

func validateBid(vehicleID, bidderID string, amount decimal.Decimal) error {
	if vehicleID == "" || bidderID == "" {
		return fmt.Errorf("service: %w - missing vehicleID or bidderID", biddingerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("service: %w - amount has more than two decimal places", biddingerrors.ErrInvalidBid)
	}
	return nil
}

// checkAdmission applies the admission rules in order; the first failure wins
func (s *BiddingService) checkAdmission(listing models.Listing, bidderID string, isAdmin bool, amount decimal.Decimal) error {
	switch {
	case listing.ApprovalStatus != models.ApprovalApproved:
		return biddingerrors.ErrNotApproved
	case !listing.IsOpen(s.clock.Now()):
		return biddingerrors.ErrAuctionEnded
	case bidderID == listing.SellerID:
		return biddingerrors.ErrSelfBidForbidden
	case isAdmin:
		return biddingerrors.ErrAdminCannotBid
	}

	if minimum := MinimumNextBid(listing); amount.LessThan(minimum) {
		return &biddingerrors.BidTooLowError{MinimumRequired: minimum}
	}
	return nil
}

func classifyAdmitError(vehicleID, bidderID string, attempts int, err error) error {
	switch {
	case biddingerrors.IsAdmissionError(err):
		return fmt.Errorf("service: bid on listing %s by %s rejected: %w", vehicleID, bidderID, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("service: bid on listing %s by %s has unknown outcome: %w", vehicleID, bidderID, err)
	case errors.Is(err, biddingerrors.ErrConcurrentModification):
		return fmt.Errorf("service: bid on listing %s gave up after %d attempts: %w: %w", vehicleID, attempts, biddingerrors.ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("service: failed to record bid on listing %s by %s: %w: %w", vehicleID, bidderID, biddingerrors.ErrStorageUnavailable, err)
	}
}

// afterAdmit runs the post-commit side effects. They are best-effort and
// detached from the request's cancellation.
func (s *BiddingService) afterAdmit(ctx context.Context, listing models.Listing, bid models.Bid, previousHighBidder string) {
	ctx = context.WithoutCancel(ctx)

	event := models.Event{
		Type:       models.EventNewBid,
		VehicleID:  listing.ID,
		ActorID:    bid.BidderID,
		Amount:     bid.Amount,
		BidCount:   listing.BidCount,
		Status:     listing.Status,
		OccurredAt: bid.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		utils.Warn("service: failed to publish bid event", map[string]any{
			"vehicle_id": listing.ID,
			"bid_id":     bid.ID,
			"error":      err.Error(),
		})
	}

	payload := notification.Payload{ActorID: bid.BidderID, Listing: listing, Amount: bid.Amount}
	if _, err := s.notifier.Notify(ctx, listing.ID, models.EventNewBid, payload); err != nil {
		utils.Warn("service: bid notification fan-out failed", map[string]any{
			"vehicle_id": listing.ID,
			"error":      err.Error(),
		})
	}

	if previousHighBidder != "" && previousHighBidder != bid.BidderID {
		payload.Recipients = []string{previousHighBidder}
		if _, err := s.notifier.Notify(ctx, listing.ID, models.EventOutbid, payload); err != nil {
			utils.Warn("service: outbid notification failed", map[string]any{
				"vehicle_id": listing.ID,
				"user_id":    previousHighBidder,
				"error":      err.Error(),
			})
		}
	}
}

// GetListing returns a listing by id
func (s *BiddingService) GetListing(ctx context.Context, vehicleID string) (models.Listing, error) {
	if vehicleID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - empty vehicle ID", biddingerrors.ErrInvalidBid)
	}

	listing, err := s.repo.GetListing(ctx, vehicleID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to get listing %s: %w", vehicleID, err)
	}
	return listing, nil
}

// CreateListing stores a new listing awaiting moderation
func (s *BiddingService) CreateListing(ctx context.Context, sellerID string, draft models.ListingDraft) (models.Listing, error) {
	now := s.clock.Now()
	switch {
	case sellerID == "":
		return models.Listing{}, fmt.Errorf("service: %w - missing seller", biddingerrors.ErrInvalidListing)
	case !draft.AuctionEndTime.After(now):
		return models.Listing{}, fmt.Errorf("service: %w - auction end time must be in the future", biddingerrors.ErrInvalidListing)
	case draft.StartingBid.IsNegative():
		return models.Listing{}, fmt.Errorf("service: %w - negative starting bid", biddingerrors.ErrInvalidListing)
	case draft.ReservePrice.Valid && draft.ReservePrice.Decimal.IsNegative():
		return models.Listing{}, fmt.Errorf("service: %w - negative reserve price", biddingerrors.ErrInvalidListing)
	}

	listing := models.Listing{
		ID:             utils.GenerateID(),
		SellerID:       sellerID,
		Title:          draft.Title,
		Make:           draft.Make,
		Model:          draft.Model,
		Year:           draft.Year,
		ImageURLs:      draft.ImageURLs,
		AuctionEndTime: draft.AuctionEndTime.UTC(),
		ReservePrice:   draft.ReservePrice,
		StartingBid:    draft.StartingBid,
		CurrentBid:     decimal.Zero,
		Status:         models.StatusActive,
		ApprovalStatus: models.ApprovalPending,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if listing.ImageURLs == nil {
		listing.ImageURLs = []string{}
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to create listing for seller %s: %w", sellerID, err)
	}

	utils.Info("service: listing created", map[string]any{
		"vehicle_id": listing.ID,
		"seller_id":  sellerID,
		"ends_at":    listing.AuctionEndTime,
	})
	return listing, nil
}

// GetBidsForListing returns all bids for a specific listing
func (s *BiddingService) GetBidsForListing(ctx context.Context, vehicleID string) ([]models.Bid, error) {
	if vehicleID == "" {
		return nil, fmt.Errorf("service: %w - empty vehicle ID", biddingerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByListing(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for listing %s: %w", vehicleID, err)
	}

	return bids, nil
}

// GetWinningBid returns the highest bid for a specific listing
func (s *BiddingService) GetWinningBid(ctx context.Context, vehicleID string) (models.Bid, error) {
	if vehicleID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty vehicle ID", biddingerrors.ErrInvalidBid)
	}

	winningBid, err := s.repo.GetWinningBid(ctx, vehicleID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for listing %s: %w", vehicleID, err)
	}

	return winningBid, nil
}

// GetListingsByBidder returns all listings a user has placed bids on
func (s *BiddingService) GetListingsByBidder(ctx context.Context, bidderID string) ([]models.Listing, error) {
	if bidderID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidBid)
	}

	listings, err := s.repo.GetListingsByBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get listings for user %s: %w", bidderID, err)
	}

	return listings, nil
}
