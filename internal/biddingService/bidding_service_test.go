package bidding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"vehicle-auction/internal/biddingerrors"
	"vehicle-auction/internal/clock"
	"vehicle-auction/internal/events"
	"vehicle-auction/internal/identity"
	model "vehicle-auction/internal/models"
	"vehicle-auction/internal/notification"
	"vehicle-auction/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func openListing(id string) model.Listing {
	return model.Listing{
		ID:             id,
		SellerID:       "seller",
		Title:          "1991 Mazda MX-5",
		AuctionEndTime: now.Add(time.Hour),
		StartingBid:    decimal.Zero,
		CurrentBid:     decimal.Zero,
		Status:         model.StatusActive,
		ApprovalStatus: model.ApprovalApproved,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// admitAgainst makes a mocked AdmitBid run the service's admission decision on listing
func admitAgainst(listing model.Listing) func(context.Context, string, repository.AdmitFunc) (model.Listing, model.Bid, error) {
	return func(_ context.Context, _ string, admit repository.AdmitFunc) (model.Listing, model.Bid, error) {
		bid, err := admit(listing)
		if err != nil {
			return model.Listing{}, model.Bid{}, err
		}
		listing.CurrentBid = bid.Amount
		listing.BidCount++
		listing.HighBidderID = bid.BidderID
		return listing, bid, nil
	}
}

// Tests PlaceBid against the admission rules
func TestBiddingService_PlaceBid(t *testing.T) {
	withBids := openListing("car1")
	withBids.CurrentBid = dec(1000)
	withBids.BidCount = 4
	withBids.HighBidderID = "rival"

	highStart := openListing("car1")
	highStart.StartingBid = dec(5000)

	pending := openListing("car1")
	pending.ApprovalStatus = model.ApprovalPending

	declined := openListing("car1")
	declined.ApprovalStatus = model.ApprovalDeclined

	expired := openListing("car1")
	expired.AuctionEndTime = now.Add(-time.Minute)

	endingNow := openListing("car1")
	endingNow.AuctionEndTime = now

	finalized := openListing("car1")
	finalized.Status = model.StatusSold

	pendingAndExpired := openListing("car1")
	pendingAndExpired.ApprovalStatus = model.ApprovalPending
	pendingAndExpired.AuctionEndTime = now.Add(-time.Hour)

	tests := []struct {
		name          string
		vehicleID     string
		bidderID      string
		amount        decimal.Decimal
		listing       *model.Listing // nil: repo is not reached
		expectedError error
		wantMinimum   decimal.Decimal
		wantCount     int
	}{
		{name: "first_bid_below_floor", vehicleID: "car1", bidderID: "u1", amount: dec(50), listing: ptr(openListing("car1")), expectedError: biddingerrors.ErrBidTooLow, wantMinimum: dec(100)},
		{name: "first_bid_at_floor", vehicleID: "car1", bidderID: "u1", amount: dec(100), listing: ptr(openListing("car1")), wantCount: 1},
		{name: "increment_not_met", vehicleID: "car1", bidderID: "u1", amount: dec(1050), listing: &withBids, expectedError: biddingerrors.ErrBidTooLow, wantMinimum: dec(1100)},
		{name: "increment_met", vehicleID: "car1", bidderID: "u1", amount: dec(1100), listing: &withBids, wantCount: 5},
		{name: "starting_bid_above_floor", vehicleID: "car1", bidderID: "u1", amount: dec(4999), listing: &highStart, expectedError: biddingerrors.ErrBidTooLow, wantMinimum: dec(5000)},
		{name: "pending_listing", vehicleID: "car1", bidderID: "u1", amount: dec(100000), listing: &pending, expectedError: biddingerrors.ErrNotApproved},
		{name: "declined_listing", vehicleID: "car1", bidderID: "u1", amount: dec(100000), listing: &declined, expectedError: biddingerrors.ErrNotApproved},
		{name: "approval_checked_before_time", vehicleID: "car1", bidderID: "u1", amount: dec(100), listing: &pendingAndExpired, expectedError: biddingerrors.ErrNotApproved},
		{name: "expired_listing", vehicleID: "car1", bidderID: "u1", amount: dec(100), listing: &expired, expectedError: biddingerrors.ErrAuctionEnded},
		{name: "end_time_is_exclusive", vehicleID: "car1", bidderID: "u1", amount: dec(100), listing: &endingNow, expectedError: biddingerrors.ErrAuctionEnded},
		{name: "finalized_listing", vehicleID: "car1", bidderID: "u1", amount: dec(100), listing: &finalized, expectedError: biddingerrors.ErrAuctionEnded},
		{name: "self_bid", vehicleID: "car1", bidderID: "seller", amount: dec(100), listing: ptr(openListing("car1")), expectedError: biddingerrors.ErrSelfBidForbidden},
		{name: "admin_bid", vehicleID: "car1", bidderID: "admin", amount: dec(100), listing: ptr(openListing("car1")), expectedError: biddingerrors.ErrAdminCannotBid},
		{name: "self_bid_checked_before_amount", vehicleID: "car1", bidderID: "seller", amount: dec(1), listing: ptr(openListing("car1")), expectedError: biddingerrors.ErrSelfBidForbidden},
		{name: "empty_vehicleID", vehicleID: "", bidderID: "u1", amount: dec(100), expectedError: biddingerrors.ErrInvalidBid},
		{name: "empty_bidderID", vehicleID: "car1", bidderID: "", amount: dec(100), expectedError: biddingerrors.ErrInvalidBid},
		{name: "zero_amount", vehicleID: "car1", bidderID: "u1", amount: decimal.Zero, expectedError: biddingerrors.ErrInvalidBid},
		{name: "negative_amount", vehicleID: "car1", bidderID: "u1", amount: dec(-50), expectedError: biddingerrors.ErrInvalidBid},
		{name: "sub_cent_amount", vehicleID: "car1", bidderID: "u1", amount: decimal.RequireFromString("100.001"), expectedError: biddingerrors.ErrInvalidBid},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run tests concurrently

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := repository.NewMockAuctionDB(ctrl)
			service := NewBiddingService(mockRepo,
				WithClock(clock.NewManualClock(now)),
				WithAdminDirectory(identity.NewStaticDirectory("admin")),
			)
			if tc.listing != nil {
				mockRepo.EXPECT().AdmitBid(gomock.Any(), tc.vehicleID, gomock.Any()).DoAndReturn(admitAgainst(*tc.listing))
			}

			result, err := service.PlaceBid(context.Background(), tc.vehicleID, tc.bidderID, tc.amount)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				if !tc.wantMinimum.IsZero() {
					var tooLow *biddingerrors.BidTooLowError
					require.True(t, errors.As(err, &tooLow))
					require.True(t, tc.wantMinimum.Equal(tooLow.MinimumRequired), "minimum %s, got %s", tc.wantMinimum, tooLow.MinimumRequired)
				}
				return
			}

			require.NoError(t, err)
			_, parseErr := uuid.Parse(result.Bid.ID)
			require.NoError(t, parseErr, "bid ID should be a valid UUID")
			require.Equal(t, tc.vehicleID, result.Bid.VehicleID)
			require.Equal(t, tc.bidderID, result.Bid.BidderID)
			require.True(t, tc.amount.Equal(result.NewCurrentBid))
			require.Equal(t, tc.wantCount, result.NewBidCount)
			require.Equal(t, now, result.Bid.CreatedAt)
		})
	}
}

func ptr(l model.Listing) *model.Listing { return &l }

func TestBiddingService_PlaceBid_StorageFailures(t *testing.T) {
	conflict := fmt.Errorf("admit: %w", biddingerrors.ErrConcurrentModification)

	tests := []struct {
		name          string
		setup         func(m *repository.MockAuctionDB)
		expectError   error
		expectSuccess bool
	}{
		{
			name: "conflict_then_success",
			setup: func(m *repository.MockAuctionDB) {
				gomock.InOrder(
					m.EXPECT().AdmitBid(gomock.Any(), "car1", gomock.Any()).Return(model.Listing{}, model.Bid{}, conflict),
					m.EXPECT().AdmitBid(gomock.Any(), "car1", gomock.Any()).DoAndReturn(admitAgainst(openListing("car1"))),
				)
			},
			expectSuccess: true,
		},
		{
			name: "conflicts_exhaust_retries",
			setup: func(m *repository.MockAuctionDB) {
				m.EXPECT().AdmitBid(gomock.Any(), "car1", gomock.Any()).Return(model.Listing{}, model.Bid{}, conflict).Times(maxAdmitAttempts)
			},
			expectError: biddingerrors.ErrStorageUnavailable,
		},
		{
			name: "storage_error_not_retried",
			setup: func(m *repository.MockAuctionDB) {
				m.EXPECT().AdmitBid(gomock.Any(), "car1", gomock.Any()).Return(model.Listing{}, model.Bid{}, errors.New("connection refused")).Times(1)
			},
			expectError: biddingerrors.ErrStorageUnavailable,
		},
		{
			name: "timeout_has_unknown_outcome",
			setup: func(m *repository.MockAuctionDB) {
				m.EXPECT().AdmitBid(gomock.Any(), "car1", gomock.Any()).Return(model.Listing{}, model.Bid{}, context.DeadlineExceeded).Times(1)
			},
			expectError: context.DeadlineExceeded,
		},
		{
			name: "listing_not_found",
			setup: func(m *repository.MockAuctionDB) {
				m.EXPECT().AdmitBid(gomock.Any(), "car1", gomock.Any()).Return(model.Listing{}, model.Bid{}, biddingerrors.ErrListingNotFound).Times(1)
			},
			expectError: biddingerrors.ErrListingNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := repository.NewMockAuctionDB(ctrl)
			tc.setup(mockRepo)
			service := NewBiddingService(mockRepo, WithClock(clock.NewManualClock(now)))

			_, err := service.PlaceBid(context.Background(), "car1", "u1", dec(100))
			if tc.expectSuccess {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.expectError)
			if !errors.Is(tc.expectError, biddingerrors.ErrStorageUnavailable) {
				require.False(t, errors.Is(err, biddingerrors.ErrStorageUnavailable))
			}
		})
	}
}

// recordingNotifier captures fan-out calls
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

type notifyCall struct {
	eventType model.EventType
	payload   notification.Payload
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, eventType model.EventType, payload notification.Payload) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{eventType: eventType, payload: payload})
	return 1, nil
}

func TestBiddingService_PlaceBid_SideEffects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	require.NoError(t, repo.CreateListing(ctx, openListing("car1")))

	bus := events.NewMemoryBus()
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stream, err := bus.Subscribe(subCtx, "car1")
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	service := NewBiddingService(repo,
		WithClock(clock.NewManualClock(now)),
		WithPublisher(bus),
		WithNotifier(notifier),
	)

	_, err = service.PlaceBid(ctx, "car1", "alice", dec(100))
	require.NoError(t, err)
	_, err = service.PlaceBid(ctx, "car1", "bob", dec(200))
	require.NoError(t, err)
	// raising your own bid notifies no one of being outbid
	_, err = service.PlaceBid(ctx, "car1", "bob", dec(300))
	require.NoError(t, err)
	// rejected bids have no side effects
	_, err = service.PlaceBid(ctx, "car1", "carol", dec(350))
	require.ErrorIs(t, err, biddingerrors.ErrBidTooLow)

	for _, want := range []int64{100, 200, 300} {
		e := <-stream
		require.Equal(t, model.EventNewBid, e.Type)
		require.True(t, dec(want).Equal(e.Amount))
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	var types []model.EventType
	for _, c := range notifier.calls {
		types = append(types, c.eventType)
	}
	require.Equal(t, []model.EventType{model.EventNewBid, model.EventNewBid, model.EventOutbid, model.EventNewBid}, types)
	require.Equal(t, []string{"alice"}, notifier.calls[2].payload.Recipients)
	require.Equal(t, "bob", notifier.calls[2].payload.ActorID)
}

// Scenario: N bidders race with the same valid amount; exactly one is admitted
func TestBiddingService_PlaceBid_ConcurrentSameAmount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	listing := openListing("car1")
	listing.CurrentBid = dec(1000)
	listing.BidCount = 1
	require.NoError(t, repo.CreateListing(ctx, listing))

	service := NewBiddingService(repo, WithClock(clock.NewManualClock(now)))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		tooLow   int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := service.PlaceBid(ctx, "car1", fmt.Sprintf("bidder-%d", i), dec(1100))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, biddingerrors.ErrBidTooLow):
				tooLow++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, admitted)
	require.Equal(t, 24, tooLow)

	final, err := service.GetListing(ctx, "car1")
	require.NoError(t, err)
	require.True(t, dec(1100).Equal(final.CurrentBid))
	require.Equal(t, 2, final.BidCount)
}

// Ledger invariants hold under a mixed concurrent workload
func TestBiddingService_PlaceBid_LedgerInvariants(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	require.NoError(t, repo.CreateListing(ctx, openListing("car1")))
	service := NewBiddingService(repo, WithClock(clock.NewManualClock(now)))

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			current, err := service.GetListing(ctx, "car1")
			if err != nil {
				t.Errorf("get listing: %v", err)
				return
			}
			amount := MinimumNextBid(current).Add(dec(int64(i % 3 * 50)))
			_, _ = service.PlaceBid(ctx, "car1", fmt.Sprintf("bidder-%d", i), amount)
		}(i)
	}
	wg.Wait()

	bids, err := service.GetBidsForListing(ctx, "car1")
	require.NoError(t, err)
	final, err := service.GetListing(ctx, "car1")
	require.NoError(t, err)

	require.Equal(t, len(bids), final.BidCount)
	require.True(t, bids[0].Amount.GreaterThanOrEqual(dec(MinFirstBid)))
	for i := 1; i < len(bids); i++ {
		require.True(t, bids[i].Amount.GreaterThanOrEqual(bids[i-1].Amount.Add(dec(MinIncrement))),
			"bid %d (%s) must exceed bid %d (%s) by the increment", i, bids[i].Amount, i-1, bids[i-1].Amount)
	}

	winning, err := service.GetWinningBid(ctx, "car1")
	require.NoError(t, err)
	require.True(t, winning.Amount.Equal(final.CurrentBid))
	require.Equal(t, winning.BidderID, final.HighBidderID)
}

func TestBiddingService_CreateListing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	service := NewBiddingService(repo, WithClock(clock.NewManualClock(now)))

	listing, err := service.CreateListing(ctx, "seller", model.ListingDraft{
		Make:           "BMW",
		Model:          "E30 M3",
		Year:           1988,
		AuctionEndTime: now.Add(72 * time.Hour),
		ReservePrice:   decimal.NewNullDecimal(dec(60000)),
		StartingBid:    dec(5000),
	})
	require.NoError(t, err)
	require.Equal(t, model.ApprovalPending, listing.ApprovalStatus)
	require.Equal(t, model.StatusActive, listing.Status)
	require.True(t, listing.CurrentBid.IsZero())
	require.Zero(t, listing.BidCount)

	stored, err := service.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, listing.ID, stored.ID)

	// pending listings never accept bids
	_, err = service.PlaceBid(ctx, listing.ID, "u1", dec(5000))
	require.ErrorIs(t, err, biddingerrors.ErrNotApproved)

	invalid := []model.ListingDraft{
		{AuctionEndTime: now.Add(-time.Hour)},
		{AuctionEndTime: now.Add(time.Hour), StartingBid: dec(-1)},
		{AuctionEndTime: now.Add(time.Hour), ReservePrice: decimal.NewNullDecimal(dec(-5))},
	}
	for _, draft := range invalid {
		_, err := service.CreateListing(ctx, "seller", draft)
		require.ErrorIs(t, err, biddingerrors.ErrInvalidListing)
	}
	_, err = service.CreateListing(ctx, "", model.ListingDraft{AuctionEndTime: now.Add(time.Hour)})
	require.ErrorIs(t, err, biddingerrors.ErrInvalidListing)
}

func TestBiddingService_Reads(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewBiddingService(mockRepo)
	ctx := context.Background()

	bids := []model.Bid{{ID: "b1", VehicleID: "car1", BidderID: "u1", Amount: dec(100)}}
	mockRepo.EXPECT().GetBidsByListing(ctx, "car1").Return(bids, nil)
	mockRepo.EXPECT().GetWinningBid(ctx, "car2").Return(model.Bid{}, biddingerrors.ErrNoBids)
	mockRepo.EXPECT().GetListingsByBidder(ctx, "u1").Return([]model.Listing{openListing("car1")}, nil)

	got, err := service.GetBidsForListing(ctx, "car1")
	require.NoError(t, err)
	require.Equal(t, bids, got)

	_, err = service.GetWinningBid(ctx, "car2")
	require.ErrorIs(t, err, biddingerrors.ErrNoBids)

	listings, err := service.GetListingsByBidder(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, listings, 1)

	_, err = service.GetBidsForListing(ctx, "")
	require.ErrorIs(t, err, biddingerrors.ErrInvalidBid)
	_, err = service.GetWinningBid(ctx, "")
	require.ErrorIs(t, err, biddingerrors.ErrInvalidBid)
	_, err = service.GetListingsByBidder(ctx, "")
	require.ErrorIs(t, err, biddingerrors.ErrInvalidBid)
}

func TestMinimumNextBid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current int64
		start   int64
		want    int64
	}{
		{"no_bids_zero_start", 0, 0, MinFirstBid},
		{"no_bids_low_start", 0, 50, MinFirstBid},
		{"no_bids_high_start", 0, 2500, 2500},
		{"with_bids", 1000, 0, 1000 + MinIncrement},
		{"with_bids_ignores_start", 3000, 5000, 3000 + MinIncrement},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			l := openListing("car")
			l.CurrentBid = dec(tc.current)
			l.StartingBid = dec(tc.start)
			require.True(t, dec(tc.want).Equal(MinimumNextBid(l)))
		})
	}
}
