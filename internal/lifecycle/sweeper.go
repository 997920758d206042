package lifecycle

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"vehicle-auction/internal/clock"
	"vehicle-auction/internal/events"
	model "vehicle-auction/internal/models"
	"vehicle-auction/internal/notification"
	"vehicle-auction/internal/repository"
	"vehicle-auction/utils"
)

// Config controls the sweeper schedule and policy
type Config struct {
	Interval         time.Duration
	EndingSoonWindow time.Duration
	Workers          int
	// EnforceReserve ends listings whose reserve was not met without a sale.
	// Off by default: the reserve is informational.
	EnforceReserve bool
}

func DefaultConfig() Config {
	return Config{
		Interval:         time.Minute,
		EndingSoonWindow: 24 * time.Hour,
		Workers:          4,
	}
}

// Report summarizes one sweep
type Report struct {
	Finalized     int `json:"finalized"`
	Sold          int `json:"sold"`
	Ended         int `json:"ended"`
	EndingNotices int `json:"ending_notices"`
	Errors        int `json:"errors"`
}

type counters struct {
	sold, ended, endingNotices, errors atomic.Int64
}

// Sweeper finalizes expired auctions and announces auctions ending soon
type Sweeper struct {
	listings  repository.ListingStore
	notifier  notification.Notifier
	publisher events.Publisher
	clock     clock.Clock
	cfg       Config
}

func NewSweeper(listings repository.ListingStore, notifier notification.Notifier, publisher events.Publisher, clk clock.Clock, cfg Config) *Sweeper {
	defaults := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.EndingSoonWindow <= 0 {
		cfg.EndingSoonWindow = defaults.EndingSoonWindow
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Sweeper{
		listings:  listings,
		notifier:  notifier,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

// Run sweeps immediately and then on every tick until ctx is done
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	utils.Info("sweeper started", map[string]any{"interval": s.cfg.Interval.String()})
	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			utils.Info("sweeper stopped", nil)
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep processes every due listing once. Listings are handled independently:
// a failure on one is logged and counted, never aborting the rest. Every step
// is idempotent, so a sweep can be retried wholesale.
func (s *Sweeper) Sweep(ctx context.Context) Report {
	now := s.clock.Now()
	var c counters

	expired, err := s.listings.ListExpiredActive(ctx, now)
	if err != nil {
		c.errors.Add(1)
		utils.Error("sweeper: failed to list expired listings", map[string]any{"error": err.Error()})
	}
	s.forEach(expired, func(l model.Listing) { s.finalize(ctx, l, now, &c) })

	ending, err := s.listings.ListEndingBetween(ctx, now, now.Add(s.cfg.EndingSoonWindow))
	if err != nil {
		c.errors.Add(1)
		utils.Error("sweeper: failed to list listings ending soon", map[string]any{"error": err.Error()})
	}
	s.forEach(ending, func(l model.Listing) { s.announceEnding(ctx, l, &c) })

	report := Report{
		Sold:          int(c.sold.Load()),
		Ended:         int(c.ended.Load()),
		EndingNotices: int(c.endingNotices.Load()),
		Errors:        int(c.errors.Load()),
	}
	report.Finalized = report.Sold + report.Ended

	if report.Finalized > 0 || report.EndingNotices > 0 || report.Errors > 0 {
		utils.Info("sweeper: sweep complete", map[string]any{
			"finalized":      report.Finalized,
			"sold":           report.Sold,
			"ended":          report.Ended,
			"ending_notices": report.EndingNotices,
			"errors":         report.Errors,
		})
	}
	return report
}

func (s *Sweeper) forEach(listings []model.Listing, fn func(model.Listing)) {
	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for _, l := range listings {
		l := l
		g.Go(func() error {
			fn(l)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Sweeper) finalize(ctx context.Context, l model.Listing, now time.Time, c *counters) {
	listing, changed, err := s.listings.FinalizeListing(ctx, l.ID, now, s.cfg.EnforceReserve)
	if err != nil {
		c.errors.Add(1)
		utils.Error("sweeper: failed to finalize listing", map[string]any{
			"vehicle_id": l.ID,
			"error":      err.Error(),
		})
		return
	}
	if !changed {
		return
	}

	if listing.Status == model.StatusSold {
		c.sold.Add(1)
	} else {
		c.ended.Add(1)
	}
	utils.Info("sweeper: listing finalized", map[string]any{
		"vehicle_id":  listing.ID,
		"status":      listing.Status,
		"bid_count":   listing.BidCount,
		"current_bid": listing.CurrentBid.String(),
		"reserve_met": listing.ReserveMet(),
	})

	event := model.Event{
		Type:       model.EventAuctionEnded,
		VehicleID:  listing.ID,
		Amount:     listing.CurrentBid,
		BidCount:   listing.BidCount,
		Status:     listing.Status,
		OccurredAt: now,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		utils.Warn("sweeper: failed to publish auction_ended", map[string]any{"vehicle_id": listing.ID, "error": err.Error()})
	}
	if _, err := s.notifier.Notify(ctx, listing.ID, model.EventAuctionEnded, notification.Payload{Listing: listing, Amount: listing.CurrentBid}); err != nil {
		utils.Warn("sweeper: auction_ended fan-out failed", map[string]any{"vehicle_id": listing.ID, "error": err.Error()})
	}
}

func (s *Sweeper) announceEnding(ctx context.Context, l model.Listing, c *counters) {
	if l.ApprovalStatus != model.ApprovalApproved {
		return
	}
	n, err := s.notifier.Notify(ctx, l.ID, model.EventAuctionEnding, notification.Payload{Listing: l, Amount: l.CurrentBid})
	if err != nil {
		c.errors.Add(1)
		utils.Warn("sweeper: auction_ending fan-out failed", map[string]any{"vehicle_id": l.ID, "error": err.Error()})
		return
	}
	c.endingNotices.Add(int64(n))
}
