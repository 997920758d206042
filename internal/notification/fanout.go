package notification

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/shopspring/decimal"

	"vehicle-auction/internal/clock"
	model "vehicle-auction/internal/models"
	"vehicle-auction/internal/repository"
	"vehicle-auction/utils"
)

const defaultDedupCacheSize = 4096

// Payload describes the event being fanned out
type Payload struct {
	// ActorID is the user who caused the event; never notified
	ActorID string
	Listing model.Listing
	Amount  decimal.Decimal
	// Recipients is used by directly addressed events such as outbid
	Recipients []string
}

// Notifier materializes per-user notifications for a listing event
type Notifier interface {
	Notify(ctx context.Context, vehicleID string, eventType model.EventType, payload Payload) (int, error)
}

// NopNotifier creates nothing
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, model.EventType, Payload) (int, error) {
	return 0, nil
}

// Fanout resolves watchers and writes one notification per recipient
type Fanout struct {
	watches       repository.WatchStore
	notifications repository.NotificationStore
	clock         clock.Clock
	// dedup keys already persisted; saves a store round trip on repeated sweeps
	seen *lru.Cache
}

func NewFanout(watches repository.WatchStore, notifications repository.NotificationStore, clk clock.Clock, cacheSize int) *Fanout {
	if cacheSize <= 0 {
		cacheSize = defaultDedupCacheSize
	}
	cache, _ := lru.New(cacheSize)
	return &Fanout{
		watches:       watches,
		notifications: notifications,
		clock:         clk,
		seen:          cache,
	}
}

// Notify returns the number of notifications created. Failures for single
// recipients are logged and skipped; only recipient resolution can fail the call.
func (f *Fanout) Notify(ctx context.Context, vehicleID string, eventType model.EventType, payload Payload) (int, error) {
	recipients, err := f.recipients(ctx, vehicleID, eventType, payload)
	if err != nil {
		return 0, fmt.Errorf("notification: resolve recipients of %s for %s: %w", eventType, vehicleID, err)
	}

	message := Message(eventType, payload)
	now := f.clock.Now()
	created := 0

	for _, userID := range recipients {
		n := model.Notification{
			ID:        utils.GenerateID(),
			UserID:    userID,
			VehicleID: vehicleID,
			Type:      eventType,
			Message:   message,
			CreatedAt: now,
		}
		if eventType.Deduplicated() {
			n.DedupKey = model.DedupKey(userID, vehicleID, eventType)
			if f.seen.Contains(n.DedupKey) {
				continue
			}
		}

		ok, err := f.notifications.CreateNotification(ctx, n)
		if err != nil {
			utils.Warn("notification: failed to create notification", map[string]any{
				"user_id":    userID,
				"vehicle_id": vehicleID,
				"type":       eventType,
				"error":      err.Error(),
			})
			continue
		}
		if n.DedupKey != "" {
			f.seen.Add(n.DedupKey, struct{}{})
		}
		if ok {
			created++
		}
	}

	return created, nil
}

func (f *Fanout) recipients(ctx context.Context, vehicleID string, eventType model.EventType, payload Payload) ([]string, error) {
	var candidates []string

	switch eventType {
	case model.EventOutbid:
		candidates = payload.Recipients
	case model.EventNewBid, model.EventNewComment:
		watchers, err := f.watches.GetWatchers(ctx, vehicleID)
		if err != nil {
			return nil, err
		}
		for _, w := range watchers {
			if w.NotifyOnBid {
				candidates = append(candidates, w.UserID)
			}
		}
	case model.EventAuctionEnding, model.EventAuctionEnded:
		watchers, err := f.watches.GetWatchers(ctx, vehicleID)
		if err != nil {
			return nil, err
		}
		for _, w := range watchers {
			if w.NotifyOnSale {
				candidates = append(candidates, w.UserID)
			}
		}
		if eventType == model.EventAuctionEnded {
			candidates = append(candidates, payload.Listing.SellerID, payload.Listing.HighBidderID)
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id == "" || id == payload.ActorID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// Message renders the notification text for an event
func Message(eventType model.EventType, p Payload) string {
	name := p.Listing.DisplayName()
	switch eventType {
	case model.EventNewBid:
		return fmt.Sprintf("New bid of %s on %s", p.Amount.StringFixed(2), name)
	case model.EventOutbid:
		return fmt.Sprintf("You have been outbid on %s. Current bid is %s", name, p.Amount.StringFixed(2))
	case model.EventNewComment:
		return fmt.Sprintf("New comment on %s", name)
	case model.EventAuctionEnding:
		return fmt.Sprintf("Auction for %s ends at %s", name, p.Listing.AuctionEndTime.UTC().Format("2006-01-02 15:04 MST"))
	case model.EventAuctionEnded:
		if p.Listing.Status == model.StatusSold {
			return fmt.Sprintf("Auction for %s ended. Sold for %s", name, p.Listing.CurrentBid.StringFixed(2))
		}
		return fmt.Sprintf("Auction for %s ended without a sale", name)
	default:
		return name
	}
}
