package perftests

import (
	"context"
	"fmt"
	"testing"
	"time"

	bidding "vehicle-auction/internal/biddingService"
	"vehicle-auction/internal/clock"
	model "vehicle-auction/internal/models"
	"vehicle-auction/internal/notification"
	repository "vehicle-auction/internal/repository"

	"github.com/shopspring/decimal"
)

// setupRepo creates a store with numListings approved listings and a service over it.
// Fan-out is wired so benchmarks include notification cost.
func setupRepo(tb testing.TB, numListings int) (*repository.MemoryRepo, *bidding.BiddingService) {
	tb.Helper()

	repo := repository.NewMemoryRepo()
	now := time.Now().UTC()
	for i := 0; i < numListings; i++ {
		err := repo.CreateListing(context.Background(), model.Listing{
			ID:             listingID(i),
			SellerID:       "seller",
			Title:          fmt.Sprintf("Benchmark vehicle %d", i),
			StartingBid:    decimal.NewFromInt(100),
			CurrentBid:     decimal.Zero,
			AuctionEndTime: now.Add(time.Hour),
			Status:         model.StatusActive,
			ApprovalStatus: model.ApprovalApproved,
			Version:        1,
		})
		if err != nil {
			tb.Fatalf("failed to seed listing: %v", err)
		}
	}

	svc := bidding.NewBiddingService(repo, bidding.WithNotifier(notification.NewFanout(repo, repo, clock.SystemClock{}, 0)))
	return repo, svc
}

func listingID(i int) string {
	return fmt.Sprintf("vehicle_%d", i)
}

// amount returns the n-th admissible bid on a listing starting at 100
func amount(n int64) decimal.Decimal {
	return decimal.NewFromInt(100 * n)
}
