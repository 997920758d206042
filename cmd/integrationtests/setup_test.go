package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "vehicle-auction/internal/biddingService"
	"vehicle-auction/internal/clock"
	"vehicle-auction/internal/engagement"
	"vehicle-auction/internal/events"
	"vehicle-auction/internal/identity"
	"vehicle-auction/internal/lifecycle"
	model "vehicle-auction/internal/models"
	"vehicle-auction/internal/moderation"
	"vehicle-auction/internal/notification"
	"vehicle-auction/internal/repository"
	"vehicle-auction/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const adminID = "admin"

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// TestApp is the full service wired over the in-memory store with a manual clock
type TestApp struct {
	Router  *gin.Engine
	Repo    *repository.MemoryRepo
	Clock   *clock.ManualClock
	Bus     *events.MemoryBus
	Sweeper *lifecycle.Sweeper
}

// SetupTestApp initializes the router and seeds the repo with listings.
func SetupTestApp(t *testing.T, listings ...model.Listing) *TestApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	for _, l := range listings {
		require.NoError(t, repo.CreateListing(context.Background(), l))
	}

	clk := clock.NewManualClock(baseTime)
	bus := events.NewMemoryBus()
	admins := identity.NewStaticDirectory(adminID)
	fanout := notification.NewFanout(repo, repo, clk, 0)

	service := bidding.NewBiddingService(repo,
		bidding.WithClock(clk),
		bidding.WithAdminDirectory(admins),
		bidding.WithPublisher(bus),
		bidding.WithNotifier(fanout),
	)
	router := server.SetupRouter(server.Dependencies{
		Bidding:    service,
		Engagement: engagement.NewService(repo, fanout, clk),
		Moderation: moderation.NewGate(repo, admins, clk),
		Events:     bus,
	})

	return &TestApp{
		Router:  router,
		Repo:    repo,
		Clock:   clk,
		Bus:     bus,
		Sweeper: lifecycle.NewSweeper(repo, fanout, bus, clk, lifecycle.DefaultConfig()),
	}
}

// ApprovedListing returns an approved active listing ending a day after baseTime
func ApprovedListing(id, sellerID string, startingBid int64) model.Listing {
	return model.Listing{
		ID:             id,
		SellerID:       sellerID,
		Title:          "Listing " + id,
		StartingBid:    decimal.NewFromInt(startingBid),
		CurrentBid:     decimal.Zero,
		AuctionEndTime: baseTime.Add(24 * time.Hour),
		Status:         model.StatusActive,
		ApprovalStatus: model.ApprovalApproved,
		Version:        1,
		CreatedAt:      baseTime,
		UpdatedAt:      baseTime,
	}
}

// ExecuteRequestAndParse executes an HTTP request as userID and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, userID string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(server.UserIDHeader, userID)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// PlaceBid posts a bid and returns the response envelope
func (a *TestApp) PlaceBid(t *testing.T, bidderID, vehicleID string, amount string) (map[string]any, int) {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, a.Router, "POST", "/bids", bidderID,
		`{"vehicle_id":"`+vehicleID+`","amount":`+amount+`}`)
	return resp, w.Code
}
