package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vehicle-auction/internal/biddingerrors"
	"vehicle-auction/internal/events"
	model "vehicle-auction/internal/models"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

// readEvent reads one server-sent event and returns its name and data
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if name != "" || data != "" {
				return name, data
			}
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func TestListingEventsHandler(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockBiddingServiceInterface(ctrl)
	mockService.EXPECT().GetListing(gomock.Any(), "car1").
		Return(model.Listing{ID: "car1", Status: model.StatusActive, ApprovalStatus: model.ApprovalApproved}, nil)
	mockService.EXPECT().GetListing(gomock.Any(), "nope").
		Return(model.Listing{}, biddingerrors.ErrListingNotFound)

	bus := events.NewMemoryBus()
	router := newTestRouter()
	router.GET("/listings/:vehicle_id/events", NewStreamHandler(mockService, bus).ListingEventsHandler)

	srv := httptest.NewServer(router)
	defer srv.Close()

	missing, err := srv.Client().Get(srv.URL + "/listings/nope/events")
	require.NoError(t, err)
	missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/listings/car1/events", nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	name, data := readEvent(t, reader)
	require.Equal(t, "listing", name)
	require.Contains(t, data, `"minimum_next_bid":100`)
	require.Equal(t, 1, bus.SubscriberCount("car1"))

	require.NoError(t, bus.Publish(ctx, model.Event{
		Type:       model.EventNewBid,
		VehicleID:  "car1",
		ActorID:    "u1",
		Amount:     dec(1200),
		BidCount:   1,
		Status:     model.StatusActive,
		OccurredAt: time.Now().UTC(),
	}))

	name, data = readEvent(t, reader)
	require.Equal(t, string(model.EventNewBid), name)
	require.Contains(t, data, "1200")

	cancel()
	require.Eventually(t, func() bool { return bus.SubscriberCount("car1") == 0 }, 2*time.Second, 10*time.Millisecond)
}
