package integrationtests

import (
	"net/http"
	"sync"
	"testing"
	"time"

	model "vehicle-auction/internal/models"

	"github.com/stretchr/testify/require"
)

// RecordBidHandler Tests
func TestRecordBidHandler(t *testing.T) {
	pending := ApprovedListing("car-pending", "seller", 0)
	pending.ApprovalStatus = model.ApprovalPending

	tests := []struct {
		name       string
		bidderID   string
		vehicleID  string
		amount     string
		wantStatus int
		wantMsg    string
	}{
		{name: "Valid_First_Bid", bidderID: "user1", vehicleID: "car1", amount: "500", wantStatus: http.StatusCreated},
		{name: "First_Bid_Below_Starting", bidderID: "user1", vehicleID: "car1", amount: "499.99", wantStatus: http.StatusConflict, wantMsg: "bid amount too low"},
		{name: "Cheap_Listing_Floor", bidderID: "user1", vehicleID: "car-cheap", amount: "99", wantStatus: http.StatusConflict, wantMsg: "bid amount too low"},
		{name: "Pending_Listing", bidderID: "user1", vehicleID: "car-pending", amount: "1000", wantStatus: http.StatusConflict, wantMsg: "not open for bidding"},
		{name: "Seller_Bids", bidderID: "seller", vehicleID: "car1", amount: "1000", wantStatus: http.StatusForbidden, wantMsg: "own listing"},
		{name: "Admin_Bids", bidderID: adminID, vehicleID: "car1", amount: "1000", wantStatus: http.StatusForbidden, wantMsg: "administrators"},
		{name: "Unknown_Listing", bidderID: "user1", vehicleID: "nope", amount: "1000", wantStatus: http.StatusNotFound},
		{name: "Anonymous", vehicleID: "car1", amount: "1000", wantStatus: http.StatusUnauthorized},
		{name: "Fractional_Cents", bidderID: "user1", vehicleID: "car1", amount: "500.001", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := SetupTestApp(t, ApprovedListing("car1", "seller", 500), ApprovedListing("car-cheap", "seller", 10), pending)

			resp, code := app.PlaceBid(t, tt.bidderID, tt.vehicleID, tt.amount)
			require.Equal(t, tt.wantStatus, code, resp)
			if tt.wantMsg != "" {
				require.Contains(t, resp["message"], tt.wantMsg)
			}
			if code == http.StatusCreated {
				data := resp["data"].(map[string]any)
				bid := data["bid"].(map[string]any)
				require.Equal(t, tt.vehicleID, bid["vehicle_id"])
				require.Equal(t, tt.bidderID, bid["bidder_id"])
				require.Equal(t, 1.0, data["new_bid_count"])
				_, err := time.Parse(time.RFC3339, bid["created_at"].(string))
				require.NoError(t, err)
			}
		})
	}
}

func TestBidIncrementAndMinimumRequired(t *testing.T) {
	app := SetupTestApp(t, ApprovedListing("car1", "seller", 1000))

	_, code := app.PlaceBid(t, "user1", "car1", "1000")
	require.Equal(t, http.StatusCreated, code)

	resp, code := app.PlaceBid(t, "user2", "car1", "1099.99")
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, 1100.0, resp["data"].(map[string]any)["minimum_required"])

	_, code = app.PlaceBid(t, "user2", "car1", "1100")
	require.Equal(t, http.StatusCreated, code)

	resp, w := ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/listings/car1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listing := resp["data"].(map[string]any)
	require.Equal(t, 1100.0, listing["current_bid"])
	require.Equal(t, 2.0, listing["bid_count"])
	require.Equal(t, "user2", listing["high_bidder_id"])
	require.Equal(t, 1200.0, listing["minimum_next_bid"])
}

func TestConcurrentEqualBidsAdmitExactlyOne(t *testing.T) {
	app := SetupTestApp(t, ApprovedListing("car1", "seller", 100))

	const bidders = 20
	codes := make(chan int, bidders)
	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, code := app.PlaceBid(t, "bidder"+string(rune('a'+i)), "car1", "200")
			codes <- code
		}(i)
	}
	wg.Wait()
	close(codes)

	created := 0
	for code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			require.Equal(t, http.StatusConflict, code)
		}
	}
	require.Equal(t, 1, created)

	resp, _ := ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/listings/car1/bids", "", nil)
	require.Len(t, resp["data"].([]any), 1)
}

// GetBidsByListingHandler Tests
func TestGetBidsByListingHandler(t *testing.T) {
	tests := []struct {
		name       string
		seedBids   [][2]string
		vehicleID  string
		wantCount  int
		wantStatus int
	}{
		{name: "With_Bids", seedBids: [][2]string{{"user1", "100"}, {"user2", "200"}}, vehicleID: "car1", wantCount: 2, wantStatus: http.StatusOK},
		{name: "No_Bids", vehicleID: "car1", wantCount: 0, wantStatus: http.StatusOK},
		{name: "Listing_Not_Found", vehicleID: "nonexistent", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := SetupTestApp(t, ApprovedListing("car1", "seller", 0))
			for _, bid := range tt.seedBids {
				_, code := app.PlaceBid(t, bid[0], "car1", bid[1])
				require.Equal(t, http.StatusCreated, code)
			}

			resp, w := ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/listings/"+tt.vehicleID+"/bids", "", nil)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				require.Len(t, resp["data"].([]any), tt.wantCount)
			}
		})
	}
}

// GetWinningBidHandler Tests
func TestGetWinningBidHandler(t *testing.T) {
	app := SetupTestApp(t, ApprovedListing("car1", "seller", 0), ApprovedListing("car2", "seller", 0))
	for _, bid := range [][2]string{{"user1", "100"}, {"user3", "200"}, {"user2", "350"}} {
		_, code := app.PlaceBid(t, bid[0], "car1", bid[1])
		require.Equal(t, http.StatusCreated, code)
	}

	resp, w := ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/listings/car1/winning", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	require.Equal(t, "user2", data["bidder_id"])
	require.Equal(t, 350.0, data["amount"])

	_, w = ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/listings/car2/winning", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	_, w = ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/listings/nonexistent/winning", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

// GetListingsByUserHandler Tests
func TestGetListingsByUserHandler(t *testing.T) {
	app := SetupTestApp(t, ApprovedListing("car1", "seller", 0), ApprovedListing("car2", "seller", 0))

	for _, bid := range [][2]string{{"car1", "100"}, {"car2", "100"}, {"car1", "200"}} {
		_, code := app.PlaceBid(t, "user1", bid[0], bid[1])
		require.Equal(t, http.StatusCreated, code)
	}

	tests := []struct {
		name               string
		userID             string
		expectedVehicleIDs []string
	}{
		{name: "User_With_Listings", userID: "user1", expectedVehicleIDs: []string{"car1", "car2"}},
		{name: "User_Without_Bids", userID: "user2", expectedVehicleIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, w := ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/users/"+tt.userID+"/listings", "", nil)
			require.Equal(t, http.StatusOK, w.Code)

			listings := resp["data"].([]any)
			require.Len(t, listings, len(tt.expectedVehicleIDs))

			ids := map[string]bool{}
			for _, l := range listings {
				ids[l.(map[string]any)["id"].(string)] = true
			}
			for _, id := range tt.expectedVehicleIDs {
				require.True(t, ids[id])
			}
		})
	}
}
