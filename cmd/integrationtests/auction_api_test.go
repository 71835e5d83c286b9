package integrationtests

import (
	"context"
	"net/http"
	"testing"
	"time"

	model "auction-market/internal/models"

	"github.com/stretchr/testify/require"
)

func TestRegisterAuctionAPI(t *testing.T) {
	env := SetupTestRouter()

	t.Run("register_creates_pending_auction", func(t *testing.T) {
		body := map[string]any{
			"name":        "vintage camera",
			"description": "1970s rangefinder",
			"category":    "ELECTRONICS",
			"min_price":   10000,
		}
		data, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/auctions", 1, body)
		require.Equal(t, http.StatusCreated, w.Code)
		require.Equal(t, "PENDING", data["status"])
		require.Equal(t, float64(10000), data["min_price"])
		require.Equal(t, float64(1), data["seller_id"])
		require.NotContains(t, data, "end_date_time")
	})

	t.Run("requires_identity", func(t *testing.T) {
		body := map[string]any{"name": "x", "category": "ELECTRONICS", "min_price": 10000}
		_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/auctions", 0, body)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects_unknown_category", func(t *testing.T) {
		body := map[string]any{"name": "x", "category": "GADGETS", "min_price": 10000}
		_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/auctions", 1, body)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects_min_price_not_multiple_of_1000", func(t *testing.T) {
		body := map[string]any{"name": "x", "category": "ELECTRONICS", "min_price": 1500}
		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/auctions", 1, body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, resp["message"], "minimum price")
	})
}

func TestStartAuctionAPI(t *testing.T) {
	env := SetupTestRouter()

	body := map[string]any{"name": "road bike", "category": "SPORTS_LEISURE", "min_price": 200000}
	data, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/auctions", 1, body)
	require.Equal(t, http.StatusCreated, w.Code)
	auctionID := int64(data["auction_id"].(float64))

	t.Run("non_seller_cannot_start", func(t *testing.T) {
		_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, requestURL("/auctions/%d/start", auctionID), 2, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("seller_starts_auction", func(t *testing.T) {
		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, requestURL("/auctions/%d/start", auctionID), 1, nil)
		require.Equal(t, http.StatusOK, w.Code)
		started := resp["data"].(map[string]any)
		require.Equal(t, "PROCEEDING", started["status"])
		require.NotEmpty(t, started["end_date_time"])
	})

	t.Run("cannot_start_twice", func(t *testing.T) {
		_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, requestURL("/auctions/%d/start", auctionID), 1, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEndAuctionAPI(t *testing.T) {
	env := SetupTestRouter()
	now := env.Clock.Now()

	t.Run("assigns_highest_bidder_as_winner", func(t *testing.T) {
		auctionID := env.SeedRunningAuction(t, 1, 10000, model.CategoryElectronics, now.Add(-time.Minute))
		require.NoError(t, env.Repo.RecordBid(context.Background(), model.NewBid(auctionID, 2, 15000, now.Add(-time.Hour))))
		require.NoError(t, env.Repo.RecordBid(context.Background(), model.NewBid(auctionID, 3, 20000, now.Add(-time.Hour))))

		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, requestURL("/auctions/%d/end", auctionID), 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		ended := resp["data"].(map[string]any)
		require.Equal(t, "ENDED", ended["status"])
		require.Equal(t, float64(3), ended["winner_id"])
	})

	t.Run("ends_without_winner_when_no_bids", func(t *testing.T) {
		auctionID := env.SeedRunningAuction(t, 1, 10000, model.CategoryBooks, now.Add(-time.Minute))

		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, requestURL("/auctions/%d/end", auctionID), 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		ended := resp["data"].(map[string]any)
		require.Equal(t, "ENDED", ended["status"])
		require.NotContains(t, ended, "winner_id")
	})

	t.Run("cannot_end_before_deadline", func(t *testing.T) {
		auctionID := env.SeedRunningAuction(t, 1, 10000, model.CategoryFashion, now.Add(time.Hour))

		_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, requestURL("/auctions/%d/end", auctionID), 0, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown_auction", func(t *testing.T) {
		_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/auctions/9999/end", 0, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCancelAuctionAPI(t *testing.T) {
	env := SetupTestRouter()
	now := env.Clock.Now()

	t.Run("seller_cancels_pending_auction", func(t *testing.T) {
		body := map[string]any{"name": "graphic novel set", "category": "BOOKS", "min_price": 30000}
		data, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/auctions", 1, body)
		require.Equal(t, http.StatusCreated, w.Code)
		auctionID := int64(data["auction_id"].(float64))

		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, requestURL("/auctions/%d/cancel", auctionID), 1, nil)
		require.Equal(t, http.StatusOK, w.Code)
		cancelled := resp["data"].(map[string]any)
		require.Equal(t, "CANCELLED", cancelled["status"])
	})

	t.Run("cannot_cancel_with_active_bids", func(t *testing.T) {
		auctionID := env.SeedRunningAuction(t, 1, 10000, model.CategoryElectronics, now.Add(time.Hour))
		require.NoError(t, env.Repo.RecordBid(context.Background(), model.NewBid(auctionID, 2, 15000, now)))

		_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, requestURL("/auctions/%d/cancel", auctionID), 1, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non_seller_cannot_cancel", func(t *testing.T) {
		auctionID := env.SeedRunningAuction(t, 1, 10000, model.CategoryFashion, now.Add(time.Hour))

		_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, requestURL("/auctions/%d/cancel", auctionID), 2, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestAuctionDetailsAPI(t *testing.T) {
	env := SetupTestRouter()
	now := env.Clock.Now()

	auctionID := env.SeedRunningAuction(t, 1, 10000, model.CategoryElectronics, now.Add(time.Hour))
	require.NoError(t, env.Repo.RecordBid(context.Background(), model.NewBid(auctionID, 2, 15000, now)))

	t.Run("viewer_sees_own_bid_state", func(t *testing.T) {
		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, requestURL("/auctions/%d", auctionID), 2, nil)
		require.Equal(t, http.StatusOK, w.Code)
		details := resp["data"].(map[string]any)
		require.Equal(t, true, details["has_bid"])
		require.Equal(t, float64(15000), details["my_bid_amount"])
		require.Equal(t, float64(model.InitialAdjustmentCount), details["remaining_adjustments"])
		require.Equal(t, float64(1), details["bid_count"])
		require.Equal(t, false, details["is_seller"])
	})

	t.Run("seller_view", func(t *testing.T) {
		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, requestURL("/auctions/%d", auctionID), 1, nil)
		require.Equal(t, http.StatusOK, w.Code)
		details := resp["data"].(map[string]any)
		require.Equal(t, true, details["is_seller"])
		require.Equal(t, false, details["has_bid"])
	})

	t.Run("pending_auction_hidden_from_others", func(t *testing.T) {
		body := map[string]any{"name": "unlisted", "category": "OTHER", "min_price": 5000}
		data, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/auctions", 1, body)
		require.Equal(t, http.StatusCreated, w.Code)
		pendingID := int64(data["auction_id"].(float64))

		_, w2 := ExecuteRequestAndParse(t, env.Router, http.MethodGet, requestURL("/auctions/%d", pendingID), 2, nil)
		require.Equal(t, http.StatusForbidden, w2.Code)

		resp, w3 := ExecuteRequestAndParse(t, env.Router, http.MethodGet, requestURL("/auctions/%d", pendingID), 1, nil)
		require.Equal(t, http.StatusOK, w3.Code)
		details := resp["data"].(map[string]any)
		require.Equal(t, "PENDING", details["status"])
	})

	t.Run("unknown_auction", func(t *testing.T) {
		_, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions/9999", 2, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListAuctionsAPI(t *testing.T) {
	env := SetupTestRouter()
	now := env.Clock.Now()

	cheap := env.SeedRunningAuction(t, 1, 10000, model.CategoryElectronics, now.Add(time.Hour))
	pricey := env.SeedRunningAuction(t, 1, 50000, model.CategoryElectronics, now.Add(time.Hour))
	env.SeedRunningAuction(t, 2, 30000, model.CategoryBooks, now.Add(time.Hour))
	require.NoError(t, env.Repo.RecordBid(context.Background(), model.NewBid(cheap, 5, 12000, now)))

	t.Run("category_filter", func(t *testing.T) {
		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions?category=ELECTRONICS", 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, float64(2), resp["total"])
		require.Len(t, resp["data"].([]any), 2)
	})

	t.Run("cheapest_first", func(t *testing.T) {
		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions?category=ELECTRONICS&sort=cheap", 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		rows := resp["data"].([]any)
		first := rows[0].(map[string]any)
		require.Equal(t, float64(cheap), first["auction_id"])
	})

	t.Run("most_expensive_first", func(t *testing.T) {
		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions?category=ELECTRONICS&sort=expensive", 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		rows := resp["data"].([]any)
		first := rows[0].(map[string]any)
		require.Equal(t, float64(pricey), first["auction_id"])
	})

	t.Run("participation_flag_for_viewer", func(t *testing.T) {
		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions?category=ELECTRONICS&sort=cheap", 5, nil)
		require.Equal(t, http.StatusOK, w.Code)
		rows := resp["data"].([]any)
		first := rows[0].(map[string]any)
		require.Equal(t, true, first["participating"])
		second := rows[1].(map[string]any)
		require.Equal(t, false, second["participating"])
	})

	t.Run("pagination", func(t *testing.T) {
		resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions?category=ELECTRONICS&sort=cheap&page=2&size=1", 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, float64(2), resp["total"])
		rows := resp["data"].([]any)
		require.Len(t, rows, 1)
		first := rows[0].(map[string]any)
		require.Equal(t, float64(pricey), first["auction_id"])
	})

	t.Run("invalid_category", func(t *testing.T) {
		_, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions?category=GADGETS", 0, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid_sort", func(t *testing.T) {
		_, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions?category=ELECTRONICS&sort=alphabetical", 0, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}
