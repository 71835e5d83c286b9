package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	auction "auction-market/internal/auctionService"
	bidding "auction-market/internal/bidService"
	"auction-market/internal/clock"
	"auction-market/internal/events"
	model "auction-market/internal/models"
	"auction-market/internal/repository"
	"auction-market/internal/server"

	"github.com/gin-gonic/gin"
)

// TestEnv bundles the router with the seeded repository so tests can
// arrange auction state directly.
type TestEnv struct {
	Router *gin.Engine
	Repo   *repository.MemoryRepo
	Clock  clock.Clock
}

// SetupTestRouter initializes the router with an in-memory repository for
// integration testing.
func SetupTestRouter() *TestEnv {
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	clk := clock.NewSystem()
	auctionService := auction.NewAuctionService(repo, clk, events.NoopPublisher{})
	biddingService := bidding.NewBidService(repo, clk, events.NoopPublisher{})
	router := server.SetupRouter(auctionService, biddingService, nil)

	return &TestEnv{Router: router, Repo: repo, Clock: clk}
}

// SeedRunningAuction stores a PROCEEDING auction directly in the repo and
// returns its id.
func (env *TestEnv) SeedRunningAuction(t *testing.T, sellerID, minPrice int64, category model.Category, endDateTime time.Time) int64 {
	t.Helper()

	product := model.Product{
		SellerID:    sellerID,
		Name:        "seeded product",
		Description: "seeded product description",
		Category:    category,
	}
	a, err := model.NewAuction(product, minPrice, env.Clock.Now())
	if err != nil {
		t.Fatalf("failed to build auction: %v", err)
	}
	if err := env.Repo.CreateAuction(context.Background(), a); err != nil {
		t.Fatalf("failed to seed auction: %v", err)
	}
	if err := a.Start(endDateTime); err != nil {
		t.Fatalf("failed to start seeded auction: %v", err)
	}
	if err := env.Repo.UpdateAuction(context.Background(), a); err != nil {
		t.Fatalf("failed to persist seeded auction: %v", err)
	}
	return a.AuctionID
}

// requestURL formats a path with the given ids
func requestURL(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// ExecuteRequest executes an HTTP request as the given user and returns the
// response recorder. A zero userID sends no identity header.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, userID int64, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set(server.UserIDHeader, strconv.FormatInt(userID, 10))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and
// parses the response. Created responses are unwrapped to their data payload.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, userID int64, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case []byte:
		reqBody = v
	case nil:
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(t, router, method, url, userID, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		if w.Code == 201 {
			resp = resp["data"].(map[string]any)
		}
	}

	return resp, w
}
