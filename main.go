package main

import (
	"context"
	"fmt"
	"os"
	"time"

	auction "auction-market/internal/auctionService"
	bidding "auction-market/internal/bidService"
	"auction-market/internal/broadcast"
	"auction-market/internal/clock"
	"auction-market/internal/events"
	model "auction-market/internal/models"
	"auction-market/internal/repository"
	"auction-market/internal/repository/postgres"
	"auction-market/internal/server"
	"auction-market/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	ctx := context.Background()
	clk := clock.NewSystem()

	repo, cleanup, err := setupRepository(ctx, clk)
	if err != nil {
		utils.Fatal("failed to set up repository", map[string]any{"error": err.Error()})
	}
	defer cleanup()

	hub := broadcast.NewManager()
	go hub.Run()
	defer hub.Stop()

	publisher, closePublisher := setupPublisher(hub)
	defer closePublisher()

	auctionSvc := auction.NewAuctionService(repo, clk, publisher, auction.WithAuctionDuration(getAuctionDuration()))
	biddingSvc := bidding.NewBidService(repo, clk, publisher)
	feed := broadcast.NewHandler(hub)

	router := server.SetupRouter(auctionSvc, biddingSvc, feed)

	port := getPort()
	fmt.Printf("Starting auction server on %s...\n", port)
	if err := router.Run(port); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// setupRepository picks Postgres when DATABASE_URL is set, otherwise the
// in-memory repo with sample auctions for local development.
func setupRepository(ctx context.Context, clk clock.Clock) (repository.AuctionDB, func(), error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		utils.Info("using postgres repository", nil)
		return postgres.NewAuctionRepository(pool), pool.Close, nil
	}

	repo := repository.NewMemoryRepo()
	prepopulateAuctions(ctx, repo, clk)
	utils.Info("using in-memory repository", nil)
	return repo, func() {}, nil
}

// setupPublisher always feeds the live-feed hub and adds NATS when configured
func setupPublisher(hub *broadcast.Manager) (events.Publisher, func()) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		return hub, func() {}
	}

	natsPublisher, err := events.NewNATSPublisher(natsURL)
	if err != nil {
		utils.Warn("NATS unavailable, events stay in-process", map[string]any{"error": err.Error()})
		return hub, func() {}
	}
	utils.Info("publishing events to NATS", map[string]any{"url": natsURL})
	return events.NewFanout(hub, natsPublisher), natsPublisher.Close
}

// prepopulateAuctions adds sample running auctions to the in-memory repo
func prepopulateAuctions(ctx context.Context, repo *repository.MemoryRepo, clk clock.Clock) {
	samples := []struct {
		product  model.Product
		minPrice int64
	}{
		{model.Product{SellerID: 1, Name: "vintage camera", Description: "1970s rangefinder", Category: model.CategoryElectronics}, 50000},
		{model.Product{SellerID: 1, Name: "road bike", Description: "aluminium frame, 54cm", Category: model.CategorySportsLeisure}, 200000},
		{model.Product{SellerID: 2, Name: "graphic novel set", Description: "complete series", Category: model.CategoryBooks}, 30000},
	}

	now := clk.Now()
	for _, sample := range samples {
		a, err := model.NewAuction(sample.product, sample.minPrice, now)
		if err != nil {
			continue
		}
		if err := repo.CreateAuction(ctx, a); err != nil {
			continue
		}
		if err := a.Start(now.Add(24 * time.Hour)); err != nil {
			continue
		}
		_ = repo.UpdateAuction(ctx, a)
	}
}

// getPort returns the server port from env or defaults to ":8080"
func getPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return ":8080"
}

// getAuctionDuration returns how long started auctions run
func getAuctionDuration() time.Duration {
	if v := os.Getenv("AUCTION_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		utils.Warn("invalid AUCTION_DURATION, using default", map[string]any{"value": v})
	}
	return 24 * time.Hour
}
