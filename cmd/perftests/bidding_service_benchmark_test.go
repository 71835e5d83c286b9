package perftests

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	bidding "auction-market/internal/bidService"
	"auction-market/internal/clock"
	"auction-market/internal/events"
	model "auction-market/internal/models"
	repository "auction-market/internal/repository"
)

// seedAuction stores one running auction and returns its id
func seedAuction(b *testing.B, repo *repository.MemoryRepo, minPrice int64) int64 {
	b.Helper()

	now := time.Now().UTC()
	product := model.Product{
		SellerID:    1,
		Name:        "benchmark product",
		Description: "benchmark product description",
		Category:    model.CategoryElectronics,
	}
	auction, err := model.NewAuction(product, minPrice, now)
	if err != nil {
		b.Fatalf("failed to build auction: %v", err)
	}
	if err := repo.CreateAuction(context.Background(), auction); err != nil {
		b.Fatalf("failed to seed auction: %v", err)
	}
	if err := auction.Start(now.Add(24 * time.Hour)); err != nil {
		b.Fatalf("failed to start auction: %v", err)
	}
	if err := repo.UpdateAuction(context.Background(), auction); err != nil {
		b.Fatalf("failed to persist auction: %v", err)
	}
	return auction.AuctionID
}

// Benchmark 1: CreateBid - Isolated Auctions (Low Contention - Micro Benchmark)
func Benchmark_CreateBid_Isolated(b *testing.B) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBidService(repo, clock.NewSystem(), events.NoopPublisher{})

	auctionIDs := make([]int64, b.N)
	for i := 0; i < b.N; i++ {
		auctionIDs[i] = seedAuction(b, repo, 1000)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		bidderID := int64(i + 2)
		amount := int64(1000 * (rand.Intn(100) + 1))
		if _, err := svc.CreateBid(ctx, auctionIDs[i], bidderID, amount); err != nil {
			b.Fatalf("failed to create bid: %v", err)
		}
	}
}

// Benchmark 2: CreateBid - Shared Auction (High Contention - Concurrency Benchmark)
func Benchmark_CreateBid_ConcurrentSharedAuction(b *testing.B) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBidService(repo, clock.NewSystem(), events.NoopPublisher{})

	auctionID := seedAuction(b, repo, 1000)

	b.ReportAllocs()
	b.ResetTimer()

	var nextBidder int64 = 1 // seller holds id 1; bidders start above it

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			bidderID := atomic.AddInt64(&nextBidder, 1)
			amount := int64(1000 * (rnd.Intn(100) + 1))
			_, _ = svc.CreateBid(ctx, auctionID, bidderID, amount)
		}
	})
}

// Benchmark 3: GetWinningBid - Single-Threaded (Low Contention)
func Benchmark_GetWinningBid_SingleThreaded(b *testing.B) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBidService(repo, clock.NewSystem(), events.NoopPublisher{})

	auctionIDs := make([]int64, b.N)
	for i := 0; i < b.N; i++ {
		auctionIDs[i] = seedAuction(b, repo, 1000)
		for j := 0; j < 10; j++ {
			bidderID := int64(j + 2)
			amount := int64(1000 * (j + 1))
			if _, err := svc.CreateBid(ctx, auctionIDs[i], bidderID, amount); err != nil {
				b.Fatalf("failed to seed bid: %v", err)
			}
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := svc.GetWinningBid(ctx, auctionIDs[i]); err != nil {
			b.Fatalf("failed to get winning bid: %v", err)
		}
	}
}

// Benchmark 4: GetWinningBid - Concurrent (High Contention)
func Benchmark_GetWinningBid_ConcurrentSharedAuction(b *testing.B) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBidService(repo, clock.NewSystem(), events.NoopPublisher{})

	auctionID := seedAuction(b, repo, 1000)
	for j := 0; j < 100; j++ {
		bidderID := int64(j + 2)
		amount := int64(1000 * (j + 1))
		if _, err := svc.CreateBid(ctx, auctionID, bidderID, amount); err != nil {
			b.Fatalf("failed to seed bid: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	var counter int64

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.GetWinningBid(ctx, auctionID); err != nil {
				b.Fatalf("failed to get winning bid: %v", err)
			}
			atomic.AddInt64(&counter, 1)
		}
	})
}

// Benchmark 5: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_SharedAuction(b *testing.B) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBidService(repo, clock.NewSystem(), events.NoopPublisher{})

	auctionID := seedAuction(b, repo, 1000)
	for j := 0; j < 50; j++ {
		bidderID := int64(j + 2)
		amount := int64(1000 * (j + 1))
		if _, err := svc.CreateBid(ctx, auctionID, bidderID, amount); err != nil {
			b.Fatalf("failed to seed bid: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	var nextBidder int64 = 100
	var counter int64

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			opType := rnd.Intn(10)
			switch {
			case opType < 3:
				// Writer: place a new bid
				bidderID := atomic.AddInt64(&nextBidder, 1)
				amount := int64(1000 * (rnd.Intn(100) + 1))
				_, _ = svc.CreateBid(ctx, auctionID, bidderID, amount)
			default:
				// Reader: get winning bid
				_, _ = svc.GetWinningBid(ctx, auctionID)
			}
			atomic.AddInt64(&counter, 1)
		}
	})
}
