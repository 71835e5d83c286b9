package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"auction-market/internal/auctionerrors"
	model "auction-market/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB,
// used by tests and by dev mode when no database is configured.
type MemoryRepo struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	auctions      map[int64]*model.Auction
	nextAuctionID int64
	nextBidID     int64
	nextProductID int64
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions: make(map[int64]*model.Auction),
	}
}

// WithTx serializes the function against all other transactions. The memory
// repo has no rollback; callers must not rely on partial-write recovery here,
// only on mutual exclusion (which is what bid submission needs).
func (r *MemoryRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(ctx)
}

// CreateAuction stores a new auction and assigns its identifiers
func (r *MemoryRepo) CreateAuction(_ context.Context, auction *model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextAuctionID++
	r.nextProductID++
	auction.AuctionID = r.nextAuctionID
	auction.Product.ProductID = r.nextProductID

	stored := copyAuction(auction)
	r.auctions[auction.AuctionID] = stored
	return nil
}

// GetAuction returns the auction with its bid collection
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID int64) (*model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("get auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return copyAuction(a), nil
}

// GetAuctionForUpdate behaves like GetAuction; exclusion comes from WithTx
func (r *MemoryRepo) GetAuctionForUpdate(ctx context.Context, auctionID int64) (*model.Auction, error) {
	return r.GetAuction(ctx, auctionID)
}

// UpdateAuction replaces the stored auction state, bids excluded
func (r *MemoryRepo) UpdateAuction(_ context.Context, auction *model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.auctions[auction.AuctionID]
	if !ok {
		return fmt.Errorf("update auction %d: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	stored.Status = auction.Status
	stored.EndDateTime = auction.EndDateTime
	stored.WinnerID = auction.WinnerID
	stored.UpdatedAt = auction.UpdatedAt
	return nil
}

// ListAuctionsByCategory returns PROCEEDING auctions in a category, sorted
// and paginated, with the total matching count.
func (r *MemoryRepo) ListAuctionsByCategory(_ context.Context, category model.Category, sortType model.SortType, viewerID int64, offset, limit int) ([]model.AuctionSummary, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []model.AuctionSummary
	for _, a := range r.auctions {
		if a.Product.Category != category || a.Status != model.AuctionProceeding {
			continue
		}
		rows = append(rows, r.summarize(a, viewerID))
	}

	switch sortType {
	case model.SortCheap:
		sort.Slice(rows, func(i, j int) bool { return rows[i].MinPrice < rows[j].MinPrice })
	case model.SortExpensive:
		sort.Slice(rows, func(i, j int) bool { return rows[i].MinPrice > rows[j].MinPrice })
	case model.SortPopularity:
		sort.Slice(rows, func(i, j int) bool { return rows[i].BidCount > rows[j].BidCount })
	default:
		sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	}

	total := len(rows)
	if offset >= total {
		return []model.AuctionSummary{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return rows[offset:end], total, nil
}

// RecordBid registers a new bid on its auction and assigns the bid id
func (r *MemoryRepo) RecordBid(_ context.Context, bid *model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[bid.AuctionID]
	if !ok {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}

	r.nextBidID++
	bid.BidID = r.nextBidID

	stored := *bid
	a.RegisterBid(&stored)
	return nil
}

// UpdateBid replaces the stored state of an existing bid row
func (r *MemoryRepo) UpdateBid(_ context.Context, bid *model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[bid.AuctionID]
	if !ok {
		return fmt.Errorf("update bid for auction %d: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	for _, b := range a.Bids {
		if b.BidderID == bid.BidderID {
			b.Amount = bid.Amount
			b.Count = bid.Count
			b.Status = bid.Status
			b.UpdatedAt = bid.UpdatedAt
			return nil
		}
	}
	return fmt.Errorf("update bid %d: %w", bid.BidID, auctionerrors.ErrBidNotFound)
}

// FindBidByAuctionAndBidder returns the bidder's row for the auction,
// regardless of status, or nil when the bidder never bid.
func (r *MemoryRepo) FindBidByAuctionAndBidder(_ context.Context, auctionID, bidderID int64) (*model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("find bid for auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	for _, b := range a.Bids {
		if b.BidderID == bidderID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

// GetBidsByAuction returns active bids for an auction, highest amount first
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID int64) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("get bids for auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	var bids []model.Bid
	for _, b := range a.Bids {
		if b.Status == model.BidActive {
			bids = append(bids, *b)
		}
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %d: %w", auctionID, auctionerrors.ErrNoBids)
	}
	sort.Slice(bids, func(i, j int) bool {
		if bids[i].Amount != bids[j].Amount {
			return bids[i].Amount > bids[j].Amount
		}
		return bids[i].CreatedAt.Before(bids[j].CreatedAt)
	})
	return bids, nil
}

// GetWinningBid returns the highest active bid, earliest on ties
func (r *MemoryRepo) GetWinningBid(ctx context.Context, auctionID int64) (model.Bid, error) {
	bids, err := r.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("get winning bid: %w", err)
	}
	return bids[0], nil
}

// GetAuctionsByBidder returns summaries of auctions the bidder has an
// active bid on.
func (r *MemoryRepo) GetAuctionsByBidder(_ context.Context, bidderID int64) ([]model.AuctionSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []model.AuctionSummary
	for _, a := range r.auctions {
		for _, b := range a.Bids {
			if b.BidderID == bidderID && b.Status == model.BidActive {
				rows = append(rows, r.summarize(a, bidderID))
				break
			}
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("get auctions for bidder %d: %w", bidderID, auctionerrors.ErrNoParticipation)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

// summarize builds a listing row; callers must hold at least a read lock
func (r *MemoryRepo) summarize(a *model.Auction, viewerID int64) model.AuctionSummary {
	participating := false
	for _, b := range a.Bids {
		if b.BidderID == viewerID && b.Status == model.BidActive {
			participating = true
			break
		}
	}
	return model.AuctionSummary{
		AuctionID:     a.AuctionID,
		ProductName:   a.Product.Name,
		Category:      a.Product.Category,
		MinPrice:      a.MinPrice,
		Status:        a.Status,
		EndDateTime:   a.EndDateTime,
		BidCount:      a.ActiveBidCount(),
		Participating: participating,
		CreatedAt:     a.CreatedAt,
	}
}

func copyAuction(a *model.Auction) *model.Auction {
	copied := *a
	copied.Bids = make([]*model.Bid, 0, len(a.Bids))
	for _, b := range a.Bids {
		bc := *b
		copied.Bids = append(copied.Bids, &bc)
	}
	return &copied
}
