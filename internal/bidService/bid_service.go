package bidding

import (
	"context"
	"fmt"

	"auction-market/internal/auctionerrors"
	"auction-market/internal/clock"
	"auction-market/internal/events"
	"auction-market/internal/models"
	"auction-market/internal/repository"
)

// BidService defines the business logic for bid submission and bid reads
type BidService struct {
	repo      repository.AuctionDB
	clock     clock.Clock
	publisher events.Publisher
}

// NewBidService creates a new BidService instance
func NewBidService(repo repository.AuctionDB, clk clock.Clock, publisher events.Publisher) *BidService {
	return &BidService{
		repo:      repo,
		clock:     clk,
		publisher: publisher,
	}
}

// CreateBid validates and records a bid as one transaction. A first bid
// inserts a row with a full adjustment count; a repeat bid amends the
// bidder's existing row instead of adding a second one.
func (s *BidService) CreateBid(ctx context.Context, auctionID, bidderID, amount int64) (models.Bid, error) {
	if auctionID <= 0 || bidderID <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - missing auction or bidder id", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	now := s.clock.Now()
	var result models.Bid

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		auction, err := s.repo.GetAuctionForUpdate(txCtx, auctionID)
		if err != nil {
			return err
		}
		if auction.SellerID() == bidderID {
			return fmt.Errorf("auction %d: %w", auctionID, auctionerrors.ErrBidByOwner)
		}
		if err := auction.ValidateAcceptingBids(now); err != nil {
			return err
		}
		if !auction.IsAboveMinPrice(amount) {
			return fmt.Errorf("auction %d min price %d: %w", auctionID, auction.MinPrice, auctionerrors.ErrBidBelowMinPrice)
		}

		existing, err := s.repo.FindBidByAuctionAndBidder(txCtx, auctionID, bidderID)
		if err != nil {
			return err
		}
		if existing == nil {
			bid := models.NewBid(auctionID, bidderID, amount, now)
			if err := s.repo.RecordBid(txCtx, bid); err != nil {
				return err
			}
			result = *bid
			return nil
		}

		if existing.Status == models.BidCancelled {
			existing.Reactivate(amount, now)
		} else if err := existing.AdjustAmount(amount, now); err != nil {
			return err
		}
		if err := s.repo.UpdateBid(txCtx, existing); err != nil {
			return err
		}
		result = *existing
		return nil
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for auction %d by user %d: %w", auctionID, bidderID, err)
	}

	s.publisher.Publish(events.NewBidPlaced(&result, now))
	return result, nil
}

// CancelBid logically cancels the bidder's standing bid while the auction
// is still accepting bids. The row stays in place; a later re-bid
// reactivates it with a fresh adjustment count.
func (s *BidService) CancelBid(ctx context.Context, auctionID, bidderID int64) error {
	if auctionID <= 0 || bidderID <= 0 {
		return fmt.Errorf("service: %w - missing auction or bidder id", auctionerrors.ErrInvalidBid)
	}

	now := s.clock.Now()

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		auction, err := s.repo.GetAuctionForUpdate(txCtx, auctionID)
		if err != nil {
			return err
		}
		if err := auction.ValidateAcceptingBids(now); err != nil {
			return err
		}

		existing, err := s.repo.FindBidByAuctionAndBidder(txCtx, auctionID, bidderID)
		if err != nil {
			return err
		}
		if existing == nil || existing.Status != models.BidActive {
			return fmt.Errorf("auction %d bidder %d: %w", auctionID, bidderID, auctionerrors.ErrBidNotFound)
		}

		existing.Cancel()
		existing.UpdatedAt = now
		return s.repo.UpdateBid(txCtx, existing)
	})
	if err != nil {
		return fmt.Errorf("service: failed to cancel bid for auction %d by user %d: %w", auctionID, bidderID, err)
	}
	return nil
}

// GetBidsForAuction returns the active bids for an auction, highest first
func (s *BidService) GetBidsForAuction(ctx context.Context, auctionID int64) ([]models.Bid, error) {
	if auctionID <= 0 {
		return nil, fmt.Errorf("service: %w - missing auction id", auctionerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %d: %w", auctionID, err)
	}
	return bids, nil
}

// GetWinningBid returns the highest active bid for an auction
func (s *BidService) GetWinningBid(ctx context.Context, auctionID int64) (models.Bid, error) {
	if auctionID <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - missing auction id", auctionerrors.ErrInvalidBid)
	}

	winningBid, err := s.repo.GetWinningBid(ctx, auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %d: %w", auctionID, err)
	}
	return winningBid, nil
}

// GetAuctionsByBidder returns the auctions a user has an active bid on
func (s *BidService) GetAuctionsByBidder(ctx context.Context, bidderID int64) ([]models.AuctionSummary, error) {
	if bidderID <= 0 {
		return nil, fmt.Errorf("service: %w - missing bidder id", auctionerrors.ErrInvalidBid)
	}

	auctions, err := s.repo.GetAuctionsByBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for bidder %d: %w", bidderID, err)
	}
	return auctions, nil
}
