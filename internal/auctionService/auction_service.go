package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-market/internal/auctionerrors"
	"auction-market/internal/clock"
	"auction-market/internal/events"
	"auction-market/internal/models"
	"auction-market/internal/repository"
)

const defaultAuctionDuration = 24 * time.Hour

// AuctionService owns auction lifecycle transitions and read views
type AuctionService struct {
	repo            repository.AuctionDB
	clock           clock.Clock
	publisher       events.Publisher
	auctionDuration time.Duration
}

// Option configures an AuctionService
type Option func(*AuctionService)

// WithAuctionDuration overrides how long a started auction runs
func WithAuctionDuration(d time.Duration) Option {
	return func(s *AuctionService) {
		if d > 0 {
			s.auctionDuration = d
		}
	}
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, clk clock.Clock, publisher events.Publisher, opts ...Option) *AuctionService {
	svc := &AuctionService{
		repo:            repo,
		clock:           clk,
		publisher:       publisher,
		auctionDuration: defaultAuctionDuration,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// RegisterInput carries the fields needed to promote a product to auction
type RegisterInput struct {
	SellerID    int64
	Name        string
	Description string
	Category    models.Category
	MinPrice    int64
}

// RegisterAuction persists the product and its PENDING auction
func (s *AuctionService) RegisterAuction(ctx context.Context, in RegisterInput) (models.Auction, error) {
	now := s.clock.Now()

	product := models.Product{
		SellerID:    in.SellerID,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
	}
	auction, err := models.NewAuction(product, in.MinPrice, now)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to register auction: %w", err)
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.CreateAuction(txCtx, auction)
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to register auction: %w", err)
	}
	return *auction, nil
}

// StartAuction transitions a PENDING auction to PROCEEDING. Only the seller
// may start it; the end time is now plus the configured duration.
func (s *AuctionService) StartAuction(ctx context.Context, auctionID, callerID int64) (models.Auction, error) {
	now := s.clock.Now()
	var result models.Auction

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		auction, err := s.repo.GetAuctionForUpdate(txCtx, auctionID)
		if err != nil {
			return err
		}
		if auction.SellerID() != callerID {
			return fmt.Errorf("auction %d: %w", auctionID, auctionerrors.ErrForbidden)
		}
		if err := auction.Start(now.Add(s.auctionDuration)); err != nil {
			return err
		}
		auction.UpdatedAt = now
		if err := s.repo.UpdateAuction(txCtx, auction); err != nil {
			return err
		}
		result = *auction
		return nil
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to start auction %d: %w", auctionID, err)
	}

	s.publisher.Publish(events.NewAuctionStarted(result.AuctionID, now))
	return result, nil
}

// EndAuction transitions a PROCEEDING auction whose end time has passed to
// ENDED and assigns the winner. It is the entry point for the external
// expiry collaborator; calls before the end time fail with an invalid-state
// error.
func (s *AuctionService) EndAuction(ctx context.Context, auctionID int64) (models.Auction, error) {
	now := s.clock.Now()
	var result models.Auction

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		auction, err := s.repo.GetAuctionForUpdate(txCtx, auctionID)
		if err != nil {
			return err
		}

		var winnerID *int64
		winningBid, err := s.repo.GetWinningBid(txCtx, auctionID)
		switch {
		case err == nil:
			winnerID = &winningBid.BidderID
		case errors.Is(err, auctionerrors.ErrNoBids):
			// Ends without a winner.
		default:
			return err
		}

		if err := auction.End(now, winnerID); err != nil {
			return err
		}
		auction.UpdatedAt = now
		if err := s.repo.UpdateAuction(txCtx, auction); err != nil {
			return err
		}
		result = *auction
		return nil
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to end auction %d: %w", auctionID, err)
	}

	s.publisher.Publish(events.NewAuctionEnded(result.AuctionID, result.WinnerID, now))
	return result, nil
}

// CancelAuction transitions an auction to CANCELLED. Only the seller may
// cancel, and only while PENDING or while PROCEEDING with no active bids.
func (s *AuctionService) CancelAuction(ctx context.Context, auctionID, callerID int64) (models.Auction, error) {
	now := s.clock.Now()
	var result models.Auction

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		auction, err := s.repo.GetAuctionForUpdate(txCtx, auctionID)
		if err != nil {
			return err
		}
		if auction.SellerID() != callerID {
			return fmt.Errorf("auction %d: %w", auctionID, auctionerrors.ErrForbidden)
		}
		if err := auction.Cancel(); err != nil {
			return err
		}
		auction.UpdatedAt = now
		if err := s.repo.UpdateAuction(txCtx, auction); err != nil {
			return err
		}
		result = *auction
		return nil
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to cancel auction %d: %w", auctionID, err)
	}

	s.publisher.Publish(events.NewAuctionCancelled(result.AuctionID, now))
	return result, nil
}

// GetAuction returns the auction or a not-found error
func (s *AuctionService) GetAuction(ctx context.Context, auctionID int64) (models.Auction, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}
	return *auction, nil
}

// GetAuctionDetails builds the single-auction view for a viewer, including
// the viewer's own bid state. PENDING and CANCELLED auctions are visible
// only to their seller.
func (s *AuctionService) GetAuctionDetails(ctx context.Context, auctionID, viewerID int64) (models.AuctionDetails, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.AuctionDetails{}, fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}

	isSeller := auction.SellerID() == viewerID
	if !isSeller && auction.Status != models.AuctionProceeding && auction.Status != models.AuctionEnded {
		return models.AuctionDetails{}, fmt.Errorf("service: auction %d not accessible: %w", auctionID, auctionerrors.ErrForbidden)
	}

	details := models.AuctionDetails{
		AuctionID:   auction.AuctionID,
		ProductID:   auction.Product.ProductID,
		SellerID:    auction.SellerID(),
		ProductName: auction.Product.Name,
		Description: auction.Product.Description,
		Category:    auction.Product.Category,
		MinPrice:    auction.MinPrice,
		Status:      auction.Status,
		EndDateTime: auction.EndDateTime,
		WinnerID:    auction.WinnerID,
		BidCount:    auction.ActiveBidCount(),
		IsSeller:    isSeller,
	}

	for _, bid := range auction.Bids {
		if bid.BidderID == viewerID && bid.Status == models.BidActive {
			details.HasBid = true
			details.MyBidAmount = bid.Amount
			details.RemainingAdjustments = bid.Count
			break
		}
	}
	return details, nil
}

// ListAuctionsByCategory returns the PROCEEDING auctions in a category,
// sorted and paginated, along with the total matching count.
func (s *AuctionService) ListAuctionsByCategory(ctx context.Context, category models.Category, sort models.SortType, viewerID int64, page, size int) ([]models.AuctionSummary, int, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	summaries, total, err := s.repo.ListAuctionsByCategory(ctx, category, sort, viewerID, (page-1)*size, size)
	if err != nil {
		return nil, 0, fmt.Errorf("service: failed to list auctions for category %s: %w", category, err)
	}
	return summaries, total, nil
}
