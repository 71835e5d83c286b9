package repository

import (
	"context"

	model "auction-market/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionDB defines the storage interface for the auction system.
// WithTx runs fn inside one transaction; every other method joins the
// transaction carried by its context, if any.
type AuctionDB interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateAuction(ctx context.Context, auction *model.Auction) error
	GetAuction(ctx context.Context, auctionID int64) (*model.Auction, error)
	GetAuctionForUpdate(ctx context.Context, auctionID int64) (*model.Auction, error)
	UpdateAuction(ctx context.Context, auction *model.Auction) error
	ListAuctionsByCategory(ctx context.Context, category model.Category, sort model.SortType, viewerID int64, offset, limit int) ([]model.AuctionSummary, int, error)

	RecordBid(ctx context.Context, bid *model.Bid) error
	UpdateBid(ctx context.Context, bid *model.Bid) error
	FindBidByAuctionAndBidder(ctx context.Context, auctionID, bidderID int64) (*model.Bid, error)
	GetBidsByAuction(ctx context.Context, auctionID int64) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, auctionID int64) (model.Bid, error)
	GetAuctionsByBidder(ctx context.Context, bidderID int64) ([]model.AuctionSummary, error)
}
