package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-market/internal/auctionerrors"
	model "auction-market/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuctionRepository is the Postgres implementation of repository.AuctionDB.
// Concurrent bid submissions for one auction are serialized by the auction
// row lock taken in GetAuctionForUpdate plus the unique (auction_id,
// bidder_id) constraint.
type AuctionRepository struct {
	pool *pgxpool.Pool
}

// NewAuctionRepository creates a repository backed by the given pool
func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

// WithTx runs fn inside a single transaction
func (r *AuctionRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const auctionColumns = `
a.auction_id, a.product_id, p.seller_id, p.name, p.description, p.category,
a.min_price, a.status, a.end_date_time, a.winner_id, a.created_at, a.updated_at`

// CreateAuction inserts the product and its PENDING auction
func (r *AuctionRepository) CreateAuction(ctx context.Context, auction *model.Auction) error {
	const productStmt = `
INSERT INTO products (seller_id, name, description, category)
VALUES ($1, $2, $3, $4)
RETURNING product_id`

	err := r.queryRow(ctx, productStmt,
		auction.Product.SellerID,
		auction.Product.Name,
		auction.Product.Description,
		auction.Product.Category,
	).Scan(&auction.Product.ProductID)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	const auctionStmt = `
INSERT INTO auctions (product_id, min_price, status, end_date_time, winner_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING auction_id`

	err = r.queryRow(ctx, auctionStmt,
		auction.Product.ProductID,
		auction.MinPrice,
		auction.Status,
		nullableTime(auction.EndDateTime),
		auction.WinnerID,
		auction.CreatedAt,
		auction.UpdatedAt,
	).Scan(&auction.AuctionID)
	if err != nil {
		return fmt.Errorf("create auction: %w", err)
	}
	return nil
}

// GetAuction loads an auction with its bid collection
func (r *AuctionRepository) GetAuction(ctx context.Context, auctionID int64) (*model.Auction, error) {
	query := `SELECT ` + auctionColumns + `
FROM auctions a JOIN products p ON p.product_id = a.product_id
WHERE a.auction_id = $1`
	return r.loadAuction(ctx, query, auctionID)
}

// GetAuctionForUpdate loads an auction and locks its row for the duration
// of the surrounding transaction.
func (r *AuctionRepository) GetAuctionForUpdate(ctx context.Context, auctionID int64) (*model.Auction, error) {
	query := `SELECT ` + auctionColumns + `
FROM auctions a JOIN products p ON p.product_id = a.product_id
WHERE a.auction_id = $1
FOR UPDATE OF a`
	return r.loadAuction(ctx, query, auctionID)
}

func (r *AuctionRepository) loadAuction(ctx context.Context, query string, auctionID int64) (*model.Auction, error) {
	var (
		a   model.Auction
		end *time.Time
	)
	err := r.queryRow(ctx, query, auctionID).Scan(
		&a.AuctionID, &a.Product.ProductID, &a.Product.SellerID,
		&a.Product.Name, &a.Product.Description, &a.Product.Category,
		&a.MinPrice, &a.Status, &end, &a.WinnerID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
		}
		return nil, fmt.Errorf("get auction %d: %w", auctionID, err)
	}
	if end != nil {
		a.EndDateTime = *end
	}

	const bidsQuery = `
SELECT bid_id, auction_id, bidder_id, amount, count, status, created_at, updated_at
FROM bids
WHERE auction_id = $1
ORDER BY created_at`

	rows, err := r.query(ctx, bidsQuery, auctionID)
	if err != nil {
		return nil, fmt.Errorf("load bids for auction %d: %w", auctionID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.BidID, &b.AuctionID, &b.BidderID, &b.Amount, &b.Count, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		a.Bids = append(a.Bids, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load bids for auction %d: %w", auctionID, err)
	}
	return &a, nil
}

// UpdateAuction persists lifecycle changes (status, end time, winner)
func (r *AuctionRepository) UpdateAuction(ctx context.Context, auction *model.Auction) error {
	const stmt = `
UPDATE auctions
SET status = $2, end_date_time = $3, winner_id = $4, updated_at = $5
WHERE auction_id = $1`

	tag, err := r.exec(ctx, stmt,
		auction.AuctionID,
		auction.Status,
		nullableTime(auction.EndDateTime),
		auction.WinnerID,
		auction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update auction %d: %w", auction.AuctionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update auction %d: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

// ListAuctionsByCategory returns PROCEEDING auctions for a category with
// the total matching count.
func (r *AuctionRepository) ListAuctionsByCategory(ctx context.Context, category model.Category, sort model.SortType, viewerID int64, offset, limit int) ([]model.AuctionSummary, int, error) {
	orderBy := "a.created_at DESC"
	switch sort {
	case model.SortCheap:
		orderBy = "a.min_price ASC"
	case model.SortExpensive:
		orderBy = "a.min_price DESC"
	case model.SortPopularity:
		orderBy = "bid_count DESC"
	}

	query := `
SELECT a.auction_id, p.name, p.category, a.min_price, a.status, a.end_date_time,
       (SELECT COUNT(*) FROM bids b WHERE b.auction_id = a.auction_id AND b.status = 'ACTIVE') AS bid_count,
       EXISTS (SELECT 1 FROM bids b WHERE b.auction_id = a.auction_id AND b.bidder_id = $2 AND b.status = 'ACTIVE'),
       a.created_at
FROM auctions a
JOIN products p ON p.product_id = a.product_id
WHERE p.category = $1 AND a.status = 'PROCEEDING'
ORDER BY ` + orderBy + `
LIMIT $3 OFFSET $4`

	rows, err := r.query(ctx, query, category, viewerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list auctions by category %s: %w", category, err)
	}
	defer rows.Close()

	summaries, err := scanSummaries(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list auctions by category %s: %w", category, err)
	}

	const countQuery = `
SELECT COUNT(*)
FROM auctions a
JOIN products p ON p.product_id = a.product_id
WHERE p.category = $1 AND a.status = 'PROCEEDING'`

	var total int
	if err := r.queryRow(ctx, countQuery, category).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count auctions by category %s: %w", category, err)
	}
	return summaries, total, nil
}

// RecordBid inserts a new bid and assigns its id
func (r *AuctionRepository) RecordBid(ctx context.Context, bid *model.Bid) error {
	const stmt = `
INSERT INTO bids (auction_id, bidder_id, amount, count, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING bid_id`

	err := r.queryRow(ctx, stmt,
		bid.AuctionID,
		bid.BidderID,
		bid.Amount,
		bid.Count,
		bid.Status,
		bid.CreatedAt,
		bid.UpdatedAt,
	).Scan(&bid.BidID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, auctionerrors.ErrInvalidBid)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
		}
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, err)
	}
	return nil
}

// UpdateBid persists an amendment or cancellation of an existing row
func (r *AuctionRepository) UpdateBid(ctx context.Context, bid *model.Bid) error {
	const stmt = `
UPDATE bids
SET amount = $3, count = $4, status = $5, updated_at = $6
WHERE auction_id = $1 AND bidder_id = $2`

	tag, err := r.exec(ctx, stmt, bid.AuctionID, bid.BidderID, bid.Amount, bid.Count, bid.Status, bid.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update bid for auction %d: %w", bid.AuctionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update bid for auction %d: %w", bid.AuctionID, auctionerrors.ErrBidNotFound)
	}
	return nil
}

// FindBidByAuctionAndBidder returns the bidder's row regardless of status,
// or nil when the bidder never bid on the auction.
func (r *AuctionRepository) FindBidByAuctionAndBidder(ctx context.Context, auctionID, bidderID int64) (*model.Bid, error) {
	const query = `
SELECT bid_id, auction_id, bidder_id, amount, count, status, created_at, updated_at
FROM bids
WHERE auction_id = $1 AND bidder_id = $2`

	var b model.Bid
	err := r.queryRow(ctx, query, auctionID, bidderID).
		Scan(&b.BidID, &b.AuctionID, &b.BidderID, &b.Amount, &b.Count, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find bid for auction %d: %w", auctionID, err)
	}
	return &b, nil
}

// GetBidsByAuction returns active bids, highest amount first
func (r *AuctionRepository) GetBidsByAuction(ctx context.Context, auctionID int64) ([]model.Bid, error) {
	const query = `
SELECT bid_id, auction_id, bidder_id, amount, count, status, created_at, updated_at
FROM bids
WHERE auction_id = $1 AND status = 'ACTIVE'
ORDER BY amount DESC, created_at ASC`

	rows, err := r.query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %d: %w", auctionID, err)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.BidID, &b.AuctionID, &b.BidderID, &b.Amount, &b.Count, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get bids for auction %d: %w", auctionID, err)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %d: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return bids, nil
}

// GetWinningBid returns the highest active bid, earliest on ties
func (r *AuctionRepository) GetWinningBid(ctx context.Context, auctionID int64) (model.Bid, error) {
	const query = `
SELECT bid_id, auction_id, bidder_id, amount, count, status, created_at, updated_at
FROM bids
WHERE auction_id = $1 AND status = 'ACTIVE'
ORDER BY amount DESC, created_at ASC
LIMIT 1`

	var b model.Bid
	err := r.queryRow(ctx, query, auctionID).
		Scan(&b.BidID, &b.AuctionID, &b.BidderID, &b.Amount, &b.Count, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Bid{}, fmt.Errorf("get winning bid for auction %d: %w", auctionID, auctionerrors.ErrNoBids)
		}
		return model.Bid{}, fmt.Errorf("get winning bid for auction %d: %w", auctionID, err)
	}
	return b, nil
}

// GetAuctionsByBidder returns summaries of auctions the bidder has an
// active bid on, newest first.
func (r *AuctionRepository) GetAuctionsByBidder(ctx context.Context, bidderID int64) ([]model.AuctionSummary, error) {
	const query = `
SELECT a.auction_id, p.name, p.category, a.min_price, a.status, a.end_date_time,
       (SELECT COUNT(*) FROM bids b2 WHERE b2.auction_id = a.auction_id AND b2.status = 'ACTIVE') AS bid_count,
       TRUE,
       a.created_at
FROM bids b
JOIN auctions a ON a.auction_id = b.auction_id
JOIN products p ON p.product_id = a.product_id
WHERE b.bidder_id = $1 AND b.status = 'ACTIVE'
ORDER BY a.created_at DESC`

	rows, err := r.query(ctx, query, bidderID)
	if err != nil {
		return nil, fmt.Errorf("get auctions for bidder %d: %w", bidderID, err)
	}
	defer rows.Close()

	summaries, err := scanSummaries(rows)
	if err != nil {
		return nil, fmt.Errorf("get auctions for bidder %d: %w", bidderID, err)
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("get auctions for bidder %d: %w", bidderID, auctionerrors.ErrNoParticipation)
	}
	return summaries, nil
}

func scanSummaries(rows pgx.Rows) ([]model.AuctionSummary, error) {
	var summaries []model.AuctionSummary
	for rows.Next() {
		var (
			s   model.AuctionSummary
			end *time.Time
		)
		if err := rows.Scan(&s.AuctionID, &s.ProductName, &s.Category, &s.MinPrice, &s.Status, &end, &s.BidCount, &s.Participating, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan auction summary: %w", err)
		}
		if end != nil {
			s.EndDateTime = *end
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func (r *AuctionRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *AuctionRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *AuctionRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}
