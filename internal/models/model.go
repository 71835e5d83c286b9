package models

import (
	"fmt"
	"time"

	"auction-market/internal/auctionerrors"
)

// User represents a participant in the marketplace
type User struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// Category classifies a product
type Category string

const (
	CategoryElectronics    Category = "ELECTRONICS"
	CategoryFashion        Category = "FASHION"
	CategoryBooks          Category = "BOOKS"
	CategoryHomeAppliances Category = "HOME_APPLIANCES"
	CategorySportsLeisure  Category = "SPORTS_LEISURE"
	CategoryToysHobbies    Category = "TOYS_HOBBIES"
	CategoryOther          Category = "OTHER"
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryFashion, CategoryBooks,
		CategoryHomeAppliances, CategorySportsLeisure, CategoryToysHobbies,
		CategoryOther:
		return true
	}
	return false
}

// Product is the item a seller puts up for auction
type Product struct {
	ProductID   int64    `json:"product_id"`
	SellerID    int64    `json:"seller_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionPending    AuctionStatus = "PENDING"
	AuctionProceeding AuctionStatus = "PROCEEDING"
	AuctionEnded      AuctionStatus = "ENDED"
	AuctionCancelled  AuctionStatus = "CANCELLED"
)

// Auction is a time-bounded sale process for one product. It owns its bid
// collection and enforces every rule that depends only on auction-level
// state; services invoke these methods inside a transaction.
type Auction struct {
	AuctionID   int64         `json:"auction_id"`
	Product     Product       `json:"product"`
	MinPrice    int64         `json:"min_price"`
	Status      AuctionStatus `json:"status"`
	EndDateTime time.Time     `json:"end_date_time"`
	WinnerID    *int64        `json:"winner_id,omitempty"`
	Bids        []*Bid        `json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewAuction creates a PENDING auction for the given product.
// The minimum price must be a positive multiple of 1000.
func NewAuction(product Product, minPrice int64, now time.Time) (*Auction, error) {
	if minPrice <= 0 || minPrice%1000 != 0 {
		return nil, fmt.Errorf("min price %d: %w", minPrice, auctionerrors.ErrInvalidMinPrice)
	}
	return &Auction{
		Product:   product,
		MinPrice:  minPrice,
		Status:    AuctionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SellerID returns the id of the user who registered the auction
func (a *Auction) SellerID() int64 {
	return a.Product.SellerID
}

// IsProceeding reports whether the auction is currently running
func (a *Auction) IsProceeding() bool {
	return a.Status == AuctionProceeding
}

// IsExpired reports whether the end time has passed
func (a *Auction) IsExpired(now time.Time) bool {
	return !now.Before(a.EndDateTime)
}

// IsAboveMinPrice reports whether amount meets the minimum price
func (a *Auction) IsAboveMinPrice(amount int64) bool {
	return amount >= a.MinPrice
}

// Start transitions a PENDING auction to PROCEEDING with the given end time
func (a *Auction) Start(endDateTime time.Time) error {
	if a.Status != AuctionPending {
		return fmt.Errorf("start auction in status %s: %w", a.Status, auctionerrors.ErrInvalidAuctionState)
	}
	a.Status = AuctionProceeding
	a.EndDateTime = endDateTime
	return nil
}

// End transitions a PROCEEDING auction whose end time has passed to ENDED,
// recording the winner when one exists.
func (a *Auction) End(now time.Time, winnerID *int64) error {
	if a.Status != AuctionProceeding {
		return fmt.Errorf("end auction in status %s: %w", a.Status, auctionerrors.ErrInvalidAuctionState)
	}
	if !a.IsExpired(now) {
		return fmt.Errorf("end auction before %s: %w", a.EndDateTime.Format(time.RFC3339), auctionerrors.ErrInvalidAuctionState)
	}
	a.Status = AuctionEnded
	a.WinnerID = winnerID
	return nil
}

// Cancel transitions the auction to CANCELLED. Allowed while PENDING, or
// while PROCEEDING with no active bids.
func (a *Auction) Cancel() error {
	switch a.Status {
	case AuctionPending:
	case AuctionProceeding:
		if a.ActiveBidCount() > 0 {
			return fmt.Errorf("cancel auction with %d active bids: %w", a.ActiveBidCount(), auctionerrors.ErrInvalidAuctionState)
		}
	default:
		return fmt.Errorf("cancel auction in status %s: %w", a.Status, auctionerrors.ErrInvalidAuctionState)
	}
	a.Status = AuctionCancelled
	return nil
}

// ValidateAcceptingBids fails unless the auction is PROCEEDING and the end
// time has not passed.
func (a *Auction) ValidateAcceptingBids(now time.Time) error {
	if !a.IsProceeding() || a.IsExpired(now) {
		return fmt.Errorf("auction %d: %w", a.AuctionID, auctionerrors.ErrAuctionEnded)
	}
	return nil
}

// RegisterBid adds a bid to the auction's collection. A prior entry by the
// same bidder is replaced rather than kept alongside the new one. The bid's
// auction back-reference is set here, explicitly, as part of registration.
func (a *Auction) RegisterBid(bid *Bid) {
	for i, existing := range a.Bids {
		if existing.BidderID == bid.BidderID {
			a.Bids = append(a.Bids[:i], a.Bids[i+1:]...)
			break
		}
	}
	bid.AuctionID = a.AuctionID
	a.Bids = append(a.Bids, bid)
}

// RemoveBid takes a bid out of the collection and marks it cancelled
func (a *Auction) RemoveBid(bid *Bid) {
	for i, existing := range a.Bids {
		if existing.BidderID == bid.BidderID {
			a.Bids = append(a.Bids[:i], a.Bids[i+1:]...)
			break
		}
	}
	bid.Cancel()
}

// ActiveBidCount returns the number of non-cancelled bids in the collection
func (a *Auction) ActiveBidCount() int {
	n := 0
	for _, b := range a.Bids {
		if b.Status == BidActive {
			n++
		}
	}
	return n
}

// BidStatus marks a bid as standing or logically cancelled
type BidStatus string

const (
	BidActive    BidStatus = "ACTIVE"
	BidCancelled BidStatus = "CANCELLED"
)

// InitialAdjustmentCount is the number of amendments a bidder gets per bid
const InitialAdjustmentCount = 3

// Bid is a bidder's standing offer for an auction, amendable a limited
// number of times. Exactly one row exists per (auction, bidder) pair.
type Bid struct {
	BidID     int64     `json:"bid_id"`
	AuctionID int64     `json:"auction_id"`
	BidderID  int64     `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	Count     int       `json:"remaining_adjustments"`
	Status    BidStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBid creates an active bid with a full adjustment count
func NewBid(auctionID, bidderID, amount int64, now time.Time) *Bid {
	return &Bid{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		Count:     InitialAdjustmentCount,
		Status:    BidActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AdjustAmount replaces the bid amount and consumes one adjustment.
// Fails once the adjustment count is exhausted, leaving the amount unchanged.
func (b *Bid) AdjustAmount(amount int64, now time.Time) error {
	if b.Count <= 0 {
		return fmt.Errorf("bid %d: %w", b.BidID, auctionerrors.ErrAdjustmentsExhausted)
	}
	b.Amount = amount
	b.Count--
	b.UpdatedAt = now
	return nil
}

// Reactivate puts a cancelled bid back in play with a fresh amount and count
func (b *Bid) Reactivate(amount int64, now time.Time) {
	b.Amount = amount
	b.Count = InitialAdjustmentCount
	b.Status = BidActive
	b.UpdatedAt = now
}

// Cancel marks the bid as logically cancelled
func (b *Bid) Cancel() {
	b.Status = BidCancelled
}
