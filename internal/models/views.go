package models

import "time"

// SortType orders auction listings
type SortType string

const (
	SortNewest     SortType = "newest"
	SortCheap      SortType = "cheap"
	SortExpensive  SortType = "expensive"
	SortPopularity SortType = "popularity"
)

// Valid reports whether s is a known sort type
func (s SortType) Valid() bool {
	switch s {
	case SortNewest, SortCheap, SortExpensive, SortPopularity:
		return true
	}
	return false
}

// AuctionSummary is the listing row for category browsing
type AuctionSummary struct {
	AuctionID     int64         `json:"auction_id"`
	ProductName   string        `json:"product_name"`
	Category      Category      `json:"category"`
	MinPrice      int64         `json:"min_price"`
	Status        AuctionStatus `json:"status"`
	EndDateTime   time.Time     `json:"end_date_time"`
	BidCount      int           `json:"bid_count"`
	Participating bool          `json:"participating"`
	CreatedAt     time.Time     `json:"created_at"`
}

// AuctionDetails is the single-auction view, including the viewer's own
// bid state when the viewer participates.
type AuctionDetails struct {
	AuctionID            int64         `json:"auction_id"`
	ProductID            int64         `json:"product_id"`
	SellerID             int64         `json:"seller_id"`
	ProductName          string        `json:"product_name"`
	Description          string        `json:"description"`
	Category             Category      `json:"category"`
	MinPrice             int64         `json:"min_price"`
	Status               AuctionStatus `json:"status"`
	EndDateTime          time.Time     `json:"end_date_time"`
	WinnerID             *int64        `json:"winner_id,omitempty"`
	BidCount             int           `json:"bid_count"`
	IsSeller             bool          `json:"is_seller"`
	HasBid               bool          `json:"has_bid"`
	MyBidAmount          int64         `json:"my_bid_amount"`
	RemainingAdjustments int           `json:"remaining_adjustments"`
}
