package helpers

// Request/Response DTOs
type PlaceBidRequest struct {
	AuctionID int64 `json:"auction_id" binding:"required,gt=0"`
	Amount    int64 `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID                int64  `json:"bid_id"`
	AuctionID            int64  `json:"auction_id"`
	BidderID             int64  `json:"bidder_id"`
	Amount               int64  `json:"amount"`
	RemainingAdjustments int    `json:"remaining_adjustments"`
	Status               string `json:"status"`
	CreatedAt            string `json:"created_at"`
}
