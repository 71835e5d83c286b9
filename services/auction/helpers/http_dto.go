package helpers

// Request/Response DTOs
type RegisterAuctionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required,oneof=ELECTRONICS FASHION BOOKS HOME_APPLIANCES SPORTS_LEISURE TOYS_HOBBIES OTHER"`
	MinPrice    int64  `json:"min_price" binding:"required,gt=0"`
}

type AuctionResponse struct {
	AuctionID   int64  `json:"auction_id"`
	ProductID   int64  `json:"product_id"`
	SellerID    int64  `json:"seller_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	MinPrice    int64  `json:"min_price"`
	Status      string `json:"status"`
	EndDateTime string `json:"end_date_time,omitempty"`
	WinnerID    *int64 `json:"winner_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}
