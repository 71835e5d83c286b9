package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"auction-market/internal/auctionerrors"
	model "auction-market/internal/models"
	"auction-market/services/bidding/helpers"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

type BiddingServiceInterface interface {
	CreateBid(ctx context.Context, auctionID, bidderID, amount int64) (model.Bid, error)
	CancelBid(ctx context.Context, auctionID, bidderID int64) error
	GetBidsForAuction(ctx context.Context, auctionID int64) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, auctionID int64) (model.Bid, error)
	GetAuctionsByBidder(ctx context.Context, bidderID int64) ([]model.AuctionSummary, error)
}

// IdentityFn extracts the authenticated user id from the request context
type IdentityFn func(c *gin.Context) (int64, bool)

type BiddingHandler struct {
	service  BiddingServiceInterface
	identity IdentityFn
}

func NewBiddingHandler(service BiddingServiceInterface, identity IdentityFn) *BiddingHandler {
	return &BiddingHandler{service: service, identity: identity}
}

// RecordBidHandler handles POST /bids
func (h *BiddingHandler) RecordBidHandler(c *gin.Context) {
	bidderID, _ := h.identity(c)

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}

	bid, err := h.service.CreateBid(c.Request.Context(), req.AuctionID, bidderID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("RecordBidHandler: failed to record bid", map[string]any{
			"handler":    "RecordBidHandler",
			"auction_id": req.AuctionID,
			"bidder_id":  bidderID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, toBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount,
	})
}

// CancelBidHandler handles DELETE /bids/:auction_id
func (h *BiddingHandler) CancelBidHandler(c *gin.Context) {
	bidderID, _ := h.identity(c)

	auctionID, ok := parseAuctionID(c)
	if !ok {
		return
	}

	if err := h.service.CancelBid(c.Request.Context(), auctionID, bidderID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CancelBidHandler: failed to cancel bid", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  bidderID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "bid cancelled successfully")
	helpers.LogSuccess("CancelBidHandler", "bid cancelled successfully", map[string]any{
		"auction_id": auctionID,
		"bidder_id":  bidderID,
	})
}

// GetBidsByAuctionHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) GetBidsByAuctionHandler(c *gin.Context) {
	auctionID, ok := parseAuctionID(c)
	if !ok {
		return
	}

	bids, err := h.service.GetBidsForAuction(c.Request.Context(), auctionID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsByAuctionHandler: error retrieving bids", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, bid := range bids {
		resp = append(resp, toBidResponse(bid))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(resp),
	})
}

// GetWinningBidHandler handles GET /auctions/:auction_id/winning
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID, ok := parseAuctionID(c)
	if !ok {
		return
	}

	bid, err := h.service.GetWinningBid(c.Request.Context(), auctionID)
	if err != nil {
		// For auction, winning bid not found -> 404
		if errors.Is(err, auctionerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no winning bid found")
			utils.Info("GetWinningBidHandler: no winning bid found", map[string]any{"auction_id": auctionID})
			return
		}
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetWinningBidHandler: winning bid error", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, toBidResponse(bid), "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount,
	})
}

// GetMyAuctionsHandler handles GET /users/me/bids
func (h *BiddingHandler) GetMyAuctionsHandler(c *gin.Context) {
	bidderID, _ := h.identity(c)

	auctions, err := h.service.GetAuctionsByBidder(c.Request.Context(), bidderID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoParticipation) {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetMyAuctionsHandler: error retrieving auctions", map[string]any{"bidder_id": bidderID, "error": err.Error()})
		return
	}

	if auctions == nil {
		auctions = []model.AuctionSummary{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
	helpers.LogSuccess("GetMyAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"bidder_id":      bidderID,
		"auctions_count": len(auctions),
	})
}

func parseAuctionID(c *gin.Context) (int64, bool) {
	auctionID, err := strconv.ParseInt(c.Param("auction_id"), 10, 64)
	if err != nil || auctionID <= 0 {
		utils.JSONError(c, http.StatusBadRequest, auctionerrors.ErrInvalidBid, "invalid auction id")
		return 0, false
	}
	return auctionID, true
}

func toBidResponse(bid model.Bid) helpers.BidResponse {
	return helpers.BidResponse{
		BidID:                bid.BidID,
		AuctionID:            bid.AuctionID,
		BidderID:             bid.BidderID,
		Amount:               bid.Amount,
		RemainingAdjustments: bid.Count,
		Status:               string(bid.Status),
		CreatedAt:            bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}
