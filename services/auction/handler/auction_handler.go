package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"auction-market/internal/auctionerrors"
	auction "auction-market/internal/auctionService"
	model "auction-market/internal/models"
	"auction-market/services/auction/helpers"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	RegisterAuction(ctx context.Context, in auction.RegisterInput) (model.Auction, error)
	StartAuction(ctx context.Context, auctionID, callerID int64) (model.Auction, error)
	EndAuction(ctx context.Context, auctionID int64) (model.Auction, error)
	CancelAuction(ctx context.Context, auctionID, callerID int64) (model.Auction, error)
	GetAuctionDetails(ctx context.Context, auctionID, viewerID int64) (model.AuctionDetails, error)
	ListAuctionsByCategory(ctx context.Context, category model.Category, sort model.SortType, viewerID int64, page, size int) ([]model.AuctionSummary, int, error)
}

// IdentityFn extracts the authenticated user id from the request context
type IdentityFn func(c *gin.Context) (int64, bool)

type AuctionHandler struct {
	service  AuctionServiceInterface
	identity IdentityFn
}

func NewAuctionHandler(service AuctionServiceInterface, identity IdentityFn) *AuctionHandler {
	return &AuctionHandler{service: service, identity: identity}
}

// RegisterAuctionHandler handles POST /auctions
func (h *AuctionHandler) RegisterAuctionHandler(c *gin.Context) {
	sellerID, _ := h.identity(c)

	var req helpers.RegisterAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterAuctionHandler", err)
		return
	}

	registered, err := h.service.RegisterAuction(c.Request.Context(), auction.RegisterInput{
		SellerID:    sellerID,
		Name:        req.Name,
		Description: req.Description,
		Category:    model.Category(req.Category),
		MinPrice:    req.MinPrice,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("RegisterAuctionHandler: failed to register auction", map[string]any{
			"seller_id": sellerID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, toAuctionResponse(registered), "auction registered successfully")
	helpers.LogSuccess("RegisterAuctionHandler", "auction registered successfully", map[string]any{
		"auction_id": registered.AuctionID,
		"seller_id":  sellerID,
		"min_price":  registered.MinPrice,
	})
}

// StartAuctionHandler handles POST /auctions/:auction_id/start
func (h *AuctionHandler) StartAuctionHandler(c *gin.Context) {
	callerID, _ := h.identity(c)

	auctionID, ok := parseAuctionID(c)
	if !ok {
		return
	}

	started, err := h.service.StartAuction(c.Request.Context(), auctionID, callerID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("StartAuctionHandler: failed to start auction", map[string]any{
			"auction_id": auctionID,
			"caller_id":  callerID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, toAuctionResponse(started), "auction started successfully")
	helpers.LogSuccess("StartAuctionHandler", "auction started successfully", map[string]any{
		"auction_id":    started.AuctionID,
		"end_date_time": started.EndDateTime.UTC().Format(time.RFC3339),
	})
}

// EndAuctionHandler handles POST /auctions/:auction_id/end.
// Called by the expiry collaborator once the end time has passed.
func (h *AuctionHandler) EndAuctionHandler(c *gin.Context) {
	auctionID, ok := parseAuctionID(c)
	if !ok {
		return
	}

	ended, err := h.service.EndAuction(c.Request.Context(), auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("EndAuctionHandler: failed to end auction", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, toAuctionResponse(ended), "auction ended successfully")
	helpers.LogSuccess("EndAuctionHandler", "auction ended successfully", map[string]any{
		"auction_id": ended.AuctionID,
		"winner_id":  ended.WinnerID,
	})
}

// CancelAuctionHandler handles POST /auctions/:auction_id/cancel
func (h *AuctionHandler) CancelAuctionHandler(c *gin.Context) {
	callerID, _ := h.identity(c)

	auctionID, ok := parseAuctionID(c)
	if !ok {
		return
	}

	cancelled, err := h.service.CancelAuction(c.Request.Context(), auctionID, callerID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CancelAuctionHandler: failed to cancel auction", map[string]any{
			"auction_id": auctionID,
			"caller_id":  callerID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, toAuctionResponse(cancelled), "auction cancelled successfully")
	helpers.LogSuccess("CancelAuctionHandler", "auction cancelled successfully", map[string]any{
		"auction_id": cancelled.AuctionID,
	})
}

// GetAuctionDetailsHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionDetailsHandler(c *gin.Context) {
	viewerID, _ := h.identity(c)

	auctionID, ok := parseAuctionID(c)
	if !ok {
		return
	}

	details, err := h.service.GetAuctionDetails(c.Request.Context(), auctionID, viewerID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetAuctionDetailsHandler: error retrieving auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, details, "auction retrieved successfully")
	helpers.LogSuccess("GetAuctionDetailsHandler", "auction retrieved successfully", map[string]any{
		"auction_id": details.AuctionID,
		"viewer_id":  viewerID,
	})
}

// ListAuctionsHandler handles GET /auctions?category=&sort=&page=&size=
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	viewerID, _ := h.identity(c)

	category := model.Category(c.Query("category"))
	if !category.Valid() {
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("unknown category %q", c.Query("category")), "invalid category")
		return
	}

	sort := model.SortType(c.DefaultQuery("sort", string(model.SortNewest)))
	if !sort.Valid() {
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("unknown sort type %q", c.Query("sort")), "invalid sort type")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	summaries, total, err := h.service.ListAuctionsByCategory(c.Request.Context(), category, sort, viewerID, page, size)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListAuctionsHandler: error listing auctions", map[string]any{"category": category, "error": err.Error()})
		return
	}

	if summaries == nil {
		summaries = []model.AuctionSummary{}
	}

	utils.JSONPageResponse(c, http.StatusOK, summaries, page, size, total, "auctions retrieved successfully")
	helpers.LogSuccess("ListAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"category": category,
		"count":    len(summaries),
		"total":    total,
	})
}

func parseAuctionID(c *gin.Context) (int64, bool) {
	auctionID, err := strconv.ParseInt(c.Param("auction_id"), 10, 64)
	if err != nil || auctionID <= 0 {
		utils.JSONError(c, http.StatusBadRequest, auctionerrors.ErrAuctionNotFound, "invalid auction id")
		return 0, false
	}
	return auctionID, true
}

func toAuctionResponse(a model.Auction) helpers.AuctionResponse {
	resp := helpers.AuctionResponse{
		AuctionID:   a.AuctionID,
		ProductID:   a.Product.ProductID,
		SellerID:    a.SellerID(),
		Name:        a.Product.Name,
		Description: a.Product.Description,
		Category:    string(a.Product.Category),
		MinPrice:    a.MinPrice,
		Status:      string(a.Status),
		WinnerID:    a.WinnerID,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !a.EndDateTime.IsZero() {
		resp.EndDateTime = a.EndDateTime.UTC().Format(time.RFC3339)
	}
	return resp
}
