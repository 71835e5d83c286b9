package server

import (
	"errors"

	auction "auction-market/internal/auctionService"
	bidding "auction-market/internal/bidService"
	"auction-market/internal/broadcast"
	auctionhandler "auction-market/services/auction/handler"
	biddinghandler "auction-market/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidUserID = errors.New("user id header must be a positive integer")
	errMissingUserID = errors.New("user id header is required")
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService *auction.AuctionService, biddingService *bidding.BidService, feed *broadcast.Handler) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery()) // recover from panics
	router.Use(RequestIDMiddleware)
	router.Use(RequestLoggerMiddleware)
	router.Use(IdentityMiddleware)

	auctionHandler := auctionhandler.NewAuctionHandler(auctionService, CurrentUserID)
	biddingHandler := biddinghandler.NewBiddingHandler(biddingService, CurrentUserID)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", RequireIdentity, auctionHandler.RegisterAuctionHandler)
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionDetailsHandler)
		auctions.POST("/:auction_id/start", RequireIdentity, auctionHandler.StartAuctionHandler)
		auctions.POST("/:auction_id/end", auctionHandler.EndAuctionHandler)
		auctions.POST("/:auction_id/cancel", RequireIdentity, auctionHandler.CancelAuctionHandler)
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/winning", biddingHandler.GetWinningBidHandler)
	}

	bids := router.Group("/bids")
	{
		bids.POST("", RequireIdentity, biddingHandler.RecordBidHandler)
		bids.DELETE("/:auction_id", RequireIdentity, biddingHandler.CancelBidHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/me/bids", RequireIdentity, biddingHandler.GetMyAuctionsHandler)
	}

	if feed != nil {
		router.GET("/ws/auctions/:auction_id", feed.LiveFeedHandler)
	}

	return router
}
