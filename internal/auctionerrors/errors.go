package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrProductNotFound = errors.New("product not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrNoBids          = errors.New("no bids found for auction")
	ErrNoParticipation = errors.New("user has not placed any bids")
)

// Business logic errors
var (
	ErrInvalidAuctionState  = errors.New("invalid auction state")
	ErrAuctionEnded         = errors.New("auction is not accepting bids")
	ErrBidByOwner           = errors.New("owner cannot bid on own auction")
	ErrBidBelowMinPrice     = errors.New("bid amount below minimum price")
	ErrAdjustmentsExhausted = errors.New("no bid adjustments remaining")
	ErrInvalidMinPrice      = errors.New("minimum price must be a positive multiple of 1000")
	ErrInvalidBid           = errors.New("invalid bid")
	ErrForbidden            = errors.New("not authorized for this auction")
)
