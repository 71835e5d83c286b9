package events

import (
	"time"

	model "auction-market/internal/models"

	"github.com/google/uuid"
)

// Type identifies a domain event
type Type string

const (
	TypeBidPlaced        Type = "bid.placed"
	TypeAuctionStarted   Type = "auction.started"
	TypeAuctionEnded     Type = "auction.ended"
	TypeAuctionCancelled Type = "auction.cancelled"
)

// Event is the payload published when the auction state changes. Consumers
// include the in-process live feed and external NATS subscribers.
type Event struct {
	EventID    string    `json:"event_id"`
	Type       Type      `json:"type"`
	AuctionID  int64     `json:"auction_id"`
	BidderID   int64     `json:"bidder_id,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	WinnerID   *int64    `json:"winner_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBidPlaced builds the event for a recorded or amended bid
func NewBidPlaced(bid *model.Bid, now time.Time) Event {
	return Event{
		EventID:    uuid.New().String(),
		Type:       TypeBidPlaced,
		AuctionID:  bid.AuctionID,
		BidderID:   bid.BidderID,
		Amount:     bid.Amount,
		OccurredAt: now,
	}
}

// NewAuctionStarted builds the event for the PENDING to PROCEEDING transition
func NewAuctionStarted(auctionID int64, now time.Time) Event {
	return Event{
		EventID:    uuid.New().String(),
		Type:       TypeAuctionStarted,
		AuctionID:  auctionID,
		OccurredAt: now,
	}
}

// NewAuctionEnded builds the event for the ENDED transition
func NewAuctionEnded(auctionID int64, winnerID *int64, now time.Time) Event {
	return Event{
		EventID:    uuid.New().String(),
		Type:       TypeAuctionEnded,
		AuctionID:  auctionID,
		WinnerID:   winnerID,
		OccurredAt: now,
	}
}

// NewAuctionCancelled builds the event for the CANCELLED transition
func NewAuctionCancelled(auctionID int64, now time.Time) Event {
	return Event{
		EventID:    uuid.New().String(),
		Type:       TypeAuctionCancelled,
		AuctionID:  auctionID,
		OccurredAt: now,
	}
}

// Publisher delivers domain events. Delivery is best effort: the write path
// never fails because a downstream consumer is unavailable.
type Publisher interface {
	Publish(event Event)
}

// NoopPublisher discards all events
type NoopPublisher struct{}

func (NoopPublisher) Publish(Event) {}

// FanoutPublisher delivers each event to every wrapped publisher
type FanoutPublisher struct {
	publishers []Publisher
}

// NewFanout creates a publisher that forwards to all the given publishers
func NewFanout(publishers ...Publisher) *FanoutPublisher {
	return &FanoutPublisher{publishers: publishers}
}

func (f *FanoutPublisher) Publish(event Event) {
	for _, p := range f.publishers {
		p.Publish(event)
	}
}
