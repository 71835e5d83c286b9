package events

import (
	"encoding/json"
	"fmt"

	"auction-market/utils"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is the root of all published subjects; the auction id is
// appended so consumers can subscribe per auction or with a wildcard.
const SubjectPrefix = "auctions.events"

// NATSPublisher publishes events to NATS for external consumers
// (archival, notifications). Failures are logged, never propagated.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish sends the event on auctions.events.<auctionID>
func (p *NATSPublisher) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		utils.Warn("failed to marshal event", map[string]any{
			"event_id": event.EventID,
			"error":    err.Error(),
		})
		return
	}

	subject := fmt.Sprintf("%s.%d", SubjectPrefix, event.AuctionID)
	if err := p.conn.Publish(subject, data); err != nil {
		utils.Warn("failed to publish event to NATS", map[string]any{
			"event_id": event.EventID,
			"subject":  subject,
			"error":    err.Error(),
		})
	}
}

// Close drains and closes the connection
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		utils.Warn("failed to drain NATS connection", map[string]any{"error": err.Error()})
	}
}
