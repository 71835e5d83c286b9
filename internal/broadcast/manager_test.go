package broadcast

import (
	"encoding/json"
	"testing"
	"time"

	"auction-market/internal/events"

	"github.com/stretchr/testify/require"
)

func newTestClient(id string, auctionID int64) *Client {
	return &Client{
		ID:        id,
		AuctionID: auctionID,
		Send:      make(chan []byte, 8),
	}
}

func waitForSubscribers(t *testing.T, m *Manager, auctionID int64, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return m.SubscriberCount(auctionID) == want
	}, time.Second, 5*time.Millisecond)
}

func TestManager_DeliversOnlyToMatchingAuction(t *testing.T) {
	m := NewManager()
	go m.Run()
	defer m.Stop()

	watcher := newTestClient("watcher", 1)
	bystander := newTestClient("bystander", 2)
	m.RegisterClient(watcher)
	m.RegisterClient(bystander)
	waitForSubscribers(t, m, 1, 1)
	waitForSubscribers(t, m, 2, 1)

	bid := events.Event{EventID: "e1", Type: events.TypeBidPlaced, AuctionID: 1, BidderID: 5, Amount: 15000}
	m.Publish(bid)

	select {
	case payload := <-watcher.Send:
		var got events.Event
		require.NoError(t, json.Unmarshal(payload, &got))
		require.Equal(t, events.TypeBidPlaced, got.Type)
		require.Equal(t, int64(1), got.AuctionID)
		require.Equal(t, int64(15000), got.Amount)
	case <-time.After(time.Second):
		t.Fatal("watcher did not receive the event")
	}

	select {
	case payload := <-bystander.Send:
		t.Fatalf("bystander received event for another auction: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_FansOutToAllSubscribers(t *testing.T) {
	m := NewManager()
	go m.Run()
	defer m.Stop()

	clients := []*Client{
		newTestClient("a", 1),
		newTestClient("b", 1),
		newTestClient("c", 1),
	}
	for _, c := range clients {
		m.RegisterClient(c)
	}
	waitForSubscribers(t, m, 1, 3)

	m.Publish(events.Event{EventID: "e1", Type: events.TypeAuctionEnded, AuctionID: 1})

	for _, c := range clients {
		select {
		case <-c.Send:
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive the event", c.ID)
		}
	}
}

func TestManager_UnregisterClosesSendChannel(t *testing.T) {
	m := NewManager()
	go m.Run()
	defer m.Stop()

	client := newTestClient("a", 1)
	m.RegisterClient(client)
	waitForSubscribers(t, m, 1, 1)

	m.UnregisterClient(client)
	waitForSubscribers(t, m, 1, 0)

	select {
	case _, open := <-client.Send:
		require.False(t, open, "send channel stays open after unregister")
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestManager_SlowClientDoesNotBlockHub(t *testing.T) {
	m := NewManager()
	go m.Run()
	defer m.Stop()

	slow := &Client{ID: "slow", AuctionID: 1, Send: make(chan []byte)} // no buffer, never read
	healthy := newTestClient("healthy", 1)
	m.RegisterClient(slow)
	m.RegisterClient(healthy)
	waitForSubscribers(t, m, 1, 2)

	// several events in a row; the unread client must not stall delivery
	for i := 0; i < 5; i++ {
		m.Publish(events.Event{EventID: "e", Type: events.TypeBidPlaced, AuctionID: 1, Amount: int64(i)})
	}

	received := 0
	deadline := time.After(time.Second)
	for received < 5 {
		select {
		case <-healthy.Send:
			received++
		case <-deadline:
			t.Fatalf("healthy client received %d of 5 events", received)
		}
	}
}
