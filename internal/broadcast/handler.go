package broadcast

import (
	"fmt"
	"net/http"
	"strconv"

	"auction-market/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks belong to the upstream gateway.
		return true
	},
}

// Handler upgrades HTTP requests into live-feed WebSocket clients
type Handler struct {
	manager *Manager
}

// NewHandler creates a WebSocket handler bound to the hub
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// LiveFeedHandler handles GET /ws/auctions/:auction_id
func (h *Handler) LiveFeedHandler(c *gin.Context) {
	auctionID, err := strconv.ParseInt(c.Param("auction_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.Warn("failed to upgrade connection", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}

	client := &Client{
		ID:        utils.GenerateID(),
		AuctionID: auctionID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
	}

	h.manager.RegisterClient(client)
	client.StartWritePump()
	client.StartReadPump(h.manager)

	welcome := fmt.Sprintf(`{"type":"connected","auction_id":%d,"client_id":%q}`, auctionID, client.ID)
	client.Send <- []byte(welcome)
}
