package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messenger-service/internal/observability"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler owns the websocket handshake and the per-connection command loop.
type Handler struct {
	hub      *Hub
	presence *Presence
	typing   *Typing
}

func NewHandler(hub *Hub, presence *Presence, typing *Typing) *Handler {
	return &Handler{hub: hub, presence: presence, typing: typing}
}

// Handle upgrades the connection and runs its read loop. The client asserts
// its user id as a handshake query parameter; the realtime channel performs
// no token validation of that claim, matching the observed protocol.
func (h *Handler) Handle(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing userId"})
		return
	}

	ctx, span := otel.Tracer("messenger-service/realtime").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := newClient(conn, userID)
	h.hub.Register(client)
	h.presence.OnConnect(c.Request.Context(), userID)
	observability.IncWSActive()

	go client.writePump()
	go h.readPump(client)
}

// readPump processes commands from one connection in receipt order and
// tears the session down when the socket closes.
func (h *Handler) readPump(client *Client) {
	defer func() {
		h.hub.Unregister(client)
		ctx, cancel := contextWithTimeout()
		h.presence.OnDisconnect(ctx, client.UserID)
		cancel()
		observability.DecWSActive()
		client.conn.Close()
	}()

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
		ctx, cancel := contextWithTimeout()
		h.presence.Refresh(ctx, client.UserID)
		cancel()
		return nil
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("websocket read error conn=%s: %v", client.ConnID, err)
			}
			return
		}
		h.handleCommand(client, data)
	}
}

// handleCommand dispatches one client command. Malformed input earns an
// error event on this connection only; the connection stays open.
func (h *Handler) handleCommand(client *Client, data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		h.hub.SendTo(client, Event{Event: EventError, Payload: ErrorPayload{Message: "malformed command"}})
		return
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	switch cmd.Command {
	case CommandJoinRoom:
		if err := h.hub.Join(client, cmd.ConversationID); err != nil {
			h.hub.SendTo(client, Event{Event: EventError, Payload: ErrorPayload{Message: "invalid conversation id"}})
			return
		}
		h.hub.SendTo(client, Event{
			Event:   EventRoomJoined,
			Payload: RoomJoinedPayload{ConversationID: cmd.ConversationID},
		})
	case CommandTyping:
		if cmd.ConversationID == "" {
			h.hub.SendTo(client, Event{Event: EventError, Payload: ErrorPayload{Message: "invalid conversation id"}})
			return
		}
		h.typing.Set(ctx, cmd.ConversationID, client.UserID, cmd.IsTyping)
	case CommandUserActivity:
		h.presence.OnActivity(ctx, client.UserID)
	default:
		h.hub.SendTo(client, Event{Event: EventError, Payload: ErrorPayload{Message: "unknown command"}})
	}
}

func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
