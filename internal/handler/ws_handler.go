package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/istun/mezunlar-backend/internal/events"
	"github.com/istun/mezunlar-backend/internal/middleware"
	"github.com/istun/mezunlar-backend/internal/response"
	ws "github.com/istun/mezunlar-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler pushes registration and decision events to connected admins.
type WSHandler struct {
	feed     *events.RedisPublisher
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(feed *events.RedisPublisher, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		feed:     feed,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// RegistrationFeed godoc
// WS /ws/admin/registrations?token=<access token>
// Streams registry events (new registrations, decisions, role changes).
func (h *WSHandler) RegistrationFeed(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	// Subscribe before upgrading so no event published after "ready" is lost.
	ctx := c.Request.Context()
	sub := h.feed.Subscribe(ctx)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		h.log.Error().Err(err).Msg("Feed subscribe failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("admin_id", claims.UserID.String()).Logger()
	wsLog.Info().Msg("Admin connected to registration feed")

	if err := ws.WriteTyped(conn, ws.ReadyResponse{
		Event:       ws.EventReady,
		Role:        claims.Role.String(),
		Permissions: claims.Role.Permissions(),
	}); err != nil {
		return
	}

	// Reader: answers pings, detects close. gorilla allows one concurrent
	// writer, so replies go through out.
	out := make(chan interface{}, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ws.KeepAlive(conn)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			var reply interface{}
			switch msg.Action {
			case ws.ActionPing:
				reply = ws.PongResponse{Event: ws.EventPong}
			default:
				reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
			}
			select {
			case out <- reply:
			case <-time.After(time.Second):
			}
		}
	}()

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()
	msgs := sub.Channel()

	for {
		select {
		case <-done:
			wsLog.Debug().Msg("Registration feed closed")
			return
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ws.RegistryResponse{
				Event: ws.EventRegistry,
				Data:  json.RawMessage(m.Payload),
			}); err != nil {
				return
			}
		case reply := <-out:
			if err := ws.WriteTyped(conn, reply); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}
