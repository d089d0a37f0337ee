// Package ws carries live events over a WebSocket.
// Each frame is a JSON text message {"event":"newMessage"}.
package ws

import (
	"chat-sync/auth"
	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/sink"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

const (
	writeWait   = 5 * time.Second
	closeWait   = time.Second
	tokenParam  = "token"
	maxReadSize = 512

	defaultKeepAlive = 30 * time.Second
)

// Hub upgrades HTTP requests to WebSockets and feeds each of them from the broadcast registry.
type Hub struct {
	subscriptions   contract.Subscriptions
	issuer          *auth.Issuer
	upgrader        websocket.Upgrader
	bufferSize      int
	deliveryTimeout time.Duration
	keepAlive       time.Duration
	log             *slog.Logger
}

// NewHub builds a hub. When issuer is nil, connections are not authenticated.
func NewHub(subscriptions contract.Subscriptions, issuer *auth.Issuer, bufferSize int, deliveryTimeout, keepAlive time.Duration, log *slog.Logger) *Hub {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	return &Hub{
		subscriptions: subscriptions,
		issuer:        issuer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		bufferSize:      bufferSize,
		deliveryTimeout: deliveryTimeout,
		keepAlive:       keepAlive,
		log:             log,
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username, ok := h.authenticate(r)
	if !ok {
		http.Error(w, "invalid or missing bearer token", http.StatusUnauthorized)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request.
		h.log.Debug("WebSocket upgrade failed", "error", err)
		return
	}

	subscriberID := uuid.NewString()
	eventSink := sink.NewChannelSink(h.log, h.bufferSize, h.deliveryTimeout)
	h.subscriptions.Subscribe(subscriberID, eventSink)
	defer h.subscriptions.Unsubscribe(subscriberID)
	h.log.Debug("WebSocket subscriber connected", "subscriber_id", subscriberID, "username", username)

	ctx, cancel := context.WithCancel(r.Context())
	readLoopDone := make(chan struct{})
	go func() {
		defer close(readLoopDone)
		defer cancel()
		h.readLoop(conn)
	}()
	h.writeLoop(ctx, conn, eventSink)
	_ = conn.Close()
	<-readLoopDone
	h.log.Debug("WebSocket subscriber disconnected", "subscriber_id", subscriberID)
}

func (h *Hub) authenticate(r *http.Request) (string, bool) {
	if h.issuer == nil {
		return "", true
	}
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		token = r.URL.Query().Get(tokenParam)
	}
	if token == "" {
		return "", false
	}
	claims, err := h.issuer.Validate(token)
	if err != nil {
		return "", false
	}
	return claims.Username, true
}

// readLoop discards client frames. It ends when the peer closes or the connection breaks.
func (h *Hub) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(maxReadSize)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("WebSocket read error", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(ctx context.Context, conn *websocket.Conn, eventSink *sink.ChannelSink) {
	keepAliveTicker := time.NewTicker(h.keepAlive)
	defer keepAliveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server closing"),
				time.Now().Add(closeWait))
			return
		case <-keepAliveTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case evt := <-eventSink.Events:
			msg, err := prepare(evt)
			if err != nil {
				h.log.Error("Unable to encode live event", "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WritePreparedMessage(msg); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseAbnormalClosure, websocket.CloseGoingAway) && err != websocket.ErrCloseSent {
					h.log.Warn("WebSocket write error", "error", err)
				}
				return
			}
		}
	}
}

func prepare(evt domain.LiveEvent) (*websocket.PreparedMessage, error) {
	data, err := jsoniter.Marshal(evt)
	if err != nil {
		return nil, err
	}
	return websocket.NewPreparedMessage(websocket.TextMessage, data)
}
