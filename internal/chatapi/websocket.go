package chatapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	resetCommand = "/reset"
	writeWait    = 10 * time.Second
)

var wsUpgrader = websocket.Upgrader{CheckOrigin: checkOrigin}

// checkOrigin accepts clients without an Origin header, loopback origins
// and origins whose host matches the requested host exactly.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	switch host := u.Hostname(); host {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return strings.EqualFold(u.Host, r.Host)
	}
}

// WebSocket holds one conversation per connection. Each text frame is a
// ChatRequest or a bare message; "/reset" starts over.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("wsUpgrader.Upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxBodyBytes)

	var sessionID string
	defer func() {
		if sessionID != "" {
			h.chat.Reset(sessionID)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, net.ErrClosed) {
				h.logger.Debug("conn.ReadMessage failed", zap.Error(err))
			}
			return
		}

		message := parseFrame(data)
		if strings.TrimSpace(message) == "" {
			continue
		}

		var resp ChatResponse
		if strings.EqualFold(strings.TrimSpace(message), resetCommand) {
			if sessionID != "" {
				h.chat.Reset(sessionID)
			}
			sessionID = ""
			resp = ChatResponse{Reply: "Conversation reset."}
		} else {
			sessionID, resp.Reply = h.chat.Handle(r.Context(), sessionID, message)
			resp.SessionID = sessionID
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(resp); err != nil {
			h.logger.Debug("conn.WriteJSON failed", zap.Error(err))
			return
		}
	}
}

func parseFrame(data []byte) string {
	var req ChatRequest
	if err := json.Unmarshal(data, &req); err == nil && req.Message != "" {
		return req.Message
	}
	return string(data)
}
