// Package chatapi serves the assistant over plain HTTP and websockets.
package chatapi

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
)

const maxBodyBytes = 64 << 10

type chatter interface {
	Handle(ctx context.Context, sessionID, message string) (string, string)
	Reset(sessionID string)
}

// ChatRequest is one user message. An empty SessionID starts a new
// conversation.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the assistant answer and the session to continue.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the chat endpoints.
type Handler struct {
	chat   chatter
	checks map[string]assistant.Checker
	logger *zap.Logger
}

// New creates a Handler. checks are reported by /healthz under their names.
func New(chat chatter, checks map[string]assistant.Checker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{chat: chat, checks: checks, logger: logger}
}

// Register mounts the routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /chat", h.Chat)
	mux.HandleFunc("DELETE /chat/{id}", h.Reset)
	mux.HandleFunc("GET /ws", h.WebSocket)
	mux.HandleFunc("GET /healthz", h.Health)
}

// Chat handles one JSON turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: "content type must be application/json"})
		return
	}

	var req ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message must not be empty"})
		return
	}

	id, reply := h.chat.Handle(r.Context(), req.SessionID, req.Message)
	writeJSON(w, http.StatusOK, ChatResponse{SessionID: id, Reply: reply})
}

// Reset drops a session.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.chat.Reset(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// Health reports readiness of every backend.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, c := range h.checks {
		if err := c.Check(r.Context()); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": results})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
