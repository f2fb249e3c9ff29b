package api

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/gayu2216/krishna-knowledge/internal/chat"
	"github.com/gayu2216/krishna-knowledge/internal/log"
)

// answerer composes one retrieval-augmented answer. Satisfied by
// *chat.Composer; defined here so handlers can be tested without a
// live model.
type answerer interface {
	Answer(ctx context.Context, query string, history []chat.Turn) (string, error)
}

// chatHandler serves the conversation endpoints. Each conversation is
// an in-memory History addressed by an opaque session ID; histories
// live for the lifetime of the process.
type chatHandler struct {
	composer answerer
	logger   log.Logger

	mu        sync.RWMutex
	histories map[uuid.UUID]*chat.History
}

func newChatHandler(composer answerer, logger log.Logger) *chatHandler {
	return &chatHandler{
		composer:  composer,
		logger:    logger,
		histories: make(map[uuid.UUID]*chat.History),
	}
}

func (h *chatHandler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/chat", h.send)
	mux.HandleFunc("GET /api/v1/chat/{id}/history", h.history)
	mux.HandleFunc("POST /api/v1/chat/{id}/reset", h.reset)
}

type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// send answers one user message. Without a session_id a fresh
// conversation is started and its ID returned for subsequent turns.
// Composer failures are folded into an apologetic assistant turn so
// the conversation keeps its tone; the HTTP status stays 200.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body", h.logger)
		return
	}
	if req.Message == "" {
		WriteError(w, http.StatusBadRequest, "empty_message", "message is required", h.logger)
		return
	}

	id, history, err := h.resolveHistory(req.SessionID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "session_not_found", "unknown chat session", h.logger)
		return
	}

	answer, err := h.composer.Answer(r.Context(), req.Message, history.Turns())
	if err != nil {
		h.logger.Warn("answer composition failed", "session", id, "error", err)
		answer = chat.ApologeticError(err)
	}

	history.Add(chat.RoleHuman, req.Message)
	history.Add(chat.RoleAssistant, answer)

	WriteJSON(w, http.StatusOK, chatResponse{SessionID: id.String(), Answer: answer}, h.logger)
}

// history returns the full conversation so far, welcome turn included.
func (h *chatHandler) history(w http.ResponseWriter, r *http.Request) {
	history, ok := h.lookup(r.PathValue("id"))
	if !ok {
		WriteError(w, http.StatusNotFound, "session_not_found", "unknown chat session", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"turns":           history.Turns(),
		"questions_asked": history.QuestionsAsked(),
	}, h.logger)
}

// reset clears a conversation back to its welcome message.
func (h *chatHandler) reset(w http.ResponseWriter, r *http.Request) {
	history, ok := h.lookup(r.PathValue("id"))
	if !ok {
		WriteError(w, http.StatusNotFound, "session_not_found", "unknown chat session", h.logger)
		return
	}

	history.Reset()
	WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"}, h.logger)
}

// resolveHistory returns the history for the given session ID, or a
// fresh one when the ID is empty.
func (h *chatHandler) resolveHistory(sessionID string) (uuid.UUID, *chat.History, error) {
	if sessionID == "" {
		id := uuid.New()
		history := chat.NewHistory()
		h.mu.Lock()
		h.histories[id] = history
		h.mu.Unlock()
		return id, history, nil
	}

	id, err := uuid.Parse(sessionID)
	if err != nil {
		return uuid.Nil, nil, errors.New("invalid session id")
	}

	h.mu.RLock()
	history, ok := h.histories[id]
	h.mu.RUnlock()
	if !ok {
		return uuid.Nil, nil, errors.New("unknown session id")
	}
	return id, history, nil
}

func (h *chatHandler) lookup(rawID string) (*chat.History, bool) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, false
	}

	h.mu.RLock()
	history, ok := h.histories[id]
	h.mu.RUnlock()
	return history, ok
}
