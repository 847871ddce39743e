package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/user/kkcos-go/apperror"
	"github.com/user/kkcos-go/auth"
)

// ChatHandlers provides the HTTP handlers for the /chat routes.
type ChatHandlers struct {
	service        *ChatService
	historyLimit   int
	requestTimeout time.Duration
}

// NewChatHandlers creates new ChatHandlers. historyLimit is the default page
// size of the history endpoint.
func NewChatHandlers(service *ChatService, historyLimit int) *ChatHandlers {
	return &ChatHandlers{service: service, historyLimit: historyLimit, requestTimeout: 60 * time.Second}
}

// RegisterRoutes registers the chat API routes on the given router. The
// stream route stays outside the timeout group: a request deadline on a
// long-lived SSE response would cancel the context and sever every
// subscriber.
func (h *ChatHandlers) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(h.requestTimeout))
		r.Get("/messages", h.getMessages)
		r.Post("/message", h.sendMessage)
	})
	router.Get("/stream", h.stream)
}

// getMessages godoc
// @Summary Chat history
// @Description Returns the latest messages in chronological order, joined with usernames.
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of messages" default(50)
// @Success 200 {array} chat.MessageView
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Malformed limit"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /chat/messages [get]
func (h *ChatHandlers) getMessages(w http.ResponseWriter, r *http.Request) {
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid limit parameter", err))
			return
		}
		limit = parsed
	}

	messages, err := h.service.GetMessages(r.Context(), limit)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// sendMessage godoc
// @Summary Send a chat message
// @Description Stores a message and pushes it to connected stream subscribers.
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param messageBody body chat.SendMessageRequest true "Message to send"
// @Success 201 {object} chat.SendMessageResponse
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Missing user_id or content"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Unknown user"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /chat/message [post]
func (h *ChatHandlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	if req.UserID == 0 || req.Content == "" {
		auth.WriteError(w, r, apperror.NewBadRequestError("user_id and content are required", nil))
		return
	}

	msg, err := h.service.SendMessage(r.Context(), req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, SendMessageResponse{Status: "ok", MessageID: msg.ID})
}

// stream godoc
// @Summary Live chat stream
// @Description Server-Sent Events stream of new chat messages. Each event's data field is a JSON-encoded message.
// @Tags Chat
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "SSE stream"
// @Router /chat/stream [get]
func (h *ChatHandlers) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		auth.WriteError(w, r, apperror.NewInternalError("streaming unsupported", nil))
		return
	}

	// The stream outlives the server's write timeout, so clear the
	// connection deadline for this response.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	id, messages := h.service.Broadcaster().Subscribe()
	defer h.service.Broadcaster().Unsubscribe(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-messages:
			if !open {
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// writeJSON serializes data to JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}
