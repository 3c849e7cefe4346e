// Package chat provides the HTTP API for sending messages and reading
// conversation history.
package chat

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edubot/edubot-go/internal/config"
	"github.com/edubot/edubot-go/internal/ctxutil"
	domerrors "github.com/edubot/edubot-go/internal/errors"
	"github.com/edubot/edubot-go/internal/logger"
	"github.com/edubot/edubot-go/internal/metrics"
	"github.com/edubot/edubot-go/internal/prompt"
	"github.com/edubot/edubot-go/internal/resolver"
	"github.com/edubot/edubot-go/internal/storage"
)

const (
	// SessionHeader carries the opaque session key identifying a client.
	SessionHeader = "X-Session-Key"

	// DefaultSessionKey is used when the client sends no session header.
	DefaultSessionKey = "anonymous"

	// Conversation titles are the first message, truncated to fit list views.
	titleTruncateAt = 47
	titleEllipsis   = "..."
)

// Handler serves the chat API endpoints.
type Handler struct {
	db            *storage.DB
	resolver      *resolver.Resolver
	metrics       *metrics.Metrics
	logger        *logger.Logger
	historyWindow int
}

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	DB            *storage.DB
	Resolver      *resolver.Resolver
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
	HistoryWindow int
}

// NewHandler creates a chat handler.
func NewHandler(cfg HandlerConfig) *Handler {
	window := cfg.HistoryWindow
	if window <= 0 {
		window = prompt.DefaultHistoryWindow
	}

	return &Handler{
		db:            cfg.DB,
		resolver:      cfg.Resolver,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger.WithModule("chat"),
		historyWindow: window,
	}
}

// sendMessageRequest is the POST /api/messages body.
type sendMessageRequest struct {
	Message        string `json:"message"`
	ConversationID *int64 `json:"conversation_id"`
}

// sendMessageResponse is the POST /api/messages reply.
type sendMessageResponse struct {
	Response       string `json:"response"`
	ConversationID int64  `json:"conversation_id"`
	MessageID      int64  `json:"message_id"`
	Timestamp      int64  `json:"timestamp"`
	Source         string `json:"source"`
}

// SendMessage handles POST /api/messages.
//
// Finds or creates the conversation, persists the user turn, resolves an
// answer through the pipeline, persists the assistant turn and returns it.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPError("bad_request", "chat")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		h.rejectEmptyMessage(c)
		return
	}

	sessionKey := sessionKeyFrom(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.RequestProcessing)
	defer cancel()
	ctx = ctxutil.WithSessionKey(ctx, sessionKey)

	conversation, err := h.findOrCreateConversation(c, ctx, sessionKey, req.ConversationID, message)
	if err != nil {
		return // Response already written
	}
	ctx = ctxutil.WithConversationID(ctx, conversation.ID)

	userMsg, err := h.db.SaveMessage(ctx, conversation.ID, storage.RoleUser, message)
	if err != nil {
		h.serverError(c, err, "save user message")
		return
	}

	// History excludes the turn just saved so the prompt does not repeat
	// the current question. RecentMessages returns the newest turns in
	// chronological order.
	history, err := h.db.RecentMessages(ctx, conversation.ID, h.historyWindow+1)
	if err != nil {
		h.serverError(c, err, "load history")
		return
	}
	history = withoutMessage(history, userMsg.ID)

	result, err := h.resolver.Resolve(ctx, message, history)
	if err != nil {
		if errors.Is(err, domerrors.ErrInvalidInput) {
			h.rejectEmptyMessage(c)
			return
		}
		h.serverError(c, err, "resolve answer")
		return
	}

	assistantMsg, err := h.db.SaveMessage(ctx, conversation.ID, storage.RoleAssistant, result.Text)
	if err != nil {
		h.serverError(c, err, "save assistant message")
		return
	}

	if err := h.db.TouchConversation(ctx, conversation.ID); err != nil {
		h.logger.WithError(err).
			WithField("conversation_id", conversation.ID).
			Warn("Failed to bump conversation timestamp")
	}

	h.logger.WithField("conversation_id", conversation.ID).
		WithField("source", result.Source).
		WithField("message_length", len(message)).
		Info("Message resolved")

	c.JSON(http.StatusOK, sendMessageResponse{
		Response:       result.Text,
		ConversationID: conversation.ID,
		MessageID:      assistantMsg.ID,
		Timestamp:      assistantMsg.Timestamp,
		Source:         result.Source,
	})
}

// conversationResponse is the GET /api/conversations/:id reply.
type conversationResponse struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	CreatedAt int64             `json:"created_at"`
	UpdatedAt int64             `json:"updated_at"`
	Messages  []storage.Message `json:"messages"`
}

// GetConversation handles GET /api/conversations/:id.
func (h *Handler) GetConversation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.metrics.RecordHTTPError("bad_request", "chat")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	ctx := c.Request.Context()

	conversation, err := h.db.GetConversation(ctx, id)
	if err != nil {
		if errors.Is(err, domerrors.ErrNotFound) {
			h.metrics.RecordHTTPError("not_found", "chat")
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		h.serverError(c, err, "load conversation")
		return
	}

	messages, err := h.db.GetMessages(ctx, id)
	if err != nil {
		h.serverError(c, err, "load messages")
		return
	}

	c.JSON(http.StatusOK, conversationResponse{
		ID:        conversation.ID,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
		Messages:  messages,
	})
}

// ListConversations handles GET /api/conversations?session=…
// Falls back to the session header when no query parameter is given.
func (h *Handler) ListConversations(c *gin.Context) {
	sessionKey := strings.TrimSpace(c.Query("session"))
	if sessionKey == "" {
		sessionKey = sessionKeyFrom(c)
	}

	summaries, err := h.db.ListConversations(c.Request.Context(), sessionKey)
	if err != nil {
		h.serverError(c, err, "list conversations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// findOrCreateConversation resolves the target conversation for a message.
// Writes the error response itself and returns a non-nil error on failure.
func (h *Handler) findOrCreateConversation(c *gin.Context, ctx context.Context, sessionKey string, id *int64, firstMessage string) (*storage.Conversation, error) {
	if id != nil {
		conversation, err := h.db.GetConversation(ctx, *id)
		if err != nil {
			if errors.Is(err, domerrors.ErrNotFound) {
				h.metrics.RecordHTTPError("not_found", "chat")
				c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
				return nil, err
			}
			h.serverError(c, err, "load conversation")
			return nil, err
		}
		return conversation, nil
	}

	conversation, err := h.db.CreateConversation(ctx, sessionKey, TruncateTitle(firstMessage))
	if err != nil {
		h.serverError(c, err, "create conversation")
		return nil, err
	}
	return conversation, nil
}

// rejectEmptyMessage answers a blank or whitespace-only message with 400.
func (h *Handler) rejectEmptyMessage(c *gin.Context) {
	vErr := domerrors.NewValidationError("message", "must not be empty")
	h.metrics.RecordHTTPError("empty_message", "chat")
	c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
}

// serverError logs, records and answers a storage or pipeline failure.
func (h *Handler) serverError(c *gin.Context, err error, operation string) {
	wrapped := domerrors.Wrap("chat", operation, err, "internal server error")
	h.logger.WithError(wrapped).Error("Request failed")
	h.metrics.RecordHTTPError("internal", "chat")
	c.Error(wrapped) //nolint:errcheck // Collected by middleware for sentry capture
	c.JSON(http.StatusInternalServerError, gin.H{"error": domerrors.GetUserMessage(wrapped)})
}

// sessionKeyFrom extracts the session key header, defaulting to "anonymous".
func sessionKeyFrom(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(SessionHeader)); key != "" {
		return key
	}
	return DefaultSessionKey
}

// TruncateTitle derives a conversation title from its first message.
// Messages longer than 47 characters are cut there with an ellipsis.
func TruncateTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= titleTruncateAt {
		return message
	}
	return string(runes[:titleTruncateAt]) + titleEllipsis
}

// withoutMessage filters one message out of a history slice.
func withoutMessage(history []storage.Message, id int64) []storage.Message {
	filtered := history[:0]
	for _, m := range history {
		if m.ID != id {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
