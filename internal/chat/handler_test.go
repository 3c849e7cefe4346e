package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edubot/edubot-go/internal/fallback"
	"github.com/edubot/edubot-go/internal/genai"
	"github.com/edubot/edubot-go/internal/knowledge"
	"github.com/edubot/edubot-go/internal/logger"
	"github.com/edubot/edubot-go/internal/metrics"
	"github.com/edubot/edubot-go/internal/prompt"
	"github.com/edubot/edubot-go/internal/resolver"
	"github.com/edubot/edubot-go/internal/storage"
)

func newTestRouter(t *testing.T, generator genai.Generator) (*gin.Engine, *storage.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	matcher := knowledge.NewMatcher([]storage.KnowledgeEntry{
		{
			Category: storage.CategoryDeadline,
			Pattern:  "registration deadline",
			Answer:   "Fall registration ends August 25th.",
			Keywords: "registration,register",
		},
	})
	responder := fallback.NewResponderWithRand(func(_ int) int { return 0 })
	builder := prompt.NewBuilder(prompt.DefaultHistoryWindow)
	res := resolver.New(matcher, generator, responder, builder, resolver.Options{})

	h := NewHandler(HandlerConfig{
		DB:       db,
		Resolver: res,
		Metrics:  metrics.New(prometheus.NewRegistry()),
		Logger:   logger.NewWithWriter("error", io.Discard),
	})

	router := gin.New()
	router.POST("/api/messages", h.SendMessage)
	router.GET("/api/conversations/:id", h.GetConversation)
	router.GET("/api/conversations", h.ListConversations)
	return router, db
}

func postMessage(t *testing.T, router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSendMessageEmptyRejected(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`} {
		w := postMessage(t, router, body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		assert.Contains(t, w.Body.String(), "validation failed on message", "body %s", body)
	}
}

func TestSendMessageInvalidJSON(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := postMessage(t, router, `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageCreatesConversation(t *testing.T) {
	router, db := newTestRouter(t, nil)

	w := postMessage(t, router, `{"message":"When is the registration deadline?"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp sendMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Fall registration ends August 25th.", resp.Response)
	assert.Equal(t, "knowledge_base", resp.Source)
	assert.Positive(t, resp.ConversationID)
	assert.Positive(t, resp.MessageID)
	assert.Positive(t, resp.Timestamp)

	conversation, err := db.GetConversation(t.Context(), resp.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "When is the registration deadline?", conversation.Title)
	assert.Equal(t, DefaultSessionKey, conversation.SessionKey)

	messages, err := db.GetMessages(t.Context(), resp.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, storage.RoleUser, messages[0].Role)
	assert.Equal(t, storage.RoleAssistant, messages[1].Role)
}

func TestSendMessageLongTitleTruncated(t *testing.T) {
	router, db := newTestRouter(t, nil)

	long := strings.Repeat("a", 80)
	w := postMessage(t, router, fmt.Sprintf(`{"message":"%s"}`, long), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp sendMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	conversation, err := db.GetConversation(t.Context(), resp.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 47)+"...", conversation.Title)
}

func TestSendMessageContinuesConversation(t *testing.T) {
	router, db := newTestRouter(t, nil)

	w := postMessage(t, router, `{"message":"hello there"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var first sendMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	body := fmt.Sprintf(`{"message":"and the registration deadline?","conversation_id":%d}`, first.ConversationID)
	w = postMessage(t, router, body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var second sendMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.ConversationID, second.ConversationID)

	messages, err := db.GetMessages(t.Context(), first.ConversationID)
	require.NoError(t, err)
	assert.Len(t, messages, 4)
}

func TestSendMessageUnknownConversation(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := postMessage(t, router, `{"message":"hi","conversation_id":9999}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendMessageHistoryExcludesCurrentTurn(t *testing.T) {
	gen := &genai.FakeGenerator{Text: "generated", Enabled: true, Name: genai.ProviderGemini}
	router, _ := newTestRouter(t, gen)

	w := postMessage(t, router, `{"message":"what clubs are there?"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var first sendMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "llm", first.Source)

	body := fmt.Sprintf(`{"message":"tell me more please","conversation_id":%d}`, first.ConversationID)
	w = postMessage(t, router, body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The history section must carry the prior turns but not the current
	// question, which appears only once as the current question.
	assert.Contains(t, gen.LastSent, "user: what clubs are there?")
	assert.Contains(t, gen.LastSent, "assistant: generated")
	assert.Equal(t, 1, strings.Count(gen.LastSent, "tell me more please"))
}

func TestGetConversationHistory(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := postMessage(t, router, `{"message":"hello there"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sent sendMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/conversations/%d", sent.ConversationID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp conversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, sent.ConversationID, resp.ID)
	assert.Equal(t, "hello there", resp.Title)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "hello there", resp.Messages[0].Content)
}

func TestGetConversationNotFound(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/424242", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetConversationBadID(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListConversationsBySession(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	postMessage(t, router, `{"message":"first from alice"}`, map[string]string{SessionHeader: "alice"})
	postMessage(t, router, `{"message":"second from alice"}`, map[string]string{SessionHeader: "alice"})
	postMessage(t, router, `{"message":"only one from bob"}`, map[string]string{SessionHeader: "bob"})

	req := httptest.NewRequest(http.MethodGet, "/api/conversations?session=alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Conversations []storage.ConversationSummary `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Conversations, 2)
	for _, summary := range resp.Conversations {
		assert.Equal(t, "alice", summary.SessionKey)
		assert.Equal(t, 2, summary.MessageCount)
	}
}

func TestListConversationsDefaultsToHeader(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	postMessage(t, router, `{"message":"hello there"}`, map[string]string{SessionHeader: "carol"})

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	req.Header.Set(SessionHeader, "carol")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Conversations []storage.ConversationSummary `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Conversations, 1)
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "hello", "hello"},
		{"exactly forty-seven", strings.Repeat("x", 47), strings.Repeat("x", 47)},
		{"forty-eight", strings.Repeat("x", 48), strings.Repeat("x", 47) + "..."},
		{"fifty", strings.Repeat("x", 50), strings.Repeat("x", 47) + "..."},
		{"multibyte", strings.Repeat("課", 60), strings.Repeat("課", 47) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateTitle(tt.in))
		})
	}
}
