package storage

import "strings"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Knowledge entry categories.
const (
	CategoryCourse   = "course"
	CategoryDeadline = "deadline"
	CategoryResource = "resource"
	CategoryGeneral  = "general"
)

// Conversation represents a chat thread owned by a session
type Conversation struct {
	ID         int64  `json:"id"`
	SessionKey string `json:"session_key"`
	Title      string `json:"title"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

// Message represents a single turn in a conversation
type Message struct {
	ID             int64  `json:"id"`
	ConversationID int64  `json:"conversation_id"`
	Role           string `json:"role"` // "user" or "assistant"
	Content        string `json:"content"`
	Timestamp      int64  `json:"timestamp"`
}

// ConversationSummary is a conversation with its message count,
// returned by the list endpoint
type ConversationSummary struct {
	Conversation
	MessageCount int `json:"message_count"`
}

// KnowledgeEntry represents a curated question→answer record.
// Keywords are stored comma-separated, matching the admin data format.
type KnowledgeEntry struct {
	ID       int64  `json:"id"`
	Category string `json:"category"` // course, deadline, resource, general
	Pattern  string `json:"pattern"`  // descriptive label, not matched directly
	Answer   string `json:"answer"`
	Keywords string `json:"keywords"` // comma-separated
}

// KeywordList splits the comma-separated keywords into trimmed entries.
// Empty segments are dropped.
func (e *KnowledgeEntry) KeywordList() []string {
	parts := strings.Split(e.Keywords, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if kw := strings.TrimSpace(p); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
