package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domerrors "github.com/edubot/edubot-go/internal/errors"
)

// CreateConversation inserts a new conversation for the given session
func (db *DB) CreateConversation(ctx context.Context, sessionKey, title string) (*Conversation, error) {
	now := time.Now().Unix()
	query := `INSERT INTO conversations (session_key, title, created_at, updated_at) VALUES (?, ?, ?, ?)`

	result, err := db.conn.ExecContext(ctx, query, sessionKey, title, now, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create conversation",
			"session_key", sessionKey,
			"error", err)
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation id: %w", err)
	}

	return &Conversation{
		ID:         id,
		SessionKey: sessionKey,
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// GetConversation retrieves a conversation by ID.
// Returns domerrors.ErrNotFound if no such conversation exists.
func (db *DB) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	query := `SELECT id, session_key, title, created_at, updated_at FROM conversations WHERE id = ?`

	var conv Conversation
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&conv.ID,
		&conv.SessionKey,
		&conv.Title,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domerrors.ErrNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query conversation",
			"conversation_id", id,
			"error", err)
		return nil, fmt.Errorf("query conversation: %w", err)
	}

	return &conv, nil
}

// UpdateConversationTitle sets a new title for the conversation
func (db *DB) UpdateConversationTitle(ctx context.Context, id int64, title string) error {
	query := `UPDATE conversations SET title = ? WHERE id = ?`
	if _, err := db.conn.ExecContext(ctx, query, title, id); err != nil {
		slog.ErrorContext(ctx, "failed to update conversation title",
			"conversation_id", id,
			"error", err)
		return fmt.Errorf("failed to update conversation title: %w", err)
	}
	return nil
}

// TouchConversation bumps the conversation's updated_at timestamp
func (db *DB) TouchConversation(ctx context.Context, id int64) error {
	query := `UPDATE conversations SET updated_at = ? WHERE id = ?`
	if _, err := db.conn.ExecContext(ctx, query, time.Now().Unix(), id); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

// ListConversations returns the session's conversations with message counts,
// most recently updated first
func (db *DB) ListConversations(ctx context.Context, sessionKey string) ([]ConversationSummary, error) {
	query := `
		SELECT c.id, c.session_key, c.title, c.created_at, c.updated_at, COUNT(m.id)
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.session_key = ?
		GROUP BY c.id
		ORDER BY c.updated_at DESC, c.id DESC
	`

	rows, err := db.conn.QueryContext(ctx, query, sessionKey)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list conversations",
			"session_key", sessionKey,
			"error", err)
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]ConversationSummary, 0, 16)
	for rows.Next() {
		var s ConversationSummary
		if err := rows.Scan(&s.ID, &s.SessionKey, &s.Title, &s.CreatedAt, &s.UpdatedAt, &s.MessageCount); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	return summaries, nil
}

// SaveMessage appends a turn to the conversation and returns the stored record
func (db *DB) SaveMessage(ctx context.Context, conversationID int64, role, content string) (*Message, error) {
	now := time.Now().Unix()
	query := `INSERT INTO messages (conversation_id, role, content, timestamp) VALUES (?, ?, ?, ?)`

	start := time.Now()
	result, err := db.conn.ExecContext(ctx, query, conversationID, role, content, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save message",
			"conversation_id", conversationID,
			"role", role,
			"error", err)
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	// Warn on slow queries (>100ms)
	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "SaveMessage",
			"duration_ms", duration.Milliseconds(),
			"conversation_id", conversationID)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read message id: %w", err)
	}

	return &Message{
		ID:             id,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Timestamp:      now,
	}, nil
}

// GetMessages returns every message in the conversation, oldest first
func (db *DB) GetMessages(ctx context.Context, conversationID int64) ([]Message, error) {
	query := `
		SELECT id, conversation_id, role, content, timestamp
		FROM messages WHERE conversation_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, conversationID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query messages",
			"conversation_id", conversationID,
			"error", err)
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanMessages(rows)
}

// RecentMessages returns the newest `limit` messages of the conversation in
// chronological order (oldest of the window first). Used to build LLM context.
func (db *DB) RecentMessages(ctx context.Context, conversationID int64, limit int) ([]Message, error) {
	if limit <= 0 {
		return []Message{}, nil
	}

	query := `
		SELECT id, conversation_id, role, content, timestamp
		FROM messages WHERE conversation_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.conn.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query recent messages",
			"conversation_id", conversationID,
			"error", err)
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Reverse newest-first into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	messages := make([]Message, 0, 16)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// CountMessages returns the number of messages in a conversation
func (db *DB) CountMessages(ctx context.Context, conversationID int64) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

// CountConversations returns the total number of conversations
func (db *DB) CountConversations(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count conversations: %w", err)
	}
	return count, nil
}

// DeleteConversationsBefore removes conversations whose last activity is older
// than the cutoff, cascading to their messages. Returns the number deleted.
func (db *DB) DeleteConversationsBefore(ctx context.Context, cutoff int64) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM conversations WHERE updated_at < ?`, cutoff)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete stale conversations",
			"cutoff", cutoff,
			"error", err)
		return 0, fmt.Errorf("delete stale conversations: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read affected rows: %w", err)
	}
	return deleted, nil
}
