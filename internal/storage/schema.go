package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go's New function.
func InitSchema(db *sql.DB) error {
	if err := createConversationsTable(db); err != nil {
		return err
	}

	if err := createMessagesTable(db); err != nil {
		return err
	}

	return createKnowledgeTable(db)
}

func createConversationsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_key TEXT NOT NULL,
		title TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_key, updated_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create conversations table: %w", err)
	}

	return nil
}

func createMessagesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id INTEGER NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		role TEXT CHECK(role IN ('user', 'assistant')) NOT NULL,
		content TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, timestamp, id);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create messages table: %w", err)
	}

	return nil
}

func createKnowledgeTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS knowledge (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT CHECK(category IN ('course', 'deadline', 'resource', 'general')) NOT NULL,
		pattern TEXT NOT NULL UNIQUE,
		answer TEXT NOT NULL,
		keywords TEXT NOT NULL
	);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create knowledge table: %w", err)
	}

	return nil
}
