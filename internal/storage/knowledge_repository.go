package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// ListKnowledgeEntries returns all knowledge entries in stable insertion
// order. The matcher depends on this ordering: the first matching entry wins.
func (db *DB) ListKnowledgeEntries(ctx context.Context) ([]KnowledgeEntry, error) {
	query := `SELECT id, category, pattern, answer, keywords FROM knowledge ORDER BY id ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query knowledge entries", "error", err)
		return nil, fmt.Errorf("query knowledge entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]KnowledgeEntry, 0, 32)
	for rows.Next() {
		var e KnowledgeEntry
		if err := rows.Scan(&e.ID, &e.Category, &e.Pattern, &e.Answer, &e.Keywords); err != nil {
			return nil, fmt.Errorf("scan knowledge entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge entries: %w", err)
	}

	return entries, nil
}

// UpsertKnowledgeEntry inserts an entry or updates the existing one with the
// same pattern. Returns true if a new row was created.
func (db *DB) UpsertKnowledgeEntry(ctx context.Context, entry *KnowledgeEntry) (bool, error) {
	var existingID int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM knowledge WHERE pattern = ?`, entry.Pattern).Scan(&existingID)

	if err == nil {
		_, err = db.conn.ExecContext(ctx,
			`UPDATE knowledge SET category = ?, answer = ?, keywords = ? WHERE id = ?`,
			entry.Category, entry.Answer, entry.Keywords, existingID)
		if err != nil {
			return false, fmt.Errorf("update knowledge entry: %w", err)
		}
		entry.ID = existingID
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("lookup knowledge entry: %w", err)
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO knowledge (category, pattern, answer, keywords) VALUES (?, ?, ?, ?)`,
		entry.Category, entry.Pattern, entry.Answer, entry.Keywords)
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert knowledge entry",
			"pattern", entry.Pattern,
			"error", err)
		return false, fmt.Errorf("insert knowledge entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("read knowledge entry id: %w", err)
	}
	entry.ID = id
	return true, nil
}

// CountKnowledgeEntries returns the number of knowledge entries
func (db *DB) CountKnowledgeEntries(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count knowledge entries: %w", err)
	}
	return count, nil
}
