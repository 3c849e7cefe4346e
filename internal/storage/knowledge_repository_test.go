package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertKnowledgeEntry(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	entry := &KnowledgeEntry{
		Category: CategoryResource,
		Pattern:  "library hours",
		Answer:   "Main Library Hours: 8 AM - 10 PM",
		Keywords: "library, hours, open",
	}

	created, err := db.UpsertKnowledgeEntry(ctx, entry)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, entry.ID)

	// Upserting the same pattern updates in place
	updated := &KnowledgeEntry{
		Category: CategoryResource,
		Pattern:  "library hours",
		Answer:   "Main Library Hours: 8 AM - 11 PM",
		Keywords: "library, hours, open, close",
	}
	created, err = db.UpsertKnowledgeEntry(ctx, updated)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, entry.ID, updated.ID)

	entries, err := db.ListKnowledgeEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Main Library Hours: 8 AM - 11 PM", entries[0].Answer)
}

func TestListKnowledgeEntriesStableOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	patterns := []string{"first", "second", "third"}
	for _, p := range patterns {
		_, err := db.UpsertKnowledgeEntry(ctx, &KnowledgeEntry{
			Category: CategoryGeneral,
			Pattern:  p,
			Answer:   "answer for " + p,
			Keywords: p,
		})
		require.NoError(t, err)
	}

	entries, err := db.ListKnowledgeEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, p := range patterns {
		assert.Equal(t, p, entries[i].Pattern, "insertion order must be preserved")
	}

	count, err := db.CountKnowledgeEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestKeywordList(t *testing.T) {
	entry := &KnowledgeEntry{Keywords: "library, hours , open,, close"}
	assert.Equal(t, []string{"library", "hours", "open", "close"}, entry.KeywordList())

	empty := &KnowledgeEntry{Keywords: ""}
	assert.Empty(t, empty.KeywordList())
}
