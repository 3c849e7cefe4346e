package knowledge

import (
	"context"
	"testing"

	"github.com/edubot/edubot-go/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatcher() *Matcher {
	return NewMatcher(SeedEntries())
}

func TestMatchCourseCode(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		wantCode  string
	}{
		{"spaced code", "Tell me about CS 101", "CS 101"},
		{"compact code", "cs101 info please", "CS101"},
		{"four letters four digits", "is MATH1301 hard?", "MATH1301"},
		{"lowercase with space", "what about math 2010", "MATH 2010"},
	}

	m := newTestMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, ok := m.Match(tt.utterance)
			require.True(t, ok)
			assert.Contains(t, answer, tt.wantCode)
			assert.Contains(t, answer, "course catalog")
		})
	}
}

func TestCourseCodeTakesPriorityOverKeywords(t *testing.T) {
	m := newTestMatcher()

	// "course" is a knowledge keyword, but the course code wins
	answer, ok := m.Match("Which course is CS 101?")
	require.True(t, ok)
	assert.Contains(t, answer, "CS 101")
	assert.NotContains(t, answer, "course catalog or by contacting")
}

func TestMatchKeyword(t *testing.T) {
	m := newTestMatcher()

	answer, ok := m.Match("What are the library hours?")
	require.True(t, ok)
	assert.Contains(t, answer, "Main Library Hours")
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	m := newTestMatcher()

	answer, ok := m.Match("LIBRARY please")
	require.True(t, ok)
	assert.Contains(t, answer, "Main Library Hours")
}

func TestFirstMatchWins(t *testing.T) {
	entries := []storage.KnowledgeEntry{
		{Pattern: "first", Answer: "first answer", Keywords: "shared"},
		{Pattern: "second", Answer: "second answer", Keywords: "shared"},
	}
	m := NewMatcher(entries)

	answer, ok := m.Match("something shared here")
	require.True(t, ok)
	assert.Equal(t, "first answer", answer)
}

func TestNoMatch(t *testing.T) {
	m := newTestMatcher()

	answer, ok := m.Match("hello")
	assert.False(t, ok)
	assert.Empty(t, answer)
}

func TestEmptyKeywordListMatchesNothing(t *testing.T) {
	m := NewMatcher([]storage.KnowledgeEntry{
		{Pattern: "empty", Answer: "never", Keywords: ""},
		{Pattern: "whitespace", Answer: "never", Keywords: " , , "},
	})

	_, ok := m.Match("anything at all")
	assert.False(t, ok)
}

func TestReload(t *testing.T) {
	m := NewMatcher(nil)
	assert.Equal(t, 0, m.Count())

	_, ok := m.Match("library hours")
	assert.False(t, ok)

	m.Reload(SeedEntries())
	assert.Equal(t, len(SeedEntries()), m.Count())

	_, ok = m.Match("library hours")
	assert.True(t, ok)
}

func TestSeedIdempotent(t *testing.T) {
	db, err := storage.NewTestDB()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	created, updated, err := Seed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(SeedEntries()), created)
	assert.Zero(t, updated)

	created, updated, err = Seed(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, len(SeedEntries()), updated)

	entries, err := db.ListKnowledgeEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, len(SeedEntries()))
}

func TestSeededEntriesRoundTripThroughMatcher(t *testing.T) {
	db, err := storage.NewTestDB()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	_, _, err = Seed(ctx, db)
	require.NoError(t, err)

	entries, err := db.ListKnowledgeEntries(ctx)
	require.NoError(t, err)

	m := NewMatcher(entries)
	answer, ok := m.Match("when is the fafsa deadline for financial aid")
	require.True(t, ok)
	// The registration-deadline entry precedes the financial-aid entry in table
	// order and "deadline" is a substring hit, so first match wins.
	assert.Contains(t, answer, "Fall registration ends August 25th")
}
