// Package knowledge implements the curated knowledge-base lookup tier of the
// answer pipeline: a structural course-code detector plus keyword matching
// against admin-maintained question→answer entries.
package knowledge

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/edubot/edubot-go/internal/storage"
)

// courseCodePattern matches tokens shaped like course codes: 2-4 letters
// optionally followed by whitespace, then 3-4 digits (e.g. "CS 101", "math1301").
// Matching runs against the lowercased utterance.
var courseCodePattern = regexp.MustCompile(`[a-z]{2,4}\s?\d{3,4}`)

const courseCodeAnswer = "I see you're asking about %s. For detailed course information including prerequisites, professor details, and schedule, please check the official university course catalog or contact the department directly."

// Matcher performs deterministic lookups against the knowledge table.
// Entries are loaded once and are read-only at request time; Reload swaps the
// table atomically when the admin data changes.
type Matcher struct {
	mu      sync.RWMutex
	entries []storage.KnowledgeEntry
}

// NewMatcher creates a matcher over the given entries.
// Entry order is significant: the first matching entry wins.
func NewMatcher(entries []storage.KnowledgeEntry) *Matcher {
	return &Matcher{entries: entries}
}

// Match resolves an utterance against the knowledge base.
// Returns the answer and true on a hit, empty string and false otherwise.
//
// Course-code detection takes priority over the table: an utterance containing
// a course-shaped token gets a catalog referral without consulting entries.
func (m *Matcher) Match(utterance string) (string, bool) {
	lower := strings.ToLower(utterance)

	if code := courseCodePattern.FindString(lower); code != "" {
		return fmt.Sprintf(courseCodeAnswer, strings.ToUpper(code)), true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.entries {
		for _, keyword := range m.entries[i].KeywordList() {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return m.entries[i].Answer, true
			}
		}
	}

	return "", false
}

// Reload replaces the entry table. Used after reseeding.
func (m *Matcher) Reload(entries []storage.KnowledgeEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
}

// Count returns the number of loaded entries.
func (m *Matcher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
