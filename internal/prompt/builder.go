// Package prompt assembles the full generation prompt for the LLM tier:
// a fixed system instruction, a bounded conversation transcript, and the
// current question. Pure string assembly, no I/O.
package prompt

import (
	"fmt"
	"strings"

	"github.com/edubot/edubot-go/internal/storage"
)

// DefaultHistoryWindow is the maximum number of recent turns included in the
// transcript.
const DefaultHistoryWindow = 6

// emptyHistoryPlaceholder stands in for the transcript when the conversation
// has no prior turns.
const emptyHistoryPlaceholder = "No previous messages"

// systemInstruction defines the assistant persona, scope, and formatting
// rules. The presentation layer renders the bold/bullet markup.
const systemInstruction = `You are EduBot, a helpful and friendly university assistant. Your role is to assist students with:

**COURSES & ACADEMICS:**
- Course information, prerequisites, schedules
- Professor details, office hours
- Department contacts and resources

**DEADLINES & SCHEDULES:**
- Registration dates, add/drop deadlines
- Exam schedules, assignment due dates
- Academic calendar events

**CAMPUS RESOURCES:**
- Library hours, tutoring centers, study spaces
- IT support, health services, counseling
- Career services, internships, job opportunities

**GUIDANCE & SUPPORT:**
- Study tips, time management strategies
- Campus life, student organizations
- University policies and procedures

**RESPONSE STYLE:**
- Use **bold** for important terms and headings
- Use bullet points with • for lists
- Use numbered lists for steps or sequences
- Keep responses clear and well-structured
- Be concise but thorough

If unsure about specific information, suggest checking official sources. Keep responses under 300 words.`

// Builder assembles LLM prompts with a bounded history window.
type Builder struct {
	window int
}

// NewBuilder creates a Builder keeping at most `window` recent turns.
// Non-positive windows fall back to DefaultHistoryWindow.
func NewBuilder(window int) *Builder {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	return &Builder{window: window}
}

// Build renders the combined prompt: system instruction, transcript of the
// most recent turns (oldest first), the current question, and the trailing
// directive.
func (b *Builder) Build(utterance string, history []storage.Message) string {
	return fmt.Sprintf(`System: %s

Conversation History:
%s

Current User Question: %s

Please provide a helpful, formatted response:`, systemInstruction, b.transcript(history), utterance)
}

// transcript renders the bounded history window as "<role>: <content>" lines.
func (b *Builder) transcript(history []storage.Message) string {
	if len(history) == 0 {
		return emptyHistoryPlaceholder
	}

	if len(history) > b.window {
		history = history[len(history)-b.window:]
	}

	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}
