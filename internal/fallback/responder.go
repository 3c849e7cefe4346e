// Package fallback implements the last tier of the answer pipeline: canned,
// regex-driven responses used when neither the knowledge base nor the LLM
// produced an answer. It never fails and always returns non-empty text.
package fallback

import (
	"fmt"
	"math/rand"
	"regexp"
)

// intent pairs a compiled pattern with its candidate response templates.
// Intents are evaluated in declaration order; the first match wins.
type intent struct {
	pattern   *regexp.Regexp
	templates []string
}

// RandSource picks an index in [0, n). Injected so tests can pin selection.
type RandSource func(n int) int

// Responder generates deterministic-intent, randomly-templated responses.
type Responder struct {
	intents  []intent
	defaults []string
	randInt  RandSource
}

// NewResponder creates a responder using math/rand for template selection.
func NewResponder() *Responder {
	return NewResponderWithRand(rand.Intn)
}

// NewResponderWithRand creates a responder with a custom random source.
func NewResponderWithRand(randInt RandSource) *Responder {
	return &Responder{
		intents:  buildIntents(),
		defaults: defaultTemplates(),
		randInt:  randInt,
	}
}

// Respond returns a canned response for the utterance.
// Patterns run against the lowercase form via the (?i) flag; on a hit one of
// the intent's templates is chosen uniformly. With no hit, one of two generic
// templates interpolating the utterance is returned.
func (r *Responder) Respond(utterance string) string {
	for _, in := range r.intents {
		if in.pattern.MatchString(utterance) {
			return in.templates[r.randInt(len(in.templates))]
		}
	}

	template := r.defaults[r.randInt(len(r.defaults))]
	return fmt.Sprintf(template, utterance)
}

func buildIntents() []intent {
	return []intent{
		{
			pattern: regexp.MustCompile(`(?i)\b(directions?|location|where is|how to get to|how do i get to|route|map)\b`),
			templates: []string{
				"**Okay! To give you directions, I need to know:**\n\n1. **Where are you starting from?** (e.g., Faculty of Engineering, Library, Main Gate)\n2. **Where are you trying to go?** (e.g., specific building, department, landmark)\n\nOnce I have that information, I can provide you with the best route. If you're unsure of building names, you can check the university's website for a campus map.",
				"**I can help with directions!** Please tell me:\n\n• **Your starting location** on campus\n• **Your destination** \n\nWith these details, I'll give you clear directions around campus.",
			},
		},
		{
			pattern: regexp.MustCompile(`(?i)\b(hello|hi|hey|greetings)\b`),
			templates: []string{
				"**Hello!** I'm EduBot, your university assistant. How can I help you with **courses, deadlines, or campus resources** today?",
				"**Hi there!** I'm here to assist with university matters. What can I help you with?",
			},
		},
		{
			pattern: regexp.MustCompile(`(?i)\b(course|class|subject)\b`),
			templates: []string{
				"**I can help with course information!** Which specific **course or department** are you interested in?",
				"**For course details**, check the university catalog or let me know which **specific course** you're asking about.",
			},
		},
		{
			pattern: regexp.MustCompile(`(?i)\b(deadline|due|when is|due date)\b`),
			templates: []string{
				"**Important deadlines** are usually found in:\n\n• **Academic calendar**\n• **Course syllabus** \n• **University website**\n\nWhich specific deadline are you looking for?",
				"**Deadline information** is available in your **course materials** and the **official academic calendar**. What specific deadline do you need help with?",
			},
		},
		{
			pattern: regexp.MustCompile(`(?i)\b(study|learn|exam|test)\b`),
			templates: []string{
				"**For academic success**, try these strategies:\n\n• **Review regularly** and don't cram\n• **Practice actively** with past papers\n• **Use campus resources** like the tutoring center\n• **Form study groups** with classmates",
				"**Effective studying** involves:\n\n1. **Good time management**\n2. **Active learning techniques**\n3. **Utilizing campus support services**\n4. **Regular breaks** and self-care",
			},
		},
	}
}

func defaultTemplates() []string {
	return []string{
		"**I'd be happy to help with '%s'!**\n\nAs a university assistant, I specialize in:\n\n• **Course information** and prerequisites\n• **Academic deadlines** and schedules\n• **Campus resources** and services\n• **General student guidance**\n\nCould you provide more specific details about what you need?",
		"**That's an interesting question about '%s'!**\n\nI'm here to help with **university-related topics** including:\n\n• Course details and schedules\n• Campus facilities and resources\n• Academic planning and deadlines\n• Student support services\n\nWhat specific information can I help you find?",
	}
}
