package engine

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/user/langpatrol/internal/models"
)

// punctuationCutset is the set of characters normalizeNoun and
// normalizePhrase strip, per spec.md §4.1.
const punctuationCutset = `.,;:!?()[]{}'"`

// extractText concatenates prompt and every message's content with
// newlines, the same flattening internal/service/message_extractor.go
// does. Whole-text rules (conflicts, schema-risk, token, PII, security)
// all read through this.
func extractText(input models.AnalyzeInput) string {
	var parts []string
	if input.Prompt != nil && *input.Prompt != "" {
		parts = append(parts, *input.Prompt)
	}
	for _, m := range input.Messages {
		if m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// joinMessages returns only the message contents (no prompt), joined with
// newlines.
func joinMessages(messages []models.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}

// getCurrentPrompt returns the text the reference rule treats as "current":
// the prompt when given, otherwise the last message's content.
func getCurrentPrompt(input models.AnalyzeInput) string {
	if input.Prompt != nil {
		return *input.Prompt
	}
	if len(input.Messages) > 0 {
		return input.Messages[len(input.Messages)-1].Content
	}
	return ""
}

// normalizeNoun lowercases, strips punctuation, and applies the minimal
// singularizer from spec.md §4.1. Rule order matters: each case is tried
// only if the previous ones didn't match.
func normalizeNoun(word string) string {
	w := strings.ToLower(stripPunctuation(word))
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 3:
		w = w[:len(w)-3] + "y"
	case hasAnySuffix(w, "ses", "xes", "zes", "ches", "shes"):
		w = w[:len(w)-2]
	case hasAnySuffix(w, "les", "res", "nes"):
		w = w[:len(w)-1]
	case strings.HasSuffix(w, "es") && len(w) > 2:
		w = w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 1:
		w = w[:len(w)-1]
	}
	return w
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuationCutset, r) {
			return -1
		}
		return r
	}, s)
}

// normalizePhrase lowercases, turns punctuation into spaces, and collapses
// whitespace runs.
func normalizePhrase(s string) string {
	lowered := strings.ToLower(s)
	replaced := strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuationCutset, r) {
			return ' '
		}
		return r
	}, lowered)
	return collapseWhitespace(replaced)
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

const previewEllipsis = "…"

// createPreview returns a whitespace-collapsed window of up to radius
// bytes before and after [start,end), prefixing/suffixing with an ellipsis
// when the window is clipped. This is the canonical evidence context
// (spec.md §4.1).
func createPreview(text string, start, end, radius int) string {
	if radius <= 0 {
		radius = 40
	}
	if start < 0 || end < 0 || start > len(text) || end > len(text) {
		return ""
	}

	s := start - radius
	clippedStart := s > 0
	if s < 0 {
		s = 0
	}
	s = alignRuneStart(text, s, true)

	e := end + radius
	clippedEnd := e < len(text)
	if e > len(text) {
		e = len(text)
	}
	e = alignRuneStart(text, e, false)
	if e < s {
		e = s
	}

	window := collapseWhitespace(text[s:e])
	if clippedStart {
		window = previewEllipsis + window
	}
	if clippedEnd {
		window += previewEllipsis
	}
	return window
}

// alignRuneStart nudges a byte offset to the nearest valid rune boundary so
// slicing never splits a multi-byte UTF-8 character. forward controls
// whether it nudges forward (when scanning open a window start) or
// backward (closing a window end).
func alignRuneStart(text string, at int, forward bool) int {
	if at <= 0 {
		return 0
	}
	if at >= len(text) {
		return len(text)
	}
	for at > 0 && at < len(text) && !utf8.RuneStart(text[at]) {
		if forward {
			at++
		} else {
			at--
		}
	}
	return at
}

// createIssueID generates a short, collision-resistant opaque token unique
// within a report, the same google/uuid reliance internal/service/proxy.go
// uses for request IDs.
func createIssueID() string {
	return "iss_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// createTraceID generates a trace identifier with an ISO-timestamp prefix.
func createTraceID(now time.Time) string {
	return now.UTC().Format("20060102T150405.000Z") + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
