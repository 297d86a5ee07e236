package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/user/langpatrol/internal/models"
)

type piiPattern struct {
	class string
	regex *regexp.Regexp
}

var piiPatterns = []piiPattern{
	{"email", regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
	{"phone", regexp.MustCompile(`(?:\+|\b)\d{1,3}[\s.\-]?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)},
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"card", regexp.MustCompile(`\b(?:\d[ \-]?){13,19}\b`)},
}

const maxPIIOccurrences = 50

// runPIIRule implements the PII_DETECTED supplemental detector: a
// regex-table scan grouped by class, Luhn-checked for card numbers to cut
// false positives. Opt-in via options.enableLocalPII.
func runPIIRule(report *Report, input models.AnalyzeInput) {
	if !input.Options.EnableLocalPII {
		return
	}
	text := extractText(input)
	if text == "" {
		return
	}

	counts := make(map[string]int)
	var order []string
	var occurrences []models.Occurrence

	for _, p := range piiPatterns {
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			match := text[loc[0]:loc[1]]
			if p.class == "card" && !luhnValid(match) {
				continue
			}
			if _, ok := counts[p.class]; !ok {
				order = append(order, p.class)
			}
			counts[p.class]++
			if len(occurrences) < maxPIIOccurrences {
				occurrences = append(occurrences, models.Occurrence{
					Text:    match,
					Start:   loc[0],
					End:     loc[1],
					Preview: createPreview(text, loc[0], loc[1], 40),
					Bucket:  p.class,
				})
			}
		}
	}

	if len(order) == 0 {
		return
	}
	sort.Strings(order)

	summary := make([]models.EvidenceSummaryItem, 0, len(order))
	for _, c := range order {
		summary = append(summary, models.EvidenceSummaryItem{Text: c, Count: counts[c]})
	}

	report.AddIssue(models.Issue{
		Code:       models.PIIDetected,
		Severity:   models.SeverityHigh,
		Detail:     fmt.Sprintf("Prompt appears to contain personal data: %s", strings.Join(order, ", ")),
		Confidence: models.ConfidenceMedium,
		Scope:      models.Scope{Type: models.ScopePrompt},
		Evidence: models.Evidence{
			Summary:     summary,
			Occurrences: occurrences,
		},
	})
}

// luhnValid runs the Luhn checksum over the digits in s, ignoring
// separators, to filter incidental 13-19 digit runs out of card-number
// matches.
func luhnValid(s string) bool {
	var digits []int
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	alt := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if alt {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		alt = !alt
	}
	return sum%10 == 0
}
