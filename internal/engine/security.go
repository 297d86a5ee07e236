package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/user/langpatrol/internal/models"
)

type securityPattern struct {
	class string
	regex *regexp.Regexp
}

var securityPatterns = []securityPattern{
	{"prompt_injection", regexp.MustCompile(`(?i)\bignore (all |the )?previous instructions\b`)},
	{"prompt_injection", regexp.MustCompile(`(?i)\bdisregard (all |the )?prior (instructions|rules)\b`)},
	{"jailbreak", regexp.MustCompile(`(?i)\byou are now (DAN|in developer mode|unrestricted)\b`)},
	{"prompt_leak", regexp.MustCompile(`(?i)\bsystem prompt\s*:`)},
	{"script_injection", regexp.MustCompile(`(?i)<script[^>]*>`)},
	{"shell_injection", regexp.MustCompile(`(?i)\b(run|execute)\b[^.\n]{0,40}[;&|$` + "`" + `]`)},
}

const maxSecurityOccurrences = 50

// runSecurityRule implements the SECURITY_THREAT supplemental detector:
// a regex-table scan for common prompt-injection and jailbreak markers,
// in the same pattern-table idiom as the PII detector. Opt-in via
// options.enableSecurityScan.
func runSecurityRule(report *Report, input models.AnalyzeInput) {
	if !input.Options.EnableSecurityScan {
		return
	}
	text := extractText(input)
	if text == "" {
		return
	}

	counts := make(map[string]int)
	var order []string
	var occurrences []models.Occurrence

	for _, p := range securityPatterns {
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			if _, ok := counts[p.class]; !ok {
				order = append(order, p.class)
			}
			counts[p.class]++
			if len(occurrences) < maxSecurityOccurrences {
				occurrences = append(occurrences, models.Occurrence{
					Text:    text[loc[0]:loc[1]],
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
		Code:       models.SecurityThreat,
		Severity:   models.SeverityHigh,
		Detail:     fmt.Sprintf("Prompt contains possible security threat marker(s): %s", strings.Join(order, ", ")),
		Confidence: models.ConfidenceMedium,
		Scope:      models.Scope{Type: models.ScopePrompt},
		Evidence: models.Evidence{
			Summary:     summary,
			Occurrences: occurrences,
		},
	})
}
