package engine

import (
	"regexp"
	"strings"

	"github.com/user/langpatrol/internal/models"
)

var jsonKeywordPattern = regexp.MustCompile(`(?i)\bjson\b|[{\[]|"`)

var proseAfterJSONPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\badd\s+(?:a\s+|some\s+)?(?:brief\s+)?commentary\s+(after|following|below)\b`),
	regexp.MustCompile(`(?i)\boutput\s+json\s+(and|then|followed by)\b`),
	regexp.MustCompile(`(?i)\b(?:explanation|notes?|commentary)\s+(after|following|below)\s+the\s+json\b`),
}

// runSchemaRiskRule implements spec.md §4.8: active only when a schema is
// provided, flags prompts that don't actually ask for JSON and prompts
// that ask for JSON plus trailing prose.
func runSchemaRiskRule(report *Report, input models.AnalyzeInput) {
	if input.Schema == nil {
		return
	}
	text := extractText(input)

	if !jsonKeywordPattern.MatchString(text) {
		report.AddIssue(models.Issue{
			Code:       models.SchemaRisk,
			Severity:   models.SeverityHigh,
			Detail:     "Schema provided but prompt does not request JSON output",
			Confidence: models.ConfidenceHigh,
			Scope:      models.Scope{Type: models.ScopePrompt},
			Evidence:   models.Evidence{Occurrences: []models.Occurrence{{Start: -1, End: -1, Text: "no json keyword"}}},
		})
		return
	}

	if !strings.Contains(strings.ToLower(text), "json") {
		return
	}
	for _, re := range proseAfterJSONPatterns {
		if loc := re.FindStringIndex(text); loc != nil {
			issue := report.AddIssue(models.Issue{
				Code:       models.SchemaRisk,
				Severity:   models.SeverityHigh,
				Detail:     "Prompt requests JSON output but also asks for commentary alongside it",
				Confidence: models.ConfidenceHigh,
				Scope:      models.Scope{Type: models.ScopePrompt},
				Evidence: models.Evidence{Occurrences: []models.Occurrence{{
					Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1],
					Preview: createPreview(text, loc[0], loc[1], 40),
				}}},
			})
			report.AddSuggestion(models.Suggestion{Kind: models.EnforceJSON, Text: "Drop the commentary instruction or move it into schema metadata", For: issue.ID})
			return
		}
	}
}
