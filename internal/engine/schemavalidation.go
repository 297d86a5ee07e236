package engine

import (
	"fmt"
	"strings"

	"github.com/user/langpatrol/internal/models"
)

// runSchemaValidationRule implements spec.md §4.9: strict JSON-Schema-7
// structural validation, grouped and truncated for reporting.
func runSchemaValidationRule(report *Report, input models.AnalyzeInput) {
	if input.Schema == nil {
		return
	}
	errs := validateSchema(input.Schema)
	if len(errs) == 0 {
		return
	}

	byKeyword := make(map[string]int)
	var order []string
	for _, e := range errs {
		if _, ok := byKeyword[e.keyword]; !ok {
			order = append(order, e.keyword)
		}
		byKeyword[e.keyword]++
	}

	summary := make([]models.EvidenceSummaryItem, 0, len(order))
	for _, k := range order {
		summary = append(summary, models.EvidenceSummaryItem{Text: k, Count: byKeyword[k]})
	}

	detailCount := len(errs)
	if detailCount > schemaErrorsInDetail {
		detailCount = schemaErrorsInDetail
	}
	messages := make([]string, 0, detailCount)
	for i := 0; i < detailCount; i++ {
		messages = append(messages, errs[i].message)
	}

	occCount := len(errs)
	if occCount > schemaErrorsInOccurrences {
		occCount = schemaErrorsInOccurrences
	}
	occurrences := make([]models.Occurrence, 0, occCount)
	for i := 0; i < occCount; i++ {
		occurrences = append(occurrences, models.Occurrence{
			Start: -1, End: -1,
			Text: errs[i].message,
			Term: errs[i].keyword,
		})
	}

	report.AddIssue(models.Issue{
		Code:       models.InvalidSchema,
		Severity:   models.SeverityHigh,
		Detail:     fmt.Sprintf("Schema has %d structural error(s): %s", len(errs), strings.Join(messages, "; ")),
		Confidence: models.ConfidenceHigh,
		Scope:      models.Scope{Type: models.ScopePrompt},
		Evidence: models.Evidence{
			Summary:     summary,
			Occurrences: occurrences,
		},
	})
}
