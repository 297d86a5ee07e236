package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/langpatrol/internal/models"
)

func TestSchemaValidationRuleNoSchemaNoOp(t *testing.T) {
	report := newReport()
	runSchemaValidationRule(report, models.AnalyzeInput{})
	assert.Empty(t, report.issues)
}

func TestSchemaValidationRuleValidSchemaNoOp(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Schema: map[string]any{"type": "object"},
	}
	runSchemaValidationRule(report, input)
	assert.Empty(t, report.issues)
}

func TestSchemaValidationRuleEmitsGroupedErrors(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Schema: map[string]any{
			"properties": map[string]any{
				"a": map[string]any{"type": "string"},
			},
		},
	}
	runSchemaValidationRule(report, input)

	require.Len(t, report.issues, 1)
	issue := report.issues[0]
	assert.Equal(t, models.InvalidSchema, issue.Code)
	require.NotEmpty(t, issue.Evidence.Summary)
	assert.Equal(t, "properties", issue.Evidence.Summary[0].Text)
}

func TestSchemaValidationRuleTruncatesLargeErrorSets(t *testing.T) {
	props := make(map[string]any, 20)
	for i := 0; i < 20; i++ {
		props[string(rune('a'+i))] = map[string]any{
			"properties": map[string]any{"x": map[string]any{"type": "string"}},
		}
	}
	report := newReport()
	input := models.AnalyzeInput{
		Schema: map[string]any{
			"type":       "object",
			"properties": props,
		},
	}
	runSchemaValidationRule(report, input)

	require.Len(t, report.issues, 1)
	occurrences := report.issues[0].Evidence.Occurrences
	assert.LessOrEqual(t, len(occurrences), schemaErrorsInOccurrences)
}
