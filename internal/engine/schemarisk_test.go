package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/langpatrol/internal/models"
)

func TestSchemaRiskNoJSONKeyword(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt: testStrPtr("Please summarize the document for me."),
		Schema: map[string]any{"type": "object"},
	}
	runSchemaRiskRule(report, input)

	require.Len(t, report.issues, 1)
	assert.Equal(t, models.SchemaRisk, report.issues[0].Code)
	assert.Contains(t, report.issues[0].Detail, "does not request JSON")
}

func TestSchemaRiskProseAfterJSON(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt: testStrPtr("Output JSON only. Add commentary after the JSON."),
		Schema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"name": map[string]any{"type": "string"}},
		},
	}
	runSchemaRiskRule(report, input)

	require.Len(t, report.issues, 1)
	issue := report.issues[0]
	assert.Equal(t, models.SchemaRisk, issue.Code)
	assert.Contains(t, issue.Detail, "commentary")

	require.Len(t, report.suggestions, 1)
	assert.Equal(t, models.EnforceJSON, report.suggestions[0].Kind)
}

func TestSchemaRiskNoSchemaNoOp(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{Prompt: testStrPtr("Output JSON only.")}
	runSchemaRiskRule(report, input)
	assert.Empty(t, report.issues)
}

func TestSchemaRiskRequestsJSONWithoutProse(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt: testStrPtr("Return valid JSON matching the schema."),
		Schema: map[string]any{"type": "object"},
	}
	runSchemaRiskRule(report, input)
	assert.Empty(t, report.issues)
}
