package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/langpatrol/internal/models"
)

func TestPlaceholderRuleHandlebarsScenario(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt:          testStrPtr("Hello {{customer_name}}, welcome!"),
		TemplateDialect: models.DialectHandlebars,
	}
	runPlaceholderRule(report, input)

	require.Len(t, report.issues, 1)
	issue := report.issues[0]
	assert.Equal(t, models.MissingPlaceholder, issue.Code)
	assert.Equal(t, models.SeverityHigh, issue.Severity)
	assert.Equal(t, models.ConfidenceHigh, issue.Confidence)
	require.Len(t, issue.Evidence.Summary, 1)
	assert.Equal(t, "customer_name", issue.Evidence.Summary[0].Text)
	assert.Equal(t, 1, issue.Evidence.Summary[0].Count)
}

func TestPlaceholderRuleAutoDetectsDialect(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{Prompt: testStrPtr("Hi {{name}}")}
	runPlaceholderRule(report, input)
	require.Len(t, report.issues, 1)
}

func TestPlaceholderRuleIdempotentAfterSubstitution(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt:          testStrPtr("Hello Jane, welcome!"),
		TemplateDialect: models.DialectHandlebars,
	}
	runPlaceholderRule(report, input)
	assert.Empty(t, report.issues)
}

func TestPlaceholderRuleSkipsBlockHelperSigils(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt:          testStrPtr("{{#if user}}Hi {{name}}{{/if}}"),
		TemplateDialect: models.DialectHandlebars,
	}
	runPlaceholderRule(report, input)
	require.Len(t, report.issues, 1)
	require.Len(t, report.issues[0].Evidence.Summary, 1)
	assert.Equal(t, "name", report.issues[0].Evidence.Summary[0].Text)
}

func TestPlaceholderRuleEJSDialect(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt:          testStrPtr("Hi <%= name %>"),
		TemplateDialect: models.DialectEJS,
	}
	runPlaceholderRule(report, input)
	require.Len(t, report.issues, 1)
	assert.Equal(t, "name", report.issues[0].Evidence.Summary[0].Text)
}

func TestPlaceholderRuleCountsRepeatedVariable(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt:          testStrPtr("{{x}} and {{x}} again"),
		TemplateDialect: models.DialectHandlebars,
	}
	runPlaceholderRule(report, input)
	require.Len(t, report.issues, 1)
	require.Len(t, report.issues[0].Evidence.Summary, 1)
	assert.Equal(t, 2, report.issues[0].Evidence.Summary[0].Count)
}
