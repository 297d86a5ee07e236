package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/langpatrol/internal/models"
)

func TestConflictsRuleVerbosityBucket(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt: testStrPtr("Be concise and give a detailed step by step explanation."),
	}
	runConflictsRule(context.Background(), report, input)

	require.Len(t, report.issues, 1)
	issue := report.issues[0]
	assert.Equal(t, models.ConflictingInstruction, issue.Code)
	assert.Equal(t, models.SeverityMedium, issue.Severity)
	require.Len(t, issue.Evidence.Summary, 1)
	assert.Equal(t, "verbosity", issue.Evidence.Summary[0].Text)

	require.Len(t, report.suggestions, 1)
	assert.Equal(t, models.TightenInstruction, report.suggestions[0].Kind)
	assert.Equal(t, issue.ID, report.suggestions[0].For)
}

func TestConflictsRuleRemovingEitherPhraseClearsIt(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{Prompt: testStrPtr("Be concise.")}
	runConflictsRule(context.Background(), report, input)
	assert.Empty(t, report.issues)

	report2 := newReport()
	input2 := models.AnalyzeInput{Prompt: testStrPtr("Give a detailed step by step explanation.")}
	runConflictsRule(context.Background(), report2, input2)
	assert.Empty(t, report2.issues)
}

func TestConflictsRuleFormatBucket(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt: testStrPtr("Output JSON only. Add commentary after the JSON."),
	}
	runConflictsRule(context.Background(), report, input)

	require.Len(t, report.issues, 1)
	issue := report.issues[0]
	require.Len(t, issue.Evidence.Summary, 1)
	assert.Equal(t, "format", issue.Evidence.Summary[0].Text)

	require.Len(t, report.suggestions, 1)
	assert.Equal(t, models.EnforceJSON, report.suggestions[0].Kind)
}

func TestConflictsRuleNoTextNoIssue(t *testing.T) {
	report := newReport()
	runConflictsRule(context.Background(), report, models.AnalyzeInput{})
	assert.Empty(t, report.issues)
}

func TestDedupConflictPairsKeepsHigherConfidence(t *testing.T) {
	pairs := []conflictPair{
		{bucket: "verbosity", tier: "pattern", a: patternMatch{start: 0, end: 5}, b: patternMatch{start: 10, end: 15}, confidence: 0.5},
		{bucket: "verbosity", tier: "semantic", a: patternMatch{start: 0, end: 5}, b: patternMatch{start: 10, end: 15}, confidence: 0.9},
	}
	out := dedupConflictPairs(pairs)
	require.Len(t, out, 1)
	assert.Equal(t, 0.9, out[0].confidence)
}
