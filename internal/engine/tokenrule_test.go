package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/langpatrol/internal/models"
)

func TestTokenRuleNoModelNoOp(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{Prompt: testStrPtr("hello")}
	runTokenRule(report, input)
	assert.Empty(t, report.issues)
}

func TestTokenRuleCharEstimateOverage(t *testing.T) {
	report := newReport()
	huge := strings.Repeat("a", 1000000)
	input := models.AnalyzeInput{
		Prompt: testStrPtr(huge),
		Model:  "gpt-4o",
	}
	runTokenRule(report, input)

	require.Len(t, report.issues, 1)
	issue := report.issues[0]
	assert.Equal(t, models.TokenOverage, issue.Code)
	require.Len(t, issue.Evidence.Occurrences, 1)
	assert.Equal(t, "char_estimate", issue.Evidence.Occurrences[0].Text)
	assert.Equal(t, "char_estimate", report.cost.Method)
	require.NotNil(t, report.cost.CharCount)
	assert.Equal(t, 1000000, *report.cost.CharCount)
}

func TestTokenRuleScenarioSixCostAndOverage(t *testing.T) {
	report := newReport()
	prompt := strings.Repeat("word ", 10000)
	maxInputTokens := 1000
	input := models.AnalyzeInput{
		Prompt: testStrPtr(prompt),
		Model:  "gpt-3.5-turbo",
		Options: models.Options{
			MaxInputTokens: &maxInputTokens,
		},
	}
	runTokenRule(report, input)

	require.Len(t, report.issues, 1)
	issue := report.issues[0]
	assert.Equal(t, models.TokenOverage, issue.Code)
	require.NotNil(t, report.cost.EstUSD)
	assert.Greater(t, *report.cost.EstUSD, 0.0)

	require.Len(t, report.suggestions, 1)
	assert.Equal(t, models.TrimContext, report.suggestions[0].Kind)
	assert.Equal(t, issue.ID, report.suggestions[0].For)
}

func TestTokenRuleUnderLimitNoOverage(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt: testStrPtr("a short prompt"),
		Model:  "gpt-4o",
	}
	runTokenRule(report, input)
	assert.Empty(t, report.issues)
	assert.NotEmpty(t, report.cost.Method)
}

func TestTokenRuleOffModeSkipsCost(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt: testStrPtr("anything"),
		Model:  "gpt-4o",
		Options: models.Options{
			TokenEstimation: models.TokenEstimationOff,
		},
	}
	runTokenRule(report, input)
	assert.Nil(t, report.cost.EstUSD)
}

func TestTokenRuleAggregatesAcrossMessagesConservatively(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "short"},
			{Role: models.RoleUser, Content: strings.Repeat("b", 50)},
		},
		Model: "gpt-4o",
	}
	runTokenRule(report, input)
	assert.Empty(t, report.issues)
	assert.NotEmpty(t, report.cost.Method)
}
