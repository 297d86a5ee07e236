package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/langpatrol/internal/models"
)

func TestPIIRuleDisabledByDefault(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{Prompt: testStrPtr("contact me at jane@example.com")}
	runPIIRule(report, input)
	assert.Empty(t, report.issues)
}

func TestPIIRuleDetectsEmail(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt:  testStrPtr("contact me at jane@example.com please"),
		Options: models.Options{EnableLocalPII: true},
	}
	runPIIRule(report, input)

	require.Len(t, report.issues, 1)
	issue := report.issues[0]
	assert.Equal(t, models.PIIDetected, issue.Code)
	require.Len(t, issue.Evidence.Summary, 1)
	assert.Equal(t, "email", issue.Evidence.Summary[0].Text)
}

func TestPIIRuleDetectsSSN(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt:  testStrPtr("ssn is 123-45-6789"),
		Options: models.Options{EnableLocalPII: true},
	}
	runPIIRule(report, input)
	require.Len(t, report.issues, 1)
	assert.Equal(t, "ssn", report.issues[0].Evidence.Summary[0].Text)
}

func TestLuhnValidRejectsRandomDigitRuns(t *testing.T) {
	assert.True(t, luhnValid("4532015112830366")) // known-valid test Visa number
	assert.False(t, luhnValid("1234567890123456"))
}

func TestPIIRuleCardRequiresLuhnValidity(t *testing.T) {
	report := newReport()
	input := models.AnalyzeInput{
		Prompt:  testStrPtr("my card is 1234567890123456"),
		Options: models.Options{EnableLocalPII: true},
	}
	runPIIRule(report, input)
	assert.Empty(t, report.issues, "non-Luhn-valid digit run should not be flagged as a card")
}
