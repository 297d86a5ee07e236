package engine

import (
	"fmt"
	"math"

	"github.com/user/langpatrol/internal/models"
)

const defaultMaxChars = 120000

// runTokenRule implements spec.md §4.10, active only when a model is
// given.
func runTokenRule(report *Report, input models.AnalyzeInput) {
	if input.Model == "" {
		return
	}
	opts := input.Options

	maxChars := defaultMaxChars
	if opts.MaxChars != nil {
		maxChars = *opts.MaxChars
	}

	text := extractText(input)
	charCount := len(text)
	meta := modelMetadata(input.Model)

	if charCount > maxChars {
		estTokens := int(math.Ceil(float64(charCount) / 4.0))
		report.cost = models.Cost{EstInputTokens: estTokens, CharCount: &charCount, Method: "char_estimate"}
		issue := report.AddIssue(models.Issue{
			Code:       models.TokenOverage,
			Severity:   models.SeverityMedium,
			Detail:     fmt.Sprintf("Prompt is %d characters, over the %d character limit", charCount, maxChars),
			Confidence: models.ConfidenceMedium,
			Scope:      models.Scope{Type: models.ScopePrompt},
			Evidence:   models.Evidence{Occurrences: []models.Occurrence{{Start: -1, End: -1, Text: "char_estimate"}}},
		})
		report.AddSuggestion(models.Suggestion{Kind: models.TrimContext, Text: "Trim the prompt before sending; it exceeds the configured character limit", For: issue.ID})
		return
	}

	mode := opts.TokenEstimation
	if mode == "" {
		mode = models.TokenEstimationAuto
	}

	var (
		sum       int
		aggMethod = tokenEstimateMethod(methodOff)
	)
	if len(input.Messages) > 0 {
		for _, m := range input.Messages {
			est := estimateTokensAuto(m.Content, input.Model, mode)
			sum += est.Tokens
			aggMethod = moreConservative(aggMethod, est.Method)
		}
	} else {
		prompt := ""
		if input.Prompt != nil {
			prompt = *input.Prompt
		}
		est := estimateTokensAuto(prompt, input.Model, mode)
		sum = est.Tokens
		aggMethod = est.Method
	}

	report.cost = models.Cost{EstInputTokens: sum, Method: string(aggMethod)}

	maxInputTokens := meta.Window
	if opts.MaxInputTokens != nil && *opts.MaxInputTokens < maxInputTokens {
		maxInputTokens = *opts.MaxInputTokens
	}

	var overageIssue *models.Issue
	if sum > maxInputTokens {
		overageIssue = report.AddIssue(models.Issue{
			Code:       models.TokenOverage,
			Severity:   models.SeverityMedium,
			Detail:     fmt.Sprintf("Estimated %d input tokens exceeds the %d token limit", sum, maxInputTokens),
			Confidence: models.ConfidenceMedium,
			Scope:      models.Scope{Type: models.ScopePrompt},
			Evidence:   models.Evidence{Occurrences: []models.Occurrence{{Start: -1, End: -1, Text: string(aggMethod)}}},
		})
		report.AddSuggestion(models.Suggestion{Kind: models.TrimContext, Text: "Trim the prompt or split it across calls to fit the model's context window", For: overageIssue.ID})
	}

	if meta.Pricing != nil && mode != models.TokenEstimationOff {
		outputTokens := int(math.Ceil(float64(sum) * 0.5))
		estUSD := float64(sum)/1000*meta.Pricing.InputUSDPer1k + float64(outputTokens)/1000*meta.Pricing.OutputUSDPer1k
		report.cost.EstUSD = &estUSD

		if opts.MaxCostUSD != nil && estUSD > *opts.MaxCostUSD {
			issue := report.AddIssue(models.Issue{
				Code:       models.TokenOverage,
				Severity:   models.SeverityMedium,
				Detail:     fmt.Sprintf("Estimated cost $%.4f exceeds the configured $%.4f budget", estUSD, *opts.MaxCostUSD),
				Confidence: models.ConfidenceMedium,
				Scope:      models.Scope{Type: models.ScopePrompt},
				Evidence:   models.Evidence{Occurrences: []models.Occurrence{{Start: -1, End: -1, Text: "cost_estimate"}}},
			})
			report.AddSuggestion(models.Suggestion{Kind: models.TrimContext, Text: "Reduce prompt size or switch to a cheaper model to stay under budget", For: issue.ID})
		}
	}
}
