package testutil

import "github.com/user/langpatrol/internal/models"

// StrPtr returns a pointer to the given string, for AnalyzeInput.Prompt and
// similar optional-pointer fields in table-driven tests.
func StrPtr(s string) *string { return &s }

// IntPtr returns a pointer to the given int.
func IntPtr(n int) *int { return &n }

// Float64Ptr returns a pointer to the given float64.
func Float64Ptr(f float64) *float64 { return &f }

// SamplePromptInput returns a minimal AnalyzeInput with only a prompt set.
func SamplePromptInput(prompt string) models.AnalyzeInput {
	return models.AnalyzeInput{Prompt: StrPtr(prompt)}
}

// SampleConversation returns a two-message conversation: a history message
// followed by the current user prompt.
func SampleConversation(history, current string) models.AnalyzeInput {
	return models.AnalyzeInput{
		Messages: []models.Message{
			{Role: models.RoleUser, Content: history},
			{Role: models.RoleUser, Content: current},
		},
	}
}
