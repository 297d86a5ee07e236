package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/langpatrol/internal/models"
)

func TestNormalizeNoun(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"reports", "report"},
		{"Reports.", "report"},
		{"companies", "company"},
		{"boxes", "box"},
		{"tables", "table"},
		{"glasses", "glass"},
		{"bus", "bu"}, // len>1 and not "ss": strips trailing s
		{"pass", "pass"},
		{"document", "document"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, normalizeNoun(c.in), "normalizeNoun(%q)", c.in)
	}
}

func TestNormalizePhrase(t *testing.T) {
	got := normalizePhrase("  Be   Concise, please!  ")
	assert.Equal(t, "be concise please", got)
}

func TestCreatePreviewClipsAndMarksEllipsis(t *testing.T) {
	text := strings.Repeat("x", 100) + "TARGET" + strings.Repeat("y", 100)
	start := 100
	end := 106

	preview := createPreview(text, start, end, 10)
	assert.True(t, strings.HasPrefix(preview, previewEllipsis))
	assert.True(t, strings.HasSuffix(preview, previewEllipsis))
	assert.Contains(t, preview, "TARGET")
}

func TestCreatePreviewNoClipWhenWindowCoversWholeText(t *testing.T) {
	text := "short text"
	preview := createPreview(text, 0, len(text), 40)
	assert.Equal(t, "short text", preview)
	assert.False(t, strings.Contains(preview, previewEllipsis))
}

func TestCreateIssueIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := createIssueID()
		assert.False(t, seen[id], "duplicate issue id %s", id)
		seen[id] = true
		assert.True(t, strings.HasPrefix(id, "iss_"))
	}
}

func TestExtractTextJoinsPromptAndMessages(t *testing.T) {
	input := models.AnalyzeInput{
		Prompt: testStrPtr("hello"),
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "world"},
		},
	}
	assert.Equal(t, "hello\nworld", extractText(input))
}

func TestGetCurrentPromptPrefersPromptOverMessages(t *testing.T) {
	input := models.AnalyzeInput{
		Prompt: testStrPtr("the prompt"),
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "a message"},
		},
	}
	assert.Equal(t, "the prompt", getCurrentPrompt(input))

	input2 := models.AnalyzeInput{
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "first"},
			{Role: models.RoleUser, Content: "last"},
		},
	}
	assert.Equal(t, "last", getCurrentPrompt(input2))
}

func testStrPtr(s string) *string { return &s }
