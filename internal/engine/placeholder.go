package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/user/langpatrol/internal/models"
)

// placeholderDialectRegex maps each template dialect to a regex whose
// capture groups hold the variable name. Handlebars/mustache/jinja share
// {{ }} delimiters and use group 2 to skip block-helper sigils
// (#, /, >, !, &, ^); ejs uses <%= %> and has no sigil to skip.
var placeholderDialectRegex = map[models.TemplateDialect]*regexp.Regexp{
	models.DialectHandlebars: regexp.MustCompile(`\{\{\s*([#/>!&^]?)\s*([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}`),
	models.DialectMustache:   regexp.MustCompile(`\{\{\s*([#/>!&^]?)\s*([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}`),
	models.DialectJinja:      regexp.MustCompile(`\{\{\s*([#/>!&^]?)\s*([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}`),
	models.DialectEJS:        regexp.MustCompile(`<%=?\s*([a-zA-Z_][a-zA-Z0-9_.]*)\s*%>`),
}

// detectDialect guesses the template dialect from raw markers when the
// caller didn't supply one (spec.md §4.4 step 1).
func detectDialect(prompt string) (models.TemplateDialect, bool) {
	if strings.Contains(prompt, "{{") {
		return models.DialectHandlebars, true
	}
	if strings.Contains(prompt, "<%") {
		return models.DialectEJS, true
	}
	return "", false
}

const maxPlaceholderOccurrences = 50
const maxPlaceholderPositionsPerVar = 3

// runPlaceholderRule implements spec.md §4.4: unresolved template
// placeholder detection.
func runPlaceholderRule(report *Report, input models.AnalyzeInput) {
	prompt := ""
	if input.Prompt != nil {
		prompt = *input.Prompt
	}
	if prompt == "" {
		return
	}

	dialect := input.TemplateDialect
	ok := dialect != ""
	if !ok {
		dialect, ok = detectDialect(prompt)
		if !ok {
			return
		}
	}

	re, known := placeholderDialectRegex[dialect]
	if !known {
		return
	}

	// Fresh regex state per call: regexp.Regexp carries no mutable
	// iteration cursor in Go, but we still re-derive matches from the
	// current prompt each time to avoid any cross-call assumptions.
	matches := re.FindAllStringSubmatchIndex(prompt, -1)
	if len(matches) == 0 {
		return
	}

	type occ struct{ start, end int }
	counts := make(map[string]int)
	positions := make(map[string][]occ)
	order := make([]string, 0)

	for _, loc := range matches {
		var varName string
		if dialect == models.DialectEJS {
			if loc[2] < 0 {
				continue
			}
			varName = prompt[loc[2]:loc[3]]
		} else {
			if loc[2] >= 0 && loc[3] > loc[2] && prompt[loc[2]:loc[3]] != "" {
				// block-helper sigil present: skip (#, /, >, !, &, ^).
				continue
			}
			if loc[4] < 0 {
				continue
			}
			varName = prompt[loc[4]:loc[5]]
		}
		if _, seen := counts[varName]; !seen {
			order = append(order, varName)
		}
		counts[varName]++
		if len(positions[varName]) < maxPlaceholderPositionsPerVar {
			positions[varName] = append(positions[varName], occ{loc[0], loc[1]})
		}
	}

	if len(order) == 0 {
		return
	}

	summary := make([]models.EvidenceSummaryItem, 0, len(order))
	for _, name := range order {
		summary = append(summary, models.EvidenceSummaryItem{Text: name, Count: counts[name]})
	}

	var occurrences []models.Occurrence
	for _, name := range order {
		for _, p := range positions[name] {
			if len(occurrences) >= maxPlaceholderOccurrences {
				break
			}
			occurrences = append(occurrences, models.Occurrence{
				Text:    prompt[p.start:p.end],
				Start:   p.start,
				End:     p.end,
				Preview: createPreview(prompt, p.start, p.end, 40),
				Term:    name,
			})
		}
	}

	report.AddIssue(models.Issue{
		Code:       models.MissingPlaceholder,
		Severity:   models.SeverityHigh,
		Detail:     fmt.Sprintf("Prompt contains %d unresolved template placeholder(s)", len(order)),
		Confidence: models.ConfidenceHigh,
		Scope:      models.Scope{Type: models.ScopePrompt},
		Evidence: models.Evidence{
			Summary:     summary,
			Occurrences: occurrences,
		},
	})
}
