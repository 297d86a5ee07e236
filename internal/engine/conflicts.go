package engine

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/user/langpatrol/internal/models"
)

var sentenceSplit = regexp.MustCompile(`[.!?]\s+`)

type patternMatch struct {
	text       string
	start, end int
}

func findMatches(ps patternSet, text string) []patternMatch {
	var out []patternMatch
	for _, re := range ps.Patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			out = append(out, patternMatch{text: text[loc[0]:loc[1]], start: loc[0], end: loc[1]})
		}
	}
	return out
}

// conflictPair is one detected pair of contradictory instructions.
type conflictPair struct {
	bucket     string // "verbosity", "format", "logical"
	tier       string // "pattern", "semantic", "logical"
	a, b       patternMatch
	confidence float64
}

func envelope(p conflictPair) (int, int) {
	start := p.a.start
	if p.b.start < start {
		start = p.b.start
	}
	end := p.a.end
	if p.b.end > end {
		end = p.b.end
	}
	return start, end
}

// runConflictsRule implements spec.md §4.6: pattern, optional semantic,
// and optional NLI tiers over the whole extracted text, followed by
// envelope-based de-duplication.
func runConflictsRule(ctx context.Context, report *Report, input models.AnalyzeInput) {
	text := extractText(input)
	if text == "" {
		return
	}

	var pairs []conflictPair

	verbose := findMatches(VerbosePatterns, text)
	concise := findMatches(ConcisePatterns, text)
	if len(verbose) > 0 && len(concise) > 0 {
		pairs = append(pairs, conflictPair{bucket: "verbosity", tier: "pattern", a: verbose[0], b: concise[0], confidence: 0.85})
	}

	jsonOnly := findMatches(JSONOnlyPatterns, text)
	explanatory := findMatches(ExplanatoryPatterns, text)
	if len(jsonOnly) > 0 && len(explanatory) > 0 {
		pairs = append(pairs, conflictPair{bucket: "format", tier: "pattern", a: jsonOnly[0], b: explanatory[0], confidence: 0.85})
	}

	opts := input.Options
	simThreshold := 0.3
	if opts.ConflictSimilarityThreshold != nil {
		simThreshold = *opts.ConflictSimilarityThreshold
	}
	contraThreshold := 0.7
	if opts.ConflictContradictionThreshold != nil {
		contraThreshold = *opts.ConflictContradictionThreshold
	}

	var semanticCandidates []patternMatch
	if opts.UseSemanticConflictDetection {
		semanticCandidates = append(semanticCandidates, verbose...)
		semanticCandidates = append(semanticCandidates, concise...)
		semanticCandidates = append(semanticCandidates, jsonOnly...)
		semanticCandidates = append(semanticCandidates, explanatory...)

		sentences := splitSentences(text)
		opposites := []struct {
			bucket     string
			left, right []patternMatch
		}{
			{"verbosity", verbose, concise},
			{"format", jsonOnly, explanatory},
		}
		for _, side := range opposites {
			for _, a := range side.left {
				for _, b := range side.right {
					sentA := enclosingSentence(sentences, a)
					sentB := enclosingSentence(sentences, b)
					sim := embeddingSimilarityOf(ctx, sentA, sentB)
					if sim < simThreshold {
						pairs = append(pairs, conflictPair{bucket: side.bucket, tier: "semantic", a: a, b: b, confidence: 1 - sim})
					}
				}
			}
		}
	}

	if opts.UseNLIConflictDetection {
		all := append(append([]patternMatch{}, semanticCandidates...), verbose...)
		all = append(all, concise...)
		all = append(all, jsonOnly...)
		all = append(all, explanatory...)
		all = dedupMatches(all)
		adapter := getNLIAdapter()
		for i := 0; i < len(all); i++ {
			for j := i + 1; j < len(all); j++ {
				hyp := fmt.Sprintf("This contradicts: %s", all[j].text)
				scores, err := adapter.Classify(ctx, all[i].text, []string{hyp})
				if err != nil || len(scores) == 0 {
					continue
				}
				score := scores[0]
				if score >= contraThreshold {
					pairs = append(pairs, conflictPair{bucket: "logical", tier: "logical", a: all[i], b: all[j], confidence: score})
				}
			}
		}
	}

	pairs = dedupConflictPairs(pairs)
	if len(pairs) == 0 {
		return
	}

	var (
		sumConf    float64
		occurrences []models.Occurrence
		summary    = make(map[string]int)
		buckets    []string
	)
	for _, p := range pairs {
		sumConf += p.confidence
		start, end := envelope(p)
		occurrences = append(occurrences, models.Occurrence{
			Text:    p.a.text + " / " + p.b.text,
			Start:   start,
			End:     end,
			Preview: createPreview(text, start, end, 40),
			Bucket:  p.bucket,
		})
		if _, ok := summary[p.bucket]; !ok {
			buckets = append(buckets, p.bucket)
		}
		summary[p.bucket]++
	}
	meanConf := sumConf / float64(len(pairs))
	confidence := models.ConfidenceMedium
	if meanConf > 0.7 {
		confidence = models.ConfidenceHigh
	}

	sort.Strings(buckets)
	summaryItems := make([]models.EvidenceSummaryItem, 0, len(buckets))
	for _, b := range buckets {
		summaryItems = append(summaryItems, models.EvidenceSummaryItem{Text: b, Count: summary[b]})
	}

	issue := report.AddIssue(models.Issue{
		Code:       models.ConflictingInstruction,
		Severity:   models.SeverityMedium,
		Detail:     "Prompt contains conflicting instructions",
		Confidence: confidence,
		Scope:      models.Scope{Type: models.ScopePrompt},
		Evidence: models.Evidence{
			Summary:     summaryItems,
			Occurrences: occurrences,
		},
	})

	for _, b := range buckets {
		switch b {
		case "verbosity":
			report.AddSuggestion(models.Suggestion{Kind: models.TightenInstruction, Text: "Remove either the concise or step-by-step directive", For: issue.ID})
		case "format":
			report.AddSuggestion(models.Suggestion{Kind: models.EnforceJSON, Text: "If strict JSON is required, drop commentary instructions or move them into schema metadata", For: issue.ID})
		case "logical":
			report.AddSuggestion(models.Suggestion{Kind: models.TightenInstruction, Text: "Review and align conflicting instructions detected by semantic analysis", For: issue.ID})
		}
	}
}

func splitSentences(text string) []patternMatch {
	var out []patternMatch
	start := 0
	locs := sentenceSplit.FindAllStringIndex(text, -1)
	for _, loc := range locs {
		out = append(out, patternMatch{text: text[start:loc[0]], start: start, end: loc[0]})
		start = loc[1]
	}
	out = append(out, patternMatch{text: text[start:], start: start, end: len(text)})
	return out
}

func enclosingSentence(sentences []patternMatch, m patternMatch) string {
	for _, s := range sentences {
		if m.start >= s.start && m.start < s.end {
			return s.text
		}
	}
	return m.text
}

func embeddingSimilarityOf(ctx context.Context, a, b string) float64 {
	adapter := getEmbeddingAdapter()
	va, err1 := adapter.Embed(ctx, normalizePhrase(a))
	vb, err2 := adapter.Embed(ctx, normalizePhrase(b))
	if err1 != nil || err2 != nil {
		return 1
	}
	return cosineSimilarity(va, vb)
}

func dedupMatches(matches []patternMatch) []patternMatch {
	seen := make(map[[2]int]bool)
	var out []patternMatch
	for _, m := range matches {
		key := [2]int{m.start, m.end}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

// dedupConflictPairs implements spec.md §4.6's de-duplication: two
// conflicts are equivalent when they share bucket and (min start, max end)
// envelope; keep the one with higher confidence.
func dedupConflictPairs(pairs []conflictPair) []conflictPair {
	type key struct {
		bucket     string
		start, end int
	}
	best := make(map[key]conflictPair)
	var order []key
	for _, p := range pairs {
		start, end := envelope(p)
		k := key{p.bucket, start, end}
		existing, ok := best[k]
		if !ok {
			order = append(order, k)
			best[k] = p
			continue
		}
		if p.confidence > existing.confidence {
			best[k] = p
		}
	}
	out := make([]conflictPair, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}
