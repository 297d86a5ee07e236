package engine

import (
	"context"
	"fmt"
	"regexp"
)

// FulfillmentStatus is the verdict the fulfillment checker returns.
type FulfillmentStatus string

const (
	FulfillmentFulfilled   FulfillmentStatus = "fulfilled"
	FulfillmentUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentUncertain   FulfillmentStatus = "uncertain"
)

// FulfillmentMethod names which tier produced the verdict.
type FulfillmentMethod string

const (
	MethodPattern   FulfillmentMethod = "pattern"
	MethodSemantic  FulfillmentMethod = "semantic-similarity"
	MethodNLI       FulfillmentMethod = "nli-entailment"
	MethodCombined  FulfillmentMethod = "combined"
	MethodNone      FulfillmentMethod = "none"
)

// FulfillmentResult is the outcome of checkFulfillment.
type FulfillmentResult struct {
	Status     FulfillmentStatus
	Method     FulfillmentMethod
	Confidence float64
	Details    string
}

// FulfillmentOptions configures which optional tiers run and their
// thresholds (spec.md §4.7).
type FulfillmentOptions struct {
	UseSemanticSimilarity bool
	UseNLIEntailment      bool
	SimilarityThreshold   float64
	EntailmentThreshold   float64
}

const (
	defaultSimilarityThreshold float64 = 0.6
	defaultEntailmentThreshold float64 = 0.6
)

// checkFulfillment is the pure function over (reference, searchText,
// effectiveSynonyms, options) from spec.md §4.7.
func checkFulfillment(ctx context.Context, referenceText, searchText string, synonyms map[string][]string, opts FulfillmentOptions) FulfillmentResult {
	head := extractHead(referenceText)
	if head == "" {
		return FulfillmentResult{Status: FulfillmentUnfulfilled, Method: MethodNone, Confidence: 0}
	}

	patternResult, patternRan := patternFulfillment(head, searchText, synonyms)

	if !opts.UseSemanticSimilarity && !opts.UseNLIEntailment {
		if patternResult.Status == FulfillmentFulfilled {
			return patternResult
		}
		return FulfillmentResult{Status: FulfillmentUnfulfilled, Method: MethodNone, Confidence: 0}
	}

	// Combined mode: run all requested tiers and weight them.
	var (
		weightPattern, weightSemantic, weightNLI = 0.4, 0.3, 0.3
		confPattern, confSemantic, confNLI       float64
		tiersExceeded                            int
	)
	if patternRan {
		confPattern = patternResult.Confidence
		if patternResult.Status == FulfillmentFulfilled {
			tiersExceeded++
		}
	} else {
		weightPattern = 0
	}

	if opts.UseSemanticSimilarity {
		threshold := opts.SimilarityThreshold
		if threshold == 0 {
			threshold = defaultSimilarityThreshold
		}
		sim := semanticSimilarity(ctx, referenceText, searchText)
		confSemantic = sim
		if sim >= threshold {
			tiersExceeded++
		}
	} else {
		weightSemantic = 0
	}

	if opts.UseNLIEntailment {
		threshold := opts.EntailmentThreshold
		if threshold == 0 {
			threshold = defaultEntailmentThreshold
		}
		score := entailmentScore(ctx, head, referenceText, searchText)
		confNLI = score
		if score >= threshold {
			tiersExceeded++
		}
	} else {
		weightNLI = 0
	}

	totalWeight := weightPattern + weightSemantic + weightNLI
	if totalWeight == 0 {
		totalWeight = 1
	}
	combined := (weightPattern*confPattern + weightSemantic*confSemantic + weightNLI*confNLI) / totalWeight

	status := FulfillmentUnfulfilled
	switch {
	case combined >= 0.5:
		status = FulfillmentFulfilled
	case combined >= 0.35:
		status = FulfillmentUncertain
	}

	method := dominantMethod(tiersExceeded, weightPattern, confPattern, weightSemantic, confSemantic, weightNLI, confNLI)

	return FulfillmentResult{
		Status:     status,
		Method:     method,
		Confidence: combined,
		Details:    fmt.Sprintf("pattern=%.2f semantic=%.2f nli=%.2f", confPattern, confSemantic, confNLI),
	}
}

// dominantMethod picks the reported method: combined when 2+ tiers clear
// their own thresholds, otherwise whichever single tier contributed most.
func dominantMethod(tiersExceeded int, wPattern, cPattern, wSemantic, cSemantic, wNLI, cNLI float64) FulfillmentMethod {
	if tiersExceeded >= 2 {
		return MethodCombined
	}
	best := MethodNone
	bestScore := -1.0
	if wPattern > 0 && cPattern > bestScore {
		best, bestScore = MethodPattern, cPattern
	}
	if wSemantic > 0 && cSemantic > bestScore {
		best, bestScore = MethodSemantic, cSemantic
	}
	if wNLI > 0 && cNLI > bestScore {
		best, bestScore = MethodNLI, cNLI
	}
	return best
}

// patternFulfillment is fulfillment checker step 1: exact head match at
// confidence 0.9, synonym match at 0.8, else unfulfilled.
func patternFulfillment(head, searchText string, synonyms map[string][]string) (FulfillmentResult, bool) {
	normalized := normalizePhrase(searchText)
	if wordBoundaryContains(normalized, head) {
		return FulfillmentResult{Status: FulfillmentFulfilled, Method: MethodPattern, Confidence: 0.9}, true
	}
	for _, syn := range synonyms[head] {
		if syn == head {
			continue
		}
		if wordBoundaryContains(normalized, syn) {
			return FulfillmentResult{Status: FulfillmentFulfilled, Method: MethodPattern, Confidence: 0.8}, true
		}
	}
	return FulfillmentResult{Status: FulfillmentUnfulfilled, Method: MethodPattern, Confidence: 0}, true
}

func wordBoundaryContains(normalized, word string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `s?\b`)
	return re.MatchString(normalized)
}

// semanticSimilarity is fulfillment checker step 2.
func semanticSimilarity(ctx context.Context, reference, searchText string) float64 {
	adapter := getEmbeddingAdapter()
	refVec, err1 := adapter.Embed(ctx, normalizePhrase(reference))
	searchVec, err2 := adapter.Embed(ctx, normalizePhrase(searchText))
	if err1 != nil || err2 != nil {
		return 0
	}
	return cosineSimilarity(refVec, searchVec)
}

// entailmentScore is fulfillment checker step 3: take the max score across
// the documented hypothesis templates.
func entailmentScore(ctx context.Context, head, reference, searchText string) float64 {
	adapter := getNLIAdapter()
	hypotheses := []string{
		fmt.Sprintf("There is %s", reference),
		fmt.Sprintf("The %s was mentioned", head),
		fmt.Sprintf("A %s exists", head),
		fmt.Sprintf("The context refers to %s", head),
		fmt.Sprintf("There exists %s", reference),
	}
	scores, err := adapter.Classify(ctx, searchText, hypotheses)
	if err != nil {
		return 0
	}
	max := 0.0
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	return max
}

// extractHead pulls the head noun phrase out of a reference span using the
// same definite-NP regex as the reference rule (spec.md §4.7 step 1).
func extractHead(referenceText string) string {
	if m := DefNP.FindStringSubmatch(referenceText); m != nil {
		return normalizeNoun(lastWord(m[2]))
	}
	return normalizeNoun(lastWord(referenceText))
}

func lastWord(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return s
	}
	return words[len(words)-1]
}

func splitWords(s string) []string {
	var words []string
	var cur []rune
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			if len(cur) > 0 {
				words = append(words, string(cur))
				cur = nil
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}
	return words
}
