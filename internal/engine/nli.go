package engine

import (
	"context"
	"strings"
	"sync"
)

// NLIAdapter exposes a single pure classify(text, labels) -> scores method
// for zero-shot entailment/contradiction scoring (spec.md §4.6/§4.7/§9).
type NLIAdapter interface {
	Classify(ctx context.Context, premise string, hypotheses []string) ([]float64, error)
}

// stubNLIAdapter approximates entailment with lexical overlap between the
// premise and each hypothesis. It is a deliberately cheap stand-in for a
// real zero-shot classifier: good enough to exercise the combined-mode
// wiring and tests without a model download.
type stubNLIAdapter struct{}

func (stubNLIAdapter) Classify(_ context.Context, premise string, hypotheses []string) ([]float64, error) {
	premiseWords := wordSet(premise)
	scores := make([]float64, len(hypotheses))
	for i, h := range hypotheses {
		hypWords := wordSet(h)
		if len(hypWords) == 0 {
			continue
		}
		var hits int
		for w := range hypWords {
			if premiseWords[w] {
				hits++
			}
		}
		scores[i] = float64(hits) / float64(len(hypWords))
	}
	return scores, nil
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(normalizePhrase(text)) {
		if len(w) > 2 {
			set[w] = true
		}
	}
	return set
}

var (
	nliOnce sync.Once
	nliInst NLIAdapter
)

// getNLIAdapter returns the lazily-initialized, process-wide NLI handle.
func getNLIAdapter() NLIAdapter {
	nliOnce.Do(func() {
		nliInst = stubNLIAdapter{}
	})
	return nliInst
}
