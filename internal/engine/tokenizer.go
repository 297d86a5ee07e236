package engine

import (
	"math"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/user/langpatrol/internal/models"
)

// modelPricing holds per-1k-token USD costs.
type modelPricing struct {
	InputUSDPer1k  float64
	OutputUSDPer1k float64
}

// modelMeta is one row of the static model metadata table (spec.md §6).
type modelMeta struct {
	Window  int
	Pricing *modelPricing
}

const defaultWindow = 16384

// modelTable is keyed by exact model identifier. Unknown models fall back
// to defaultWindow with no pricing (modelMetadata below).
var modelTable = map[string]modelMeta{
	"gpt-4o":            {Window: 128000, Pricing: &modelPricing{0.0025, 0.01}},
	"gpt-4o-mini":       {Window: 128000, Pricing: &modelPricing{0.00015, 0.0006}},
	"gpt-4-turbo":       {Window: 128000, Pricing: &modelPricing{0.01, 0.03}},
	"gpt-4":             {Window: 8192, Pricing: &modelPricing{0.03, 0.06}},
	"gpt-3.5-turbo":     {Window: 16384, Pricing: &modelPricing{0.0005, 0.0015}},
	"gpt-3.5-turbo-16k": {Window: 16384, Pricing: &modelPricing{0.0005, 0.0015}},
}

// modelMetadata looks up window/pricing for a model identifier, falling
// back to the documented defaults for unknown models.
func modelMetadata(model string) modelMeta {
	if m, ok := modelTable[model]; ok {
		return m
	}
	return modelMeta{Window: defaultWindow}
}

// cheapTokensApprox is the fast 4-chars/token estimate.
func cheapTokensApprox(text string) int {
	if text == "" {
		return 0
	}
	return int(math.Ceil(float64(len(text)) / 4.0))
}

var (
	tiktokenOnce sync.Once
	tiktokenEnc  *tiktoken.Tiktoken
)

// defaultEncoding lazily loads the fallback 100k-vocab BPE encoding
// (cl100k_base), shared across calls the same way
// internal/service/model_detector.go shares its HTTP client.
func defaultEncoding() *tiktoken.Tiktoken {
	tiktokenOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tiktokenEnc = enc
		}
	})
	return tiktokenEnc
}

// encodingForModel returns the model-specific BPE encoding when tiktoken
// knows it, else the default encoding, else nil.
func encodingForModel(model string) *tiktoken.Tiktoken {
	if model != "" {
		if enc, err := tiktoken.EncodingForModel(model); err == nil {
			return enc
		}
	}
	return defaultEncoding()
}

// exactTokens runs BPE tokenization using the model's encoding when known,
// the default 100k-vocab encoding otherwise, and a word-count heuristic
// when no tokenizer is available at all (spec.md §4.2).
func exactTokens(text string, model string) int {
	if text == "" {
		return 0
	}
	if enc := encodingForModel(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) * 0.75))
}

// tokenEstimateMethod names the method that produced a token estimate, used
// for both per-call reporting and cross-message aggregation ordering.
type tokenEstimateMethod string

const (
	methodOff         tokenEstimateMethod = "off"
	methodCheap       tokenEstimateMethod = "cheap"
	methodCheapOver   tokenEstimateMethod = "cheap_over"
	methodExact       tokenEstimateMethod = "exact"
	methodExactBound  tokenEstimateMethod = "exact_boundary"
)

// methodConservatism orders methods from least to most conservative, per
// spec.md §4.10's aggregation rule: "off < cheap < cheap_over < exact <
// exact_boundary".
var methodConservatism = map[tokenEstimateMethod]int{
	methodOff:        0,
	methodCheap:      1,
	methodCheapOver:  2,
	methodExact:      3,
	methodExactBound: 4,
}

// moreConservative returns whichever of a, b ranks higher in
// methodConservatism.
func moreConservative(a, b tokenEstimateMethod) tokenEstimateMethod {
	if methodConservatism[b] > methodConservatism[a] {
		return b
	}
	return a
}

type tokenEstimate struct {
	Tokens int
	Method tokenEstimateMethod
}

// estimateTokensAuto implements the mode dispatch and the auto fast-path /
// boundary logic from spec.md §4.2.
func estimateTokensAuto(text, model string, mode models.TokenEstimation) tokenEstimate {
	switch mode {
	case models.TokenEstimationOff:
		return tokenEstimate{0, methodOff}
	case models.TokenEstimationCheap:
		return tokenEstimate{cheapTokensApprox(text), methodCheap}
	case models.TokenEstimationExact:
		return tokenEstimate{exactTokens(text, model), methodExact}
	default: // auto
		e := cheapTokensApprox(text)
		w := float64(modelMetadata(model).Window)
		switch {
		case float64(e) < 0.6*w:
			return tokenEstimate{e, methodCheap}
		case float64(e) > 1.1*w:
			return tokenEstimate{e, methodCheapOver}
		default:
			return tokenEstimate{exactTokens(text, model), methodExactBound}
		}
	}
}
