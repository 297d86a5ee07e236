package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/langpatrol/internal/models"
)

func TestCheapTokensApprox(t *testing.T) {
	assert.Equal(t, 0, cheapTokensApprox(""))
	assert.Equal(t, 1, cheapTokensApprox("abcd"))
	assert.Equal(t, 2, cheapTokensApprox("abcde"))
}

func TestModelMetadataKnownModels(t *testing.T) {
	cases := []struct {
		model  string
		window int
		priced bool
	}{
		{"gpt-4o", 128000, true},
		{"gpt-4o-mini", 128000, true},
		{"gpt-4-turbo", 128000, true},
		{"gpt-4", 8192, true},
		{"gpt-3.5-turbo", 16384, true},
		{"gpt-3.5-turbo-16k", 16384, true},
	}
	for _, c := range cases {
		meta := modelMetadata(c.model)
		assert.Equal(t, c.window, meta.Window, c.model)
		if c.priced {
			assert.NotNil(t, meta.Pricing, c.model)
		}
	}
}

func TestModelMetadataUnknownModelDefaults(t *testing.T) {
	meta := modelMetadata("some-future-model")
	assert.Equal(t, defaultWindow, meta.Window)
	assert.Nil(t, meta.Pricing)
}

func TestMoreConservativeOrdering(t *testing.T) {
	order := []tokenEstimateMethod{methodOff, methodCheap, methodCheapOver, methodExact, methodExactBound}
	for i := 0; i < len(order)-1; i++ {
		assert.Equal(t, order[i+1], moreConservative(order[i], order[i+1]))
		assert.Equal(t, order[i+1], moreConservative(order[i+1], order[i]))
	}
}

func TestEstimateTokensAutoOffMode(t *testing.T) {
	est := estimateTokensAuto("anything at all", "gpt-4o", models.TokenEstimationOff)
	assert.Equal(t, 0, est.Tokens)
	assert.Equal(t, methodOff, est.Method)
}

func TestEstimateTokensAutoCheapMode(t *testing.T) {
	est := estimateTokensAuto("abcd", "gpt-4o", models.TokenEstimationCheap)
	assert.Equal(t, 1, est.Tokens)
	assert.Equal(t, methodCheap, est.Method)
}

func TestEstimateTokensAutoFastPathUnderWindow(t *testing.T) {
	// e well under 0.6*W for a large window model: fast-path cheap.
	est := estimateTokensAuto("short prompt", "gpt-4o", models.TokenEstimationAuto)
	assert.Equal(t, methodCheap, est.Method)
}

func TestEstimateTokensAutoFastPathOverWindow(t *testing.T) {
	// e well over 1.1*W for a small-window model: fast-path cheap_over,
	// never falls through to the (unavailable-in-tests) exact tokenizer.
	huge := make([]byte, 200000)
	for i := range huge {
		huge[i] = 'a'
	}
	est := estimateTokensAuto(string(huge), "gpt-4", models.TokenEstimationAuto)
	assert.Equal(t, methodCheapOver, est.Method)
	assert.Equal(t, cheapTokensApprox(string(huge)), est.Tokens)
}
