// Package engine implements the LangPatrol analysis pipeline: a fixed-order
// rule pipeline over an AnalyzeInput, producing a sealed Report.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/langpatrol/internal/models"
)

// ruleName constants used as ruleTimings keys, matching the fixed order
// from spec.md §4.11.
const (
	ruleNamePlaceholder      = "placeholder"
	ruleNameReference        = "reference"
	ruleNameConflicts        = "conflicts"
	ruleNameSchemaRisk       = "schema_risk"
	ruleNameSchemaValidation = "schema_validation"
	ruleNameTokens           = "tokens"
	ruleNamePII              = "pii"
	ruleNameSecurity         = "security"
)

// Analyzer runs the rule pipeline. A zero-value Analyzer is usable; the
// logger defaults to a no-op so analyze() stays pure from the caller's
// point of view (spec.md §1, SPEC_FULL "Logging").
type Analyzer struct {
	Logger *zap.Logger
}

// NewAnalyzer constructs an Analyzer with the given logger. A nil logger
// is replaced with a no-op logger.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{Logger: logger}
}

// Analyze runs every enabled rule over input in the fixed order and
// returns a sealed Report. When options.apiKey and options.apiBaseUrl are
// both set, callers should instead use cloudclient — Analyze here is the
// local path only.
func (a *Analyzer) Analyze(ctx context.Context, input models.AnalyzeInput) models.Report {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	report := newReport()
	disabled := disabledSet(input.Options.DisabledRules)
	overallStart := time.Now()

	runTimed := func(name string, enabled bool, fn func()) {
		if !enabled || disabled[name] {
			return
		}
		start := time.Now()
		fn()
		report.recordRuleTiming(name, float64(time.Since(start).Microseconds())/1000.0)
	}

	if input.Prompt == nil && len(input.Messages) == 0 {
		logger.Debug("analyze: empty input, returning bare report")
		return report.seal(models.Meta{
			LatencyMs: float64(time.Since(overallStart).Microseconds()) / 1000.0,
			TraceID:   createTraceID(overallStart),
			ModelHint: input.Model,
		})
	}

	runTimed(ruleNamePlaceholder, true, func() {
		runPlaceholderRule(report, input)
	})

	runTimed(ruleNameReference, true, func() {
		runReferenceRule(ctx, report, input)
	})

	runTimed(ruleNameConflicts, true, func() {
		runConflictsRule(ctx, report, input)
	})

	runTimed(ruleNameSchemaRisk, true, func() {
		runSchemaRiskRule(report, input)
	})

	runTimed(ruleNameSchemaValidation, true, func() {
		runSchemaValidationRule(report, input)
	})

	runTimed(ruleNameTokens, true, func() {
		runTokenRule(report, input)
	})

	runTimed(ruleNamePII, input.Options.EnableLocalPII, func() {
		runPIIRule(report, input)
	})

	runTimed(ruleNameSecurity, input.Options.EnableSecurityScan, func() {
		runSecurityRule(report, input)
	})

	var contextWindow *int
	if input.Model != "" {
		w := modelMetadata(input.Model).Window
		contextWindow = &w
	}

	meta := models.Meta{
		LatencyMs:     float64(time.Since(overallStart).Microseconds()) / 1000.0,
		ModelHint:     input.Model,
		TraceID:       createTraceID(overallStart),
		ContextWindow: contextWindow,
	}

	return report.seal(meta)
}

// disabledSet builds the set of rule names to skip. An entry of
// options.disabledRules may name a rule ("tokens") or the issue code that
// rule emits ("TOKEN_OVERAGE").
func disabledSet(names []string) map[string]bool {
	ruleByCode := map[models.IssueCode]string{
		models.MissingPlaceholder:     ruleNamePlaceholder,
		models.MissingReference:       ruleNameReference,
		models.ConflictingInstruction: ruleNameConflicts,
		models.SchemaRisk:             ruleNameSchemaRisk,
		models.InvalidSchema:          ruleNameSchemaValidation,
		models.TokenOverage:           ruleNameTokens,
		models.PIIDetected:            ruleNamePII,
		models.SecurityThreat:         ruleNameSecurity,
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
		if rule, ok := ruleByCode[models.IssueCode(n)]; ok {
			set[rule] = true
		}
	}
	return set
}
