package engine

import "github.com/user/langpatrol/internal/models"

// Report is the mutable accumulator the orchestrator hands to each rule in
// turn (spec.md §3's "Ownership" note: owned exclusively by the
// orchestrator until analysis returns, then transferred to the caller as
// an immutable models.Report).
type Report struct {
	issues      []models.Issue
	suggestions []models.Suggestion
	cost        models.Cost
	ruleTimings map[string]float64
}

func newReport() *Report {
	return &Report{ruleTimings: make(map[string]float64)}
}

// AddIssue appends an issue (assigning its id if not already set) and
// returns a pointer so rules can attach suggestions keyed to it.
func (r *Report) AddIssue(issue models.Issue) *models.Issue {
	if issue.ID == "" {
		issue.ID = createIssueID()
	}
	r.issues = append(r.issues, issue)
	return &r.issues[len(r.issues)-1]
}

// AddSuggestion appends a suggestion, optionally tied to an issue id.
func (r *Report) AddSuggestion(s models.Suggestion) {
	r.suggestions = append(r.suggestions, s)
}

// recordRuleTiming stores how long an enabled rule took, satisfying
// invariant 4: "ruleTimings has one entry per enabled rule, even when that
// rule reported nothing."
func (r *Report) recordRuleTiming(name string, ms float64) {
	r.ruleTimings[name] = ms
}

// seal finalizes the accumulator into the immutable models.Report the
// caller receives (spec.md §4.11).
func (r *Report) seal(meta models.Meta) models.Report {
	issueCounts := make(map[models.IssueCode]int)
	for _, iss := range r.issues {
		issueCounts[iss.Code]++
	}

	var summary *models.Summary
	if len(r.issues) > 0 {
		confidence := models.ConfidenceHigh
		summary = &models.Summary{IssueCounts: issueCounts, Confidence: confidence}
	}

	suggestions := r.suggestions
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	meta.RuleTimings = r.ruleTimings
	return models.Report{
		Issues:      r.issues,
		Suggestions: suggestions,
		Cost:        r.cost,
		Meta:        meta,
		Summary:     summary,
	}
}
