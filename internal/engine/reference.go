package engine

import (
	"context"
	"regexp"
	"strings"

	"github.com/user/langpatrol/internal/models"
)

const (
	defaultAntecedentWindowMessages = 20
	defaultAntecedentWindowBytes    = 20000
	bareMentionGuardChars           = 10
	synonymContextGuardChars        = 30
	synonymDistancePenaltyBytes     = 5000
	hasHistoryMinTokens             = 40
	lowConfidenceHistoryWords       = 20
)

var synonymContextGuards = []string{"this ", "that ", "a ", "an ", "some ", "any ", "each ", "every "}

// referenceCandidate is one definite-NP or forward-reference span found in
// the current message/prompt.
type referenceCandidate struct {
	text          string
	head          string
	start, end    int
	isForwardRef  bool
	searchFromEnd bool // forward refs also search current[end:]
}

type resolution struct {
	method            string // "exact", "synonym", "pattern", "semantic-similarity", "nli-entailment", "combined", "memory", "attachment", ""
	resolved          bool
	confidencePenalty bool
	fulfillmentStatus string
	fulfillmentMethod string
	fulfillmentConf   *float64
}

// runReferenceRule implements spec.md §4.5, the richest rule: missing
// antecedents for definite noun phrases, deictic cues, and forward
// references.
func runReferenceRule(ctx context.Context, report *Report, input models.AnalyzeInput) {
	current := getCurrentPrompt(input)
	history, hasPriorMessages := buildHistory(input)

	opts := input.Options
	nouns := effectiveNounSet(opts.ReferenceHeads)
	synonyms := mergeSynonyms(opts.Synonyms)

	nounMemory := scanBareMentions(history, nouns)

	var candidates []referenceCandidate
	for _, m := range DefNP.FindAllStringSubmatchIndex(current, -1) {
		head := normalizeNoun(current[m[4]:m[5]])
		if !nouns[head] {
			continue
		}
		candidates = append(candidates, referenceCandidate{
			text: current[m[0]:m[1]], head: head, start: m[0], end: m[1],
		})
	}
	for _, fr := range detectForwardReferences(current) {
		head := ""
		if fr.ExtractedNoun != "" {
			head = normalizeNoun(fr.ExtractedNoun)
		}
		candidates = append(candidates, referenceCandidate{
			text: fr.Text, head: head, start: fr.Start, end: fr.End,
			isForwardRef: true, searchFromEnd: true,
		})
	}

	deicticCue := DeicticCues.MatchString(current)
	if len(candidates) == 0 && !deicticCue {
		return
	}

	hasHistory := hasPriorMessages && len(strings.Fields(history)) > hasHistoryMinTokens

	results := make([]resolution, len(candidates))
	for i, c := range candidates {
		results[i] = resolveCandidate(ctx, c, current, history, hasHistory, nounMemory, nouns, synonyms, input.Attachments, opts)
	}

	score := 0
	if deicticCue {
		score++
	}
	if len(candidates) > 0 {
		score++
	}
	anyUncovered := false
	anyPenalty := false
	weakResolution := false
	for _, r := range results {
		if !r.resolved {
			anyUncovered = true
			continue
		}
		switch r.method {
		case "exact", "synonym", "pattern", "semantic-similarity", "nli-entailment":
			score -= 2
		case "memory", "attachment":
			score -= 1
		}
		switch r.method {
		case "synonym", "memory", "pattern":
			weakResolution = true
		}
		if r.confidencePenalty {
			anyPenalty = true
		}
	}

	flagged := anyUncovered || (deicticCue && len(candidates) == 0) || score >= 2
	if !flagged {
		return
	}

	confidence := models.ConfidenceHigh
	historyWordCount := len(strings.Fields(history))
	switch {
	case historyWordCount < lowConfidenceHistoryWords:
		confidence = models.ConfidenceLow
	case anyUncovered && weakResolution:
		confidence = models.ConfidenceMedium
	}
	if !anyUncovered && anyPenalty {
		confidence = dropConfidenceLevel(confidence)
	}

	summaryCounts := make(map[string]int)
	var summaryOrder []string
	var occurrences []models.Occurrence
	firstSeenAt := -1

	for i, c := range candidates {
		r := results[i]
		key := c.text
		if _, ok := summaryCounts[key]; !ok {
			summaryOrder = append(summaryOrder, key)
		}
		summaryCounts[key]++

		if firstSeenAt == -1 || (c.start >= 0 && c.start < firstSeenAt) {
			if c.start >= 0 {
				firstSeenAt = c.start
			}
		}

		occ := models.Occurrence{
			Text:    c.text,
			Start:   c.start,
			End:     c.end,
			Preview: createPreview(current, c.start, c.end, 40),
			Term:    c.head,
		}
		if r.resolved {
			occ.Resolution = r.method
		}
		if r.fulfillmentStatus != "" {
			occ.FulfillmentStatus = r.fulfillmentStatus
			occ.FulfillmentMethod = r.fulfillmentMethod
			occ.FulfillmentConfidence = r.fulfillmentConf
		}
		occurrences = append(occurrences, occ)
	}

	if deicticCue {
		key := "deictic cue"
		if _, ok := summaryCounts[key]; !ok {
			summaryOrder = append(summaryOrder, key)
		}
		summaryCounts[key]++
		occurrences = append(occurrences, models.Occurrence{
			Text: "deictic cue present", Start: -1, End: -1,
		})
	}

	summary := make([]models.EvidenceSummaryItem, 0, len(summaryOrder))
	for _, k := range summaryOrder {
		summary = append(summary, models.EvidenceSummaryItem{Text: k, Count: summaryCounts[k]})
	}

	var firstSeenPtr *int
	if firstSeenAt >= 0 {
		firstSeenAt2 := firstSeenAt
		firstSeenPtr = &firstSeenAt2
	}

	issue := report.AddIssue(models.Issue{
		Code:       models.MissingReference,
		Severity:   models.SeverityMedium,
		Detail:     "Prompt refers to prior context that isn't present",
		Confidence: confidence,
		Scope:      models.Scope{Type: models.ScopePrompt},
		Evidence: models.Evidence{
			Summary:     summary,
			Occurrences: occurrences,
			FirstSeenAt: firstSeenPtr,
		},
	})

	emitReferenceSuggestions(report, issue, candidates)
}

func dropConfidenceLevel(c models.Confidence) models.Confidence {
	switch c {
	case models.ConfidenceHigh:
		return models.ConfidenceMedium
	case models.ConfidenceMedium:
		return models.ConfidenceLow
	default:
		return models.ConfidenceLow
	}
}

func emitReferenceSuggestions(report *Report, issue *models.Issue, candidates []referenceCandidate) {
	seen := make(map[string]bool)
	for _, c := range candidates {
		switch c.head {
		case "report", "document", "transcript":
			if !seen["doc"] {
				seen["doc"] = true
				report.AddSuggestion(models.Suggestion{Kind: models.AddContext, Text: "Inline a 1-3 line summary or attach the file metadata", For: issue.ID})
			}
		case "list", "result":
			if !seen["list"] {
				seen["list"] = true
				report.AddSuggestion(models.Suggestion{Kind: models.AddContext, Text: "Paste the prior items or a compact summary before asking to continue", For: issue.ID})
			}
		}
	}
}

// buildHistory joins all prior messages (excluding the current/last one
// when messages are used) and applies the tail truncation windows.
func buildHistory(input models.AnalyzeInput) (string, bool) {
	if len(input.Messages) <= 1 {
		return "", false
	}
	prior := input.Messages[:len(input.Messages)-1]

	windowMsgs := defaultAntecedentWindowMessages
	if input.Options.AntecedentWindowMessages != nil {
		windowMsgs = *input.Options.AntecedentWindowMessages
	}
	if windowMsgs > 0 && len(prior) > windowMsgs {
		prior = prior[len(prior)-windowMsgs:]
	}

	history := joinMessages(prior)

	windowBytes := defaultAntecedentWindowBytes
	if input.Options.AntecedentWindowBytes != nil {
		windowBytes = *input.Options.AntecedentWindowBytes
	}
	if windowBytes > 0 && len(history) > windowBytes {
		history = history[len(history)-windowBytes:]
	}

	return history, true
}

// scanBareMentions finds, for each noun in the effective set, whether it
// appears in history as a bare mention (not preceded by "the " within the
// guard window).
func scanBareMentions(history string, nouns map[string]bool) map[string]bool {
	memory := make(map[string]bool)
	if history == "" {
		return memory
	}
	lower := strings.ToLower(history)
	for noun := range nouns {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(noun) + `s?\b`)
		for _, loc := range re.FindAllStringIndex(lower, -1) {
			if !precededByThe(lower, loc[0]) {
				memory[noun] = true
				break
			}
		}
	}
	return memory
}

func precededByThe(text string, at int) bool {
	start := at - bareMentionGuardChars
	if start < 0 {
		start = 0
	}
	prefix := text[start:at]
	trimmed := strings.TrimRight(prefix, " \t\n")
	return strings.HasSuffix(trimmed, "the")
}

func precededByGuardedDeterminer(text string, at int, guardChars int) bool {
	start := at - guardChars
	if start < 0 {
		start = 0
	}
	prefix := strings.ToLower(text[start:at])
	for _, g := range append([]string{"the "}, synonymContextGuards...) {
		if strings.HasSuffix(prefix, g) {
			return true
		}
	}
	return false
}

// resolveCandidate runs the ordered antecedent search (a)-(h) from
// spec.md §4.5 step 5, then the optional hierarchical fulfillment upgrade
// from step 6.
func resolveCandidate(ctx context.Context, c referenceCandidate, current, history string, hasHistory bool, nounMemory map[string]bool, nouns map[string]bool, synonyms map[string][]string, attachments []models.Attachment, opts models.Options) resolution {
	searchSpans := []string{current[:c.start]}
	if c.searchFromEnd {
		searchSpans = append(searchSpans, current[c.end:])
	}

	for _, span := range searchSpans {
		if r := searchSpanForAntecedent(c, span, history, hasHistory, nounMemory, nouns, synonyms, attachments); r.resolved {
			return r
		}
	}

	// Hierarchical upgrade: all spans exhausted, still unfulfilled.
	if opts.UseSemanticSimilarity || opts.UseNLIEntailment {
		searchText := history
		if c.searchFromEnd && len(searchSpans) > 1 {
			searchText = history + "\n" + searchSpans[1]
		}
		threshold := 0.6
		if opts.SimilarityThreshold != nil {
			threshold = *opts.SimilarityThreshold
		}
		fr := checkFulfillment(ctx, c.text, searchText, synonyms, FulfillmentOptions{
			UseSemanticSimilarity: opts.UseSemanticSimilarity,
			UseNLIEntailment:      opts.UseNLIEntailment,
			SimilarityThreshold:   threshold,
		})
		if fr.Status == FulfillmentFulfilled {
			conf := fr.Confidence
			return resolution{
				method: string(fr.Method), resolved: true,
				fulfillmentStatus: string(fr.Status), fulfillmentMethod: string(fr.Method), fulfillmentConf: &conf,
			}
		}
	}

	return resolution{resolved: false}
}

func searchSpanForAntecedent(c referenceCandidate, priorInCurrent, history string, hasHistory bool, nounMemory map[string]bool, nouns map[string]bool, synonyms map[string][]string, attachments []models.Attachment) resolution {
	head := c.head
	if head == "" {
		return resolution{resolved: false}
	}

	// (a) exact in history
	if hasHistory && wordBoundaryFound(history, head) {
		return resolution{method: "exact", resolved: true}
	}
	// (b) exact earlier in current
	if idx := findWordBoundaryIndex(priorInCurrent, head); idx >= 0 && !precededByThe(strings.ToLower(priorInCurrent), idx) {
		return resolution{method: "exact", resolved: true}
	}
	// (c) synonym in history
	if hasHistory {
		if ok, penalty := synonymInHistory(history, head, synonyms); ok {
			return resolution{method: "synonym", resolved: true, confidencePenalty: penalty}
		}
	}
	// (d) synonym earlier in current
	for _, syn := range synonyms[head] {
		if syn == head {
			continue
		}
		if idx := findWordBoundaryIndex(priorInCurrent, syn); idx >= 0 && !precededByGuardedDeterminer(priorInCurrent, idx, synonymContextGuardChars) {
			return resolution{method: "synonym", resolved: true}
		}
	}
	// (e) noun memory
	if nounMemory[head] {
		return resolution{method: "memory", resolved: true}
	}
	// (f) synonym memory
	for _, syn := range synonyms[head] {
		if syn != head && nounMemory[syn] {
			return resolution{method: "memory", resolved: true}
		}
	}
	// (g) bare mention earlier in current
	lowerPrior := strings.ToLower(priorInCurrent)
	for _, loc := range regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(head)+`s?\b`).FindAllStringIndex(priorInCurrent, -1) {
		if !precededByThe(lowerPrior, loc[0]) {
			return resolution{method: "memory", resolved: true}
		}
	}
	// (h) attachments
	if attachmentMentions(attachments, head, synonyms) {
		return resolution{method: "attachment", resolved: true}
	}

	return resolution{resolved: false}
}

func wordBoundaryFound(text, word string) bool {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `s?\b`)
	return re.MatchString(text)
}

func findWordBoundaryIndex(text, word string) int {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `s?\b`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return -1
	}
	return loc[0]
}

func synonymInHistory(history, head string, synonyms map[string][]string) (bool, bool) {
	for _, syn := range synonyms[head] {
		if syn == head {
			continue
		}
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(syn) + `s?\b`)
		for _, loc := range re.FindAllStringIndex(history, -1) {
			if precededByGuardedDeterminer(history, loc[0], synonymContextGuardChars) {
				continue
			}
			distanceFromEnd := len(history) - loc[0]
			penalty := distanceFromEnd > synonymDistancePenaltyBytes
			return true, penalty
		}
	}
	return false, false
}

func attachmentMentions(attachments []models.Attachment, head string, synonyms map[string][]string) bool {
	if len(attachments) == 0 {
		return false
	}
	var parts []string
	for _, a := range attachments {
		if a.Name != "" {
			parts = append(parts, a.Name)
		} else {
			parts = append(parts, a.Type)
		}
	}
	combined := normalizePhrase(strings.Join(parts, " "))
	if wordBoundaryFound(combined, head) {
		return true
	}
	for _, syn := range synonyms[head] {
		if syn != head && wordBoundaryFound(combined, syn) {
			return true
		}
	}
	return false
}
