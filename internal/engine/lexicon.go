package engine

import "regexp"

// patternSet is a named group of case-insensitive regexes sharing one
// semantic bucket, precompiled once like the routing tables in
// internal/service/routing_classifier.go.
type patternSet struct {
	Bucket   string
	Patterns []*regexp.Regexp
}

func compileSet(bucket string, exprs ...string) patternSet {
	ps := patternSet{Bucket: bucket, Patterns: make([]*regexp.Regexp, 0, len(exprs))}
	for _, e := range exprs {
		ps.Patterns = append(ps.Patterns, regexp.MustCompile(`(?i)`+e))
	}
	return ps
}

// VerbosePatterns matches directives asking for more detail/length.
var VerbosePatterns = compileSet("verbosity",
	`\bstep[- ]by[- ]step\b`,
	`\bin (great |full )?detail\b`,
	`\bbe (thorough|comprehensive|exhaustive)\b`,
	`\bexplain (your |the )?reasoning\b`,
	`\bwalk me through\b`,
)

// ConcisePatterns matches directives asking for brevity.
var ConcisePatterns = compileSet("verbosity",
	`\bbe (concise|brief|succinct)\b`,
	`\bkeep it short\b`,
	`\bno explanations?\b`,
	`\bone[- ]word answer\b`,
	`\bin (a )?few words\b`,
)

// JSONOnlyPatterns matches directives demanding strict machine-readable
// output.
var JSONOnlyPatterns = compileSet("format",
	`\b(only |strictly )?(respond|output|return) (in |with )?json\b`,
	`\bjson only\b`,
	`\bno (prose|markdown|commentary) (outside|besides) (the )?json\b`,
	`\bvalid json\b`,
)

// ExplanatoryPatterns matches directives asking for prose alongside
// structured output.
var ExplanatoryPatterns = compileSet("format",
	`\badd (a |some )?(commentary|explanation|notes?)\b`,
	`\bexplain (your )?(answer|choice|reasoning)\b`,
	`\bwith reasoning\b`,
	`\bdescribe why\b`,
)

// DefNP captures "the/this/that/these/those (+ aforementioned) HEAD" with
// the single-word head noun in the second capture group.
var DefNP = regexp.MustCompile(`(?i)\b(the|this|that|these|those)\s+(?:aforementioned\s+)?([a-z][a-z\-]*)\b`)

// DeicticCues fires on any stock deictic phrase referring to unstated
// prior context.
var DeicticCues = regexp.MustCompile(`(?i)\b(as discussed earlier|continue the (list|analysis|report|story)|previous results|the report above|the steps below|that prior attachment|the aforementioned note|as (noted|mentioned) (above|before|previously))\b`)

// forwardRefPattern is one compiled regex plus the capture group index (0
// when no noun is extracted) FORWARD_REF_PATTERNS uses to pull the
// referenced noun out of a forward reference.
type forwardRefPattern struct {
	Name     string
	Regex    *regexp.Regexp
	NounIdx  int
}

// ForwardRefPatterns matches phrases that promise content later in the
// same message ("the following table", "as shown below").
var ForwardRefPatterns = []forwardRefPattern{
	{Name: "following_x", Regex: regexp.MustCompile(`(?i)\bthe following\s+([a-z][a-z\-]*)`), NounIdx: 1},
	{Name: "shown_below", Regex: regexp.MustCompile(`(?i)\bas (shown|listed|described) below\b`), NounIdx: 0},
	{Name: "these_those_x", Regex: regexp.MustCompile(`(?i)\b(?:these|those)\s+(files|items|data|results|entries)\b`), NounIdx: 1},
}

// ForwardRef is one detected forward reference.
type ForwardRef struct {
	Text          string
	Start, End    int
	Pattern       string
	ExtractedNoun string
}

// detectForwardReferences scans text for every ForwardRefPatterns match,
// de-duplicating on (start,end).
func detectForwardReferences(text string) []ForwardRef {
	seen := make(map[[2]int]bool)
	var out []ForwardRef
	for _, p := range ForwardRefPatterns {
		for _, loc := range p.Regex.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[0], loc[1]
			key := [2]int{start, end}
			if seen[key] {
				continue
			}
			seen[key] = true
			fr := ForwardRef{
				Text:    text[start:end],
				Start:   start,
				End:     end,
				Pattern: p.Name,
			}
			if p.NounIdx > 0 && 2*p.NounIdx+1 < len(loc) && loc[2*p.NounIdx] >= 0 {
				fr.ExtractedNoun = text[loc[2*p.NounIdx]:loc[2*p.NounIdx+1]]
			}
			out = append(out, fr)
		}
	}
	return out
}

// nounTaxonomy is the default set of heads the reference rule watches for,
// covering the usual document/data/plan antecedents (spec.md §4.3).
var nounTaxonomy = []string{
	"report", "document", "paper", "list", "results", "transcript", "table",
	"file", "dataset", "schema", "plan", "summary", "analysis", "spreadsheet",
	"diagram", "chart", "log", "conversation", "thread", "draft", "outline",
	"proposal", "contract", "invoice", "record", "entry", "item", "attachment",
	"image", "screenshot", "code", "script", "config", "manifest",
}

// synonymGroups lists default bidirectional equivalence classes of heads;
// every member of a group is a synonym of every other member, including
// itself (spec.md §4.3's "Bidirectional merge is guaranteed").
var synonymGroups = [][]string{
	{"report", "document", "paper", "transcript"},
	{"list", "items", "entries"},
	{"table", "grid", "matrix"},
	{"dataset", "data"},
	{"plan", "proposal", "outline"},
	{"file", "attachment"},
	{"chart", "diagram", "graph"},
}

// defaultSynonyms expands synonymGroups into a head → equivalents map
// (each head maps to the full group including itself).
func defaultSynonyms() map[string][]string {
	out := make(map[string][]string)
	for _, group := range synonymGroups {
		for _, head := range group {
			out[head] = append([]string{}, group...)
		}
	}
	return out
}

// mergeSynonyms combines the default synonym map with caller-provided
// overrides, guaranteeing the bidirectional property: if the caller adds
// "foo" as a synonym of "bar", then "bar" also gains "foo".
func mergeSynonyms(caller map[string][]string) map[string][]string {
	merged := defaultSynonyms()
	for head, syns := range caller {
		head = normalizeNoun(head)
		addBidirectional(merged, head, head)
		for _, s := range syns {
			s = normalizeNoun(s)
			addBidirectional(merged, head, s)
		}
	}
	return merged
}

func addBidirectional(m map[string][]string, a, b string) {
	m[a] = appendUnique(m[a], b)
	m[a] = appendUnique(m[a], a)
	m[b] = appendUnique(m[b], a)
	m[b] = appendUnique(m[b], b)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// effectiveNounSet merges the default taxonomy with caller-provided
// reference heads into a lookup set.
func effectiveNounSet(callerHeads []string) map[string]bool {
	set := make(map[string]bool, len(nounTaxonomy)+len(callerHeads))
	for _, n := range nounTaxonomy {
		set[normalizeNoun(n)] = true
	}
	for _, h := range callerHeads {
		set[normalizeNoun(h)] = true
	}
	return set
}
