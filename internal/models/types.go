// Package models defines the data model for the LangPatrol analysis engine:
// the caller-supplied AnalyzeInput and the Report the engine produces from it.
package models

// Role identifies the speaker of a message in a multi-turn prompt.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TemplateDialect identifies the templating syntax a prompt uses for
// placeholders, e.g. {{var}} (handlebars/mustache), {{ var }} (jinja), or
// <%= var %> (ejs).
type TemplateDialect string

const (
	DialectHandlebars TemplateDialect = "handlebars"
	DialectJinja      TemplateDialect = "jinja"
	DialectMustache   TemplateDialect = "mustache"
	DialectEJS        TemplateDialect = "ejs"
)

// TokenEstimation selects the tokenizer strategy the token rule uses.
type TokenEstimation string

const (
	TokenEstimationAuto  TokenEstimation = "auto"
	TokenEstimationCheap TokenEstimation = "cheap"
	TokenEstimationExact TokenEstimation = "exact"
	TokenEstimationOff   TokenEstimation = "off"
)

// Message is one turn of a multi-turn prompt.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Attachment is antecedent evidence only; its bytes are never inspected,
// just its declared type and name.
type Attachment struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// Options configures optional engine behavior. A zero or nil field falls
// back to the default applied by the rule that reads it (for example
// tokenEstimation "auto", maxChars 120000).
type Options struct {
	DisabledRules []string `json:"disabledRules,omitempty"`

	TokenEstimation TokenEstimation `json:"tokenEstimation,omitempty"`
	MaxChars        *int            `json:"maxChars,omitempty"`
	MaxInputTokens  *int            `json:"maxInputTokens,omitempty"`
	MaxCostUSD      *float64        `json:"maxCostUSD,omitempty"`

	ReferenceHeads []string            `json:"referenceHeads,omitempty"`
	Synonyms       map[string][]string `json:"synonyms,omitempty"`

	AntecedentWindowMessages *int `json:"antecedentWindowMessages,omitempty"`
	AntecedentWindowBytes    *int `json:"antecedentWindowBytes,omitempty"`

	SimilarityThreshold   *float64 `json:"similarityThreshold,omitempty"`
	UseSemanticSimilarity bool     `json:"useSemanticSimilarity,omitempty"`
	UseNLIEntailment      bool     `json:"useNLIEntailment,omitempty"`

	UseSemanticConflictDetection  bool     `json:"useSemanticConflictDetection,omitempty"`
	UseNLIConflictDetection       bool     `json:"useNLIConflictDetection,omitempty"`
	ConflictSimilarityThreshold   *float64 `json:"conflictSimilarityThreshold,omitempty"`
	ConflictContradictionThreshold *float64 `json:"conflictContradictionThreshold,omitempty"`

	// EnableLocalPII and EnableSecurityScan opt into the two supplemental
	// detectors (PII_DETECTED, SECURITY_THREAT). Both default off: spec.md
	// treats local detection as best-effort, with the cloud path owning
	// PII redaction.
	EnableLocalPII      bool `json:"enableLocalPII,omitempty"`
	EnableSecurityScan bool `json:"enableSecurityScan,omitempty"`

	// APIKey and APIBaseURL are cloud pass-through settings. Analyzer.Analyze
	// does not read them and always analyzes locally. The CLI's analyze
	// command forwards an input through cloudclient only when both are set
	// and LANGPATROL_API_KEY and LANGPATROL_CLOUD_BASE_URL are also set in
	// its environment; the forwarded request carries the environment's key.
	APIKey     string `json:"apiKey,omitempty"`
	APIBaseURL string `json:"apiBaseUrl,omitempty"`
}

// AnalyzeInput is the immutable request to Analyze.
type AnalyzeInput struct {
	Prompt          *string         `json:"prompt,omitempty"`
	Messages        []Message       `json:"messages,omitempty"`
	Schema          map[string]any  `json:"schema,omitempty"`
	Model           string          `json:"model,omitempty"`
	TemplateDialect TemplateDialect `json:"templateDialect,omitempty"`
	Attachments     []Attachment    `json:"attachments,omitempty"`
	Options         Options         `json:"options,omitempty"`
}
