package models

// Providers a fix suggestion can come from, in preference order.
const (
	SuggestionSourcePrimaryAI   = "primary-ai"
	SuggestionSourceSecondaryAI = "secondary-ai"
	SuggestionSourceTemplate    = "rule-based"
	SuggestionSourceGeneric     = "generic"
)

// FixSuggestion is remediation guidance for one accessibility issue.
type FixSuggestion struct {
	// RuleCode is the issue code the suggestion addresses.
	RuleCode string `json:"rule_code"`

	// Text is the remediation guidance.
	Text string `json:"text"`

	// Provider names where the suggestion came from.
	Provider string `json:"provider"`
}
