package types

import (
	"fmt"
	"strings"
)

// Provider identifies an upstream text-generation backend
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// DefaultProvider is used when a request does not name one
const DefaultProvider = ProviderOpenAI

// ParseProvider resolves a provider name, treating an empty name as the default provider
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultProvider, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderGemini:
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", name)
	}
}

// Intent is the kind of AI assistance requested
type Intent string

const (
	IntentFullAnalysis         Intent = "full-analysis"
	IntentKeywordImprovement   Intent = "keyword-improvement"
	IntentGrammarImprovement   Intent = "grammar-improvement"
	IntentStructureImprovement Intent = "structure-improvement"
	IntentGenericImprovement   Intent = "generic-improvement"
)

// IsImprovement reports whether the intent produces free-form suggestions
func (i Intent) IsImprovement() bool {
	return i != IntentFullAnalysis
}

// ParseIntent resolves an intent name. Empty means full analysis. The short
// improvement names (keywords, grammar, structure) are accepted and anything
// else becomes a generic improvement.
func ParseIntent(name string) Intent {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(IntentFullAnalysis):
		return IntentFullAnalysis
	case string(IntentKeywordImprovement), "keywords":
		return IntentKeywordImprovement
	case string(IntentGrammarImprovement), "grammar":
		return IntentGrammarImprovement
	case string(IntentStructureImprovement), "structure":
		return IntentStructureImprovement
	default:
		return IntentGenericImprovement
	}
}

// ParseImprovementIntent resolves an improvement type; empty means generic improvement
func ParseImprovementIntent(name string) Intent {
	intent := ParseIntent(name)
	if intent == IntentFullAnalysis {
		return IntentGenericImprovement
	}
	return intent
}

// AnalysisRequest is the input to every analysis and improvement operation
type AnalysisRequest struct {
	ResumeText     string   `json:"resumeText"`
	JobDescription string   `json:"jobDescription,omitempty"`
	Provider       Provider `json:"provider,omitempty"`
	Intent         Intent   `json:"intent,omitempty"`

	// ReportTruncation asks for a warning in the result when the resume was cut
	ReportTruncation bool `json:"reportTruncation,omitempty"`
}

// Importance and severity levels used across the analysis result
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

// KeywordMatch reports whether a keyword relevant to the role was found
type KeywordMatch struct {
	Keyword    string `json:"keyword"`
	Found      bool   `json:"found"`
	Importance string `json:"importance"` // high, medium, low
}

// GrammarSuggestion is a single writing issue and its fix
type GrammarSuggestion struct {
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
	Severity   string `json:"severity"` // high, medium, low
}

// Recommendation is an actionable improvement grouped by category
type Recommendation struct {
	Category    string `json:"category"` // formatting, content, keywords, structure
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"` // high, medium, low
}

// AnalysisResult is the structured outcome of a full analysis
type AnalysisResult struct {
	ATSScore           int                 `json:"atsScore"`
	KeywordMatches     []KeywordMatch      `json:"keywordMatches"`
	GrammarSuggestions []GrammarSuggestion `json:"grammarSuggestions"`
	Recommendations    []Recommendation    `json:"recommendations"`
	Strengths          []string            `json:"strengths"`
	Weaknesses         []string            `json:"weaknesses"`
	OverallFeedback    string              `json:"overallFeedback"`

	// Fallback is set only when the static default result was substituted
	Fallback bool     `json:"fallback,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ImprovementResult carries free-form improvement suggestions
type ImprovementResult struct {
	Suggestions string `json:"suggestions"`
}

// ContentRequest asks for generated content for one resume section
type ContentRequest struct {
	Section        string   `json:"section"`
	UserInput      string   `json:"userInput"`
	JobDescription string   `json:"jobDescription,omitempty"`
	Provider       Provider `json:"provider,omitempty"`
}

// ContentResult carries generated section content
type ContentResult struct {
	Content string `json:"content"`
}

// ExtractResult carries plain text extracted from an uploaded file
type ExtractResult struct {
	Text string `json:"text"`
}
