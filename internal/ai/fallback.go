package ai

import "resumecoach/internal/types"

// Static responses used when the provider call or parsing fails
const (
	FallbackSuggestions = "Unable to generate AI suggestions at this time. Please try again later."
	FallbackContent     = "Unable to generate AI content at this time. Please try again later."
)

// FallbackAnalysis returns a fresh copy of the default analysis, marked as a fallback
func FallbackAnalysis() *types.AnalysisResult {
	return &types.AnalysisResult{
		ATSScore: 65,
		KeywordMatches: []types.KeywordMatch{
			{Keyword: "JavaScript", Found: true, Importance: types.LevelHigh},
			{Keyword: "React", Found: true, Importance: types.LevelHigh},
			{Keyword: "Node.js", Found: false, Importance: types.LevelMedium},
		},
		GrammarSuggestions: []types.GrammarSuggestion{
			{
				Issue:      "Inconsistent tense usage",
				Suggestion: "Use past tense for previous roles and present tense for current role",
				Severity:   types.LevelMedium,
			},
		},
		Recommendations: []types.Recommendation{
			{
				Category:    "content",
				Title:       "Add quantifiable achievements",
				Description: "Include specific metrics and numbers to demonstrate impact",
				Priority:    types.LevelHigh,
			},
		},
		Strengths:       []string{"Strong technical skills", "Clear formatting"},
		Weaknesses:      []string{"Lacks quantifiable achievements", "Missing key industry keywords"},
		OverallFeedback: "Your resume shows good technical foundation but needs more specific achievements and keyword optimization.",
		Fallback:        true,
	}
}

// FallbackImprovement carries no fallback marker
func FallbackImprovement() *types.ImprovementResult {
	return &types.ImprovementResult{Suggestions: FallbackSuggestions}
}

// FallbackContentResult is the static section content response
func FallbackContentResult() *types.ContentResult {
	return &types.ContentResult{Content: FallbackContent}
}
