package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"resumecoach/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis() *types.AnalysisResult {
	return &types.AnalysisResult{
		ATSScore: 72,
		KeywordMatches: []types.KeywordMatch{
			{Keyword: "Go", Found: true, Importance: types.LevelHigh},
			{Keyword: "Kubernetes", Found: false, Importance: types.LevelMedium},
		},
		GrammarSuggestions: []types.GrammarSuggestion{
			{Issue: "Passive voice", Suggestion: "Use active verbs", Severity: types.LevelLow},
		},
		Recommendations: []types.Recommendation{
			{Category: "keywords", Title: "Add Kubernetes", Description: "Mention cluster work", Priority: types.LevelHigh},
		},
		Strengths:       []string{"Clear layout"},
		Weaknesses:      []string{"No metrics"},
		OverallFeedback: "Good start.",
		Warnings:        []string{"resume text exceeded 8000 characters"},
	}
}

func TestFormatAnalysis(t *testing.T) {
	registry := NewFormatterRegistry()

	text, err := registry.Format(sampleAnalysis(), "text")
	require.NoError(t, err)
	assert.Contains(t, text, "ATS Score: 72/100")
	assert.Contains(t, text, "- Kubernetes [missing, medium importance]")
	assert.Contains(t, text, "=== WARNINGS ===")
	assert.NotContains(t, text, "default analysis")

	md, err := registry.Format(*sampleAnalysis(), "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# Resume Analysis"))
	assert.Contains(t, md, "| Go | yes | high |")
	assert.Contains(t, md, "### Add Kubernetes")

	fallback := sampleAnalysis()
	fallback.Fallback = true
	text, err = registry.Format(fallback, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "default analysis")
}

func TestFormatJSON(t *testing.T) {
	out, err := NewFormatterRegistry().Format(sampleAnalysis(), "json")
	require.NoError(t, err)

	var decoded types.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 72, decoded.ATSScore)
	assert.NotContains(t, out, `"fallback"`)
}

func TestFormatPlainResults(t *testing.T) {
	registry := NewFormatterRegistry()

	tests := []struct {
		name   string
		data   any
		format string
		want   string
	}{
		{"improvement text", &types.ImprovementResult{Suggestions: "Add numbers"}, "text", "Add numbers\n"},
		{"improvement markdown", types.ImprovementResult{Suggestions: "Add numbers\n\n"}, "markdown", "# Improvement Suggestions\n\nAdd numbers\n"},
		{"content markdown", &types.ContentResult{Content: "Built things"}, "markdown", "# Generated Content\n\nBuilt things\n"},
		{"extract text", &types.ExtractResult{Text: "Jane"}, "text", "Jane\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Format(tt.data, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatErrors(t *testing.T) {
	registry := NewFormatterRegistry()

	_, err := registry.Format(sampleAnalysis(), "yaml")
	assert.ErrorContains(t, err, "no formatter found")

	_, err = registry.Format(map[string]string{"a": "b"}, "text")
	assert.Error(t, err)

	assert.Equal(t, []string{"json", "markdown", "text"}, registry.GetSupportedFormats())
}
