package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumecoach/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// Data type keys used for registration
const (
	typeAnalysis    = "AnalysisResult"
	typeImprovement = "ImprovementResult"
	typeContent     = "ContentResult"
	typeExtract     = "ExtractResult"
	typeAny         = "any"
)

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", typeAny, &JSONFormatter{})
	registry.RegisterFormatter("text", typeAnalysis, &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", typeAnalysis, &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", typeImprovement, &plainFormatter{dataType: typeImprovement})
	registry.RegisterFormatter("markdown", typeImprovement, &plainFormatter{dataType: typeImprovement, heading: "# Improvement Suggestions"})
	registry.RegisterFormatter("text", typeContent, &plainFormatter{dataType: typeContent})
	registry.RegisterFormatter("markdown", typeContent, &plainFormatter{dataType: typeContent, heading: "# Generated Content"})
	registry.RegisterFormatter("text", typeExtract, &plainFormatter{dataType: typeExtract})
	registry.RegisterFormatter("markdown", typeExtract, &plainFormatter{dataType: typeExtract})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter. Pointers to result
// types are accepted.
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[typeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func deref(data any) any {
	switch v := data.(type) {
	case *types.AnalysisResult:
		if v != nil {
			return *v
		}
	case *types.ImprovementResult:
		if v != nil {
			return *v
		}
	case *types.ContentResult:
		if v != nil {
			return *v
		}
	case *types.ExtractResult:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult:
		return typeAnalysis
	case types.ImprovementResult:
		return typeImprovement
	case types.ContentResult:
		return typeContent
	case types.ExtractResult:
		return typeExtract
	default:
		return typeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return typeAny
}

// AnalysisTextFormatter renders a full analysis as plain text
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RESUME ANALYSIS ===\n\n")
	fmt.Fprintf(&output, "ATS Score: %d/100\n", result.ATSScore)
	if result.Fallback {
		output.WriteString("(default analysis: the AI provider could not be reached or returned an unusable response)\n")
	}
	output.WriteString("\n")

	if len(result.KeywordMatches) > 0 {
		output.WriteString("=== KEYWORDS ===\n")
		for _, km := range result.KeywordMatches {
			mark := "missing"
			if km.Found {
				mark = "found"
			}
			fmt.Fprintf(&output, "- %s [%s, %s importance]\n", km.Keyword, mark, km.Importance)
		}
		output.WriteString("\n")
	}

	if len(result.GrammarSuggestions) > 0 {
		output.WriteString("=== GRAMMAR ===\n")
		for _, gs := range result.GrammarSuggestions {
			fmt.Fprintf(&output, "- [%s] %s\n  Suggestion: %s\n", gs.Severity, gs.Issue, gs.Suggestion)
		}
		output.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		output.WriteString("=== RECOMMENDATIONS ===\n")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(&output, "- [%s/%s] %s\n  %s\n", rec.Category, rec.Priority, rec.Title, rec.Description)
		}
		output.WriteString("\n")
	}

	writeTextList(&output, "STRENGTHS", result.Strengths)
	writeTextList(&output, "WEAKNESSES", result.Weaknesses)

	output.WriteString("=== OVERALL FEEDBACK ===\n")
	output.WriteString(result.OverallFeedback)
	output.WriteString("\n")

	if len(result.Warnings) > 0 {
		output.WriteString("\n")
		writeTextList(&output, "WARNINGS", result.Warnings)
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return typeAnalysis
}

func writeTextList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "=== %s ===\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// AnalysisMarkdownFormatter renders a full analysis as Markdown
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")
	fmt.Fprintf(&output, "**ATS Score:** %d/100\n\n", result.ATSScore)
	if result.Fallback {
		output.WriteString("> Default analysis: the AI provider could not be reached or returned an unusable response.\n\n")
	}

	if len(result.KeywordMatches) > 0 {
		output.WriteString("## Keywords\n\n| Keyword | Found | Importance |\n|---|---|---|\n")
		for _, km := range result.KeywordMatches {
			found := "no"
			if km.Found {
				found = "yes"
			}
			fmt.Fprintf(&output, "| %s | %s | %s |\n", km.Keyword, found, km.Importance)
		}
		output.WriteString("\n")
	}

	if len(result.GrammarSuggestions) > 0 {
		output.WriteString("## Grammar\n\n")
		for _, gs := range result.GrammarSuggestions {
			fmt.Fprintf(&output, "- **%s** (%s): %s\n", gs.Issue, gs.Severity, gs.Suggestion)
		}
		output.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		output.WriteString("## Recommendations\n\n")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(&output, "### %s\n\n*%s, %s priority*\n\n%s\n\n", rec.Title, rec.Category, rec.Priority, rec.Description)
		}
	}

	writeMarkdownList(&output, "Strengths", result.Strengths)
	writeMarkdownList(&output, "Weaknesses", result.Weaknesses)

	output.WriteString("## Overall Feedback\n\n")
	output.WriteString(result.OverallFeedback)
	output.WriteString("\n")

	if len(result.Warnings) > 0 {
		output.WriteString("\n")
		writeMarkdownList(&output, "Warnings", result.Warnings)
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return typeAnalysis
}

func writeMarkdownList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// plainFormatter prints the single text field of improvement, content and
// extraction results, with an optional Markdown heading
type plainFormatter struct {
	dataType string
	heading  string
}

func (pf *plainFormatter) Format(data any) (string, error) {
	var body string
	switch v := data.(type) {
	case types.ImprovementResult:
		body = v.Suggestions
	case types.ContentResult:
		body = v.Content
	case types.ExtractResult:
		body = v.Text
	default:
		return "", fmt.Errorf("expected %s, got %T", pf.dataType, data)
	}

	body = strings.TrimRight(body, "\n") + "\n"
	if pf.heading == "" {
		return body, nil
	}
	return pf.heading + "\n\n" + body, nil
}

func (pf *plainFormatter) SupportedType() string {
	return pf.dataType
}

// GlobalRegistry is the default registry used by the CLI
var GlobalRegistry = NewFormatterRegistry()
