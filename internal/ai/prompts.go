package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"resumecoach/internal/config"
	"resumecoach/internal/types"
)

// DefaultMaxResumeChars bounds the resume text embedded in a prompt
const DefaultMaxResumeChars = 8000

// DefaultPrompts are the built-in templates keyed by intent. {{resume}} is the
// (truncated) resume text and {{jobDescription}} expands to the labelled job
// description block, or to nothing when no job description was supplied.
var DefaultPrompts = map[types.Intent]string{
	types.IntentFullAnalysis: `
You are an expert resume analyzer and career coach. Analyze the following resume and provide detailed feedback.

{{jobDescription}}

Resume to analyze:
{{resume}}

Please provide a comprehensive analysis in the following JSON format:
{
  "atsScore": number (0-100),
  "keywordMatches": [
    {
      "keyword": "string",
      "found": boolean,
      "importance": "high" | "medium" | "low"
    }
  ],
  "grammarSuggestions": [
    {
      "issue": "string",
      "suggestion": "string",
      "severity": "high" | "medium" | "low"
    }
  ],
  "recommendations": [
    {
      "category": "formatting" | "content" | "keywords" | "structure",
      "title": "string",
      "description": "string",
      "priority": "high" | "medium" | "low"
    }
  ],
  "strengths": ["string"],
  "weaknesses": ["string"],
  "overallFeedback": "string"
}

Focus on:
1. ATS compatibility and keyword optimization
2. Grammar, spelling, and formatting issues
3. Content structure and impact
4. Quantifiable achievements
5. Industry-specific requirements
6. Professional presentation

Be specific and actionable in your recommendations.
`,

	types.IntentKeywordImprovement: `
Analyze this resume and suggest keyword improvements for better ATS compatibility:

{{jobDescription}}

Resume:
{{resume}}

Provide specific keyword suggestions and where to incorporate them. Focus on:
1. Industry-specific terms
2. Technical skills
3. Action verbs
4. Certifications and qualifications

Return suggestions in a clear, actionable format.
`,

	types.IntentGrammarImprovement: `
Review this resume for grammar, spelling, and writing improvements:

Resume:
{{resume}}

Identify and suggest fixes for:
1. Grammar errors
2. Spelling mistakes
3. Awkward phrasing
4. Inconsistent formatting
5. Unclear statements

Provide specific corrections with explanations.
`,

	types.IntentStructureImprovement: `
Analyze the structure and organization of this resume:

Resume:
{{resume}}

Suggest improvements for:
1. Section organization
2. Information hierarchy
3. Bullet point effectiveness
4. Overall flow and readability
5. Professional formatting

Provide specific structural recommendations.
`,

	types.IntentGenericImprovement: `
Provide comprehensive improvement suggestions for this resume:

{{jobDescription}}

Resume:
{{resume}}

Suggest improvements across all areas: keywords, grammar, structure, content, and formatting.
`,
}

// jobBlocks label the job description per intent
var jobBlocks = map[types.Intent]string{
	types.IntentFullAnalysis:         "Job Description for comparison:\n%s\n\n",
	types.IntentKeywordImprovement:   "Target Job Description:\n%s\n\n",
	types.IntentGrammarImprovement:   "Target Job Description:\n%s\n\n",
	types.IntentStructureImprovement: "Target Job Description:\n%s\n\n",
	types.IntentGenericImprovement:   "Target Job Description:\n%s\n\n",
}

// Section content templates; %[1]s is the user input, %[2]s the job block
var contentPrompts = map[string]string{
	"summary": `
Create a professional resume summary based on this information:
%[1]s

%[2]s

Write a compelling 2-3 sentence professional summary that highlights key strengths and career objectives. Make it ATS-friendly and impactful.
`,
	"experience": `
Transform this work experience into professional resume bullet points:
%[1]s

%[2]s

Create 3-5 strong bullet points that:
1. Start with action verbs
2. Include quantifiable achievements where possible
3. Highlight relevant skills and technologies
4. Are ATS-optimized
5. Show impact and results

Format as bullet points with • symbol.
`,
	"skills": `
Organize and optimize these skills for a resume:
%[1]s

%[2]s

Categorize skills into relevant groups (e.g., Programming Languages, Frameworks, Tools, etc.) and present them in a clean, ATS-friendly format. Prioritize skills most relevant to the target role.
`,
	"projects": `
Write a professional project description based on:
%[1]s

%[2]s

Create a concise project description that includes:
1. Project title and brief overview
2. Technologies used
3. Key features or achievements
4. Your specific role and contributions
5. Quantifiable results if applicable

Keep it professional and relevant to the target role.
`,
}

const genericContentPrompt = `
Improve this resume content for the %[3]s section:
%[1]s

%[2]s

Make it more professional, ATS-friendly, and impactful while maintaining accuracy.
`

// Prompt is a rendered prompt plus what truncation did to the resume
type Prompt struct {
	Text         string
	Truncated    bool
	DroppedChars int
}

// PromptBuilder renders deterministic prompts from requests
type PromptBuilder struct {
	maxResumeChars int
	templates      map[types.Intent]string
}

// NewPromptBuilder creates a builder. Overrides replace built-in templates
// for the intents they name.
func NewPromptBuilder(maxResumeChars int, overrides config.PromptTemplates) *PromptBuilder {
	if maxResumeChars <= 0 {
		maxResumeChars = DefaultMaxResumeChars
	}

	templates := make(map[types.Intent]string, len(DefaultPrompts))
	for intent, tmpl := range DefaultPrompts {
		templates[intent] = tmpl
	}
	for intent, tmpl := range overrides {
		if _, known := templates[intent]; known && tmpl != "" {
			templates[intent] = tmpl
		}
	}

	return &PromptBuilder{maxResumeChars: maxResumeChars, templates: templates}
}

// BuildPrompt renders the template for req.Intent. Resume text beyond the
// character budget is dropped without notice in the prompt.
func (b *PromptBuilder) BuildPrompt(req types.AnalysisRequest) Prompt {
	intent := req.Intent
	if _, ok := b.templates[intent]; !ok {
		intent = types.ParseIntent(string(intent))
	}

	resume, dropped := TruncateChars(req.ResumeText, b.maxResumeChars)

	jobBlock := ""
	if req.JobDescription != "" {
		jobBlock = fmt.Sprintf(jobBlocks[intent], req.JobDescription)
	}

	text := strings.NewReplacer(
		config.PlaceholderResume, resume,
		config.PlaceholderJobDescription, jobBlock,
	).Replace(b.templates[intent])

	return Prompt{Text: text, Truncated: dropped > 0, DroppedChars: dropped}
}

// BuildContentPrompt renders the section content generation prompt
func (b *PromptBuilder) BuildContentPrompt(req types.ContentRequest) string {
	jobBlock := ""
	if req.JobDescription != "" {
		jobBlock = "Target job description: " + req.JobDescription
	}

	if tmpl, ok := contentPrompts[req.Section]; ok {
		return fmt.Sprintf(tmpl, req.UserInput, jobBlock)
	}
	return fmt.Sprintf(genericContentPrompt, req.UserInput, jobBlock, req.Section)
}

// MaxResumeChars returns the truncation budget
func (b *PromptBuilder) MaxResumeChars() int {
	return b.maxResumeChars
}

// TruncateChars keeps the first max characters (runes) of s and reports how many were dropped
func TruncateChars(s string, max int) (string, int) {
	total := utf8.RuneCountInString(s)
	if total <= max {
		return s, 0
	}

	cut := 0
	for i := range s {
		if cut == max {
			return s[:i], total - max
		}
		cut++
	}
	return s, 0
}
