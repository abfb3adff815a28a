package config

import (
	"os"
	"path/filepath"
	"testing"

	"resumecoach/internal/types"
)

func writePromptFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create prompt file: %v", err)
	}
	return path
}

func TestLoadPromptTemplates(t *testing.T) {
	tempDir := t.TempDir()
	grammar := writePromptFile(t, tempDir, "grammar.md", "Fix the grammar:\n{{resume}}\n")

	cfg := &Config{AI: AIConfig{Prompts: PromptFilesConfig{GrammarFile: grammar}}}
	if err := cfg.loadPromptTemplates(); err != nil {
		t.Fatalf("Failed to load prompt templates: %v", err)
	}

	templates := cfg.PromptTemplates()
	if got := templates[types.IntentGrammarImprovement]; got != "Fix the grammar:\n{{resume}}" {
		t.Errorf("Unexpected grammar template: %q", got)
	}
	if _, ok := templates[types.IntentFullAnalysis]; ok {
		t.Error("Expected no analysis override when no file is configured")
	}

	// The accessor hands out a copy
	templates[types.IntentFullAnalysis] = "mutated"
	if _, ok := cfg.PromptTemplates()[types.IntentFullAnalysis]; ok {
		t.Error("PromptTemplates must not expose internal state")
	}
}

func TestLoadPromptTemplatesErrors(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name  string
		files PromptFilesConfig
	}{
		{
			name:  "missing file",
			files: PromptFilesConfig{AnalysisFile: filepath.Join(tempDir, "nope.md")},
		},
		{
			name:  "empty file",
			files: PromptFilesConfig{KeywordsFile: writePromptFile(t, tempDir, "empty.md", "   \n")},
		},
		{
			name:  "no resume placeholder",
			files: PromptFilesConfig{StructureFile: writePromptFile(t, tempDir, "static.md", "Say hello")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AI: AIConfig{Prompts: tt.files}}
			if err := cfg.loadPromptTemplates(); err == nil {
				t.Error("Expected an error but got none")
			}
		})
	}
}
