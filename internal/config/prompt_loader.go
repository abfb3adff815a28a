package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"resumecoach/internal/types"
)

// Template placeholders understood by the prompt builder
const (
	PlaceholderResume         = "{{resume}}"
	PlaceholderJobDescription = "{{jobDescription}}"
)

// PromptTemplates holds file-provided templates keyed by intent
type PromptTemplates map[types.Intent]string

// PromptTemplates returns the templates loaded from files. Intents without a
// file are absent and use the built-in template.
func (c *Config) PromptTemplates() PromptTemplates {
	out := make(PromptTemplates, len(c.prompts))
	for intent, tmpl := range c.prompts {
		out[intent] = tmpl
	}
	return out
}

func (p *PromptFilesConfig) byIntent() map[types.Intent]string {
	return map[types.Intent]string{
		types.IntentFullAnalysis:         p.AnalysisFile,
		types.IntentKeywordImprovement:   p.KeywordsFile,
		types.IntentGrammarImprovement:   p.GrammarFile,
		types.IntentStructureImprovement: p.StructureFile,
		types.IntentGenericImprovement:   p.GenericFile,
	}
}

// validatePromptFiles checks every configured path before anything is read
func (c *Config) validatePromptFiles() error {
	var problems []string
	for intent, path := range c.AI.Prompts.byIntent() {
		if path == "" {
			continue
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("invalid path for %s prompt: %s", intent, path))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			problems = append(problems, fmt.Sprintf("%s prompt file not found: %s", intent, absPath))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}

// loadPromptTemplates reads every configured prompt file into memory
func (c *Config) loadPromptTemplates() error {
	if err := c.validatePromptFiles(); err != nil {
		return err
	}

	loaded := make(PromptTemplates)
	for intent, path := range c.AI.Prompts.byIntent() {
		if path == "" {
			continue
		}
		content, err := loadPromptFromFile(path, intent)
		if err != nil {
			return err
		}
		loaded[intent] = content
	}
	c.prompts = loaded

	if len(loaded) == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in templates")
	} else {
		log.Printf("[CONFIG] Custom prompt templates loaded: %d", len(loaded))
	}
	return nil
}

func loadPromptFromFile(path string, intent types.Intent) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s prompt file '%s': %w", intent, path, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", intent, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", intent, absPath)
	}
	if !strings.Contains(trimmed, PlaceholderResume) {
		return "", fmt.Errorf("%s prompt file '%s' must contain %s", intent, absPath, PlaceholderResume)
	}

	log.Printf("[CONFIG] Loaded %s prompt from file: %s (%d characters)", intent, absPath, len(trimmed))
	return trimmed, nil
}
