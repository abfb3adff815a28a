package cli

import (
	"resumecoach/internal/ai"
	"resumecoach/internal/common"
	"resumecoach/internal/config"
	"resumecoach/internal/errors"

	"github.com/spf13/cobra"
)

// commandFlags are the flags shared by the resume commands
type commandFlags struct {
	output           string
	format           string
	provider         string
	jobFile          string
	reportTruncation bool
}

func (f *commandFlags) bindOutput(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: json, text, or markdown")
	_ = cmd.RegisterFlagCompletionFunc("format", formatCompletion)
}

func (f *commandFlags) bindAI(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.jobFile, "job", "j", "", "Job description file")
	cmd.Flags().StringVar(&f.provider, "provider", "", "AI provider: openai or gemini (default from config)")
	_ = cmd.RegisterFlagCompletionFunc("provider", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"openai", "gemini"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// prepare resolves the output format against configuration
func (f *commandFlags) prepare(cmd *cobra.Command) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	format, err := common.ResolveOutputFormat(f.format, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil)
	}
	f.format = format
	return nil
}

func (f *commandFlags) commandConfig(cmd *cobra.Command, cfg *config.Config) common.CommandConfig {
	return common.CommandConfig{
		OutputFile:   f.output,
		OutputFormat: f.format,
		MaxFileSize:  cfg.App.MaxFileSize,
		Stdout:       cmd.OutOrStdout(),
	}
}

// serviceFactory builds the orchestrator for one-shot commands
var serviceFactory = func(cfg *config.Config, logger *errors.Logger) resumeService {
	return ai.NewService(cfg, logger)
}
