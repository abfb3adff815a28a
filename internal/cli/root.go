package cli

import (
	"context"
	"fmt"

	"resumecoach/internal/config"
	"resumecoach/internal/errors"

	"github.com/spf13/cobra"
)

type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "resumecoach",
		Short: "AI-assisted resume analysis and improvement",
		Long: `Resumecoach scores a resume against a job description, suggests
keyword, grammar and structure improvements, and drafts resume section
content using OpenAI or Gemini. Run "resumecoach serve" to expose the same
operations over HTTP.`,
		SilenceUsage: true,
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newImproveCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the command line with cfg and logger available to every subcommand
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger, args ...string) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)

	root := newRootCmd()
	if args != nil {
		root.SetArgs(args)
	}
	return root.ExecuteContext(ctx)
}

// ExitCode maps a command error to a process exit code. Upstream and parse
// failures only degrade the result, so they do not fail the process.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return 1
	}
	switch appErr.Type {
	case errors.ErrorTypeUpstream, errors.ErrorTypeParse:
		return 0
	default:
		return 1
	}
}

func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok && cfg != nil {
		return cfg, nil
	}
	return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "configuration not initialized", nil)
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok && logger != nil {
		return logger
	}
	return errors.NopLogger()
}

func formatCompletion(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
}

func wrapCommandError(action string, err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
