package cli

import (
	"context"

	"resumecoach/internal/common"
	"resumecoach/internal/types"

	"github.com/spf13/cobra"
)

func newImproveCmd() *cobra.Command {
	var flags commandFlags
	var improvementType string

	cmd := &cobra.Command{
		Use:   "improve <resume-file>",
		Short: "Suggest targeted improvements for a resume",
		Long: `Suggest improvements for a resume. The --type flag picks the focus:

  keywords   missing keywords and where to place them
  grammar    grammar, tense and phrasing fixes
  structure  section order and formatting
  generic    general improvements (default)`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return flags.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			logger := getLoggerFromContext(cmd.Context())
			service := serviceFactory(cfg, logger)
			intent := types.ParseImprovementIntent(improvementType)

			createInput := func(contents []string) (types.AnalysisRequest, error) {
				return types.AnalysisRequest{
					ResumeText:       contents[0],
					JobDescription:   contents[1],
					Provider:         types.Provider(flags.provider),
					Intent:           intent,
					ReportTruncation: flags.reportTruncation,
				}, nil
			}
			logDetails := func(req types.AnalysisRequest, c common.CommandConfig) {
				logger.Info("Starting resume improvement",
					"intent", req.Intent,
					"resume_chars", len(req.ResumeText),
					"provider", req.Provider,
					"output_format", c.OutputFormat)
			}
			improve := func(ctx context.Context, req types.AnalysisRequest) (*types.ImprovementResult, error) {
				return service.Improve(ctx, req)
			}

			err = common.RunAICommand(cmd.Context(), logger, flags.commandConfig(cmd, cfg),
				[]string{args[0], flags.jobFile}, createInput, improve, logDetails)
			if err != nil {
				return wrapCommandError("improve resume", err)
			}
			logger.Info("Resume improvement completed", "intent", intent)
			return nil
		},
	}

	flags.bindOutput(cmd)
	flags.bindAI(cmd)
	cmd.Flags().StringVarP(&improvementType, "type", "t", "generic", "Improvement type: keywords, grammar, structure, generic")
	_ = cmd.RegisterFlagCompletionFunc("type", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"keywords", "grammar", "structure", "generic"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
