package cli

import (
	"context"

	"resumecoach/internal/common"
	"resumecoach/internal/types"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var flags commandFlags

	cmd := &cobra.Command{
		Use:   "analyze <resume-file>",
		Short: "Score a resume and report keyword, grammar and structure findings",
		Long: `Analyze a resume, optionally against a job description, and report an
ATS compatibility score, keyword matches, grammar suggestions, prioritized
recommendations, strengths and weaknesses.

When the AI provider fails or returns an unreadable answer, a generic
default analysis is printed and marked as a fallback.`,
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

			createInput := func(contents []string) (types.AnalysisRequest, error) {
				return types.AnalysisRequest{
					ResumeText:       contents[0],
					JobDescription:   contents[1],
					Provider:         types.Provider(flags.provider),
					Intent:           types.IntentFullAnalysis,
					ReportTruncation: flags.reportTruncation,
				}, nil
			}
			logDetails := func(req types.AnalysisRequest, c common.CommandConfig) {
				logger.Info("Starting resume analysis",
					"resume_chars", len(req.ResumeText),
					"job_chars", len(req.JobDescription),
					"provider", req.Provider,
					"output_format", c.OutputFormat)
			}
			analyze := func(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
				result, err := service.Analyze(ctx, req)
				if err == nil && result.Fallback {
					logger.Warn("AI analysis unavailable, printing default analysis")
				}
				return result, err
			}

			err = common.RunAICommand(cmd.Context(), logger, flags.commandConfig(cmd, cfg),
				[]string{args[0], flags.jobFile}, createInput, analyze, logDetails)
			if err != nil {
				return wrapCommandError("analyze resume", err)
			}
			logger.Info("Resume analysis completed")
			return nil
		},
	}

	flags.bindOutput(cmd)
	flags.bindAI(cmd)
	cmd.Flags().BoolVar(&flags.reportTruncation, "report-truncation", false,
		"Add a warning to the result when the resume was shortened")
	return cmd
}
