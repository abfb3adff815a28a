package cli

import (
	"context"

	"resumecoach/internal/common"
	"resumecoach/internal/types"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var flags commandFlags
	var section string

	cmd := &cobra.Command{
		Use:   "generate <input-file>",
		Short: "Draft content for one resume section",
		Long: `Draft content for a resume section such as "summary" or "experience"
from free-form notes in the input file, optionally tailored to a job
description.`,
		Example: "  resumecoach generate --section summary notes.txt --job job.md",
		Args:    cobra.ExactArgs(1),
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

			createInput := func(contents []string) (types.ContentRequest, error) {
				return types.ContentRequest{
					Section:        section,
					UserInput:      contents[0],
					JobDescription: contents[1],
					Provider:       types.Provider(flags.provider),
				}, nil
			}
			logDetails := func(req types.ContentRequest, c common.CommandConfig) {
				logger.Info("Starting content generation",
					"section", req.Section,
					"input_chars", len(req.UserInput),
					"provider", req.Provider,
					"output_format", c.OutputFormat)
			}
			generate := func(ctx context.Context, req types.ContentRequest) (*types.ContentResult, error) {
				return service.GenerateContent(ctx, req)
			}

			err = common.RunAICommand(cmd.Context(), logger, flags.commandConfig(cmd, cfg),
				[]string{args[0], flags.jobFile}, createInput, generate, logDetails)
			if err != nil {
				return wrapCommandError("generate content", err)
			}
			logger.Info("Content generation completed", "section", section)
			return nil
		},
	}

	flags.bindOutput(cmd)
	flags.bindAI(cmd)
	cmd.Flags().StringVarP(&section, "section", "s", "", "Resume section to write, e.g. summary or experience")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}
