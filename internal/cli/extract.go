package cli

import (
	"resumecoach/internal/common"
	"resumecoach/internal/extract"

	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var flags commandFlags

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract plain text from a resume file",
		Long: `Extract plain text from a resume in PDF, Word (.doc, .docx) or plain
text format. The file type is detected from its content.`,
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

			result, err := extract.NewExtractor(cfg.App.MaxFileSize).ExtractFile(args[0])
			if err != nil {
				return wrapCommandError("extract text", err)
			}
			logger.Info("Text extracted", "file", args[0], "chars", len(result.Text))

			cmdConfig := flags.commandConfig(cmd, cfg)
			return common.NewOutputHandlerWithWriter(logger, cmdConfig.Stdout).HandleOutput(result, cmdConfig)
		},
	}

	flags.bindOutput(cmd)
	return cmd
}
