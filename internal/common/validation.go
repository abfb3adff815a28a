package common

import (
	"fmt"
	"slices"

	"resumecoach/internal/formatters"
)

// ResolveOutputFormat applies the configured default and checks the result
// against the configured formats and the formats the registry can render
func ResolveOutputFormat(format, defaultFormat string, supportedFormats []string) (string, error) {
	if format == "" {
		format = defaultFormat
	}
	if format == "" {
		format = "json"
	}
	if err := ValidateOutputFormat(format, supportedFormats); err != nil {
		return "", err
	}
	if !slices.Contains(formatters.GlobalRegistry.GetSupportedFormats(), format) {
		return "", fmt.Errorf("output format '%s' has no renderer", format)
	}
	return format, nil
}

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil
	}
	if slices.Contains(supportedFormats, format) {
		return nil
	}
	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}
