package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectedError    string
	}{
		{name: "json", format: "json", supportedFormats: []string{"json", "text", "markdown"}},
		{name: "markdown", format: "markdown", supportedFormats: []string{"json", "text", "markdown"}},
		{
			name:             "not configured",
			format:           "xml",
			supportedFormats: []string{"json", "text", "markdown"},
			expectedError:    "unsupported output format 'xml'. Supported formats: [json text markdown]",
		},
		{name: "no restriction", format: "anything"},
		{
			name:             "case sensitive",
			format:           "JSON",
			supportedFormats: []string{"json"},
			expectedError:    "unsupported output format 'JSON'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)
			if tt.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.expectedError)
		})
	}
}

func TestResolveOutputFormat(t *testing.T) {
	format, err := ResolveOutputFormat("", "text", []string{"json", "text"})
	assert.NoError(t, err)
	assert.Equal(t, "text", format)

	format, err = ResolveOutputFormat("", "", nil)
	assert.NoError(t, err)
	assert.Equal(t, "json", format)

	_, err = ResolveOutputFormat("markdown", "json", []string{"json"})
	assert.Error(t, err)

	_, err = ResolveOutputFormat("yaml", "json", nil)
	assert.ErrorContains(t, err, "has no renderer")
}
