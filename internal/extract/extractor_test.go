package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumecoach/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor(0)

	result, err := e.Extract("resume.txt", "text/plain; charset=utf-8", []byte("Jane Doe\nEngineer"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nEngineer", result.Text)
}

func TestExtractSamples(t *testing.T) {
	e := NewExtractor(0)

	tests := []struct {
		name         string
		declaredType string
		data         []byte
		contains     string
	}{
		{"declared pdf", TypePDF, []byte("whatever"), "John Doe"},
		{"sniffed pdf", "", []byte("%PDF-1.7\n1 0 obj\n"), "John Doe"},
		{"declared docx", TypeDOCX, []byte("PK"), "Jane Smith"},
		{"declared doc", TypeMSWord, []byte{0xD0, 0xCF}, "Jane Smith"},
		{"octet stream falls back to sniffing", "application/octet-stream", []byte("%PDF-1.4\n"), "John Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := e.Extract("upload", tt.declaredType, tt.data)
			require.NoError(t, err)
			assert.Contains(t, result.Text, tt.contains)
		})
	}
}

func TestSampleTextsMatchFixtures(t *testing.T) {
	assert.True(t, strings.HasPrefix(samplePDFText, "\nJohn Doe\nSoftware Engineer\nEmail: john.doe@email.com\n"))
	assert.Contains(t, samplePDFText, "• Implemented real-time updates using WebSockets\n")
	assert.True(t, strings.HasPrefix(sampleWordText, "\nJane Smith\nProduct Manager\n"))
	assert.Contains(t, sampleWordText, "Methodologies: Agile, Scrum, Design Thinking\n")
}

func TestExtractErrors(t *testing.T) {
	e := NewExtractor(16)

	_, err := e.Extract("", "", nil)
	assert.True(t, errors.IsMissingInput(err))
	assert.Contains(t, err.Error(), MsgNoFile)

	_, err = e.Extract("photo.png", "image/png", []byte("\x89PNG"))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnsupportedFile, appErr.Code)
	assert.Equal(t, MsgUnsupportedType, appErr.Message)

	_, err = e.Extract("big.txt", TypePlainText, []byte(strings.Repeat("a", 17)))
	appErr, ok = errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeFileTooLarge, appErr.Code)
}

func TestExtractLegacyEncodedText(t *testing.T) {
	// "Café résumé" in Windows-1252
	data := []byte{'C', 'a', 'f', 0xe9, ' ', 'r', 0xe9, 's', 'u', 'm', 0xe9}

	result, err := NewExtractor(0).Extract("resume.txt", TypePlainText, data)
	require.NoError(t, err)
	assert.Equal(t, "Caf\uFFFD r\uFFFDsum\uFFFD", result.Text)
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.md")
	require.NoError(t, os.WriteFile(path, []byte("# Jane\n\n- Go\n"), 0600))

	e := NewExtractor(0)
	result, err := e.ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Jane\n\n- Go\n", result.Text)

	_, err = e.ExtractFile(filepath.Join(dir, "missing.txt"))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeFileNotFound, appErr.Code)
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, TypePlainText, DetectType("", []byte("hello world")))
	assert.Equal(t, TypePDF, DetectType("Application/PDF", nil))
	assert.Equal(t, TypePlainText, DetectType("text/plain; charset=utf-8", nil))
}
