package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resume, []byte("0123456789"), 0600))

	assert.NoError(t, ValidateInputFile(resume, 0))
	assert.NoError(t, ValidateInputFile(resume, 10))
	assert.ErrorContains(t, ValidateInputFile(resume, 4), "limit is 4 B")
	assert.ErrorContains(t, ValidateInputFile("", 0), "cannot be empty")
	assert.ErrorContains(t, ValidateInputFile(filepath.Join(dir, "nope.txt"), 0), "does not exist")
	assert.ErrorContains(t, ValidateInputFile(dir, 0), "is a directory")
}

func TestValidateOutputFile(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "out.json")

	assert.NoError(t, ValidateOutputFile(""))
	assert.NoError(t, ValidateOutputFile("out.json"))
	require.NoError(t, ValidateOutputFile(nested))
	assert.DirExists(t, filepath.Dir(nested))

	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	assert.ErrorContains(t, ValidateOutputFile(filepath.Join(blocker, "out.json")), "not a directory")
}

func TestIsTextFile(t *testing.T) {
	assert.True(t, IsTextFile("resume.TXT"))
	assert.True(t, IsTextFile("notes.markdown"))
	assert.False(t, IsTextFile("resume.pdf"))
	assert.False(t, IsTextFile("resume"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.0 KB", FormatFileSize(1024))
	assert.Equal(t, "10.0 MB", FormatFileSize(10<<20))
}
