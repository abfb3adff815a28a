package common

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"resumecoach/internal/errors"
	"resumecoach/internal/extract"
	"resumecoach/internal/utils"
)

// FileProcessor reads command inputs and writes command outputs
type FileProcessor struct {
	logger      *errors.Logger
	extractor   *extract.Extractor
	maxFileSize int64
}

// NewFileProcessor creates a file processor; maxFileSize <= 0 disables the size check
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	if logger == nil {
		logger = errors.NopLogger()
	}
	return &FileProcessor{logger: logger, extractor: extract.NewExtractor(maxFileSize), maxFileSize: maxFileSize}
}

// ReadFile reads a text input, classifying failures as not found or not readable
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	switch {
	case err == nil:
		return string(content), nil
	case stderrors.Is(err, fs.ErrNotExist):
		return "", errors.NewIOError(errors.ErrCodeFileNotFound,
			fmt.Sprintf("File not found: %s", filename), err)
	default:
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
}

// WriteFile writes a formatted result, creating parent directories as needed
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}
	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	fp.logger.Debug("Result written", "file", filename, "bytes", len(content))
	return nil
}

// ValidateAndReadFiles validates and reads input files. Files without a
// text extension go through the extractor, so uploaded document formats
// behave the same on the command line as over HTTP.
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))
	for i, filename := range filenames {
		if filename == "" {
			continue
		}

		if err := utils.ValidateInputFile(filename, fp.maxFileSize); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		text, err := fp.readInput(filename)
		if err != nil {
			return nil, err
		}
		contents[i] = text
	}
	return contents, nil
}

func (fp *FileProcessor) readInput(filename string) (string, error) {
	if utils.IsTextFile(filename) {
		return fp.ReadFile(filename)
	}
	fp.logger.Debug("Extracting text from document", "filename", filename)
	result, err := fp.extractor.ExtractFile(filename)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ValidateOutputFile checks the output path; empty means stdout
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}
	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
