// Package extract turns uploaded resume files into plain text.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resumecoach/internal/errors"
	"resumecoach/internal/types"

	"github.com/gabriel-vasile/mimetype"
)

// Supported content types
const (
	TypePDF       = "application/pdf"
	TypePlainText = "text/plain"
	TypeMSWord    = "application/msword"
	TypeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedTypes = map[string]bool{
	TypePDF:       true,
	TypePlainText: true,
	TypeMSWord:    true,
	TypeDOCX:      true,
}

// Error messages shared with the HTTP layer
const (
	MsgNoFile          = "No file provided"
	MsgUnsupportedType = "Unsupported file type"
	MsgExtractFailed   = "Failed to extract text from file. Please try again."
)

// Extractor converts uploaded files to text. Plain text is returned as is;
// PDF and Word documents yield fixed sample resumes.
type Extractor struct {
	maxBytes int64
}

// NewExtractor creates an extractor; maxBytes <= 0 disables the size check
func NewExtractor(maxBytes int64) *Extractor {
	return &Extractor{maxBytes: maxBytes}
}

// Extract returns the text of data. declaredType is the client-supplied
// content type; when it is empty or generic the content is sniffed.
func (e *Extractor) Extract(filename, declaredType string, data []byte) (*types.ExtractResult, error) {
	if len(data) == 0 && filename == "" {
		return nil, errors.NewMissingInputError(MsgNoFile)
	}
	if e.maxBytes > 0 && int64(len(data)) > e.maxBytes {
		return nil, errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("File too large (max %d bytes)", e.maxBytes), nil).
			WithContext("filename", filename)
	}

	contentType := DetectType(declaredType, data)
	if !allowedTypes[contentType] {
		return nil, errors.NewValidationError(errors.ErrCodeUnsupportedFile, MsgUnsupportedType, nil).
			WithContext("filename", filename).
			WithContext("content_type", contentType)
	}

	switch contentType {
	case TypePlainText:
		// Legacy encodings decode with replacement characters rather than failing
		return &types.ExtractResult{Text: strings.ToValidUTF8(string(data), "\uFFFD")}, nil
	case TypePDF:
		return &types.ExtractResult{Text: samplePDFText}, nil
	default:
		return &types.ExtractResult{Text: sampleWordText}, nil
	}
}

// ExtractFile reads path and extracts it, sniffing the content type
func (e *Extractor) ExtractFile(path string) (*types.ExtractResult, error) {
	if path == "" {
		return nil, errors.NewMissingInputError(MsgNoFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "file not found", err).
				WithContext("path", path)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read file", err).
			WithContext("path", path)
	}

	return e.Extract(filepath.Base(path), "", data)
}

// DetectType normalises declaredType, falling back to content sniffing when
// the client sent nothing useful
func DetectType(declaredType string, data []byte) string {
	declared := mediaType(declaredType)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		if t := mediaType(mt.String()); allowedTypes[t] {
			return t
		}
	}
	return mediaType(mimetype.Detect(data).String())
}

func mediaType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
