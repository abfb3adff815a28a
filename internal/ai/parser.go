package ai

import (
	"encoding/json"
	stderrors "errors"
	"math"
	"strconv"
	"strings"

	"resumecoach/internal/errors"
	"resumecoach/internal/types"
)

// ParseResult is either a decoded analysis or a parse failure, never both
type ParseResult struct {
	Result *types.AnalysisResult
	Err    error
}

// OK reports whether decoding produced a result
func (r ParseResult) OK() bool {
	return r.Err == nil && r.Result != nil
}

// ParseAnalysis decodes the span from the first '{' to the last '}' of raw.
// Decoding is permissive: unknown keys are ignored, missing keys stay zero
// and a field of the wrong JSON type is left zero instead of failing the
// whole object. A fractional or quoted atsScore is rounded.
func ParseAnalysis(raw string) ParseResult {
	span, ok := jsonObjectSpan(raw)
	if !ok {
		return ParseResult{Err: errors.NewParseError("no JSON object found in provider response", nil)}
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(span), &result); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !stderrors.As(err, &typeErr) {
			return ParseResult{Err: errors.NewParseError("provider response is not a valid analysis object", err)}
		}
		if score, ok := lenientScore(span); ok {
			result.ATSScore = score
		}
	}

	// The flags are server-side only and never trusted from the model
	result.Fallback = false
	result.Warnings = nil
	return ParseResult{Result: &result}
}

func jsonObjectSpan(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(raw, '}')
	if end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// lenientScore reads atsScore as a number or numeric string, rounded
func lenientScore(span string) (int, bool) {
	var probe struct {
		ATSScore any `json:"atsScore"`
	}
	if err := json.Unmarshal([]byte(span), &probe); err != nil {
		return 0, false
	}
	var f float64
	switch v := probe.ATSScore.(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}
