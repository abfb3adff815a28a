package server

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"resumecoach/internal/errors"
	"resumecoach/internal/extract"
	"resumecoach/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// analyzeHandler serves POST /analyze-resume
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	ctx, span := s.observability.Tracer("resumecoach.api").Start(r.Context(), "api.analyze_resume")
	defer span.End()

	var req types.AnalysisRequest
	if reqErr := parseJSONRequest(r, &req); reqErr != nil {
		s.rejectRequest(w, r, span, reqErr)
		return
	}
	req.Intent = types.IntentFullAnalysis

	span.SetAttributes(
		attribute.Int("request.resume_length", len(req.ResumeText)),
		attribute.Int("request.job_length", len(req.JobDescription)),
		attribute.String("request.provider", string(req.Provider)),
	)

	result, err := s.service.Analyze(ctx, req)
	if err != nil {
		s.writeServiceError(w, r, span, err)
		return
	}

	span.SetAttributes(
		attribute.Int("ats.score", result.ATSScore),
		attribute.Bool("ai.fallback", result.Fallback),
	)
	writeJSON(w, http.StatusOK, result)
}

// improveHandler serves POST /improve-resume
func (s *Server) improveHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	ctx, span := s.observability.Tracer("resumecoach.api").Start(r.Context(), "api.improve_resume")
	defer span.End()

	var body ImproveRequest
	if reqErr := parseJSONRequest(r, &body); reqErr != nil {
		s.rejectRequest(w, r, span, reqErr)
		return
	}

	improvementType := body.ImprovementType
	if improvementType == "" {
		improvementType = body.Intent
	}
	req := types.AnalysisRequest{
		ResumeText:       body.ResumeText,
		JobDescription:   body.JobDescription,
		Provider:         body.Provider,
		Intent:           types.ParseImprovementIntent(improvementType),
		ReportTruncation: body.ReportTruncation,
	}

	span.SetAttributes(
		attribute.Int("request.resume_length", len(req.ResumeText)),
		attribute.String("request.intent", string(req.Intent)),
	)

	result, err := s.service.Improve(ctx, req)
	if err != nil {
		s.writeServiceError(w, r, span, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// generateContentHandler serves POST /generate-resume-content
func (s *Server) generateContentHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	ctx, span := s.observability.Tracer("resumecoach.api").Start(r.Context(), "api.generate_resume_content")
	defer span.End()

	var req types.ContentRequest
	if reqErr := parseJSONRequest(r, &req); reqErr != nil {
		s.rejectRequest(w, r, span, reqErr)
		return
	}

	span.SetAttributes(
		attribute.String("request.section", req.Section),
		attribute.Int("request.input_length", len(req.UserInput)),
	)

	result, err := s.service.GenerateContent(ctx, req)
	if err != nil {
		s.writeServiceError(w, r, span, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// extractTextHandler serves POST /extract-text with a multipart "file" field
func (s *Server) extractTextHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	_, span := s.observability.Tracer("resumecoach.api").Start(r.Context(), "api.extract_text")
	defer span.End()

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			s.rejectRequest(w, r, span, &requestError{
				status: http.StatusRequestEntityTooLarge,
				title:  "Request body too large",
				detail: fmt.Sprintf("limit is %d bytes", maxBytesErr.Limit),
				cause:  err,
			})
			return
		}
		s.writeServiceError(w, r, span, errors.NewMissingInputError(extract.MsgNoFile))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeServiceError(w, r, span, errors.NewIOError(errors.ErrCodeFileNotReadable, extract.MsgExtractFailed, err))
		return
	}

	declaredType := header.Header.Get("Content-Type")
	span.SetAttributes(
		attribute.String("file.name", header.Filename),
		attribute.String("file.declared_type", declaredType),
		attribute.Int("file.size", len(data)),
	)

	result, err := s.extractor.Extract(header.Filename, declaredType, data)
	if err != nil {
		s.writeServiceError(w, r, span, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// rejectRequest answers a malformed request before it reaches the service
func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request, span trace.Span, reqErr *requestError) {
	span.RecordError(reqErr)
	span.SetAttributes(attribute.String("error.type", "validation"))
	s.Logger.Info("Rejected request",
		"endpoint", r.URL.Path,
		"status", reqErr.status,
		"reason", reqErr.Error(),
		"request_id", requestID(r))
	writeErrorResponse(w, reqErr.title, reqErr.detail, reqErr.status)
}

// writeServiceError maps an application error onto the HTTP envelope
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	status := statusForError(err)
	span.RecordError(err)

	title := "Internal server error"
	if appErr, ok := errors.AsAppError(err); ok {
		span.SetAttributes(
			attribute.String("error.type", string(appErr.Type)),
			attribute.String("error.code", appErr.Code),
		)
		title = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed", "endpoint", r.URL.Path, "status", status, "request_id", requestID(r))
	} else {
		s.Logger.WarnError(err, "Request rejected", "endpoint", r.URL.Path, "status", status, "request_id", requestID(r))
	}
	writeErrorResponse(w, title, "", status)
}

// statusForError returns the HTTP status for an error returned by the service
// or the extractor
func statusForError(err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case errors.ErrorTypeValidation:
		if appErr.Code == errors.ErrCodeFileTooLarge {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusBadRequest
	case errors.ErrorTypeUpstream, errors.ErrorTypeAI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeErrorResponse(w, "Method not allowed", "", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
