package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"
)

// Certificates expiring within these windows are reported as critical or warning
const (
	certCriticalThreshold = 24 * time.Hour
	certWarningThreshold  = 7 * 24 * time.Hour
)

// healthHandler reports provider credential presence, breaker and certificate state
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, "Method not allowed", "", http.StatusMethodNotAllowed)
		return
	}

	providers := make(map[string]any)
	for provider, configured := range s.service.Providers() {
		providers[string(provider)] = map[string]any{"api_key_configured": configured}
	}

	breakers := s.service.Stats()
	response := map[string]any{
		"status":           "healthy",
		"service":          "resumecoach",
		"version":          s.Version,
		"providers":        providers,
		"circuit_breakers": breakers,
	}

	overallHealthy := true
	if healthy, ok := breakers["overall_healthy"].(bool); ok && !healthy {
		overallHealthy = false
	}

	if certStatus := s.checkCertificateHealth(); certStatus != nil {
		response["certificates"] = certStatus
		if healthy, ok := certStatus["healthy"].(bool); ok && !healthy {
			overallHealthy = false
		}
	}

	status := http.StatusOK
	if !overallHealthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// checkCertificateHealth checks the health of TLS certificates
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertificateManager == nil {
		return nil
	}

	certStatus := make(map[string]any)
	timeToExpiry, err := s.CertificateManager.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = fmt.Sprintf("Failed to check certificate expiry: %v", err)
		return certStatus
	}

	certStatus["time_to_expiry_hours"] = int(timeToExpiry.Hours())
	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
	case timeToExpiry <= certCriticalThreshold:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
	case timeToExpiry <= certWarningThreshold:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
	}

	certStatus["auto_reload"] = s.CertificateManager.WatcherStatus()
	certStatus["metrics"] = s.CertificateManager.GetMetrics()
	return certStatus
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, "Method not allowed", "", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumecoach",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"auth_enabled":           len(s.APIKeys) > 0,
			"tls_mode":               s.tlsMode(),
		},
		"circuit_breakers": s.service.Stats(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if len(s.vaultWatchers) > 0 {
		watchers := make([]map[string]any, 0, len(s.vaultWatchers))
		for _, vw := range s.vaultWatchers {
			watchers = append(watchers, vw.Status())
		}
		response["vault_watchers"] = watchers
	}

	writeJSON(w, http.StatusOK, response)
}

// requestError describes why a request body was rejected
type requestError struct {
	status int
	title  string
	detail string
	cause  error
}

func (e *requestError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.title, e.cause)
	}
	return e.title
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) *requestError {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return &requestError{
			status: http.StatusUnsupportedMediaType,
			title:  "Unsupported content type",
			detail: "Content-Type must be application/json",
		}
	}

	body, err := io.ReadAll(r.Body)
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &requestError{
				status: http.StatusRequestEntityTooLarge,
				title:  "Request body too large",
				detail: fmt.Sprintf("limit is %d bytes", maxBytesErr.Limit),
				cause:  err,
			}
		}
		return &requestError{status: http.StatusBadRequest, title: "Invalid request body", detail: "failed to read request body", cause: err}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &requestError{status: http.StatusBadRequest, title: "Invalid request body", detail: err.Error(), cause: err}
	}
	return nil
}

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: error, Message: message})
}
