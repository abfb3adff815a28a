package server

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"resumecoach/internal/utils"
)

var endpoints = []struct{ method, path, summary string }{
	{"GET", "/health", "Health check"},
	{"GET", "/stats", "Server statistics"},
	{"POST", "/analyze-resume", "Full ATS analysis"},
	{"POST", "/improve-resume", "Targeted improvement suggestions"},
	{"POST", "/generate-resume-content", "Generate content for a resume section"},
	{"POST", "/extract-text", "Extract text from an uploaded file"},
}

func (s *Server) displayServerInfo() {
	s.writeServerInfo(os.Stdout)
}

// writeServerInfo prints the endpoint table and the protection settings
func (s *Server) writeServerInfo(out io.Writer) {
	_, _ = fmt.Fprintln(out, "Available endpoints:")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range endpoints {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t- %s\n", e.method, e.path, e.summary)
	}
	_ = tw.Flush()

	if n := len(s.APIKeys); n > 0 {
		_, _ = fmt.Fprintf(out, "API authentication: ENABLED (%d keys configured)\n", n)
		_, _ = fmt.Fprintln(out, "Send 'X-API-Key: <key>' or 'Authorization: Bearer <key>' with POST requests")
	} else {
		_, _ = fmt.Fprintln(out, "API authentication: DISABLED (no API keys configured)")
		_, _ = fmt.Fprintln(out, "WARNING: API endpoints are publicly accessible!")
	}

	if s.MaxRequestSize > 0 {
		_, _ = fmt.Fprintf(out, "Request size limit: %s\n", utils.FormatFileSize(s.MaxRequestSize))
	} else {
		_, _ = fmt.Fprintln(out, "Request size limit: DISABLED")
	}

	if rl := s.RateLimit; rl.Enabled {
		scope := "per IP"
		switch {
		case rl.ByAPIKey && rl.ByIP:
			scope = "per API key, then per IP"
		case rl.ByAPIKey:
			scope = "per API key"
		}
		_, _ = fmt.Fprintf(out, "Rate limiting: ENABLED (%d requests/min, burst %d, %s)\n",
			rl.RequestsPerMin, rl.BurstCapacity, scope)
	} else {
		_, _ = fmt.Fprintln(out, "Rate limiting: DISABLED")
	}

	for _, vw := range s.vaultWatchers {
		status := vw.Status()
		_, _ = fmt.Fprintf(out, "Vault rotation: watching %v every %v\n", status["secret_path"], status["poll_interval"])
	}
}
