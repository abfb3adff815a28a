package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"resumecoach/internal/config"
	"resumecoach/internal/errors"
	"resumecoach/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	analyzeReq types.AnalysisRequest
	improveReq types.AnalysisRequest
	contentReq types.ContentRequest
	err        error
}

func (f *fakeService) Analyze(_ context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
	f.analyzeReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &types.AnalysisResult{ATSScore: 81, OverallFeedback: "solid"}, nil
}

func (f *fakeService) Improve(_ context.Context, req types.AnalysisRequest) (*types.ImprovementResult, error) {
	f.improveReq = req
	return &types.ImprovementResult{Suggestions: "use action verbs"}, f.err
}

func (f *fakeService) GenerateContent(_ context.Context, req types.ContentRequest) (*types.ContentResult, error) {
	f.contentReq = req
	return &types.ContentResult{Content: "Seasoned engineer"}, f.err
}

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{
		DefaultFormat:    "json",
		SupportedFormats: []string{"json", "text", "markdown"},
		MaxFileSize:      1 << 20,
	}}
}

func run(t *testing.T, svc *fakeService, args ...string) (string, error) {
	t.Helper()
	original := serviceFactory
	serviceFactory = func(*config.Config, *errors.Logger) resumeService { return svc }
	t.Cleanup(func() { serviceFactory = original })

	ctx := context.WithValue(context.Background(), configKey, testConfig())
	ctx = context.WithValue(ctx, loggerKey, errors.NopLogger())

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	resume := writeFile(t, "resume.txt", "Jane Doe, Go developer")
	job := writeFile(t, "job.md", "Backend engineer")
	svc := &fakeService{}

	out, err := run(t, svc, "analyze", resume, "--job", job, "--provider", "gemini", "--report-truncation")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe, Go developer", svc.analyzeReq.ResumeText)
	assert.Equal(t, "Backend engineer", svc.analyzeReq.JobDescription)
	assert.Equal(t, types.ProviderGemini, svc.analyzeReq.Provider)
	assert.Equal(t, types.IntentFullAnalysis, svc.analyzeReq.Intent)
	assert.True(t, svc.analyzeReq.ReportTruncation)
	assert.Contains(t, out, `"atsScore": 81`)
}

func TestAnalyzeCommandTextFormat(t *testing.T) {
	resume := writeFile(t, "resume.txt", "Jane Doe")

	out, err := run(t, &fakeService{}, "analyze", resume, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "ATS Score: 81/100")
}

func TestAnalyzeCommandErrors(t *testing.T) {
	resume := writeFile(t, "resume.txt", "Jane Doe")

	_, err := run(t, &fakeService{}, "analyze", resume, "--format", "yaml")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidFormat, appErr.Code)

	_, err = run(t, &fakeService{}, "analyze", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))

	_, err = run(t, &fakeService{err: errors.NewMissingInputError("Resume text is required")}, "analyze", resume)
	assert.True(t, errors.IsMissingInput(err))

	_, err = run(t, &fakeService{}, "analyze")
	assert.Error(t, err)
}

func TestImproveCommand(t *testing.T) {
	resume := writeFile(t, "resume.txt", "Jane Doe")

	tests := []struct {
		flag     string
		expected types.Intent
	}{
		{"keywords", types.IntentKeywordImprovement},
		{"grammar", types.IntentGrammarImprovement},
		{"structure", types.IntentStructureImprovement},
		{"generic", types.IntentGenericImprovement},
		{"something-else", types.IntentGenericImprovement},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			svc := &fakeService{}
			out, err := run(t, svc, "improve", resume, "--type", tt.flag, "--format", "markdown")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, svc.improveReq.Intent)
			assert.Contains(t, out, "use action verbs")
		})
	}
}

func TestGenerateCommand(t *testing.T) {
	notes := writeFile(t, "notes.txt", "10 years of Go")
	svc := &fakeService{}

	out, err := run(t, svc, "generate", "--section", "summary", notes)
	require.NoError(t, err)
	assert.Equal(t, "summary", svc.contentReq.Section)
	assert.Equal(t, "10 years of Go", svc.contentReq.UserInput)
	assert.Contains(t, out, "Seasoned engineer")

	_, err = run(t, svc, "generate", notes)
	assert.ErrorContains(t, err, `"section" not set`)
}

func TestExtractCommand(t *testing.T) {
	resume := writeFile(t, "resume.txt", "Plain resume text")

	out, err := run(t, &fakeService{}, "extract", resume, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Plain resume text")

	_, err = run(t, &fakeService{}, "extract", writeFile(t, "image.png", "\x89PNG\r\n\x1a\n"))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnsupportedFile, appErr.Code)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, &fakeService{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "resumecoach version "+Version)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("plain")))
	assert.Equal(t, 1, ExitCode(errors.NewMissingInputError("missing")))
	assert.Equal(t, 1, ExitCode(errors.NewConfigError(errors.ErrCodeMissingAPIKey, "no key", nil)))
	assert.Equal(t, 1, ExitCode(errors.NewIOError(errors.ErrCodeFileNotFound, "missing", nil)))
	assert.Equal(t, 0, ExitCode(errors.NewUpstreamError("provider down", nil)))
	assert.Equal(t, 0, ExitCode(errors.NewParseError("bad json", nil)))
}

func TestServeFlagsOverrideConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = "8080"

	cmd := newServeCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--port", "9090", "--tls-mode", "server"}))

	var flags serveFlags
	flags.port, _ = cmd.Flags().GetString("port")
	flags.tlsMode, _ = cmd.Flags().GetString("tls-mode")
	flags.apply(cmd, cfg)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "server", cfg.Server.TLS.Mode)
}
