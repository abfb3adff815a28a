package cli

import (
	"context"

	"resumecoach/internal/types"
)

// resumeService is the part of the orchestrator the commands call
type resumeService interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error)
	Improve(ctx context.Context, req types.AnalysisRequest) (*types.ImprovementResult, error)
	GenerateContent(ctx context.Context, req types.ContentRequest) (*types.ContentResult, error)
}
