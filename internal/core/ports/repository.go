package ports

import (
	"context"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
)

// RunRepository persists analysis runs and their projections.
type RunRepository interface {
	SaveRun(ctx context.Context, run domain.AnalysisRun) error
	GetRun(ctx context.Context, id string) (domain.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error)
	UpdateRunStatus(ctx context.Context, id string, status domain.RunStatus, errMsg string) error
	SaveProjection(ctx context.Context, runID string, p domain.Projection) error
	GetProjection(ctx context.Context, runID string) (domain.Projection, error)
}
