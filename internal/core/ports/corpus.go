package ports

import (
	"context"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
)

// CorpusReader reads one composer file of the given kind. A missing file
// is reported as domain.ErrResourceNotFound; malformed lines are skipped
// and listed in the result.
type CorpusReader interface {
	Read(ctx context.Context, kind domain.CorpusKind, composer domain.Composer) (domain.ReadResult, error)
}
