package reduce

import (
	"context"
	"fmt"

	"github.com/james-bowman/nlp"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
)

// SVD is a truncated singular value decomposition of the uncentred
// vectors, the LSA-style alternative to PCA.
type SVD struct{}

func NewSVD() *SVD {
	return &SVD{}
}

func (s *SVD) Reduce(ctx context.Context, emb domain.Embedding, dims int) (domain.Projection, error) {
	if err := check(emb, dims); err != nil {
		return domain.Projection{}, err
	}
	if d := emb.Dim(); d < dims {
		return domain.Projection{}, fmt.Errorf("reduce: svd needs at least %d input dimensions, got %d", dims, d)
	}
	if err := ctx.Err(); err != nil {
		return domain.Projection{}, err
	}

	// nlp works on features x samples.
	reduced, err := nlp.NewTruncatedSVD(dims).FitTransform(dense(emb).T())
	if err != nil {
		return domain.Projection{}, fmt.Errorf("reduce: svd: %w", err)
	}
	coords := make([][]float64, len(emb.Tokens))
	for i := range coords {
		coords[i] = make([]float64, dims)
		for j := 0; j < dims; j++ {
			coords[i][j] = reduced.At(j, i)
		}
	}
	return domain.NewProjection(MethodSVD, emb.Tokens, coords), nil
}
