package reduce

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
)

// PCA projects mean-centred vectors onto their leading principal axes.
type PCA struct{}

func NewPCA() *PCA {
	return &PCA{}
}

func (p *PCA) Reduce(ctx context.Context, emb domain.Embedding, dims int) (domain.Projection, error) {
	if err := check(emb, dims); err != nil {
		return domain.Projection{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Projection{}, err
	}

	x := dense(emb)
	n, d := x.Dims()
	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return domain.Projection{}, fmt.Errorf("reduce: pca decomposition failed for %dx%d matrix", n, d)
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, k := vecs.Dims()
	if k < dims {
		return domain.Projection{}, fmt.Errorf("reduce: %w: pca yields %d components, need %d", domain.ErrNotEnoughTokens, k, dims)
	}

	centred := mat.DenseCopyOf(x)
	for j := 0; j < d; j++ {
		mean := stat.Mean(mat.Col(nil, j, x), nil)
		for i := 0; i < n; i++ {
			centred.Set(i, j, x.At(i, j)-mean)
		}
	}
	var proj mat.Dense
	proj.Mul(centred, vecs.Slice(0, d, 0, dims))
	return domain.NewProjection(MethodPCA, emb.Tokens, rows(&proj, dims)), nil
}
