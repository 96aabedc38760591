package reduce

import (
	"context"

	"github.com/danaugrs/go-tsne/tsne"
	"gonum.org/v1/gonum/mat"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
)

type TSNEOptions struct {
	Perplexity   float64
	LearningRate float64
	MaxIter      int
	Verbose      bool
}

func DefaultTSNEOptions() TSNEOptions {
	return TSNEOptions{Perplexity: 30, LearningRate: 100, MaxIter: 300}
}

// TSNE embeds tokens with t-distributed stochastic neighbour embedding.
// Perplexity is capped for small vocabularies.
type TSNE struct {
	opts TSNEOptions
}

func NewTSNE(opts TSNEOptions) *TSNE {
	return &TSNE{opts: opts}
}

func (t *TSNE) Reduce(ctx context.Context, emb domain.Embedding, dims int) (domain.Projection, error) {
	if err := check(emb, dims); err != nil {
		return domain.Projection{}, err
	}

	perplexity := t.opts.Perplexity
	if limit := float64(len(emb.Tokens)-1) / 3; perplexity > limit {
		perplexity = limit
	}
	if perplexity < 1 {
		perplexity = 1
	}

	model := tsne.NewTSNE(dims, perplexity, t.opts.LearningRate, t.opts.MaxIter, t.opts.Verbose)
	// Returning true from the step function stops the optimisation early.
	y := model.EmbedData(dense(emb), func(iter int, divergence float64, embedding mat.Matrix) bool {
		return ctx.Err() != nil
	})
	if err := ctx.Err(); err != nil {
		return domain.Projection{}, err
	}
	return domain.NewProjection(MethodTSNE, emb.Tokens, rows(y, dims)), nil
}
