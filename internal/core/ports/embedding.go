package ports

import (
	"context"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
)

type EmbeddingTrainer interface {
	Train(ctx context.Context, corpus domain.Corpus, params domain.TrainParams) (domain.Embedding, error)
}

// Reducer projects an embedding to dims dimensions, keeping row order.
type Reducer interface {
	Reduce(ctx context.Context, emb domain.Embedding, dims int) (domain.Projection, error)
}

// PlotStyle configures how a projection is rendered.
type PlotStyle struct {
	Title         string
	Method        string
	Path          string
	ShowLabels    bool
	RemoveKeyMode bool
	Markers       map[domain.KeyMode]string
	Colours       map[string]string
}

type Plotter interface {
	Plot(ctx context.Context, p domain.Projection, style PlotStyle) error
}
