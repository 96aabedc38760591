package reduce

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
)

// line returns tokens lying close to one axis in a three-dimensional space.
func line() domain.Embedding {
	return domain.Embedding{
		Tokens: []domain.Token{"MAJOR;I", "MAJOR;IV", "MAJOR;V", "MINOR;I", "MINOR;V", "MINOR;bVI:MAJ"},
		Vectors: [][]float64{
			{1, 1, 0.1},
			{2, 2, -0.1},
			{3, 3, 0.1},
			{4, 4, -0.1},
			{5, 5, 0.1},
			{6, 6, -0.1},
		},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		method  string
		wantErr error
	}{
		{method: "pca"},
		{method: " PCA "},
		{method: ""},
		{method: "tsne"},
		{method: "svd"},
		{method: "umap", wantErr: ErrUnknownMethod},
	}
	for _, tc := range tests {
		r, err := New(tc.method)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("New(%q): expected %v, got %v", tc.method, tc.wantErr, err)
			}
			continue
		}
		if err != nil || r == nil {
			t.Fatalf("New(%q) = %v, %v", tc.method, r, err)
		}
	}
}

func TestReducers_RejectSmallInputs(t *testing.T) {
	single := domain.Embedding{Tokens: []domain.Token{"I"}, Vectors: [][]float64{{1, 2, 3}}}
	for _, name := range Methods() {
		r, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		_, err = r.Reduce(context.Background(), single, 2)
		if !errors.Is(err, domain.ErrNotEnoughTokens) {
			t.Fatalf("%s: expected ErrNotEnoughTokens, got %v", name, err)
		}
		if _, err := r.Reduce(context.Background(), line(), 1); err == nil {
			t.Fatalf("%s: expected error for one output dimension", name)
		}
	}
}

func TestPCA_Reduce(t *testing.T) {
	emb := line()
	p, err := NewPCA().Reduce(context.Background(), emb, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Method != MethodPCA || len(p.Points) != len(emb.Tokens) {
		t.Fatalf("unexpected projection: %+v", p)
	}

	var sumX, sumY float64
	for i, pt := range p.Points {
		if pt.Token != emb.Tokens[i] {
			t.Fatalf("point %d: token %q, want %q", i, pt.Token, emb.Tokens[i])
		}
		sumX += pt.X
		sumY += pt.Y
	}
	if math.Abs(sumX) > 1e-9 || math.Abs(sumY) > 1e-9 {
		t.Fatalf("projection is not centred: sum x=%g y=%g", sumX, sumY)
	}

	// The first component follows the line, so x is monotonic.
	increasing := p.Points[1].X > p.Points[0].X
	for i := 1; i < len(p.Points); i++ {
		if (p.Points[i].X > p.Points[i-1].X) != increasing {
			t.Fatalf("first component is not monotonic: %+v", p.Points)
		}
	}
	if p.Points[3].Mode != domain.ModeMinor {
		t.Fatalf("mode not derived from token: %+v", p.Points[3])
	}
}

func TestPCA_TooFewComponents(t *testing.T) {
	flat := domain.Embedding{Tokens: []domain.Token{"I", "V"}, Vectors: [][]float64{{1}, {2}}}
	if _, err := NewPCA().Reduce(context.Background(), flat, 2); err == nil {
		t.Fatalf("expected error for one-dimensional vectors")
	}
}

func TestTSNE_Reduce(t *testing.T) {
	emb := line()
	r := NewTSNE(TSNEOptions{Perplexity: 30, LearningRate: 100, MaxIter: 50})
	p, err := r.Reduce(context.Background(), emb, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Method != MethodTSNE || len(p.Points) != len(emb.Tokens) {
		t.Fatalf("unexpected projection: %+v", p)
	}
	for _, pt := range p.Points {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) {
			t.Fatalf("NaN coordinate for %q", pt.Token)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Reduce(ctx, emb, 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSVD_Reduce(t *testing.T) {
	emb := line()
	p, err := NewSVD().Reduce(context.Background(), emb, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Method != MethodSVD || len(p.Points) != len(emb.Tokens) {
		t.Fatalf("unexpected projection: %+v", p)
	}
	// Uncentred data along a ray from the origin keeps its ordering by norm.
	if math.Abs(p.Points[5].X) <= math.Abs(p.Points[0].X) {
		t.Fatalf("expected the farthest token to dominate the first axis: %+v", p.Points)
	}

	flat := domain.Embedding{Tokens: []domain.Token{"I", "V"}, Vectors: [][]float64{{1}, {2}}}
	if _, err := NewSVD().Reduce(context.Background(), flat, 2); err == nil {
		t.Fatalf("expected error for one-dimensional vectors")
	}
}
