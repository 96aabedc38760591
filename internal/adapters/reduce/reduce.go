// Package reduce projects trained embeddings into a low-dimensional space
// for plotting.
package reduce

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/core/ports"
)

const (
	MethodPCA  = "pca"
	MethodTSNE = "tsne"
	MethodSVD  = "svd"
)

var ErrUnknownMethod = errors.New("reduce: unknown method")

// New resolves a reduction method by name. It has the shape of
// services.ReducerFactory.
func New(method string) (ports.Reducer, error) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "", MethodPCA:
		return NewPCA(), nil
	case MethodTSNE:
		return NewTSNE(DefaultTSNEOptions()), nil
	case MethodSVD:
		return NewSVD(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// Methods lists the names New accepts.
func Methods() []string {
	return []string{MethodPCA, MethodTSNE, MethodSVD}
}

// check validates an embedding before reduction.
func check(emb domain.Embedding, dims int) error {
	if dims < 2 {
		return fmt.Errorf("reduce: need at least 2 output dimensions, got %d", dims)
	}
	if len(emb.Tokens) < 2 {
		return fmt.Errorf("reduce: %w: have %d", domain.ErrNotEnoughTokens, len(emb.Tokens))
	}
	if len(emb.Vectors) != len(emb.Tokens) {
		return fmt.Errorf("reduce: %d tokens but %d vectors", len(emb.Tokens), len(emb.Vectors))
	}
	d := emb.Dim()
	for i, v := range emb.Vectors {
		if len(v) != d {
			return fmt.Errorf("reduce: vector %d has %d values, want %d", i, len(v), d)
		}
	}
	return nil
}

// dense stacks the vectors as the rows of an n×d matrix.
func dense(emb domain.Embedding) *mat.Dense {
	n, d := len(emb.Vectors), emb.Dim()
	data := make([]float64, 0, n*d)
	for _, v := range emb.Vectors {
		data = append(data, v...)
	}
	return mat.NewDense(n, d, data)
}

// rows copies the first dims columns of m into one slice per row.
func rows(m mat.Matrix, dims int) [][]float64 {
	n, _ := m.Dims()
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, dims)
		for j := 0; j < dims; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}
