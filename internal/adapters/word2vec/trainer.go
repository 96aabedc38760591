// Package word2vec trains token embeddings in process with the wego
// word2vec implementation and reads and writes the word2vec text format.
package word2vec

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ynqa/wego/pkg/model/modelutil/vector"
	w2v "github.com/ynqa/wego/pkg/model/word2vec"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/core/ports"
)

// Trainer implements ports.EmbeddingTrainer on top of wego.
type Trainer struct {
	goroutines int
}

// compile-time interface assertion
var _ ports.EmbeddingTrainer = (*Trainer)(nil)

func NewTrainer() *Trainer {
	return &Trainer{goroutines: 1}
}

// options maps TrainParams onto wego model options.
func (t *Trainer) options(params domain.TrainParams, minCount, epochs int) []w2v.ModelOption {
	model := w2v.Cbow
	if params.SkipGram {
		model = w2v.SkipGram
	}
	opts := []w2v.ModelOption{
		w2v.Dim(params.Size),
		w2v.Window(params.Window),
		w2v.MinCount(minCount),
		w2v.Iter(epochs),
		w2v.Goroutines(t.goroutines),
		w2v.Model(model),
		w2v.Optimizer(w2v.NegativeSampling),
	}
	if params.Negative > 0 {
		opts = append(opts, w2v.NegativeSampleSize(params.Negative))
	}
	return opts
}

// Train fits a model on corpus. Vectors come back in vocabulary order
// (first appearance) restricted to tokens reaching params.MinCount.
func (t *Trainer) Train(ctx context.Context, corpus domain.Corpus, params domain.TrainParams) (domain.Embedding, error) {
	if params.Size <= 0 || params.Window <= 0 {
		return domain.Embedding{}, fmt.Errorf("word2vec: size and window must be positive (size=%d, window=%d)", params.Size, params.Window)
	}
	minCount := params.MinCount
	if minCount < 1 {
		minCount = 1
	}
	epochs := params.Epochs
	if epochs < 1 {
		epochs = 1
	}

	vocab := corpus.Vocabulary(minCount)
	if len(vocab) == 0 {
		return domain.Embedding{}, fmt.Errorf("word2vec: %w: no token reaches min count %d", domain.ErrEmptyCorpus, minCount)
	}
	if err := ctx.Err(); err != nil {
		return domain.Embedding{}, err
	}

	model, err := w2v.New(t.options(params, minCount, epochs)...)
	if err != nil {
		return domain.Embedding{}, fmt.Errorf("word2vec: create model: %w", err)
	}
	if err := model.Train(bytes.NewReader(corpusText(corpus))); err != nil {
		return domain.Embedding{}, fmt.Errorf("word2vec: train: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.Embedding{}, err
	}

	var out bytes.Buffer
	if err := model.Save(&out, vector.Single); err != nil {
		return domain.Embedding{}, fmt.Errorf("word2vec: save vectors: %w", err)
	}
	trained, err := readSaved(&out)
	if err != nil {
		return domain.Embedding{}, err
	}

	emb := domain.Embedding{
		Tokens:  make([]domain.Token, 0, len(vocab)),
		Vectors: make([][]float64, 0, len(vocab)),
	}
	for _, tok := range vocab {
		vec, ok := trained[tok]
		if !ok {
			continue
		}
		if len(vec) != params.Size {
			return domain.Embedding{}, fmt.Errorf("word2vec: %q has %d dimensions, expected %d", tok, len(vec), params.Size)
		}
		emb.Tokens = append(emb.Tokens, tok)
		emb.Vectors = append(emb.Vectors, vec)
	}
	if len(emb.Tokens) == 0 {
		return domain.Embedding{}, fmt.Errorf("word2vec: %w: model kept no vocabulary token", domain.ErrEmptyCorpus)
	}
	return emb, nil
}

// corpusText lays the corpus out one sentence per line, tokens separated
// by spaces.
func corpusText(corpus domain.Corpus) []byte {
	var b bytes.Buffer
	for _, s := range corpus {
		b.WriteString(strings.Join(s, " "))
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// readSaved parses "<token> v1 v2 ..." lines. A leading "<count> <dim>"
// header is skipped when present.
func readSaved(r io.Reader) (map[domain.Token][]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	out := map[domain.Token][]float64{}
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && isHeader(fields) {
			continue
		}
		vec := make([]float64, len(fields)-1)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("word2vec: saved vectors line %d: %w", line, err)
			}
			vec[i] = v
		}
		out[fields[0]] = vec
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("word2vec: read saved vectors: %w", err)
	}
	return out, nil
}

func isHeader(fields []string) bool {
	if len(fields) != 2 {
		return false
	}
	for _, f := range fields {
		if _, err := strconv.Atoi(f); err != nil {
			return false
		}
	}
	return true
}
