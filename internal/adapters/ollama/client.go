// Package ollama provides an adapter for the Ollama embeddings API.
// It implements ports.EmbeddingTrainer by asking a local Ollama instance
// for one vector per vocabulary token instead of training in process.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/core/ports"
)

const (
	defaultBaseURL = "http://localhost:11434"
	DefaultModel   = "nomic-embed-text"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	retry      retryPolicy
}

// compile-time interface assertion
var _ ports.EmbeddingTrainer = (*Client)(nil)

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

func NewClient(baseURL, model string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: retryPolicyFromEnv(),
	}
}

// Embed returns the model's vector for a single prompt.
func (c *Client) Embed(ctx context.Context, prompt string) ([]float64, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.model, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}

	resp, err := c.retry.do(ctx, c.httpClient, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("ollama: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ollama: unexpected status %d", resp.StatusCode)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("ollama: %s", parsed.Error)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("ollama: empty embedding for %q", prompt)
	}
	return parsed.Embedding, nil
}

// Train embeds every token reaching params.MinCount. The vector size is
// fixed by the model, so Size, Window and the other word2vec settings are
// ignored.
func (c *Client) Train(ctx context.Context, corpus domain.Corpus, params domain.TrainParams) (domain.Embedding, error) {
	minCount := params.MinCount
	if minCount < 1 {
		minCount = 1
	}
	vocab := corpus.Vocabulary(minCount)
	if len(vocab) == 0 {
		return domain.Embedding{}, fmt.Errorf("ollama: %w: no token reaches min count %d", domain.ErrEmptyCorpus, minCount)
	}
	if params.Size > 0 && params.Size != domain.DefaultTrainParams().Size {
		log.Printf("WARN ollama: vector size %d ignored, model %s decides", params.Size, c.model)
	}

	emb := domain.Embedding{Tokens: vocab, Vectors: make([][]float64, len(vocab))}
	for i, tok := range vocab {
		vec, err := c.Embed(ctx, tok)
		if err != nil {
			return domain.Embedding{}, fmt.Errorf("ollama: embed %q: %w", tok, err)
		}
		if i > 0 && len(vec) != len(emb.Vectors[0]) {
			return domain.Embedding{}, fmt.Errorf("ollama: %q has %d dimensions, expected %d", tok, len(vec), len(emb.Vectors[0]))
		}
		emb.Vectors[i] = vec
	}
	return emb, nil
}
