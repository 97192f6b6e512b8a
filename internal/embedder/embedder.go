// Package embedder batches text-to-vector requests against a configured
// HTTP endpoint, bounding concurrency with a weighted semaphore and
// routing every request through a content-hash cache.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"codekg/internal/cache"
	"codekg/internal/model"
)

// DefaultMaxConcurrent is the default bound on in-flight embed batches.
const DefaultMaxConcurrent = 5

const maxRetries = 3

// Embedder embeds text batches against a generic HTTP endpoint,
// preserving input order, with cache-aside and a bounded concurrency
// gate. It holds no per-project state.
type Embedder struct {
	endpoint string
	model    string
	dims     int
	client   *http.Client
	cache    *cache.EmbeddingCache
	gate     *semaphore.Weighted
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithMaxConcurrent overrides DefaultMaxConcurrent.
func WithMaxConcurrent(n int) Option {
	return func(e *Embedder) { e.gate = semaphore.NewWeighted(int64(n)) }
}

// WithTimeout overrides the per-request HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Embedder) { e.client.Timeout = d }
}

// New constructs an Embedder targeting endpoint with the given model
// name and vector dimension, backed by c for cache-aside lookups.
func New(endpoint, modelName string, dims int, c *cache.EmbeddingCache, opts ...Option) *Embedder {
	e := &Embedder{
		endpoint: endpoint,
		model:    modelName,
		dims:     dims,
		client:   &http.Client{Timeout: 60 * time.Second},
		cache:    c,
		gate:     semaphore.NewWeighted(DefaultMaxConcurrent),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the configured model name.
func (e *Embedder) Model() string { return e.model }

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns vectors for texts in the same order as the input.
// Cache hits are returned without a network round trip; cache misses
// are grouped into one goroutine per text, each acquiring the
// concurrency gate before issuing its HTTP request. A failure on any
// text in the batch is wrapped as *model.EmbeddingError and the whole
// call fails — the caller re-queues the file's chunks for the next
// index pass, per the batch-level failure contract.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	hashes := make([]string, len(texts))
	misses := make([]int, 0, len(texts))

	for i, t := range texts {
		h := cache.Hash(e.model + ":" + t)
		hashes[i] = h
		if e.cache != nil {
			cached, err := e.cache.Get(h)
			if err == nil && cached != nil {
				out[i] = cached
				continue
			}
		}
		if len(t) == 0 {
			out[i] = make([]float32, e.dims)
			continue
		}
		misses = append(misses, i)
	}

	if len(misses) == 0 {
		return out, nil
	}

	type result struct {
		idx int
		vec []float32
		err error
	}
	results := make(chan result, len(misses))

	for _, idx := range misses {
		idx := idx
		go func() {
			if err := e.gate.Acquire(ctx, 1); err != nil {
				results <- result{idx: idx, err: err}
				return
			}
			defer e.gate.Release(1)
			vec, err := e.embedOne(ctx, texts[idx])
			results <- result{idx: idx, vec: vec, err: err}
		}()
	}

	for range misses {
		r := <-results
		if r.err != nil {
			return nil, &model.EmbeddingError{Batch: r.idx, Err: r.err}
		}
		out[r.idx] = r.vec
		if e.cache != nil {
			if err := e.cache.Set(hashes[r.idx], r.vec); err != nil {
				return nil, &model.EmbeddingError{Batch: r.idx, Err: fmt.Errorf("cache write: %w", err)}
			}
		}
	}

	return out, nil
}

// embedOne posts a single text to the configured endpoint, retrying up
// to maxRetries attempts with a linearly growing delay (1s, then 2s).
func (e *Embedder) embedOne(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build embed request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("embed request: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("embed endpoint returned %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var decoded embedResponse
		decErr := json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()
		if decErr != nil {
			lastErr = fmt.Errorf("decode embed response: %w", decErr)
			continue
		}
		if len(decoded.Embedding) == 0 {
			lastErr = fmt.Errorf("embed response missing vector")
			continue
		}
		return decoded.Embedding, nil
	}

	return nil, lastErr
}
