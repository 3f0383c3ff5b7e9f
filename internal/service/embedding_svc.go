package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// EmbeddingService converts text to fixed-dimension vectors through an
// OpenAI-compatible embeddings endpoint. Exactly one model and dimension is
// pinned at construction and shared by the ingestion and query paths;
// configuring them anywhere else risks incomparable vectors.
type EmbeddingService struct {
	apiKey        string
	baseURL       string
	model         string
	dimensions    int
	batchSize     int
	queryPrefix   string
	passagePrefix string
	httpClient    *http.Client
}

// EmbeddingConfig pins the embedding model for the process lifetime.
// QueryPrefix/PassagePrefix support embedding families that frame queries
// and passages asymmetrically (e.g. e5's "query: " / "passage: "); both
// default to empty and must be set together or not at all.
type EmbeddingConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Dimensions    int
	BatchSize     int
	QueryPrefix   string
	PassagePrefix string
}

func NewEmbeddingService(cfg EmbeddingConfig) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 1536
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	return &EmbeddingService{
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		model:         cfg.Model,
		dimensions:    cfg.Dimensions,
		batchSize:     cfg.BatchSize,
		queryPrefix:   cfg.QueryPrefix,
		passagePrefix: cfg.PassagePrefix,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Dimensions reports the pinned vector dimension.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// EmbedDocuments embeds texts in batches, preserving order and length so
// callers can zip inputs with outputs positionally.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	framed := make([]string, len(texts))
	for i, t := range texts {
		framed[i] = s.passagePrefix + t
	}

	vectors := make([][]float32, 0, len(framed))
	for start := 0; start < len(framed); start += s.batchSize {
		end := start + s.batchSize
		if end > len(framed) {
			end = len(framed)
		}
		batch, err := s.embedBatch(ctx, framed[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// EmbedQuery embeds a single question with the query framing.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embedBatch(ctx, []string{s.queryPrefix + text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *EmbeddingService) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Input: batch, Model: s.model})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingUnavailable, resp.StatusCode, string(respBody))
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrEmbeddingUnavailable, err)
	}
	if len(result.Data) != len(batch) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrEmbeddingUnavailable, len(batch), len(result.Data))
	}

	// The API may return items out of order; restore input order by index.
	sort.Slice(result.Data, func(i, j int) bool { return result.Data[i].Index < result.Data[j].Index })

	vectors := make([][]float32, len(result.Data))
	for i, d := range result.Data {
		if len(d.Embedding) != s.dimensions {
			return nil, fmt.Errorf("%w: vector dimension %d does not match pinned dimension %d",
				ErrEmbeddingUnavailable, len(d.Embedding), s.dimensions)
		}
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
