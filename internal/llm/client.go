// Package llm is a small client for OpenAI-compatible chat completion and
// embedding endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// Defaults.
const (
	DefaultBaseURL        = "https://api.openai.com"
	DefaultChatModel      = "gpt-4-turbo"
	DefaultEmbeddingModel = "text-embedding-ada-002"
	DefaultTimeout        = 60 * time.Second
	DefaultEmbedCacheSize = 512
)

// ErrMissingCredential is returned by New when no API key is configured.
var ErrMissingCredential = errors.New("llm: API key not set")

// UpstreamError reports a failed call to the remote service. Status is zero
// when no HTTP response was received.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("llm %s: status %d: %s", e.Op, e.Status, strings.TrimSpace(e.Body))
	case e.Err != nil:
		return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
	}
	return "llm " + e.Op + ": upstream failure"
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Config configures a Client. Only APIKey is required.
type Config struct {
	APIKey         string
	BaseURL        string // without the /v1 suffix
	EmbeddingModel string
	EmbedCacheSize int
	HTTPClient     *http.Client
}

// Client calls the chat completions and embeddings APIs over plain HTTP.
// Requests are never retried.
type Client struct {
	apiKey         string
	baseURL        string
	embeddingModel string
	http           *http.Client
	embeds         *lru.Cache[string, []float32]
}

// New validates cfg and returns a Client. It fails with ErrMissingCredential
// before any network use when the key is empty.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredential
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.EmbedCacheSize <= 0 {
		cfg.EmbedCacheSize = DefaultEmbedCacheSize
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	cache, err := lru.New[string, []float32](cfg.EmbedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("llm: embed cache: %w", err)
	}
	return &Client{
		apiKey:         cfg.APIKey,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		embeddingModel: cfg.EmbeddingModel,
		http:           cfg.HTTPClient,
		embeds:         cache,
	}, nil
}

/* ─── Chat completions ───────────────────────────────────────────────── */

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for /v1/chat/completions.
type ChatRequest struct {
	Model          string         `json:"model"`
	Messages       []Message      `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

// Chat sends req and returns the content of the first choice.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if req.Model == "" {
		req.Model = DefaultChatModel
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.post(ctx, "chat", "/v1/chat/completions", req, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", &UpstreamError{Op: "chat", Err: errors.New("no choices in response")}
	}
	return result.Choices[0].Message.Content, nil
}

/* ─── Embeddings ─────────────────────────────────────────────────────── */

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding of text. Results are cached by text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.embeds.Get(text); ok {
		return v, nil
	}
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request, returning vectors in input order.
// Every returned vector is added to the cache.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var result embeddingResponse
	req := embeddingRequest{Model: c.embeddingModel, Input: texts}
	if err := c.post(ctx, "embed", "/v1/embeddings", req, &result); err != nil {
		return nil, err
	}
	if len(result.Data) != len(texts) {
		return nil, &UpstreamError{Op: "embed", Err: fmt.Errorf("got %d embeddings for %d inputs", len(result.Data), len(texts))}
	}

	out := make([][]float32, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, &UpstreamError{Op: "embed", Err: fmt.Errorf("embedding index %d out of range", d.Index)}
		}
		out[d.Index] = d.Embedding
	}
	for i, v := range out {
		if v == nil {
			return nil, &UpstreamError{Op: "embed", Err: fmt.Errorf("missing embedding for input %d", i)}
		}
		c.embeds.Add(texts[i], v)
	}
	return out, nil
}

/* ─── HTTP ───────────────────────────────────────────────────────────── */

// post sends body as JSON to path and decodes a 200 response into out.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("llm %s: marshal request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("llm %s: create request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Op: op, Status: resp.StatusCode, Err: err}
	}
	log.Debug().Str("op", op).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("[llm] request")

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Op: op, Status: resp.StatusCode, Body: string(respBytes)}
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	return nil
}
