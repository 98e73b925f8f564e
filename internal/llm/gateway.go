// Package llm is the single gateway every component uses for model calls.
// It owns model routing, response caching, retries, streaming, and usage
// metering; callers never talk to the provider directly.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meridianlabs/nexus/internal/config"
)

// provider is the surface the gateway needs from the HTTP client. Split out
// so tests can substitute a scripted provider.
type provider interface {
	ChatCompletion(ctx context.Context, req chatRequest) (string, int, int, error)
	ChatStream(ctx context.Context, req chatRequest) (<-chan Fragment, error)
	Embeddings(ctx context.Context, model string, texts []string) ([][]float32, int, error)
}

// Opts tunes a single completion call. The zero value uses config defaults.
type Opts struct {
	Temperature float64
	MaxTokens   int
	JSONMode    bool
	NoCache     bool
}

// Gateway is the completion gateway.
type Gateway struct {
	cfg      config.LLMConfig
	embModel string
	batch    int
	provider provider
	cache    *responseCache
	usage    *Tracker
	logger   *slog.Logger
	ready    bool

	sleep func(ctx context.Context, d time.Duration) error
}

// NewGateway wires a gateway against the configured provider.
func NewGateway(cfg *config.Config, usage *Tracker, logger *slog.Logger) *Gateway {
	timeout := time.Duration(cfg.LLM.TimeoutSec) * time.Second
	g := &Gateway{
		cfg:      cfg.LLM,
		embModel: cfg.Embedding.Model,
		batch:    cfg.Embedding.BatchSize,
		provider: NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, timeout),
		cache:    newResponseCache(time.Duration(cfg.LLM.CacheTTL) * time.Second),
		usage:    usage,
		logger:   logger,
		ready:    cfg.LLM.APIKey != "",
		sleep:    sleepCtx,
	}
	if g.batch <= 0 {
		g.batch = 100
	}
	return g
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gateway) request(taskType, system, user string, opts Opts) chatRequest {
	req := chatRequest{
		Model: routeModel(taskType, g.cfg.FastModel, g.cfg.HeavyModel),
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: g.cfg.Temp,
		MaxTokens:   g.cfg.MaxTokens,
	}
	if opts.Temperature > 0 {
		req.Temperature = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.JSONMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return req
}

// Complete makes a completion call with routing, caching, and retries.
func (g *Gateway) Complete(ctx context.Context, taskType, system, user string, opts Opts) (string, error) {
	req := g.request(taskType, system, user, opts)

	if !opts.NoCache {
		if cached, ok := g.cache.get(req.Model, system, user); ok {
			g.logger.Debug("completion cache hit", "task", taskType, "model", req.Model)
			return cached, nil
		}
	}
	if !g.ready {
		return "", ErrNotConfigured
	}

	timeout := time.Duration(g.cfg.TimeoutSec) * time.Second
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := g.sleep(ctx, time.Duration(attempt-1)*time.Second); err != nil {
				return "", err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		content, in, out, err := g.provider.ChatCompletion(callCtx, req)
		cancel()

		if err == nil {
			g.usage.Record(ctx, req.Model, in, out, taskType)
			if !opts.NoCache {
				g.cache.put(req.Model, system, user, content)
			}
			g.logger.Info("completion", "task", taskType, "model", req.Model,
				"input_tokens", in, "output_tokens", out)
			return content, nil
		}

		lastErr = err
		g.logger.Warn("completion attempt failed",
			"task", taskType, "attempt", attempt, "max", g.cfg.MaxRetries, "error", err)
		if !transient(err) {
			return "", fmt.Errorf("completion failed: %w", err)
		}
	}
	return "", fmt.Errorf("completion failed after %d attempts: %w", g.cfg.MaxRetries, lastErr)
}

// CompleteStructured completes in JSON mode and decodes into v. Markdown
// fences around the payload are tolerated. Decode failure returns
// ErrMalformedResponse and is never retried.
func (g *Gateway) CompleteStructured(ctx context.Context, taskType, system, user string, v any, opts Opts) error {
	opts.JSONMode = true
	raw, err := g.Complete(ctx, taskType, system, user, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// CompleteStream starts a streaming completion. Streams bypass the cache
// and the retry loop; a mid-stream failure is terminal.
func (g *Gateway) CompleteStream(ctx context.Context, taskType, system, user string, opts Opts) (*Stream, error) {
	if !g.ready {
		return nil, ErrNotConfigured
	}

	req := g.request(taskType, system, user, opts)
	streamCtx, cancel := context.WithCancel(ctx)
	ch, err := g.provider.ChatStream(streamCtx, req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stream failed: %w", err)
	}
	g.logger.Info("completion stream", "task", taskType, "model", req.Model)
	return NewStream(ch, cancel), nil
}

// Embed generates embeddings for texts, batching provider calls.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if !g.ready {
		return nil, ErrNotConfigured
	}
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += g.batch {
		end := i + g.batch
		if end > len(texts) {
			end = len(texts)
		}

		vectors, tokens, err := g.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d failed: %w", i, end, err)
		}
		g.usage.Record(ctx, g.embModel, tokens, 0, "embedding")
		all = append(all, vectors...)
	}
	return all, nil
}

func (g *Gateway) embedBatch(ctx context.Context, texts []string) ([][]float32, int, error) {
	timeout := time.Duration(g.cfg.TimeoutSec) * time.Second
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := g.sleep(ctx, time.Duration(attempt-1)*time.Second); err != nil {
				return nil, 0, err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		vectors, tokens, err := g.provider.Embeddings(callCtx, g.embModel, texts)
		cancel()
		if err == nil {
			return vectors, tokens, nil
		}

		lastErr = err
		if !transient(err) {
			return nil, 0, err
		}
	}
	return nil, 0, fmt.Errorf("max retries (%d) exceeded: %w", g.cfg.MaxRetries, lastErr)
}

// Usage exposes the gateway's usage tracker.
func (g *Gateway) Usage() *Tracker {
	return g.usage
}

// stripFences removes markdown code fences around a JSON payload. Applying
// it to already-clean text is a no-op.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
