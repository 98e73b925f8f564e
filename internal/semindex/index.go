// Package semindex maintains the semantic index over graph nodes: embedding
// build, cosine search, and a keyword fallback that keeps search answering
// when the vector path is unavailable.
package semindex

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/orgcontext"
)

// Embedder generates vectors for texts. The completion gateway satisfies it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Hit is one search result. Both search paths return this shape; callers
// cannot tell which path answered.
type Hit struct {
	NodeID string  `json:"node_id"`
	Score  float64 `json:"score"`
}

// Status describes the index for the status surface.
type Status struct {
	Built   bool      `json:"built"`
	Nodes   int       `json:"nodes"`
	Vectors int       `json:"vectors"`
	Model   string    `json:"model"`
	BuiltAt time.Time `json:"built_at,omitempty"`
}

// Index is the semantic index over graph nodes.
type Index struct {
	store    graph.Store
	embedder Embedder
	vecs     *VecStore
	model    string
	logger   *slog.Logger

	mu      sync.RWMutex
	texts   map[string]string
	built   bool
	builtAt time.Time
}

// New creates the index and subscribes to graph mutations; any mutation
// marks the index stale so the next search rebuilds. db may be nil, in
// which case vectors live only in memory.
func New(store graph.Store, embedder Embedder, db *sql.DB, model string, logger *slog.Logger) (*Index, error) {
	vecs, err := NewVecStore(db)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		store:    store,
		embedder: embedder,
		vecs:     vecs,
		model:    model,
		logger:   logger,
		texts:    make(map[string]string),
	}

	// surviving vectors from a previous run make the index usable at boot
	if vecs.Count() > 0 {
		if texts, err := vecs.LoadTexts(context.Background()); err == nil && len(texts) > 0 {
			idx.texts = texts
			idx.built = true
		}
	}

	store.Subscribe(func() {
		idx.mu.Lock()
		idx.built = false
		idx.mu.Unlock()
		logger.Debug("semantic index invalidated by graph mutation")
	})
	return idx, nil
}

// Build embeds every graph node and persists the vectors. Idempotent: a
// rebuild replaces prior rows. Node texts are retained for the keyword
// fallback even when embedding fails. Build does not serialize against
// Search; reads during a rebuild may see mixed state.
func (idx *Index) Build(ctx context.Context) error {
	snap, err := idx.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	nodeTexts := orgcontext.NodeTexts(snap)
	if len(nodeTexts) == 0 {
		idx.logger.Warn("no nodes to embed")
		return nil
	}

	texts := make(map[string]string, len(nodeTexts))
	plain := make([]string, len(nodeTexts))
	for i, nt := range nodeTexts {
		texts[nt.ID] = nt.Text
		plain[i] = nt.Text
	}

	idx.mu.Lock()
	idx.texts = texts
	idx.mu.Unlock()

	vectors, err := idx.embedder.Embed(ctx, plain)
	if err != nil {
		idx.mu.Lock()
		idx.built = false
		idx.mu.Unlock()
		idx.logger.Error("index build failed, keyword fallback only", "error", err)
		return fmt.Errorf("embed nodes: %w", err)
	}

	for i, nt := range nodeTexts {
		item := VectorItem{NodeID: nt.ID, Text: nt.Text, Vector: vectors[i], Model: idx.model}
		if err := idx.vecs.Upsert(ctx, item); err != nil {
			idx.logger.Warn("vector upsert failed", "node", nt.ID, "error", err)
		}
	}

	idx.mu.Lock()
	idx.built = true
	idx.builtAt = time.Now()
	idx.mu.Unlock()

	idx.logger.Info("semantic index built", "nodes", len(nodeTexts), "model", idx.model)
	return nil
}

// EnsureBuilt builds the index if it is not ready or has gone stale. A
// build failure is not fatal as long as texts exist for the keyword path.
func (idx *Index) EnsureBuilt(ctx context.Context) error {
	idx.mu.RLock()
	built := idx.built
	idx.mu.RUnlock()
	if built {
		return nil
	}

	if err := idx.Build(ctx); err != nil {
		if idx.Ready() {
			return nil
		}
		return err
	}
	return nil
}

// Search returns the topK most relevant nodes for the query. The vector
// path is tried first; any failure degrades to keyword matching with the
// same result shape.
func (idx *Index) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	idx.mu.RLock()
	built := idx.built
	idx.mu.RUnlock()

	if built {
		queryVecs, err := idx.embedder.Embed(ctx, []string{query})
		if err == nil && len(queryVecs) == 1 {
			results := idx.vecs.Search(queryVecs[0], topK)
			hits := make([]Hit, len(results))
			for i, r := range results {
				hits[i] = Hit{NodeID: r.ID, Score: r.Score}
			}
			return hits, nil
		}
		idx.logger.Warn("vector search failed, falling back to keywords", "error", err)
	}

	idx.mu.RLock()
	texts := idx.texts
	idx.mu.RUnlock()

	results := keywordSearch(texts, query, topK)
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{NodeID: r.ID, Score: r.Score}
	}
	return hits, nil
}

// Ready reports whether search can answer at all: vectors built or texts
// loaded for the keyword path.
func (idx *Index) Ready() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.built || len(idx.texts) > 0
}

// Status reports the index state.
func (idx *Index) Status() Status {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return Status{
		Built:   idx.built,
		Nodes:   len(idx.texts),
		Vectors: idx.vecs.Count(),
		Model:   idx.model,
		BuiltAt: idx.builtAt,
	}
}
