package semindex

import (
	"container/heap"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"
)

// VecStore provides brute-force vector search over graph node embeddings,
// backed by SQLite BLOBs. Vectors are held in memory for fast cosine
// similarity; at graph scale (hundreds of nodes) this is exact and
// sub-millisecond.
type VecStore struct {
	db *sql.DB

	mu      sync.RWMutex
	vectors map[string][]float32 // node_id -> normalized embedding
}

// ScoredResult pairs a node ID with a similarity score.
type ScoredResult struct {
	ID    string
	Score float64
}

// VectorItem is one node embedding row.
type VectorItem struct {
	NodeID string
	Text   string
	Vector []float32
	Model  string
}

// NewVecStore creates a vector store on the given database, creating the
// table if needed and loading existing vectors into memory. db may be nil;
// the store then works purely in memory.
func NewVecStore(db *sql.DB) (*VecStore, error) {
	vs := &VecStore{
		db:      db,
		vectors: make(map[string][]float32),
	}
	if db == nil {
		return vs, nil
	}

	if err := vs.migrate(); err != nil {
		return nil, fmt.Errorf("vecstore migrate: %w", err)
	}
	if err := vs.loadAll(); err != nil {
		return nil, fmt.Errorf("vecstore load: %w", err)
	}
	return vs, nil
}

func (vs *VecStore) migrate() error {
	_, err := vs.db.Exec(`
		CREATE TABLE IF NOT EXISTS node_vectors (
			node_id      TEXT PRIMARY KEY,
			text_content TEXT NOT NULL,
			embedding    BLOB NOT NULL,
			dimensions   INTEGER NOT NULL,
			model        TEXT NOT NULL,
			built_at     TEXT NOT NULL
		)
	`)
	return err
}

func (vs *VecStore) loadAll() error {
	rows, err := vs.db.Query("SELECT node_id, embedding, dimensions FROM node_vectors")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var blob []byte
		var dims int
		if err := rows.Scan(&id, &blob, &dims); err != nil {
			return err
		}
		vs.vectors[id] = blobToFloat32(blob, dims)
	}
	return rows.Err()
}

// LoadTexts reads the persisted node texts, for keyword fallback after a
// restart without a rebuild.
func (vs *VecStore) LoadTexts(ctx context.Context) (map[string]string, error) {
	if vs.db == nil {
		return nil, nil
	}
	rows, err := vs.db.QueryContext(ctx, "SELECT node_id, text_content FROM node_vectors")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	texts := make(map[string]string)
	for rows.Next() {
		var id, text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, err
		}
		texts[id] = text
	}
	return texts, rows.Err()
}

// Upsert stores one node embedding. Vectors are normalized on insert so dot
// product equals cosine similarity.
func (vs *VecStore) Upsert(ctx context.Context, item VectorItem) error {
	normalized := normalize(item.Vector)

	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.db != nil {
		_, err := vs.db.ExecContext(ctx, `
			INSERT INTO node_vectors (node_id, text_content, embedding, dimensions, model, built_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(node_id) DO UPDATE SET
				text_content=excluded.text_content, embedding=excluded.embedding,
				dimensions=excluded.dimensions, model=excluded.model, built_at=excluded.built_at
		`, item.NodeID, item.Text, float32ToBlob(normalized), len(normalized),
			item.Model, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return err
		}
	}

	vs.vectors[item.NodeID] = normalized
	return nil
}

// Search returns the top-K nodes by cosine similarity to the query vector,
// descending. A min-heap tracks only the top K.
func (vs *VecStore) Search(queryVec []float32, limit int) []ScoredResult {
	if limit <= 0 {
		limit = 10
	}
	normalizedQuery := normalize(queryVec)

	vs.mu.RLock()
	h := &minHeap{}
	heap.Init(h)
	for id, vec := range vs.vectors {
		if len(vec) != len(normalizedQuery) {
			continue
		}
		score := dotProduct(normalizedQuery, vec)
		if h.Len() < limit {
			heap.Push(h, ScoredResult{ID: id, Score: score})
		} else if score > (*h)[0].Score {
			(*h)[0] = ScoredResult{ID: id, Score: score}
			heap.Fix(h, 0)
		}
	}
	vs.mu.RUnlock()

	results := make([]ScoredResult, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(h).(ScoredResult)
	}
	return results
}

// Count returns the number of stored vectors.
func (vs *VecStore) Count() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.vectors)
}

type minHeap []ScoredResult

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(ScoredResult)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func float32ToBlob(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func blobToFloat32(b []byte, dims int) []float32 {
	v := make([]float32, dims)
	for i := 0; i < dims && i*4+4 <= len(b); i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
