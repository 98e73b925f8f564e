package semindex

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/slogutil"
)

func testStore() *mockGraphStore {
	return &mockGraphStore{snap: &graph.Snapshot{
		Meta: graph.Meta{CompanyName: "Meridian Technologies"},
		Nodes: []graph.Node{
			{ID: "decision-1", Kind: graph.KindDecision, Label: "Freeze EMEA pricing",
				Content: "All EMEA price changes frozen through Q3"},
			{ID: "fact-1", Kind: graph.KindFact, Label: "Competitor price cut",
				Content: "Rival announced a 12% price cut in EMEA"},
			{ID: "person-1", Kind: graph.KindPerson, Label: "Sarah Chen",
				Attrs: graph.Attrs{Role: "VP Sales"}},
		},
	}}
}

// directional unit vectors make cosine ordering predictable
func axisEmbedder(queryAxis int) *mockEmbedder {
	axes := map[string]int{"Freeze": 0, "Competitor": 1, "Sarah": 2}
	return &mockEmbedder{fn: func(texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, t := range texts {
			vec := make([]float32, 3)
			matched := false
			for prefix, axis := range axes {
				if len(t) >= len(prefix) && t[:len(prefix)] == prefix {
					vec[axis] = 1
					matched = true
					break
				}
			}
			if !matched {
				vec[queryAxis] = 1
			}
			out[i] = vec
		}
		return out, nil
	}}
}

func TestIndex_BuildAndSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a built index When searched Then the closest node wins via vectors", func(t *testing.T) {
		idx, err := New(testStore(), axisEmbedder(0), nil, "text-embedding-3-large", slogutil.NewDiscard())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if err := idx.Build(ctx); err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if !idx.Ready() {
			t.Fatal("index must be ready after build")
		}

		hits, err := idx.Search(ctx, "pricing freeze", 2)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(hits) != 2 {
			t.Fatalf("expected 2 hits, got %d", len(hits))
		}
		if hits[0].NodeID != "decision-1" {
			t.Errorf("expected decision-1 first, got %s", hits[0].NodeID)
		}
		if hits[0].Score < hits[1].Score {
			t.Error("hits must be sorted descending")
		}
	})

	t.Run("Given an embed failure at query time When searched Then the keyword path answers in the same shape", func(t *testing.T) {
		calls := 0
		emb := &mockEmbedder{}
		emb.fn = func(texts []string) ([][]float32, error) {
			calls++
			if calls > 1 { // build succeeds, query embed fails
				return nil, errMockEmbed
			}
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{1, 0, 0}
			}
			return out, nil
		}

		idx, _ := New(testStore(), emb, nil, "text-embedding-3-large", slogutil.NewDiscard())
		if err := idx.Build(ctx); err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		hits, err := idx.Search(ctx, "EMEA pricing", 10)
		if err != nil {
			t.Fatalf("degraded search must not error: %v", err)
		}
		if len(hits) == 0 {
			t.Fatal("expected keyword hits")
		}
		for _, h := range hits {
			if h.NodeID == "" || h.Score <= 0 {
				t.Errorf("degraded hit shape invalid: %+v", h)
			}
		}
	})

	t.Run("Given a build-time embed failure When searched Then texts still serve the keyword path", func(t *testing.T) {
		emb := &mockEmbedder{fn: func(texts []string) ([][]float32, error) { return nil, errMockEmbed }}
		idx, _ := New(testStore(), emb, nil, "text-embedding-3-large", slogutil.NewDiscard())

		if err := idx.Build(ctx); err == nil {
			t.Fatal("expected build error")
		}
		if !idx.Ready() {
			t.Fatal("texts must keep the index ready for keyword search")
		}

		hits, err := idx.Search(ctx, "competitor price cut", 10)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(hits) == 0 || hits[0].NodeID != "fact-1" {
			t.Errorf("expected fact-1 from keyword path, got %+v", hits)
		}
	})

	t.Run("Given a graph mutation When invalidated Then the next EnsureBuilt rebuilds", func(t *testing.T) {
		store := testStore()
		emb := axisEmbedder(0)
		idx, _ := New(store, emb, nil, "text-embedding-3-large", slogutil.NewDiscard())

		idx.Build(ctx)
		buildCalls := emb.calls

		store.Invalidate()
		if idx.Status().Built {
			t.Fatal("mutation must mark the index stale")
		}
		if err := idx.EnsureBuilt(ctx); err != nil {
			t.Fatalf("EnsureBuilt failed: %v", err)
		}
		if emb.calls <= buildCalls {
			t.Error("expected a rebuild after invalidation")
		}
		if !idx.Status().Built {
			t.Error("index must be built again")
		}
	})

	t.Run("Given a built index When EnsureBuilt runs Then no rebuild happens", func(t *testing.T) {
		emb := axisEmbedder(0)
		idx, _ := New(testStore(), emb, nil, "text-embedding-3-large", slogutil.NewDiscard())
		idx.Build(ctx)
		before := emb.calls

		idx.EnsureBuilt(ctx)
		if emb.calls != before {
			t.Errorf("EnsureBuilt on a fresh index must be a no-op, calls went %d -> %d", before, emb.calls)
		}
	})
}

func TestKeywordSearch(t *testing.T) {
	texts := map[string]string{
		"decision-1": "freeze emea pricing through q3",
		"fact-1":     "competitor announced price cut",
		"person-1":   "sarah chen vp sales",
	}

	t.Run("Given stop words in the query When searched Then they carry no weight", func(t *testing.T) {
		hits := keywordSearch(texts, "what is the pricing freeze", 10)
		if len(hits) != 1 || hits[0].ID != "decision-1" {
			t.Fatalf("expected only decision-1, got %+v", hits)
		}
		// "pricing" and "freeze" both match out of 2 content words
		if hits[0].Score != 1.0 {
			t.Errorf("expected score 1.0, got %v", hits[0].Score)
		}
	})

	t.Run("Given no overlap When searched Then no hits come back", func(t *testing.T) {
		if hits := keywordSearch(texts, "kubernetes cluster", 10); len(hits) != 0 {
			t.Errorf("expected no hits, got %+v", hits)
		}
	})

	t.Run("Given more hits than topK When searched Then results are capped descending", func(t *testing.T) {
		hits := keywordSearch(texts, "pricing price sales", 2)
		if len(hits) != 2 {
			t.Fatalf("expected 2 hits, got %d", len(hits))
		}
		if hits[0].Score < hits[1].Score {
			t.Error("hits must be sorted descending")
		}
	})
}

func TestVecStore_Persistence(t *testing.T) {
	ctx := context.Background()

	t.Run("Given persisted vectors When reopened Then search works without a rebuild", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vectors.db")
		db, err := sql.Open("sqlite3", path)
		if err != nil {
			t.Fatalf("open db: %v", err)
		}

		vs, err := NewVecStore(db)
		if err != nil {
			t.Fatalf("NewVecStore failed: %v", err)
		}
		vs.Upsert(ctx, VectorItem{NodeID: "n1", Text: "first node", Vector: []float32{1, 0}, Model: "m"})
		vs.Upsert(ctx, VectorItem{NodeID: "n2", Text: "second node", Vector: []float32{0, 1}, Model: "m"})
		db.Close()

		db2, err := sql.Open("sqlite3", path)
		if err != nil {
			t.Fatalf("reopen db: %v", err)
		}
		defer db2.Close()

		vs2, err := NewVecStore(db2)
		if err != nil {
			t.Fatalf("NewVecStore on reopen failed: %v", err)
		}
		if vs2.Count() != 2 {
			t.Fatalf("expected 2 vectors after reload, got %d", vs2.Count())
		}

		results := vs2.Search([]float32{1, 0.1}, 2)
		if len(results) != 2 || results[0].ID != "n1" {
			t.Errorf("unexpected search results after reload: %+v", results)
		}

		texts, err := vs2.LoadTexts(ctx)
		if err != nil || texts["n2"] != "second node" {
			t.Errorf("expected persisted texts, got %v, %v", texts, err)
		}
	})

	t.Run("Given an upsert for an existing node When searched Then the new vector wins", func(t *testing.T) {
		vs, _ := NewVecStore(nil)
		vs.Upsert(ctx, VectorItem{NodeID: "n1", Vector: []float32{1, 0}})
		vs.Upsert(ctx, VectorItem{NodeID: "n1", Vector: []float32{0, 1}})

		if vs.Count() != 1 {
			t.Fatalf("expected 1 vector after re-upsert, got %d", vs.Count())
		}
		results := vs.Search([]float32{0, 1}, 1)
		if results[0].Score < 0.99 {
			t.Errorf("expected replaced vector to match, score %v", results[0].Score)
		}
	})
}
