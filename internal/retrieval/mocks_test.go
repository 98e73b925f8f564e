package retrieval

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/llm"
	"github.com/meridianlabs/nexus/internal/semindex"
)

var errMockSearch = errors.New("mock search failure")

// mockCompleter scripts gateway answers and records the prompts it saw.
type mockCompleter struct {
	structuredJSON string
	err            error
	fragments      []llm.Fragment

	lastSystem string
	lastUser   string
	calls      int
}

func (m *mockCompleter) CompleteStructured(ctx context.Context, taskType, system, user string, v any, opts llm.Opts) error {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	if m.err != nil {
		return m.err
	}
	return json.Unmarshal([]byte(m.structuredJSON), v)
}

func (m *mockCompleter) CompleteStream(ctx context.Context, taskType, system, user string, opts llm.Opts) (*llm.Stream, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan llm.Fragment, len(m.fragments))
	for _, f := range m.fragments {
		ch <- f
	}
	close(ch)
	return llm.NewStream(ch, nil), nil
}

// mockSearcher scripts index behavior.
type mockSearcher struct {
	hits      []semindex.Hit
	searchErr error
	buildErr  error
	ensured   int
}

func (m *mockSearcher) EnsureBuilt(ctx context.Context) error {
	m.ensured++
	return m.buildErr
}

func (m *mockSearcher) Search(ctx context.Context, query string, topK int) ([]semindex.Hit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.hits) > topK {
		return m.hits[:topK], nil
	}
	return m.hits, nil
}

// mockGraphStore serves a fixed snapshot.
type mockGraphStore struct {
	snap *graph.Snapshot
	subs []func()
}

func (m *mockGraphStore) Snapshot(ctx context.Context) (*graph.Snapshot, error) {
	return m.snap, nil
}

func (m *mockGraphStore) Node(ctx context.Context, id string) (*graph.Node, error) {
	return m.snap.NodeByID(id), nil
}

func (m *mockGraphStore) Invalidate() {
	for _, fn := range m.subs {
		fn()
	}
}

func (m *mockGraphStore) Subscribe(fn func()) {
	m.subs = append(m.subs, fn)
}
