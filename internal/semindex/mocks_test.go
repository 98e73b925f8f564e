package semindex

import (
	"context"
	"errors"

	"github.com/meridianlabs/nexus/internal/graph"
)

var errMockEmbed = errors.New("mock embed failure")

// mockEmbedder scripts embedding behavior per call.
type mockEmbedder struct {
	fn    func(texts []string) ([][]float32, error)
	calls int
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	return m.fn(texts)
}

// mockGraphStore serves a fixed snapshot.
type mockGraphStore struct {
	snap *graph.Snapshot
	err  error
	subs []func()
}

func (m *mockGraphStore) Snapshot(ctx context.Context) (*graph.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snap, nil
}

func (m *mockGraphStore) Node(ctx context.Context, id string) (*graph.Node, error) {
	if m.err != nil {
		return nil, m.err
	}
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
