package briefing

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/llm"
)

var errMockBriefing = errors.New("mock briefing failure")

// mockCompleter records prompts and answers from a script.
type mockCompleter struct {
	response       string
	structuredJSON string
	err            error
	fragments      []string

	lastTask   string
	lastSystem string
	lastUser   string
	calls      int
}

func (m *mockCompleter) Complete(ctx context.Context, taskType, system, user string, opts llm.Opts) (string, error) {
	m.record(taskType, system, user)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockCompleter) CompleteStream(ctx context.Context, taskType, system, user string, opts llm.Opts) (*llm.Stream, error) {
	m.record(taskType, system, user)
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan llm.Fragment, len(m.fragments))
	for _, f := range m.fragments {
		ch <- llm.Fragment{Content: f}
	}
	close(ch)
	return llm.NewStream(ch, func() {}), nil
}

func (m *mockCompleter) CompleteStructured(ctx context.Context, taskType, system, user string, v any, opts llm.Opts) error {
	m.record(taskType, system, user)
	if m.err != nil {
		return m.err
	}
	return json.Unmarshal([]byte(m.structuredJSON), v)
}

func (m *mockCompleter) record(taskType, system, user string) {
	m.calls++
	m.lastTask = taskType
	m.lastSystem = system
	m.lastUser = user
}

// mockGraphStore serves a fixed snapshot.
type mockGraphStore struct {
	snap *graph.Snapshot
}

func (m *mockGraphStore) Snapshot(ctx context.Context) (*graph.Snapshot, error) {
	return m.snap, nil
}

func (m *mockGraphStore) Node(ctx context.Context, id string) (*graph.Node, error) {
	return m.snap.NodeByID(id), nil
}

func (m *mockGraphStore) Invalidate() {}

func (m *mockGraphStore) Subscribe(fn func()) {}
