package agents

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/llm"
)

var errMockAgent = errors.New("mock agent failure")

func boolPtr(b bool) *bool { return &b }

// instruction markers identify which agent a system prompt belongs to
var agentMarkers = map[string]string{
	"contradiction": "Contradiction Detection Agent",
	"staleness":     "Staleness Detection Agent",
	"silo":          "Silo Detection Agent",
	"overload":      "Overload Detection Agent",
	"coordination":  "NEXUS Coordination Agent",
	"drift":         "Strategic Drift Detection Agent",
}

// mockCompleter answers per agent, identified by the instruction text in
// the system prompt.
type mockCompleter struct {
	mu        sync.Mutex
	findings  map[string][]Finding // agent name -> findings
	failures  map[string]bool      // agent name -> fail the call
	callCount int
}

func (m *mockCompleter) CompleteStructured(ctx context.Context, taskType, system, user string, v any, opts llm.Opts) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++

	var agent string
	for name, marker := range agentMarkers {
		if strings.Contains(system, marker) {
			agent = name
			break
		}
	}
	if m.failures[agent] {
		return errMockAgent
	}

	payload := struct {
		Findings []Finding `json:"findings"`
	}{Findings: m.findings[agent]}
	raw, _ := json.Marshal(payload)
	return json.Unmarshal(raw, v)
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
