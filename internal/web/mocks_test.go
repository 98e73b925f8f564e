package web

import (
	"context"
	"errors"

	"github.com/meridianlabs/nexus/internal/agents"
	"github.com/meridianlabs/nexus/internal/briefing"
	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/llm"
	"github.com/meridianlabs/nexus/internal/retrieval"
	"github.com/meridianlabs/nexus/internal/semindex"
	"github.com/meridianlabs/nexus/internal/storage"
)

var errMockWeb = errors.New("mock web failure")

func mockStream(fragments []string, terminal error) *llm.Stream {
	ch := make(chan llm.Fragment, len(fragments)+1)
	for _, f := range fragments {
		ch <- llm.Fragment{Content: f}
	}
	if terminal != nil {
		ch <- llm.Fragment{Err: terminal}
	}
	close(ch)
	return llm.NewStream(ch, func() {})
}

type mockAsker struct {
	AnswerFunc       func(ctx context.Context, query, conversationID string) (*retrieval.Result, error)
	AnswerStreamFunc func(ctx context.Context, query string) (*llm.Stream, error)
}

func (m *mockAsker) Answer(ctx context.Context, query, conversationID string) (*retrieval.Result, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, query, conversationID)
	}
	return &retrieval.Result{Answer: "mock answer"}, nil
}

func (m *mockAsker) AnswerStream(ctx context.Context, query string) (*llm.Stream, error) {
	if m.AnswerStreamFunc != nil {
		return m.AnswerStreamFunc(ctx, query)
	}
	return mockStream([]string{"mock"}, nil), nil
}

type mockScanner struct {
	RunAllFunc  func(ctx context.Context) (*agents.ScanResult, error)
	RunOneFunc  func(ctx context.Context, name string) (*agents.AgentResult, error)
	HistoryFunc func(ctx context.Context, limit int) ([]storage.ScanRecord, error)
}

func (m *mockScanner) RunAll(ctx context.Context) (*agents.ScanResult, error) {
	if m.RunAllFunc != nil {
		return m.RunAllFunc(ctx)
	}
	return &agents.ScanResult{}, nil
}

func (m *mockScanner) RunOne(ctx context.Context, name string) (*agents.AgentResult, error) {
	if m.RunOneFunc != nil {
		return m.RunOneFunc(ctx, name)
	}
	return &agents.AgentResult{Agent: name}, nil
}

func (m *mockScanner) History(ctx context.Context, limit int) ([]storage.ScanRecord, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockScanner) Agents() []string {
	return []string{"contradiction", "staleness", "silo", "overload", "coordination", "drift"}
}

type mockBriefer struct {
	PersonFunc       func(ctx context.Context, personID string) (*briefing.PersonBriefing, error)
	PersonStreamFunc func(ctx context.Context, personID string) (*llm.Stream, error)
	OnboardingFunc   func(ctx context.Context, teamName, division string) (*briefing.OnboardingPackage, error)
}

func (m *mockBriefer) Person(ctx context.Context, personID string) (*briefing.PersonBriefing, error) {
	if m.PersonFunc != nil {
		return m.PersonFunc(ctx, personID)
	}
	return &briefing.PersonBriefing{PersonID: personID}, nil
}

func (m *mockBriefer) PersonStream(ctx context.Context, personID string) (*llm.Stream, error) {
	if m.PersonStreamFunc != nil {
		return m.PersonStreamFunc(ctx, personID)
	}
	return mockStream([]string{"mock"}, nil), nil
}

func (m *mockBriefer) Onboarding(ctx context.Context, teamName, division string) (*briefing.OnboardingPackage, error) {
	if m.OnboardingFunc != nil {
		return m.OnboardingFunc(ctx, teamName, division)
	}
	return &briefing.OnboardingPackage{}, nil
}

type mockIndexer struct {
	BuildFunc func(ctx context.Context) error
	status    semindex.Status
}

func (m *mockIndexer) Build(ctx context.Context) error {
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx)
	}
	return nil
}

func (m *mockIndexer) Status() semindex.Status {
	return m.status
}

type mockUsage struct {
	summary *llm.Summary
	err     error
}

func (m *mockUsage) Summarize(ctx context.Context) (*llm.Summary, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.summary != nil {
		return m.summary, nil
	}
	return &llm.Summary{}, nil
}

type mockAlertStore struct {
	ListFunc    func(ctx context.Context, unresolvedOnly bool) ([]storage.AlertRecord, error)
	ResolveFunc func(ctx context.Context, id, resolution string) error
}

func (m *mockAlertStore) ListAlerts(ctx context.Context, unresolvedOnly bool) ([]storage.AlertRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, unresolvedOnly)
	}
	return nil, nil
}

func (m *mockAlertStore) ResolveAlert(ctx context.Context, id, resolution string) error {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, id, resolution)
	}
	return nil
}

type mockGraphStore struct {
	snap *graph.Snapshot
	err  error
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

func (m *mockGraphStore) Invalidate() {}

func (m *mockGraphStore) Subscribe(fn func()) {}
