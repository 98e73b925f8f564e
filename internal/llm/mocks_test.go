package llm

import (
	"context"
	"sync"
)

// mockProvider scripts provider behavior for gateway tests.
type mockProvider struct {
	mu sync.Mutex

	response     string
	inputTokens  int
	outputTokens int
	err          error
	failFirst    int // fail this many calls before succeeding

	fragments []Fragment
	streamErr error

	vectors    [][]float32
	embedCalls [][]string

	calls int
}

func (m *mockProvider) ChatCompletion(ctx context.Context, req chatRequest) (string, int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil && (m.failFirst == 0 || m.calls <= m.failFirst) {
		return "", 0, 0, m.err
	}
	return m.response, m.inputTokens, m.outputTokens, nil
}

func (m *mockProvider) ChatStream(ctx context.Context, req chatRequest) (<-chan Fragment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	ch := make(chan Fragment, len(m.fragments))
	for _, f := range m.fragments {
		ch <- f
	}
	close(ch)
	return ch, nil
}

func (m *mockProvider) Embeddings(ctx context.Context, model string, texts []string) ([][]float32, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.embedCalls = append(m.embedCalls, texts)
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		if len(m.vectors) > 0 {
			out[i] = m.vectors[i%len(m.vectors)]
		} else {
			out[i] = []float32{1, 0, 0}
		}
	}
	return out, len(texts) * 10, nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
