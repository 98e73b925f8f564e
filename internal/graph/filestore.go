package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// FileStore reads the graph from a JSON snapshot file. It serves as the
// fallback when no graph database is provisioned (demo and test setups).
type FileStore struct {
	path   string
	logger *slog.Logger

	notifier

	mu   sync.RWMutex
	snap *Snapshot
}

// NewFileStore creates a store backed by the given JSON snapshot file.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Snapshot returns the cached graph, loading the file on first use.
func (s *FileStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read graph snapshot: %w", err)
	}

	var loaded Snapshot
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse graph snapshot: %w", err)
	}

	kept := loaded.Edges[:0]
	for _, e := range loaded.Edges {
		if Relations[e.Relation] {
			kept = append(kept, e)
		} else {
			s.logger.Warn("dropping edge with unknown relation",
				"source", e.Source, "target", e.Target, "relation", e.Relation)
		}
	}
	loaded.Edges = kept
	loaded.Meta.NodeCount = len(loaded.Nodes)
	loaded.Meta.EdgeCount = len(loaded.Edges)
	RefreshScores(loaded.Nodes, time.Now())

	s.mu.Lock()
	s.snap = &loaded
	s.mu.Unlock()

	s.logger.Info("graph snapshot loaded from file",
		"path", s.path, "nodes", len(loaded.Nodes), "edges", len(loaded.Edges))
	return &loaded, nil
}

// Node returns a single node by ID, or nil when absent.
func (s *FileStore) Node(ctx context.Context, id string) (*Node, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.NodeByID(id), nil
}

// Invalidate drops the cached snapshot and fires mutation subscribers.
func (s *FileStore) Invalidate() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
	s.notify()
}
