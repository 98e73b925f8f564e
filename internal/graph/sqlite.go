package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore reads the graph from a SQLite database. Kind-specific node
// attributes live in an extras JSON column and are decoded into typed Attrs
// at the boundary; rows carrying unknown relations are dropped.
//
// Snapshots are cached in memory until Invalidate is called. A concurrent
// reader during invalidation may observe the previous snapshot; that is the
// intended stale-but-safe behavior.
type SQLiteStore struct {
	db      *sql.DB
	logger  *slog.Logger
	company string

	notifier

	mu   sync.RWMutex
	snap *Snapshot
}

// NewSQLiteStore opens (creating if necessary) the graph database.
func NewSQLiteStore(dbPath, companyName string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open graph db: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger, company: companyName}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("graph migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS nodes (
			id             TEXT PRIMARY KEY,
			kind           TEXT NOT NULL,
			label          TEXT NOT NULL,
			content        TEXT,
			division       TEXT,
			status         TEXT,
			freshness      REAL,
			half_life_days INTEGER,
			created_at     DATETIME,
			extras         TEXT
		);

		CREATE TABLE IF NOT EXISTS edges (
			source   TEXT NOT NULL,
			target   TEXT NOT NULL,
			relation TEXT NOT NULL,
			weight   REAL,
			label    TEXT,
			PRIMARY KEY (source, target, relation)
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind);
		CREATE INDEX IF NOT EXISTS idx_nodes_division ON nodes(division);
		CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);
		CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Snapshot returns the cached graph, loading it on first use.
func (s *SQLiteStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	loaded, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snap = loaded
	s.mu.Unlock()

	s.logger.Info("graph snapshot loaded",
		"nodes", len(loaded.Nodes), "edges", len(loaded.Edges))
	return loaded, nil
}

// Node returns a single node by ID, or nil when absent.
func (s *SQLiteStore) Node(ctx context.Context, id string) (*Node, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.NodeByID(id), nil
}

// Invalidate drops the cached snapshot and fires mutation subscribers.
func (s *SQLiteStore) Invalidate() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
	s.notify()
}

func (s *SQLiteStore) load(ctx context.Context) (*Snapshot, error) {
	nodes, err := s.loadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	edges, err := s.loadEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	RefreshScores(nodes, time.Now())

	return &Snapshot{
		Nodes: nodes,
		Edges: edges,
		Meta: Meta{
			CompanyName: s.company,
			GeneratedAt: time.Now(),
			NodeCount:   len(nodes),
			EdgeCount:   len(edges),
		},
	}, nil
}

func (s *SQLiteStore) loadNodes(ctx context.Context) ([]Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, label, content, division, status,
		       freshness, half_life_days, created_at, extras
		FROM nodes
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var n Node
		var content, division, status, extras sql.NullString
		var freshness sql.NullFloat64
		var halfLife sql.NullInt64
		var createdAt sql.NullTime

		if err := rows.Scan(&n.ID, &n.Kind, &n.Label, &content, &division,
			&status, &freshness, &halfLife, &createdAt, &extras); err != nil {
			return nil, err
		}

		n.Content = content.String
		n.Division = division.String
		n.Status = status.String
		n.Freshness = freshness.Float64
		n.HalfLifeDays = int(halfLife.Int64)
		n.CreatedAt = createdAt.Time

		if extras.Valid && extras.String != "" {
			if err := json.Unmarshal([]byte(extras.String), &n.Attrs); err != nil {
				s.logger.Warn("dropping malformed node extras", "node", n.ID, "error", err)
			}
		}

		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *SQLiteStore) loadEdges(ctx context.Context) ([]Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, target, relation, weight, label FROM edges
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		var weight sql.NullFloat64
		var label sql.NullString

		if err := rows.Scan(&e.Source, &e.Target, &e.Relation, &weight, &label); err != nil {
			return nil, err
		}
		e.Weight = weight.Float64
		e.Label = label.String

		if !Relations[e.Relation] {
			s.logger.Warn("dropping edge with unknown relation",
				"source", e.Source, "target", e.Target, "relation", e.Relation)
			continue
		}

		edges = append(edges, e)
	}
	return edges, rows.Err()
}
