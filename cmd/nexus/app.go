package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/meridianlabs/nexus/internal/agents"
	"github.com/meridianlabs/nexus/internal/briefing"
	"github.com/meridianlabs/nexus/internal/config"
	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/llm"
	"github.com/meridianlabs/nexus/internal/retrieval"
	"github.com/meridianlabs/nexus/internal/semindex"
	"github.com/meridianlabs/nexus/internal/slogutil"
	"github.com/meridianlabs/nexus/internal/storage"
)

// app bundles the wired service graph behind every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	graph        graph.Store
	mem          *storage.Dual
	tracker      *llm.Tracker
	gateway      *llm.Gateway
	index        *semindex.Index
	pipeline     *retrieval.Pipeline
	orchestrator *agents.Orchestrator
	briefer      *briefing.Generator

	closers []func() error
}

// newApp loads configuration and wires every service. Derived storage
// failing to open degrades to memory-only; the graph store failing is fatal.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := slogutil.NewDefault(slogutil.LevelFromString(cfg.Logging.Level))

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	if cfg.Storage.GraphJSON != "" {
		a.graph = graph.NewFileStore(cfg.Storage.GraphJSON, logger)
	} else {
		gs, err := graph.NewSQLiteStore(cfg.Storage.GraphDBPath, cfg.CompanyName, logger)
		if err != nil {
			return nil, fmt.Errorf("open graph store: %w", err)
		}
		a.graph = gs
		a.closers = append(a.closers, gs.Close)
	}

	var db *sql.DB
	durable, err := storage.NewSQLiteStore(cfg.Storage.DerivedDB)
	if err != nil {
		logger.Warn("derived storage unavailable, running memory-only",
			"path", cfg.Storage.DerivedDB, "error", err)
		a.mem = storage.NewDual(nil, logger)
	} else {
		a.mem = storage.NewDual(durable, logger)
		a.closers = append(a.closers, durable.Close)
		db = durable.DB()
	}

	a.tracker = llm.NewTracker(a.mem, logger)
	a.gateway = llm.NewGateway(cfg, a.tracker, logger)

	a.index, err = semindex.New(a.graph, a.gateway, db, cfg.Embedding.Model, logger)
	if err != nil {
		return nil, fmt.Errorf("open semantic index: %w", err)
	}

	a.pipeline = retrieval.NewPipeline(a.gateway, a.index, a.graph, a.mem, logger)
	a.orchestrator = agents.NewOrchestrator(a.gateway, a.graph, a.mem, cfg.Storage.DataDir, logger)
	a.briefer = briefing.NewGenerator(a.gateway, a.graph, a.mem, logger)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}
