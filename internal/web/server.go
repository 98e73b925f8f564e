// Package web is the inbound REST and SSE surface.
package web

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/meridianlabs/nexus/internal/agents"
	"github.com/meridianlabs/nexus/internal/briefing"
	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/llm"
	"github.com/meridianlabs/nexus/internal/retrieval"
	"github.com/meridianlabs/nexus/internal/semindex"
	"github.com/meridianlabs/nexus/internal/storage"
)

// asker answers queries; the retrieval pipeline satisfies it.
type asker interface {
	Answer(ctx context.Context, query, conversationID string) (*retrieval.Result, error)
	AnswerStream(ctx context.Context, query string) (*llm.Stream, error)
}

// scanner runs the agent roster; the orchestrator satisfies it.
type scanner interface {
	RunAll(ctx context.Context) (*agents.ScanResult, error)
	RunOne(ctx context.Context, name string) (*agents.AgentResult, error)
	History(ctx context.Context, limit int) ([]storage.ScanRecord, error)
	Agents() []string
}

// briefer generates briefings; the briefing generator satisfies it.
type briefer interface {
	Person(ctx context.Context, personID string) (*briefing.PersonBriefing, error)
	PersonStream(ctx context.Context, personID string) (*llm.Stream, error)
	Onboarding(ctx context.Context, teamName, division string) (*briefing.OnboardingPackage, error)
}

// indexer exposes the semantic index; semindex.Index satisfies it.
type indexer interface {
	Build(ctx context.Context) error
	Status() semindex.Status
}

// usageSource aggregates the usage ledger; llm.Tracker satisfies it.
type usageSource interface {
	Summarize(ctx context.Context) (*llm.Summary, error)
}

// alertStore is the alert slice of derived storage.
type alertStore interface {
	ListAlerts(ctx context.Context, unresolvedOnly bool) ([]storage.AlertRecord, error)
	ResolveAlert(ctx context.Context, id, resolution string) error
}

// Server is the NEXUS web server.
type Server struct {
	pipeline asker
	scanner  scanner
	briefer  briefer
	index    indexer
	usage    usageSource
	alerts   alertStore
	graph    graph.Store
	logger   *slog.Logger
	router   *gin.Engine
}

// NewServer wires all routes.
func NewServer(pipeline asker, sc scanner, br briefer, idx indexer,
	usage usageSource, alerts alertStore, gs graph.Store, logger *slog.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		pipeline: pipeline,
		scanner:  sc,
		briefer:  br,
		index:    idx,
		usage:    usage,
		alerts:   alerts,
		graph:    gs,
		logger:   logger,
		router:   router,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/ask", s.handleAsk)
		api.POST("/ask/stream", s.handleAskStream)

		api.POST("/scan", s.handleScan)
		api.GET("/scan/history", s.handleScanHistory)

		api.GET("/alerts", s.handleAlerts)
		api.POST("/alerts/:id/resolve", s.handleResolveAlert)

		api.GET("/usage", s.handleUsage)

		api.POST("/index/build", s.handleIndexBuild)
		api.GET("/index/status", s.handleIndexStatus)

		api.GET("/graph", s.handleGraph)
		api.GET("/graph/nodes/:id", s.handleGraphNode)

		api.GET("/briefing/:personID", s.handleBriefing)
		api.GET("/briefing/:personID/stream", s.handleBriefingStream)
		api.POST("/onboarding", s.handleOnboarding)
	}

	return s
}

// Run starts the web server.
func (s *Server) Run(addr string) error {
	s.logger.Info("web server listening", "addr", addr)
	return s.router.Run(addr)
}
