// Package retrieval runs the ask pipeline: semantic search over the graph,
// one-hop context expansion, grounded completion, and conversation memory.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/llm"
	"github.com/meridianlabs/nexus/internal/orgcontext"
	"github.com/meridianlabs/nexus/internal/prompts"
	"github.com/meridianlabs/nexus/internal/semindex"
	"github.com/meridianlabs/nexus/internal/storage"
)

const (
	searchTopK   = 20
	streamTopK   = 15
	historyTurns = 10
	nodeLineCap  = 40
	edgeLineCap  = 30
)

// Citation names one node the answer relied on.
type Citation struct {
	NodeID    string `json:"node_id"`
	Label     string `json:"label"`
	Relevance string `json:"relevance"`
}

// Action is a suggested follow-up route for an item.
type Action struct {
	Label string `json:"label"`
	Route string `json:"route"`
}

// Item is one structured finding inside an answer.
type Item struct {
	Type            string   `json:"type"`
	Headline        string   `json:"headline"`
	Detail          string   `json:"detail"`
	Division        string   `json:"division,omitempty"`
	AffectedNodeIDs []string `json:"affected_node_ids,omitempty"`
	Actions         []Action `json:"actions,omitempty"`
}

// Result is the structured answer to a query.
type Result struct {
	Answer             string     `json:"answer"`
	Citations          []Citation `json:"citations,omitempty"`
	Items              []Item     `json:"items,omitempty"`
	HighlightNodeIDs   []string   `json:"highlight_node_ids,omitempty"`
	SuggestedFollowups []string   `json:"suggested_followups,omitempty"`
	ConversationID     string     `json:"conversation_id,omitempty"`
}

// completer is the slice of the gateway the pipeline needs.
type completer interface {
	CompleteStructured(ctx context.Context, taskType, system, user string, v any, opts llm.Opts) error
	CompleteStream(ctx context.Context, taskType, system, user string, opts llm.Opts) (*llm.Stream, error)
}

// searcher is the slice of the semantic index the pipeline needs.
type searcher interface {
	EnsureBuilt(ctx context.Context) error
	Search(ctx context.Context, query string, topK int) ([]semindex.Hit, error)
}

// memory is conversation and alert access; storage.Dual satisfies it.
type memory interface {
	AppendTurn(ctx context.Context, conversationID, role, content string) error
	RecentTurns(ctx context.Context, conversationID string, limit int) ([]storage.Turn, error)
	ListAlerts(ctx context.Context, unresolvedOnly bool) ([]storage.AlertRecord, error)
}

// Pipeline answers queries against the knowledge graph.
type Pipeline struct {
	gw     completer
	idx    searcher
	store  graph.Store
	mem    memory
	logger *slog.Logger
}

// NewPipeline wires the retrieval pipeline.
func NewPipeline(gw completer, idx searcher, store graph.Store, mem memory, logger *slog.Logger) *Pipeline {
	return &Pipeline{gw: gw, idx: idx, store: store, mem: mem, logger: logger}
}

// Answer runs the full pipeline and, when conversationID is set, appends the
// (user, assistant) turn pair to conversation memory.
func (p *Pipeline) Answer(ctx context.Context, query, conversationID string) (*Result, error) {
	if err := p.idx.EnsureBuilt(ctx); err != nil {
		return nil, fmt.Errorf("index not available: %w", err)
	}

	hits, err := p.idx.Search(ctx, query, searchTopK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	p.logger.Info("retrieved nodes", "count", len(hits), "query", orgcontext.Truncate(query, 50))

	snap, err := p.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}

	retrievedContext := expandedContext(snap, hits)
	alertsContext := p.alertsContext(ctx)
	summary := orgcontext.OrgSummary(snap)

	system := prompts.System(summary.CompanyName, summary.NodeCount, summary.EdgeCount,
		summary.DivisionCount, summary.PersonCount, summary.AgentCount) +
		"\n\n" + prompts.AskStructured(retrievedContext, alertsContext)

	user := query
	if conversationID != "" {
		if turns, err := p.mem.RecentTurns(ctx, conversationID, historyTurns); err == nil && len(turns) > 0 {
			user = renderHistory(turns) + "\n\nCurrent question: " + query
		}
	}

	var result Result
	if err := p.gw.CompleteStructured(ctx, "complex_ask", system, user, &result, llm.Opts{NoCache: true}); err != nil {
		return nil, err
	}

	if conversationID != "" {
		result.ConversationID = conversationID
		p.mem.AppendTurn(ctx, conversationID, "user", query)
		p.mem.AppendTurn(ctx, conversationID, "assistant", result.Answer)
	}

	p.logger.Info("generated answer", "citations", len(result.Citations))
	return &result, nil
}

// AnswerStream runs the retrieval steps and streams the completion token by
// token. Streamed answers never update conversation memory.
func (p *Pipeline) AnswerStream(ctx context.Context, query string) (*llm.Stream, error) {
	if err := p.idx.EnsureBuilt(ctx); err != nil {
		return nil, fmt.Errorf("index not available: %w", err)
	}

	hits, err := p.idx.Search(ctx, query, streamTopK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	snap, err := p.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}

	idx := snap.NodeIndex()
	var lines []string
	for _, h := range hits {
		n, ok := idx[h.NodeID]
		if !ok {
			continue
		}
		text := n.Content
		if text == "" {
			text = n.Label
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			strings.ToUpper(n.Kind), n.Label, orgcontext.Truncate(text, 200)))
		if len(lines) >= 25 {
			break
		}
	}

	summary := orgcontext.OrgSummary(snap)
	system := prompts.System(summary.CompanyName, summary.NodeCount, summary.EdgeCount,
		summary.DivisionCount, summary.PersonCount, summary.AgentCount) +
		"\n\n" + prompts.Ask(summary.CompanyName, strings.Join(lines, "\n"), p.alertsContext(ctx))

	return p.gw.CompleteStream(ctx, "complex_ask", system, query, llm.Opts{NoCache: true})
}

func (p *Pipeline) alertsContext(ctx context.Context) string {
	alerts, err := p.mem.ListAlerts(ctx, true)
	if err != nil {
		p.logger.Warn("alerts unavailable for context", "error", err)
		return "No active alerts."
	}
	return orgcontext.AlertsSummary(alerts)
}

// expandedContext renders the retrieved nodes plus their one-hop neighbors,
// bounded by the node and edge line caps.
func expandedContext(snap *graph.Snapshot, hits []semindex.Hit) string {
	retrieved := make(map[string]float64, len(hits))
	for _, h := range hits {
		retrieved[h.NodeID] = h.Score
	}

	expanded := make(map[string]bool, len(hits))
	for id := range retrieved {
		expanded[id] = true
	}
	for _, e := range snap.Edges {
		if _, ok := retrieved[e.Source]; ok {
			expanded[e.Target] = true
		}
		if _, ok := retrieved[e.Target]; ok {
			expanded[e.Source] = true
		}
	}

	// snapshot order keeps the block deterministic
	var nodeLines []string
	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		if !expanded[n.ID] {
			continue
		}
		line := fmt.Sprintf("[%s] %s (ID: %s) | Division: %s",
			strings.ToUpper(n.Kind), n.Label, n.ID, division(n))
		if n.Attrs.Role != "" {
			line += " | Role: " + n.Attrs.Role
		}
		if n.Attrs.CognitiveLoad > 0 {
			line += fmt.Sprintf(" | Load: %.2f", n.Attrs.CognitiveLoad)
		}
		if n.Status != "" {
			line += " | Status: " + n.Status
		}
		if n.Freshness > 0 {
			line += fmt.Sprintf(" | Freshness: %.3f", n.Freshness)
		}
		if score, ok := retrieved[n.ID]; ok && score > 0 {
			line += fmt.Sprintf(" | Relevance: %.2f", score)
		}
		if n.Content != "" {
			line += "\n  Content: " + orgcontext.Truncate(n.Content, 300)
		}
		nodeLines = append(nodeLines, line)
		if len(nodeLines) >= nodeLineCap {
			break
		}
	}

	var edgeLines []string
	for _, e := range snap.Edges {
		if expanded[e.Source] && expanded[e.Target] {
			edgeLines = append(edgeLines, fmt.Sprintf("  %s --[%s]--> %s", e.Source, e.Relation, e.Target))
			if len(edgeLines) >= edgeLineCap {
				break
			}
		}
	}

	block := strings.Join(nodeLines, "\n")
	if len(edgeLines) > 0 {
		block += "\n\nRelationships:\n" + strings.Join(edgeLines, "\n")
	}
	return block
}

func division(n *graph.Node) string {
	if n.Division == "" {
		return "?"
	}
	return n.Division
}

func renderHistory(turns []storage.Turn) string {
	var b strings.Builder
	b.WriteString("Conversation so far:")
	for _, t := range turns {
		fmt.Fprintf(&b, "\n%s: %s", t.Role, t.Content)
	}
	return b.String()
}
