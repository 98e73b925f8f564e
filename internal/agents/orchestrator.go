package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/llm"
	"github.com/meridianlabs/nexus/internal/orgcontext"
	"github.com/meridianlabs/nexus/internal/prompts"
	"github.com/meridianlabs/nexus/internal/storage"
)

const orgContextBudget = 8000

// completer is the slice of the gateway the orchestrator needs.
type completer interface {
	CompleteStructured(ctx context.Context, taskType, system, user string, v any, opts llm.Opts) error
}

// memory is alert and scan persistence; storage.Dual satisfies it.
type memory interface {
	SaveAlert(ctx context.Context, rec storage.AlertRecord) error
	AppendScan(ctx context.Context, rec storage.ScanRecord) error
	ScanHistory(ctx context.Context, limit int) ([]storage.ScanRecord, error)
	ListAlerts(ctx context.Context, unresolvedOnly bool) ([]storage.AlertRecord, error)
}

// Orchestrator runs the agent roster over the knowledge graph.
type Orchestrator struct {
	gw           completer
	store        graph.Store
	mem          memory
	instructions map[string]string
	logger       *slog.Logger
}

// NewOrchestrator wires the orchestrator. dataDir may be empty; it is only
// consulted for agent instruction override files.
func NewOrchestrator(gw completer, store graph.Store, mem memory, dataDir string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		gw:           gw,
		store:        store,
		mem:          mem,
		instructions: LoadInstructions(dataDir, logger),
		logger:       logger,
	}
}

// Agents returns the roster in its stable order.
func (o *Orchestrator) Agents() []string {
	return prompts.AgentNames()
}

// RunOne runs a single agent against the current graph.
func (o *Orchestrator) RunOne(ctx context.Context, name string) (*AgentResult, error) {
	instruction, ok := o.instructions[name]
	if !ok {
		return nil, fmt.Errorf("unknown agent: %s", name)
	}

	snap, err := o.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}

	summary := orgcontext.OrgSummary(snap)
	system := prompts.System(summary.CompanyName, summary.NodeCount, summary.EdgeCount,
		summary.DivisionCount, summary.PersonCount, summary.AgentCount) +
		"\n\n" + instruction

	alerts, _ := o.mem.ListAlerts(ctx, true)
	user := fmt.Sprintf("Organizational knowledge graph:\n%s\n\nExisting alerts (avoid duplicating):\n%s",
		orgcontext.Truncate(orgcontext.OrgContext(snap), orgContextBudget),
		orgcontext.AlertsSummary(alerts))

	var payload struct {
		Findings []Finding `json:"findings"`
	}
	if err := o.gw.CompleteStructured(ctx, "immune_agent", system, user, &payload, llm.Opts{NoCache: true}); err != nil {
		return nil, err
	}

	o.logger.Info("agent scan complete", "agent", name, "findings", len(payload.Findings))
	return &AgentResult{Agent: name, Findings: payload.Findings}, nil
}

// RunAll runs every agent concurrently. Each agent is isolated: a failure
// becomes that agent's result, never an error for the scan. Findings with
// Detected set become alerts, and the scan is appended to history.
func (o *Orchestrator) RunAll(ctx context.Context) (*ScanResult, error) {
	roster := o.Agents()

	var wg sync.WaitGroup
	var mu sync.Mutex
	byAgent := make(map[string]*AgentResult, len(roster))

	for _, name := range roster {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			res, err := o.RunOne(ctx, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.Error("agent failed", "agent", name, "error", err)
				byAgent[name] = &AgentResult{Agent: name, Err: err.Error(), Findings: []Finding{}}
				return
			}
			byAgent[name] = res
		}(name)
	}
	wg.Wait()

	snap, err := o.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}

	scan := &ScanResult{
		ID:        storage.GenerateID(),
		At:        time.Now(),
		AgentsRun: roster,
		ByAgent:   byAgent,
	}

	for _, name := range roster {
		res := byAgent[name]
		scan.TotalFindings += len(res.Findings)
		for _, f := range res.Findings {
			if !f.IsDetected() {
				continue
			}
			alert := alertFromFinding(snap, name, f)
			if err := o.mem.SaveAlert(ctx, alert); err != nil {
				o.logger.Warn("alert save failed", "alert", alert.ID, "error", err)
			}
			scan.Alerts = append(scan.Alerts, alert)
		}
	}
	scan.AlertsGenerated = len(scan.Alerts)

	o.appendHistory(ctx, scan)
	o.logger.Info("full scan complete", "alerts", scan.AlertsGenerated, "findings", scan.TotalFindings)
	return scan, nil
}

// History returns past scans, newest first.
func (o *Orchestrator) History(ctx context.Context, limit int) ([]storage.ScanRecord, error) {
	return o.mem.ScanHistory(ctx, limit)
}

func (o *Orchestrator) appendHistory(ctx context.Context, scan *ScanResult) {
	byAgent, err := json.Marshal(scan.ByAgent)
	if err != nil {
		byAgent = nil
	}
	rec := storage.ScanRecord{
		ID:              scan.ID,
		At:              scan.At,
		AgentsRun:       scan.AgentsRun,
		TotalFindings:   scan.TotalFindings,
		AlertsGenerated: scan.AlertsGenerated,
		ByAgent:         byAgent,
	}
	if err := o.mem.AppendScan(ctx, rec); err != nil {
		o.logger.Warn("scan history append failed", "scan", scan.ID, "error", err)
	}
}

func alertFromFinding(snap *graph.Snapshot, agent string, f Finding) storage.AlertRecord {
	severity := f.Severity
	if severity == "" {
		severity = "warning"
	}
	headline := f.Headline
	if headline == "" {
		headline = "Issue detected"
	}
	authority := f.ResolverID
	if authority == "" {
		authority = f.SupervisorID
	}
	action := f.RecommendedAction
	if action == "" {
		action = "Review and take action"
	}

	return storage.AlertRecord{
		ID:                  storage.GenerateID(),
		Agent:               agent,
		Severity:            severity,
		Scope:               inferScope(snap, f.AffectedNodeIDs),
		Headline:            headline,
		Detail:              f.Detail,
		AffectedNodeIDs:     f.AffectedNodeIDs,
		ResolutionAuthority: authority,
		ResolutionAction:    action,
		At:                  time.Now(),
	}
}

// inferScope resolves each affected node's division through the graph. One
// division names the scope; zero or several mean cross-division.
func inferScope(snap *graph.Snapshot, affectedIDs []string) string {
	divisions := make(map[string]bool)
	for _, id := range affectedIDs {
		if div := snap.Division(id); div != "" {
			divisions[div] = true
		}
	}
	if len(divisions) == 1 {
		for div := range divisions {
			return div
		}
	}
	return "cross-division"
}
