// Package agents runs the anomaly detection roster: six isolated agents
// scanning the knowledge graph concurrently, each producing findings that
// become alerts. One agent failing never affects its siblings.
package agents

import (
	"time"

	"github.com/meridianlabs/nexus/internal/storage"
)

// Finding is one issue an agent detected. The JSON shape matches what the
// agent instructions ask the model to return. Detected is a pointer so a
// finding the model emits without the flag still counts as detected.
type Finding struct {
	Detected          *bool    `json:"detected,omitempty"`
	Severity          string   `json:"severity"`
	Headline          string   `json:"headline"`
	Detail            string   `json:"detail"`
	AffectedNodeIDs   []string `json:"affected_node_ids"`
	EstimatedCost     string   `json:"estimated_cost,omitempty"`
	ResolverID        string   `json:"resolver_id,omitempty"`
	SupervisorID      string   `json:"supervisor_id,omitempty"`
	RecommendedAction string   `json:"recommended_action,omitempty"`
	FreshnessScore    float64  `json:"freshness_score,omitempty"`
	CognitiveLoad     float64  `json:"cognitive_load,omitempty"`
}

// IsDetected reports whether the finding is a real detection. A missing
// flag means detected.
func (f Finding) IsDetected() bool {
	return f.Detected == nil || *f.Detected
}

// AgentResult is one agent's outcome. A failed agent carries Err and no
// findings; failure is data, not a scan error.
type AgentResult struct {
	Agent    string    `json:"agent"`
	Findings []Finding `json:"findings"`
	Err      string    `json:"error,omitempty"`
}

// ScanResult summarizes one full orchestration run.
type ScanResult struct {
	ID              string                  `json:"id"`
	At              time.Time               `json:"timestamp"`
	AgentsRun       []string                `json:"agents_run"`
	TotalFindings   int                     `json:"total_findings"`
	AlertsGenerated int                     `json:"alerts_generated"`
	Alerts          []storage.AlertRecord   `json:"alerts"`
	ByAgent         map[string]*AgentResult `json:"by_agent"`
}
