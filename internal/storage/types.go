// Package storage persists the engine's derived state: conversation turns,
// the token usage ledger, agent scan history, and alerts. The graph itself
// is owned elsewhere; everything here is append-mostly bookkeeping.
//
// Every consumer accesses storage through Dual, which attempts the durable
// SQLite store and degrades to an in-memory copy when persistence is down.
// Persistence failure is never surfaced to the triggering operation.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Turn is one conversation message. Turns are append-only and read back in
// ordinal order.
type Turn struct {
	ConversationID string    `json:"conversation_id"`
	Ordinal        int       `json:"ordinal"`
	Role           string    `json:"role"` // user or assistant
	Content        string    `json:"content"`
	At             time.Time `json:"at"`
}

// UsageRecord is one entry in the append-only token usage ledger.
type UsageRecord struct {
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Cost         float64   `json:"cost_usd"`
	TaskType     string    `json:"task_type"`
	At           time.Time `json:"at"`
}

// AlertRecord is a persisted agent finding.
type AlertRecord struct {
	ID                  string    `json:"id"`
	Agent               string    `json:"agent"`
	Severity            string    `json:"severity"` // info, warning, critical
	Scope               string    `json:"scope"`
	Headline            string    `json:"headline"`
	Detail              string    `json:"detail"`
	AffectedNodeIDs     []string  `json:"affected_node_ids"`
	ResolutionAuthority string    `json:"resolution_authority"`
	ResolutionAction    string    `json:"resolution_action"`
	Resolved            bool      `json:"resolved"`
	At                  time.Time `json:"at"`
}

// ScanRecord summarizes one full orchestration run.
type ScanRecord struct {
	ID              string    `json:"id"`
	At              time.Time `json:"at"`
	AgentsRun       []string  `json:"agents_run"`
	TotalFindings   int       `json:"total_findings"`
	AlertsGenerated int       `json:"alerts_generated"`
	ByAgent         []byte    `json:"by_agent,omitempty"` // JSON breakdown
}

// Store is the derived-state persistence contract.
type Store interface {
	AppendTurn(ctx context.Context, conversationID, role, content string) error
	RecentTurns(ctx context.Context, conversationID string, limit int) ([]Turn, error)

	AppendUsage(ctx context.Context, rec UsageRecord) error
	UsageRecords(ctx context.Context) ([]UsageRecord, error)

	AppendScan(ctx context.Context, rec ScanRecord) error
	ScanHistory(ctx context.Context, limit int) ([]ScanRecord, error)

	SaveAlert(ctx context.Context, rec AlertRecord) error
	ListAlerts(ctx context.Context, unresolvedOnly bool) ([]AlertRecord, error)
	ResolveAlert(ctx context.Context, id, resolution string) error

	Close() error
}

// GenerateID returns a new unique identifier.
func GenerateID() string {
	return uuid.NewString()
}
