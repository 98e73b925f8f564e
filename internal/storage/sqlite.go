package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the durable derived-state store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the derived-state database, creating it if needed.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversations (
			conversation_id TEXT NOT NULL,
			ordinal         INTEGER NOT NULL,
			role            TEXT NOT NULL,
			content         TEXT NOT NULL,
			at              DATETIME NOT NULL,
			PRIMARY KEY (conversation_id, ordinal)
		);

		CREATE TABLE IF NOT EXISTS usage_log (
			model         TEXT NOT NULL,
			input_tokens  INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			cost_usd      REAL NOT NULL,
			task_type     TEXT NOT NULL,
			at            DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS scan_history (
			id               TEXT PRIMARY KEY,
			at               DATETIME NOT NULL,
			agents_run       TEXT NOT NULL,
			total_findings   INTEGER NOT NULL,
			alerts_generated INTEGER NOT NULL,
			by_agent         TEXT
		);

		CREATE TABLE IF NOT EXISTS alerts (
			id                   TEXT PRIMARY KEY,
			agent                TEXT NOT NULL,
			severity             TEXT NOT NULL,
			scope                TEXT,
			headline             TEXT NOT NULL,
			detail               TEXT,
			affected_node_ids    TEXT,
			resolution_authority TEXT,
			resolution_action    TEXT,
			resolved             INTEGER NOT NULL DEFAULT 0,
			at                   DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_usage_model ON usage_log(model);
		CREATE INDEX IF NOT EXISTS idx_alerts_resolved ON alerts(resolved);
		CREATE INDEX IF NOT EXISTS idx_scans_at ON scan_history(at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// DB exposes the underlying handle so the semantic index can share the same
// database file for its vectors table.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AppendTurn appends one conversation turn. The ordinal is assigned inside
// the INSERT so concurrent appends to the same conversation cannot collide.
func (s *SQLiteStore) AppendTurn(ctx context.Context, conversationID, role, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (conversation_id, ordinal, role, content, at)
		VALUES (?,
			(SELECT COALESCE(MAX(ordinal), 0) + 1 FROM conversations WHERE conversation_id = ?),
			?, ?, ?)
	`, conversationID, conversationID, role, content, time.Now())
	return err
}

// RecentTurns returns the last limit turns in chronological order.
func (s *SQLiteStore) RecentTurns(ctx context.Context, conversationID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id, ordinal, role, content, at
		FROM conversations
		WHERE conversation_id = ?
		ORDER BY ordinal DESC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reversed []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ConversationID, &t.Ordinal, &t.Role, &t.Content, &t.At); err != nil {
			return nil, err
		}
		reversed = append(reversed, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Turn, len(reversed))
	for i, t := range reversed {
		out[len(reversed)-1-i] = t
	}
	return out, nil
}

func (s *SQLiteStore) AppendUsage(ctx context.Context, rec UsageRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_log (model, input_tokens, output_tokens, cost_usd, task_type, at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.Model, rec.InputTokens, rec.OutputTokens, rec.Cost, rec.TaskType, rec.At)
	return err
}

func (s *SQLiteStore) UsageRecords(ctx context.Context) ([]UsageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT model, input_tokens, output_tokens, cost_usd, task_type, at
		FROM usage_log ORDER BY at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UsageRecord
	for rows.Next() {
		var r UsageRecord
		if err := rows.Scan(&r.Model, &r.InputTokens, &r.OutputTokens, &r.Cost, &r.TaskType, &r.At); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AppendScan(ctx context.Context, rec ScanRecord) error {
	agentsJSON, _ := json.Marshal(rec.AgentsRun)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scan_history (id, at, agents_run, total_findings, alerts_generated, by_agent)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.At, string(agentsJSON), rec.TotalFindings, rec.AlertsGenerated, string(rec.ByAgent))
	return err
}

func (s *SQLiteStore) ScanHistory(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, at, agents_run, total_findings, alerts_generated, by_agent
		FROM scan_history ORDER BY at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScanRecord
	for rows.Next() {
		var r ScanRecord
		var agentsJSON, byAgent sql.NullString
		if err := rows.Scan(&r.ID, &r.At, &agentsJSON, &r.TotalFindings, &r.AlertsGenerated, &byAgent); err != nil {
			return nil, err
		}
		if agentsJSON.Valid {
			json.Unmarshal([]byte(agentsJSON.String), &r.AgentsRun)
		}
		r.ByAgent = []byte(byAgent.String)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveAlert upserts an alert on its natural key.
func (s *SQLiteStore) SaveAlert(ctx context.Context, rec AlertRecord) error {
	affectedJSON, _ := json.Marshal(rec.AffectedNodeIDs)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, agent, severity, scope, headline, detail,
			affected_node_ids, resolution_authority, resolution_action, resolved, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			severity=excluded.severity, scope=excluded.scope,
			headline=excluded.headline, detail=excluded.detail,
			affected_node_ids=excluded.affected_node_ids,
			resolution_authority=excluded.resolution_authority,
			resolution_action=excluded.resolution_action
	`, rec.ID, rec.Agent, rec.Severity, rec.Scope, rec.Headline, rec.Detail,
		string(affectedJSON), rec.ResolutionAuthority, rec.ResolutionAction,
		boolToInt(rec.Resolved), rec.At)
	return err
}

func (s *SQLiteStore) ListAlerts(ctx context.Context, unresolvedOnly bool) ([]AlertRecord, error) {
	query := `
		SELECT id, agent, severity, scope, headline, detail,
		       affected_node_ids, resolution_authority, resolution_action, resolved, at
		FROM alerts
	`
	if unresolvedOnly {
		query += " WHERE resolved = 0"
	}
	query += " ORDER BY at ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AlertRecord
	for rows.Next() {
		var r AlertRecord
		var scope, detail, affectedJSON, authority, action sql.NullString
		var resolved int
		if err := rows.Scan(&r.ID, &r.Agent, &r.Severity, &scope, &r.Headline,
			&detail, &affectedJSON, &authority, &action, &resolved, &r.At); err != nil {
			return nil, err
		}
		r.Scope = scope.String
		r.Detail = detail.String
		r.ResolutionAuthority = authority.String
		r.ResolutionAction = action.String
		r.Resolved = resolved != 0
		if affectedJSON.Valid {
			json.Unmarshal([]byte(affectedJSON.String), &r.AffectedNodeIDs)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ResolveAlert(ctx context.Context, id, resolution string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE alerts SET resolved = 1,
			resolution_action = CASE WHEN ? != '' THEN ? ELSE resolution_action END
		WHERE id = ?
	`, resolution, resolution, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("alert not found: %s", id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
