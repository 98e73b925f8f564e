package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/meridianlabs/nexus/internal/slogutil"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nexus.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Turns(t *testing.T) {
	ctx := context.Background()

	t.Run("Given sequential appends When RecentTurns read Then turns come back in call order", func(t *testing.T) {
		store := newTestSQLite(t)

		store.AppendTurn(ctx, "c1", "user", "first question")
		store.AppendTurn(ctx, "c1", "assistant", "first answer")
		store.AppendTurn(ctx, "c1", "user", "second question")
		store.AppendTurn(ctx, "c1", "assistant", "second answer")

		turns, err := store.RecentTurns(ctx, "c1", 10)
		if err != nil {
			t.Fatalf("RecentTurns failed: %v", err)
		}
		if len(turns) != 4 {
			t.Fatalf("expected 4 turns, got %d", len(turns))
		}
		wantRoles := []string{"user", "assistant", "user", "assistant"}
		for i, turn := range turns {
			if turn.Role != wantRoles[i] {
				t.Errorf("turn %d: expected role %s, got %s", i, wantRoles[i], turn.Role)
			}
			if turn.Ordinal != i+1 {
				t.Errorf("turn %d: expected ordinal %d, got %d", i, i+1, turn.Ordinal)
			}
		}
	})

	t.Run("Given more turns than the limit When RecentTurns read Then only the most recent survive, chronological", func(t *testing.T) {
		store := newTestSQLite(t)
		for i := 0; i < 6; i++ {
			role := "user"
			if i%2 == 1 {
				role = "assistant"
			}
			store.AppendTurn(ctx, "c2", role, "turn")
		}

		turns, err := store.RecentTurns(ctx, "c2", 4)
		if err != nil {
			t.Fatalf("RecentTurns failed: %v", err)
		}
		if len(turns) != 4 {
			t.Fatalf("expected 4 turns, got %d", len(turns))
		}
		if turns[0].Ordinal != 3 || turns[3].Ordinal != 6 {
			t.Errorf("expected ordinals 3..6, got %d..%d", turns[0].Ordinal, turns[3].Ordinal)
		}
	})

	t.Run("Given two conversations When turns read Then they do not interleave", func(t *testing.T) {
		store := newTestSQLite(t)
		store.AppendTurn(ctx, "a", "user", "for a")
		store.AppendTurn(ctx, "b", "user", "for b")

		turns, _ := store.RecentTurns(ctx, "a", 10)
		if len(turns) != 1 || turns[0].Content != "for a" {
			t.Errorf("unexpected turns for conversation a: %+v", turns)
		}
	})
}

func TestSQLiteStore_Alerts(t *testing.T) {
	ctx := context.Background()

	t.Run("Given the same alert saved twice When listed Then only one row exists", func(t *testing.T) {
		store := newTestSQLite(t)
		rec := AlertRecord{
			ID: "alert-1", Agent: "contradiction", Severity: "critical",
			Headline: "pricing conflict", AffectedNodeIDs: []string{"c-1", "c-2"},
			At: time.Now(),
		}

		store.SaveAlert(ctx, rec)
		rec.Detail = "updated detail"
		store.SaveAlert(ctx, rec)

		alerts, err := store.ListAlerts(ctx, false)
		if err != nil {
			t.Fatalf("ListAlerts failed: %v", err)
		}
		if len(alerts) != 1 {
			t.Fatalf("expected 1 alert after upsert, got %d", len(alerts))
		}
		if alerts[0].Detail != "updated detail" {
			t.Errorf("expected upsert to update detail, got %q", alerts[0].Detail)
		}
		if len(alerts[0].AffectedNodeIDs) != 2 {
			t.Errorf("expected 2 affected node ids, got %v", alerts[0].AffectedNodeIDs)
		}
	})

	t.Run("Given a resolved alert When unresolved alerts listed Then it is excluded", func(t *testing.T) {
		store := newTestSQLite(t)
		store.SaveAlert(ctx, AlertRecord{ID: "a1", Agent: "silo", Severity: "warning", Headline: "h", At: time.Now()})
		store.SaveAlert(ctx, AlertRecord{ID: "a2", Agent: "silo", Severity: "warning", Headline: "h", At: time.Now()})

		if err := store.ResolveAlert(ctx, "a1", "bridged the teams"); err != nil {
			t.Fatalf("ResolveAlert failed: %v", err)
		}

		unresolved, _ := store.ListAlerts(ctx, true)
		if len(unresolved) != 1 || unresolved[0].ID != "a2" {
			t.Errorf("expected only a2 unresolved, got %+v", unresolved)
		}
	})

	t.Run("Given a missing alert When resolved Then an error is returned", func(t *testing.T) {
		store := newTestSQLite(t)
		if err := store.ResolveAlert(ctx, "nope", ""); err == nil {
			t.Error("expected error resolving missing alert")
		}
	})
}

func TestSQLiteStore_UsageAndScans(t *testing.T) {
	ctx := context.Background()

	t.Run("Given appended usage records When read back Then the ledger is intact", func(t *testing.T) {
		store := newTestSQLite(t)
		store.AppendUsage(ctx, UsageRecord{Model: "gpt-4o", InputTokens: 100, OutputTokens: 20, Cost: 0.00045, TaskType: "complex_ask", At: time.Now()})
		store.AppendUsage(ctx, UsageRecord{Model: "gpt-4o-mini", InputTokens: 50, OutputTokens: 10, Cost: 0.0000135, TaskType: "classify", At: time.Now()})

		recs, err := store.UsageRecords(ctx)
		if err != nil {
			t.Fatalf("UsageRecords failed: %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("expected 2 records, got %d", len(recs))
		}
		if recs[0].Model != "gpt-4o" {
			t.Errorf("expected first model gpt-4o, got %s", recs[0].Model)
		}
	})

	t.Run("Given scan records When history read Then newest comes first", func(t *testing.T) {
		store := newTestSQLite(t)
		store.AppendScan(ctx, ScanRecord{ID: "s1", At: time.Now().Add(-time.Hour), AgentsRun: []string{"silo"}, TotalFindings: 1})
		store.AppendScan(ctx, ScanRecord{ID: "s2", At: time.Now(), AgentsRun: []string{"silo", "drift"}, TotalFindings: 3})

		history, err := store.ScanHistory(ctx, 10)
		if err != nil {
			t.Fatalf("ScanHistory failed: %v", err)
		}
		if len(history) != 2 || history[0].ID != "s2" {
			t.Errorf("expected s2 first, got %+v", history)
		}
		if len(history[0].AgentsRun) != 2 {
			t.Errorf("expected agents_run round-trip, got %v", history[0].AgentsRun)
		}
	})
}

func TestDual_Fallback(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a failing durable store When writes happen Then callers never see an error", func(t *testing.T) {
		failing := &failingStore{}
		dual := NewDual(failing, slogutil.NewDiscard())

		if err := dual.AppendTurn(ctx, "c1", "user", "hello"); err != nil {
			t.Fatalf("AppendTurn surfaced persistence failure: %v", err)
		}
		if err := dual.AppendUsage(ctx, UsageRecord{Model: "gpt-4o"}); err != nil {
			t.Fatalf("AppendUsage surfaced persistence failure: %v", err)
		}
		if err := dual.AppendScan(ctx, ScanRecord{ID: "s1"}); err != nil {
			t.Fatalf("AppendScan surfaced persistence failure: %v", err)
		}
		if failing.Calls == 0 {
			t.Error("expected durable store to be attempted first")
		}
	})

	t.Run("Given a failing durable store When reads happen Then the in-memory copy serves them", func(t *testing.T) {
		dual := NewDual(&failingStore{}, slogutil.NewDiscard())
		dual.AppendTurn(ctx, "c1", "user", "hello")
		dual.AppendTurn(ctx, "c1", "assistant", "hi")

		turns, err := dual.RecentTurns(ctx, "c1", 10)
		if err != nil {
			t.Fatalf("RecentTurns failed: %v", err)
		}
		if len(turns) != 2 {
			t.Errorf("expected 2 turns from memory fallback, got %d", len(turns))
		}
	})

	t.Run("Given no durable store When operations run Then memory alone serves them", func(t *testing.T) {
		dual := NewDual(nil, slogutil.NewDiscard())
		dual.SaveAlert(ctx, AlertRecord{ID: "a1", Agent: "drift", Severity: "info", Headline: "h", At: time.Now()})

		alerts, err := dual.ListAlerts(ctx, true)
		if err != nil {
			t.Fatalf("ListAlerts failed: %v", err)
		}
		if len(alerts) != 1 {
			t.Errorf("expected 1 alert, got %d", len(alerts))
		}
	})
}
