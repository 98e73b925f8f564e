package storage

import (
	"context"
	"log/slog"
)

// Dual routes every operation to the durable store first and keeps an
// in-memory mirror as fallback. Writes that fail durably are logged at Warn
// and succeed against the mirror; reads prefer durable data and fall back to
// the mirror. Callers never see a persistence failure.
type Dual struct {
	durable Store // may be nil when no database is provisioned
	memory  *MemoryStore
	logger  *slog.Logger
}

// NewDual wraps a durable store (which may be nil) with an in-memory mirror.
func NewDual(durable Store, logger *slog.Logger) *Dual {
	return &Dual{
		durable: durable,
		memory:  NewMemoryStore(),
		logger:  logger,
	}
}

func (d *Dual) write(ctx context.Context, op string, durable, memory func() error) error {
	if d.durable != nil {
		if err := durable(); err != nil {
			d.logger.Warn("durable write failed, using in-memory fallback",
				"op", op, "error", err)
		}
	}
	// The mirror is always written so reads can fall back to it.
	return memory()
}

func (d *Dual) AppendTurn(ctx context.Context, conversationID, role, content string) error {
	return d.write(ctx, "append_turn",
		func() error {
			if d.durable == nil {
				return nil
			}
			return d.durable.AppendTurn(ctx, conversationID, role, content)
		},
		func() error { return d.memory.AppendTurn(ctx, conversationID, role, content) })
}

func (d *Dual) RecentTurns(ctx context.Context, conversationID string, limit int) ([]Turn, error) {
	if d.durable != nil {
		turns, err := d.durable.RecentTurns(ctx, conversationID, limit)
		if err == nil && len(turns) > 0 {
			return turns, nil
		}
		if err != nil {
			d.logger.Warn("durable read failed, using in-memory fallback",
				"op", "recent_turns", "error", err)
		}
	}
	return d.memory.RecentTurns(ctx, conversationID, limit)
}

func (d *Dual) AppendUsage(ctx context.Context, rec UsageRecord) error {
	return d.write(ctx, "append_usage",
		func() error {
			if d.durable == nil {
				return nil
			}
			return d.durable.AppendUsage(ctx, rec)
		},
		func() error { return d.memory.AppendUsage(ctx, rec) })
}

func (d *Dual) UsageRecords(ctx context.Context) ([]UsageRecord, error) {
	if d.durable != nil {
		recs, err := d.durable.UsageRecords(ctx)
		if err == nil && len(recs) > 0 {
			return recs, nil
		}
		if err != nil {
			d.logger.Warn("durable read failed, using in-memory fallback",
				"op", "usage_records", "error", err)
		}
	}
	return d.memory.UsageRecords(ctx)
}

func (d *Dual) AppendScan(ctx context.Context, rec ScanRecord) error {
	return d.write(ctx, "append_scan",
		func() error {
			if d.durable == nil {
				return nil
			}
			return d.durable.AppendScan(ctx, rec)
		},
		func() error { return d.memory.AppendScan(ctx, rec) })
}

func (d *Dual) ScanHistory(ctx context.Context, limit int) ([]ScanRecord, error) {
	if d.durable != nil {
		recs, err := d.durable.ScanHistory(ctx, limit)
		if err == nil && len(recs) > 0 {
			return recs, nil
		}
		if err != nil {
			d.logger.Warn("durable read failed, using in-memory fallback",
				"op", "scan_history", "error", err)
		}
	}
	return d.memory.ScanHistory(ctx, limit)
}

func (d *Dual) SaveAlert(ctx context.Context, rec AlertRecord) error {
	return d.write(ctx, "save_alert",
		func() error {
			if d.durable == nil {
				return nil
			}
			return d.durable.SaveAlert(ctx, rec)
		},
		func() error { return d.memory.SaveAlert(ctx, rec) })
}

func (d *Dual) ListAlerts(ctx context.Context, unresolvedOnly bool) ([]AlertRecord, error) {
	if d.durable != nil {
		recs, err := d.durable.ListAlerts(ctx, unresolvedOnly)
		if err == nil && len(recs) > 0 {
			return recs, nil
		}
		if err != nil {
			d.logger.Warn("durable read failed, using in-memory fallback",
				"op", "list_alerts", "error", err)
		}
	}
	return d.memory.ListAlerts(ctx, unresolvedOnly)
}

func (d *Dual) ResolveAlert(ctx context.Context, id, resolution string) error {
	if d.durable != nil {
		if err := d.durable.ResolveAlert(ctx, id, resolution); err != nil {
			d.logger.Warn("durable write failed, using in-memory fallback",
				"op", "resolve_alert", "error", err)
		}
	}
	return d.memory.ResolveAlert(ctx, id, resolution)
}

func (d *Dual) Close() error {
	if d.durable != nil {
		return d.durable.Close()
	}
	return nil
}
