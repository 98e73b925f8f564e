package llm

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/meridianlabs/nexus/internal/storage"
)

// modelPrice is USD per 1M tokens.
type modelPrice struct {
	input  float64
	output float64
}

var pricing = map[string]modelPrice{
	"gpt-5.2":                {input: 1.75, output: 14.00},
	"gpt-4o":                 {input: 2.50, output: 10.00},
	"gpt-4o-mini":            {input: 0.15, output: 0.60},
	"text-embedding-3-large": {input: 0.13, output: 0},
}

// Unknown models are billed at the heavy-tier rate rather than zero so the
// ledger never understates spend.
var defaultPrice = modelPrice{input: 2.50, output: 10.00}

// UsageSink is where the tracker persists its ledger. storage.Dual
// satisfies it.
type UsageSink interface {
	AppendUsage(ctx context.Context, rec storage.UsageRecord) error
	UsageRecords(ctx context.Context) ([]storage.UsageRecord, error)
}

// Tracker meters token usage and cost per call.
type Tracker struct {
	sink   UsageSink
	logger *slog.Logger
}

// NewTracker creates a usage tracker over the given sink.
func NewTracker(sink UsageSink, logger *slog.Logger) *Tracker {
	return &Tracker{sink: sink, logger: logger}
}

// Record appends one ledger entry. Recording never fails the triggering
// call; failures are logged and dropped.
func (t *Tracker) Record(ctx context.Context, model string, inputTokens, outputTokens int, taskType string) {
	price, ok := pricing[model]
	if !ok {
		price = defaultPrice
	}
	cost := (float64(inputTokens)*price.input + float64(outputTokens)*price.output) / 1_000_000

	rec := storage.UsageRecord{
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         math.Round(cost*1e6) / 1e6,
		TaskType:     taskType,
		At:           time.Now(),
	}
	if err := t.sink.AppendUsage(ctx, rec); err != nil {
		t.logger.Warn("usage record dropped", "model", model, "error", err)
	}
}

// ModelUsage aggregates the ledger for one model.
type ModelUsage struct {
	Calls        int     `json:"calls"`
	Cost         float64 `json:"cost_usd"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
}

// TaskUsage aggregates the ledger for one task type.
type TaskUsage struct {
	Calls int     `json:"calls"`
	Cost  float64 `json:"cost_usd"`
}

// Summary is the aggregated view of the usage ledger.
type Summary struct {
	TotalCalls        int                   `json:"total_calls"`
	TotalInputTokens  int                   `json:"total_input_tokens"`
	TotalOutputTokens int                   `json:"total_output_tokens"`
	TotalCost         float64               `json:"total_cost_usd"`
	ByModel           map[string]ModelUsage `json:"by_model"`
	ByTask            map[string]TaskUsage  `json:"by_task_type"`
}

// Summarize folds the full ledger into totals by model and task type.
func (t *Tracker) Summarize(ctx context.Context) (*Summary, error) {
	recs, err := t.sink.UsageRecords(ctx)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		ByModel: make(map[string]ModelUsage),
		ByTask:  make(map[string]TaskUsage),
	}
	for _, r := range recs {
		s.TotalCalls++
		s.TotalInputTokens += r.InputTokens
		s.TotalOutputTokens += r.OutputTokens
		s.TotalCost += r.Cost

		m := s.ByModel[r.Model]
		m.Calls++
		m.Cost += r.Cost
		m.InputTokens += r.InputTokens
		m.OutputTokens += r.OutputTokens
		s.ByModel[r.Model] = m

		tk := s.ByTask[r.TaskType]
		tk.Calls++
		tk.Cost += r.Cost
		s.ByTask[r.TaskType] = tk
	}
	s.TotalCost = math.Round(s.TotalCost*1e4) / 1e4
	return s, nil
}
