package progress

import (
	"context"
	"log/slog"
	"sync"

	"github.com/addy1947/web-scrapping/internal/models"
)

// Sink receives the cumulative record set after every processed URL.
// Durability and format are the sink's concern; the runner only promises
// to call once per record, in input order, with the records so far.
type Sink interface {
	Persist(ctx context.Context, batchID string, records []models.MedicineRecord) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, batchID string, records []models.MedicineRecord) error

func (f SinkFunc) Persist(ctx context.Context, batchID string, records []models.MedicineRecord) error {
	return f(ctx, batchID, records)
}

// MultiSink fans a checkpoint out to several sinks. A failing sink is
// logged and skipped; checkpointing is best-effort and must never stall
// the batch.
type MultiSink struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{
		sinks:  sinks,
		logger: slog.Default().With("component", "progress"),
	}
}

func (m *MultiSink) Persist(ctx context.Context, batchID string, records []models.MedicineRecord) error {
	for _, s := range m.sinks {
		if err := s.Persist(ctx, batchID, records); err != nil {
			m.logger.Warn("progress sink failed", "batch", batchID, "error", err)
		}
	}
	return nil
}

// Tracker keeps the latest snapshot in memory for status reporting.
type Tracker struct {
	mu      sync.RWMutex
	batchID string
	total   int
	records []models.MedicineRecord
}

func NewTracker(total int) *Tracker {
	return &Tracker{total: total}
}

func (t *Tracker) Persist(_ context.Context, batchID string, records []models.MedicineRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batchID = batchID
	t.records = records
	return nil
}

// Status returns the batch id, processed/total counts, and outcome summary.
func (t *Tracker) Status() (string, int, int, models.Summary) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.batchID, len(t.records), t.total, models.Summarize(t.records)
}

// Records returns a copy of the latest snapshot.
func (t *Tracker) Records() []models.MedicineRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.MedicineRecord, len(t.records))
	copy(out, t.records)
	return out
}
