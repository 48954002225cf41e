package ledger

import (
	"context"
	"sync"
	"time"

	"galachain-trade-bot-go/internal/models"
	"galachain-trade-bot-go/internal/pricing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultCapacity is how many records the ledger retains before FIFO
// truncation of the oldest entries.
const DefaultCapacity = 1000

// PnlComputer re-values both legs of a recorded swap. Satisfied by
// *pricing.Calculator.
type PnlComputer interface {
	Compute(ctx context.Context, amountIn, amountOut, tokenIn, tokenOut string) pricing.Result
}

// Ledger is the append-only, capacity-bounded transaction log. It exclusively
// owns the ordered sequence (newest first); callers hold record ids, never
// references into it. All mutations persist synchronously to the store.
type Ledger struct {
	mu       sync.Mutex
	logger   *zap.Logger
	store    Store
	calc     PnlComputer
	capacity int
	records  []models.TransactionRecord
}

// New creates a ledger, reading the store once. A broken store starts the
// ledger empty rather than failing startup.
func New(store Store, calc PnlComputer, capacity int, logger *zap.Logger) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	records, err := store.Load()
	if err != nil {
		logger.Warn("Failed to load persisted ledger, starting empty", zap.Error(err))
		records = nil
	}
	if len(records) > capacity {
		records = records[:capacity]
	}
	return &Ledger{
		logger:   logger,
		store:    store,
		calc:     calc,
		capacity: capacity,
		records:  records,
	}
}

// Append assigns a unique id and the current timestamp, inserts the record at
// the head, and persists. It returns the assigned id.
func (l *Ledger) Append(rec models.TransactionRecord) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.Timestamp = time.Now().UnixMilli()
	if rec.Status == "" {
		rec.Status = models.StatusPending
	}

	l.records = append([]models.TransactionRecord{rec}, l.records...)
	if len(l.records) > l.capacity {
		l.records = l.records[:l.capacity]
	}

	l.persistLocked()
	return rec.ID
}

// UpdateStatus moves a record to its terminal status, attaching the
// transaction hash when one exists. An unknown id is a logged no-op.
func (l *Ledger) UpdateStatus(id string, status models.TransactionStatus, hash string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.records {
		if l.records[i].ID == id {
			l.records[i].Status = status
			if hash != "" {
				l.records[i].TransactionHash = hash
			}
			l.persistLocked()
			return
		}
	}
	l.logger.Debug("Status update for unknown record id", zap.String("id", id))
}

// Records returns a copy of the most recent records, newest first. A
// non-positive limit returns everything.
func (l *Ledger) Records(limit int) []models.TransactionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.TransactionRecord, n)
	copy(out, l.records[:n])
	return out
}

// Len reports how many records the ledger currently holds.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Recalculate re-prices one swap record by id, or the most recent swap when
// id is empty.
func (l *Ledger) Recalculate(ctx context.Context, id string) {
	l.recalculate(ctx, func(rec models.TransactionRecord) bool {
		if id != "" {
			return rec.ID == id
		}
		return true
	}, true)
}

// RecalculateAll re-prices every swap record against stored amounts.
func (l *Ledger) RecalculateAll(ctx context.Context) {
	l.recalculate(ctx, func(models.TransactionRecord) bool { return true }, false)
}

// RecalculateSince re-prices swap records from the trailing window of hours.
func (l *Ledger) RecalculateSince(ctx context.Context, hours int) {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour).UnixMilli()
	l.recalculate(ctx, func(rec models.TransactionRecord) bool {
		return rec.Timestamp >= cutoff
	}, false)
}

// recalculate runs the PnL computer over matching swap-typed records in
// chronological order and persists once after the batch. firstOnly limits the
// pass to the newest matching swap.
func (l *Ledger) recalculate(ctx context.Context, match func(models.TransactionRecord) bool, firstOnly bool) {
	// Copy targets out so network-bound pricing never runs under the lock.
	l.mu.Lock()
	var targets []models.TransactionRecord
	for _, rec := range l.records {
		if rec.Type != models.TypeSwap || !match(rec) {
			continue
		}
		targets = append(targets, rec)
		if firstOnly {
			break
		}
	}
	l.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	// Records are stored newest first; recompute oldest first.
	results := make(map[string]pricing.Result, len(targets))
	for i := len(targets) - 1; i >= 0; i-- {
		rec := targets[i]
		results[rec.ID] = l.calc.Compute(ctx, rec.AmountIn, rec.AmountOut, rec.TokenIn, rec.TokenOut)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	updated := 0
	for i := range l.records {
		if result, ok := results[l.records[i].ID]; ok {
			l.records[i].Pnl = result.Pnl
			l.records[i].PnlPercentage = result.PnlPercentage
			updated++
		}
	}
	if updated > 0 {
		l.persistLocked()
	}
	l.logger.Info("Recalculated PnL for ledger records", zap.Int("count", updated))
}

// persistLocked rewrites the store; persistence errors are logged and the
// ledger keeps operating in memory.
func (l *Ledger) persistLocked() {
	if err := l.store.Save(l.records); err != nil {
		l.logger.Error("Failed to persist ledger", zap.Error(err))
	}
}
