package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"galachain-trade-bot-go/internal/models"
	"galachain-trade-bot-go/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory Store that counts writes.
type memStore struct {
	mu       sync.Mutex
	records  []models.TransactionRecord
	saves    int
	failSave bool
}

func (s *memStore) Load() ([]models.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TransactionRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *memStore) Save(records []models.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return fmt.Errorf("disk full")
	}
	s.records = make([]models.TransactionRecord, len(records))
	copy(s.records, records)
	s.saves++
	return nil
}

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// stubComputer derives a deterministic result from the stored amounts so
// recomputation is observable and idempotent.
type stubComputer struct {
	mu    sync.Mutex
	calls int
}

func (c *stubComputer) Compute(ctx context.Context, amountIn, amountOut, tokenIn, tokenOut string) pricing.Result {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return pricing.Result{
		Pnl:           "+$" + amountOut,
		PnlPercentage: "+1.00%",
	}
}

func (c *stubComputer) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func swapRecord(amountIn, amountOut string) models.TransactionRecord {
	return models.TransactionRecord{
		Type:      models.TypeSwap,
		TokenIn:   "GALA",
		TokenOut:  "GUSDC",
		AmountIn:  amountIn,
		AmountOut: amountOut,
	}
}

func TestAppendAssignsIdentityAndPersists(t *testing.T) {
	store := &memStore{}
	l := New(store, &stubComputer{}, 0, zap.NewNop())

	before := time.Now().UnixMilli()
	id := l.Append(swapRecord("10", "0.178"))

	require.NotEmpty(t, id)
	records := l.Records(0)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, models.StatusPending, records[0].Status)
	assert.GreaterOrEqual(t, records[0].Timestamp, before)
	assert.Equal(t, 1, store.saveCount())
}

func TestUpdateStatusTransitionsOnce(t *testing.T) {
	store := &memStore{}
	l := New(store, &stubComputer{}, 0, zap.NewNop())

	id := l.Append(swapRecord("10", "0.178"))
	l.UpdateStatus(id, models.StatusCompleted, "0xabc")

	rec := l.Records(1)[0]
	assert.Equal(t, models.StatusCompleted, rec.Status)
	assert.Equal(t, "0xabc", rec.TransactionHash)

	// Unknown id is a no-op and does not persist.
	saves := store.saveCount()
	l.UpdateStatus("no-such-id", models.StatusFailed, "")
	assert.Equal(t, saves, store.saveCount())
}

func TestCapacityEvictsOldestFirst(t *testing.T) {
	store := &memStore{}
	l := New(store, &stubComputer{}, 5, zap.NewNop())

	var ids []string
	for i := 0; i < 7; i++ {
		ids = append(ids, l.Append(swapRecord(fmt.Sprintf("%d", i), "1")))
	}

	records := l.Records(0)
	require.Len(t, records, 5)
	// Newest first; the two oldest appends were evicted.
	assert.Equal(t, ids[6], records[0].ID)
	assert.Equal(t, ids[2], records[4].ID)
}

func TestRecalculateAllIsIdempotent(t *testing.T) {
	store := &memStore{}
	comp := &stubComputer{}
	l := New(store, comp, 0, zap.NewNop())

	l.Append(swapRecord("10", "0.178"))
	l.Append(swapRecord("20", "0.356"))
	// Non-swap records are never recomputed.
	l.Append(models.TransactionRecord{Type: models.TypeQuote, AmountIn: "1", AmountOut: "1"})

	l.RecalculateAll(context.Background())
	first := l.Records(0)

	l.RecalculateAll(context.Background())
	second := l.Records(0)

	assert.Equal(t, first, second)
	assert.Equal(t, 4, comp.callCount(), "two swaps recomputed twice")
	assert.Equal(t, "+$0.356", second[1].Pnl)
	assert.Equal(t, "+$0.178", second[2].Pnl)
	assert.Empty(t, second[0].Pnl, "quote-typed record untouched")
}

func TestRecalculateMostRecentSwapOnly(t *testing.T) {
	store := &memStore{}
	comp := &stubComputer{}
	l := New(store, comp, 0, zap.NewNop())

	l.Append(swapRecord("10", "0.1"))
	l.Append(swapRecord("20", "0.2"))
	l.Append(models.TransactionRecord{Type: models.TypeArbitrage})

	l.Recalculate(context.Background(), "")

	records := l.Records(0)
	assert.Equal(t, 1, comp.callCount())
	assert.Equal(t, "+$0.2", records[1].Pnl)
	assert.Empty(t, records[2].Pnl)
}

func TestRecalculateSinceWindow(t *testing.T) {
	old := models.TransactionRecord{
		ID:        "old-swap",
		Timestamp: time.Now().Add(-48 * time.Hour).UnixMilli(),
		Type:      models.TypeSwap,
		AmountIn:  "5",
		AmountOut: "0.05",
	}
	recent := models.TransactionRecord{
		ID:        "recent-swap",
		Timestamp: time.Now().UnixMilli(),
		Type:      models.TypeSwap,
		AmountIn:  "10",
		AmountOut: "0.1",
	}
	store := &memStore{records: []models.TransactionRecord{recent, old}}
	comp := &stubComputer{}
	l := New(store, comp, 0, zap.NewNop())

	l.RecalculateSince(context.Background(), 24)

	records := l.Records(0)
	assert.Equal(t, 1, comp.callCount())
	assert.Equal(t, "+$0.1", records[0].Pnl)
	assert.Empty(t, records[1].Pnl)
}

func TestPersistenceErrorKeepsLedgerOperating(t *testing.T) {
	store := &memStore{failSave: true}
	l := New(store, &stubComputer{}, 0, zap.NewNop())

	id := l.Append(swapRecord("10", "0.178"))

	// The in-memory sequence still advanced despite the failed write.
	require.Len(t, l.Records(0), 1)
	assert.Equal(t, id, l.Records(0)[0].ID)
}

func TestLoadRespectsCapacity(t *testing.T) {
	var persisted []models.TransactionRecord
	for i := 0; i < 10; i++ {
		persisted = append(persisted, models.TransactionRecord{ID: fmt.Sprintf("r%d", i), Type: models.TypeSwap})
	}
	store := &memStore{records: persisted}

	l := New(store, &stubComputer{}, 3, zap.NewNop())

	records := l.Records(0)
	require.Len(t, records, 3)
	assert.Equal(t, "r0", records[0].ID)
}
