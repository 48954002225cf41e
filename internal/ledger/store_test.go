package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"galachain-trade-bot-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "transactions.json")
	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	// Missing file reads as empty.
	records, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, records)

	want := []models.TransactionRecord{
		{ID: "a", Type: models.TypeSwap, TokenIn: "GALA", TokenOut: "GUSDC", AmountIn: "10", AmountOut: "0.178", Status: models.StatusCompleted},
		{ID: "b", Type: models.TypeQuote, Status: models.StatusPending},
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	records, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

// setupGormStore creates a store over a fresh in-memory database.
func setupGormStore(t *testing.T) *GormStore {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LedgerRow{}))
	return NewGormStore(db, zap.NewNop())
}

func TestGormStoreRoundTrip(t *testing.T) {
	store := setupGormStore(t)

	want := []models.TransactionRecord{
		{ID: "newest", Type: models.TypeSwap, TokenIn: "GALA", TokenOut: "GUSDC", AmountIn: "10", AmountOut: "0.178", Status: models.StatusFailed, Pnl: "-$0.0090", PnlPercentage: "-5.29%"},
		{ID: "oldest", Type: models.TypeSwap, Status: models.StatusCompleted, TransactionHash: "0xabc"},
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGormStoreRewriteReplacesRows(t *testing.T) {
	store := setupGormStore(t)

	require.NoError(t, store.Save([]models.TransactionRecord{{ID: "a"}, {ID: "b"}}))
	// Same id persists again after a rewrite; the old row must be gone.
	require.NoError(t, store.Save([]models.TransactionRecord{{ID: "b"}}))

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}
