package ledger

import "galachain-trade-bot-go/internal/models"

// Store is the durable backing of the transaction ledger. The ledger reads
// once at construction and rewrites the whole sequence on every mutation; no
// partial-write recovery is attempted, since the exchange remains the source
// of truth for actual settlement.
type Store interface {
	// Load returns the persisted records, newest first. A missing or corrupt
	// backing store yields an empty slice, not an error.
	Load() ([]models.TransactionRecord, error)

	// Save replaces the persisted sequence wholesale.
	Save(records []models.TransactionRecord) error
}
