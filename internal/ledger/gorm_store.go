package ledger

import (
	"fmt"

	"galachain-trade-bot-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormStore persists the ledger in sqlite via gorm. Save replaces the row set
// inside a transaction so readers never observe a half-written sequence.
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore wraps an already-migrated gorm database.
func NewGormStore(db *gorm.DB, logger *zap.Logger) *GormStore {
	return &GormStore{db: db, logger: logger}
}

func (s *GormStore) Load() ([]models.TransactionRecord, error) {
	var rows []models.LedgerRow
	if err := s.db.Order("position asc").Find(&rows).Error; err != nil {
		s.logger.Warn("Ledger table unreadable, starting empty", zap.Error(err))
		return nil, nil
	}

	records := make([]models.TransactionRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToRecord())
	}
	return records, nil
}

func (s *GormStore) Save(records []models.TransactionRecord) error {
	rows := make([]models.LedgerRow, 0, len(records))
	for i, rec := range records {
		rows = append(rows, models.RowFromRecord(rec, i))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Hard-delete: soft-deleted rows would collide with the unique
		// record id index on the next rewrite.
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&models.LedgerRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to persist ledger rows: %w", err)
	}
	return nil
}
