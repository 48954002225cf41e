package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"galachain-trade-bot-go/internal/models"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// FileStore persists the ledger as a JSON array on disk, rewritten wholesale
// on each mutation.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed store, creating the parent directory if
// it does not exist yet.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
		}
	}
	return &FileStore{path: path, logger: logger}, nil
}

func (s *FileStore) Load() ([]models.TransactionRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		s.logger.Warn("Ledger file unreadable, starting empty", zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}

	var records []models.TransactionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("Ledger file corrupt, starting empty", zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}
	return records, nil
}

func (s *FileStore) Save(records []models.TransactionRecord) error {
	if records == nil {
		records = []models.TransactionRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger file %s: %w", s.path, err)
	}
	return nil
}
