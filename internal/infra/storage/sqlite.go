package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"order_matching/internal/domain"
)

// Journal archives finished sessions and their executions in SQLite.
// It is write-mostly: nothing reads it back to rebuild a book.
type Journal struct {
	db *gorm.DB
}

// NewJournal opens (or creates) the journal database at path.
func NewJournal(path string) (*Journal, error) {
	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.SessionRecord{}, &domain.ExecutionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close releases the underlying connection pool.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Begin starts buffering executions for sessionID.
func (j *Journal) Begin(sessionID string) *SessionWriter {
	return &SessionWriter{journal: j, sessionID: sessionID}
}

// GetSession retrieves a session row by id.
func (j *Journal) GetSession(sessionID string) (*domain.SessionRecord, error) {
	var rec domain.SessionRecord
	err := j.db.First(&rec, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListExecutions returns a session's executions in emission order.
func (j *Journal) ListExecutions(sessionID string) ([]domain.ExecutionRecord, error) {
	var recs []domain.ExecutionRecord
	err := j.db.Where("session_id = ?", sessionID).Order("emission asc").Find(&recs).Error
	return recs, err
}

// ======================================================================================
// Session Writer
// ======================================================================================

// SessionWriter buffers one session's executions. It implements
// domain.ExecutionSink and is driven from the sequencer goroutine only.
type SessionWriter struct {
	journal   *Journal
	sessionID string
	rows      []domain.ExecutionRecord
}

// OnTrade buffers a trade row.
func (w *SessionWriter) OnTrade(ev domain.TradeEvent) {
	w.rows = append(w.rows, domain.ExecutionRecord{
		SessionID: w.sessionID,
		Emission:  len(w.rows),
		Kind:      domain.KindTrade,
		OrderID:   ev.OrderID,
		Side:      ev.Side.String(),
		Quantity:  ev.Quantity,
		Price:     decimal.NewNullDecimal(ev.Price),
	})
}

// OnUnexecuted buffers an unexecuted row.
func (w *SessionWriter) OnUnexecuted(ev domain.UnexecutedEvent) {
	w.rows = append(w.rows, domain.ExecutionRecord{
		SessionID: w.sessionID,
		Emission:  len(w.rows),
		Kind:      domain.KindUnexecuted,
		OrderID:   ev.OrderID,
		Side:      ev.Side.String(),
		Quantity:  ev.Quantity,
	})
}

// Pending returns the number of buffered rows.
func (w *SessionWriter) Pending() int {
	return len(w.rows)
}

// Commit writes the session row and every buffered execution in one transaction.
func (w *SessionWriter) Commit(rec domain.SessionRecord) error {
	if rec.ID != w.sessionID {
		return fmt.Errorf("session id mismatch: writer %s, record %s", w.sessionID, rec.ID)
	}

	err := w.journal.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		if len(w.rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(w.rows, 500).Error
	})
	if err != nil {
		return fmt.Errorf("failed to commit session %s: %w", w.sessionID, err)
	}

	w.rows = nil
	return nil
}
