package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/core"
)

// MySQLIndex is a MySQL implementation of the VectorIndex interface.
// Vectors are stored as JSON blobs and scored in process.
type MySQLIndex struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLIndex creates a new MySQL vector index
func NewMySQLIndex(dsn string, logger *zap.Logger) (*MySQLIndex, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS windows (
			id VARCHAR(255) PRIMARY KEY,
			source_message_id VARCHAR(255) NOT NULL,
			source_title TEXT,
			source_sender TEXT,
			source_date VARCHAR(64),
			window_index INT NOT NULL,
			total_windows INT NOT NULL,
			text LONGTEXT NOT NULL,
			vector LONGBLOB NOT NULL,
			INDEX idx_source_message_id (source_message_id)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLIndex{db: db, logger: logger}, nil
}

// Upsert inserts or replaces windows with their vectors
func (m *MySQLIndex) Upsert(ctx context.Context, windows []core.Window, vectors [][]float32) error {
	if len(windows) != len(vectors) {
		return fmt.Errorf("window/vector count mismatch: %d != %d", len(windows), len(vectors))
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO windows (id, source_message_id, source_title, source_sender, source_date, window_index, total_windows, text, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			source_message_id = VALUES(source_message_id),
			source_title = VALUES(source_title),
			source_sender = VALUES(source_sender),
			source_date = VALUES(source_date),
			window_index = VALUES(window_index),
			total_windows = VALUES(total_windows),
			text = VALUES(text),
			vector = VALUES(vector)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, w := range windows {
		blob, err := json.Marshal(vectors[i])
		if err != nil {
			return fmt.Errorf("failed to marshal vector for %s: %w", w.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, w.ID, w.SourceMessageID, w.SourceTitle,
			w.SourceSender, w.SourceDate, w.Index, w.TotalWindows, w.Text, blob); err != nil {
			return fmt.Errorf("failed to upsert window %s: %w", w.ID, err)
		}
	}

	return tx.Commit()
}

// Search returns the topK most similar windows
func (m *MySQLIndex) Search(ctx context.Context, vector []float32, topK int, filter *core.SearchFilter) ([]core.SearchResult, error) {
	candidates, err := loadCandidates(ctx, m.db, filter)
	if err != nil {
		return nil, err
	}
	return rankCandidates(candidates, vector, topK), nil
}

// DeleteBySource removes all windows belonging to a source message
func (m *MySQLIndex) DeleteBySource(ctx context.Context, sourceMessageID string) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM windows WHERE source_message_id = ?`, sourceMessageID)
	if err != nil {
		return fmt.Errorf("failed to delete windows: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		m.logger.Debug("Deleted windows by source",
			zap.String("source_message_id", sourceMessageID),
			zap.Int64("deleted", n))
	}
	return nil
}

// Count returns the number of stored windows
func (m *MySQLIndex) Count(ctx context.Context) (int, error) {
	var count int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM windows`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count windows: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (m *MySQLIndex) Close() error {
	return m.db.Close()
}
