package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/core"
)

// SQLiteIndex is a SQLite implementation of the VectorIndex interface.
// Vectors are stored as JSON blobs and scored in process.
type SQLiteIndex struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteIndex creates a new SQLite vector index
func NewSQLiteIndex(dbPath string, logger *zap.Logger) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS windows (
			id TEXT PRIMARY KEY,
			source_message_id TEXT NOT NULL,
			source_title TEXT,
			source_sender TEXT,
			source_date TEXT,
			window_index INTEGER NOT NULL,
			total_windows INTEGER NOT NULL,
			text TEXT NOT NULL,
			vector BLOB NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_source_message_id ON windows(source_message_id)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteIndex{db: db, logger: logger}, nil
}

// Upsert inserts or replaces windows with their vectors
func (s *SQLiteIndex) Upsert(ctx context.Context, windows []core.Window, vectors [][]float32) error {
	if len(windows) != len(vectors) {
		return fmt.Errorf("window/vector count mismatch: %d != %d", len(windows), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO windows (id, source_message_id, source_title, source_sender, source_date, window_index, total_windows, text, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_message_id = excluded.source_message_id,
			source_title = excluded.source_title,
			source_sender = excluded.source_sender,
			source_date = excluded.source_date,
			window_index = excluded.window_index,
			total_windows = excluded.total_windows,
			text = excluded.text,
			vector = excluded.vector
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
func (s *SQLiteIndex) Search(ctx context.Context, vector []float32, topK int, filter *core.SearchFilter) ([]core.SearchResult, error) {
	candidates, err := loadCandidates(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	return rankCandidates(candidates, vector, topK), nil
}

// DeleteBySource removes all windows belonging to a source message
func (s *SQLiteIndex) DeleteBySource(ctx context.Context, sourceMessageID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM windows WHERE source_message_id = ?`, sourceMessageID)
	if err != nil {
		return fmt.Errorf("failed to delete windows: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Debug("Deleted windows by source",
			zap.String("source_message_id", sourceMessageID),
			zap.Int64("deleted", n))
	}
	return nil
}

// Count returns the number of stored windows
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM windows`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count windows: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// loadCandidates reads stored windows, pushing exact-match filters down to
// SQL. Substring sender matching stays in process to keep semantics shared
// with the memory backend.
func loadCandidates(ctx context.Context, db *sql.DB, filter *core.SearchFilter) ([]candidate, error) {
	query := `SELECT id, source_message_id, source_title, source_sender, source_date, window_index, total_windows, text, vector FROM windows`
	var args []interface{}
	if filter != nil && filter.SourceMessageID != "" {
		query += ` WHERE source_message_id = ?`
		args = append(args, filter.SourceMessageID)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query windows: %w", err)
	}
	defer rows.Close()

	var candidates []candidate
	for rows.Next() {
		var w core.Window
		var blob []byte
		if err := rows.Scan(&w.ID, &w.SourceMessageID, &w.SourceTitle, &w.SourceSender,
			&w.SourceDate, &w.Index, &w.TotalWindows, &w.Text, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan window: %w", err)
		}
		var vec []float32
		if err := json.Unmarshal(blob, &vec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vector for %s: %w", w.ID, err)
		}
		if !matchesFilter(&w, filter) {
			continue
		}
		candidates = append(candidates, candidate{window: w, vector: vec})
	}
	return candidates, rows.Err()
}
