// Package runlog records processed files in a local SQLite database.
package runlog

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store is the run log database. One row is written per processed input
// file; a run id groups the files of one invocation.
type Store struct {
	db    *sql.DB
	runID string
}

// Open opens (and if needed creates) the run log database at path and
// starts a new run.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create run log directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping run log: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, runID: uuid.NewString()}, nil
}

// RunID returns the identifier of the current run.
func (s *Store) RunID() string {
	return s.runID
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Start records a file as being processed and returns its log id.
func (s *Store) Start(source string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO run_logs (run_id, source, status)
		VALUES (?, ?, 'processing')
	`, s.runID, source)
	if err != nil {
		return 0, fmt.Errorf("create run log entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run log entry id: %w", err)
	}
	return id, nil
}

// Finish completes a file's log entry with its change counts and status.
// The per-fixer counts are stored as JSON next to their summed total.
func (s *Store) Finish(id int64, fixerCounts map[string]int, crimpChanges, outputs int, status, errorMessage string) error {
	total := 0
	for _, n := range fixerCounts {
		total += n
	}
	detail := ""
	if len(fixerCounts) > 0 {
		b, err := json.Marshal(fixerCounts)
		if err != nil {
			return fmt.Errorf("encode fixer counts: %w", err)
		}
		detail = string(b)
	}

	_, err := s.db.Exec(`
		UPDATE run_logs SET
			fix_changes = ?,
			fix_detail = ?,
			crimp_changes = ?,
			outputs = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, total, detail, crimpChanges, outputs, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("update run log entry: %w", err)
	}
	return nil
}
