// Package memory provides persistent note storage backed by SQLite,
// exposed as MCP tools and a recent-notes resource.
package memory

// file: internal/providers/memory/store.go

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
)

// Record is one stored memory.
type Record struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists memory records in a SQLite database.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// NewStore opens (creating if necessary) the database at dbPath. The
// special path ":memory:" keeps everything in process memory, for tests.
func NewStore(dbPath string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, errors.Wrapf(err, "creating database directory for %s", dbPath)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening database %s", dbPath)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "pinging database %s", dbPath)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "enabling WAL")
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "setting busy timeout")
	}

	store := &Store{db: db, logger: logger.WithField("component", "memory_store")}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("Memory store opened.", "path", dbPath)
	return store, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS memories (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		tags TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_created_at ON memories(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, "initializing schema")
	}
	return nil
}

// Save stores content with optional tags and returns the new record.
func (s *Store) Save(ctx context.Context, content string, tags []string) (*Record, error) {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, errors.Wrap(err, "encoding tags")
	}

	record := &Record{
		ID:        uuid.New().String(),
		Content:   content,
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO memories (id, content, tags, created_at) VALUES (?, ?, ?, ?)",
		record.ID, record.Content, string(tagsJSON), record.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "inserting memory")
	}
	return record, nil
}

// Search returns records whose content or tags contain query, newest
// first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, tags, created_at FROM memories
		 WHERE content LIKE ? OR tags LIKE ?
		 ORDER BY created_at DESC LIMIT ?`,
		pattern, pattern, limit)
	if err != nil {
		return nil, errors.Wrap(err, "searching memories")
	}
	defer func() { _ = rows.Close() }()
	return scanRecords(rows)
}

// Recent returns the newest records.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, tags, created_at FROM memories ORDER BY created_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing recent memories")
	}
	defer func() { _ = rows.Close() }()
	return scanRecords(rows)
}

// Delete removes the record with id and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM memories WHERE id = ?", id)
	if err != nil {
		return false, errors.Wrap(err, "deleting memory")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "checking delete result")
	}
	return affected > 0, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			record   Record
			tagsJSON sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.Content, &tagsJSON, &record.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning memory row")
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &record.Tags); err != nil {
				return nil, errors.Wrap(err, "decoding tags")
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating memory rows")
	}
	return records, nil
}
