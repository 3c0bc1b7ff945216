package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/k3dep/hunterd/pkg/logging"
	"github.com/k3dep/hunterd/pkg/protocol"
)

// TuneStore persists the daemon's tuning history with a SQLite backend:
// one row per successful tune, trimmed to a maximum row count.
type TuneStore struct {
	db         *sql.DB
	dbPath     string
	maxEntries int
}

// NewTuneStore creates a tune store at dbPath, keeping at most maxEntries rows.
func NewTuneStore(dbPath string, maxEntries int) (*TuneStore, error) {
	store := &TuneStore{
		dbPath:     dbPath,
		maxEntries: maxEntries,
	}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize tune store: %w", err)
	}

	return store, nil
}

func (ts *TuneStore) initialize() error {
	if ts.dbPath == "" {
		ts.dbPath = "./hunterd.db"
	}

	if err := os.MkdirAll(filepath.Dir(ts.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	connectionString := ts.dbPath + "?_busy_timeout=10000&_journal_mode=WAL"

	db, err := sql.Open("sqlite3", connectionString)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	ts.db = db

	if err := ts.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	logging.Infof("storage", "tune store initialized: %s (max %d entries)", ts.dbPath, ts.maxEntries)
	return nil
}

func (ts *TuneStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tunes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		model TEXT NOT NULL,
		frequency INTEGER NOT NULL,
		mode TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_tunes_timestamp ON tunes(timestamp);
	`

	_, err := ts.db.Exec(schema)
	return err
}

// Record appends one tune to the history and trims old rows past the cap.
func (ts *TuneStore) Record(model string, frequency int64, mode string) error {
	_, err := ts.db.Exec(
		`INSERT INTO tunes (model, frequency, mode) VALUES (?, ?, ?)`,
		model, frequency, mode,
	)
	if err != nil {
		return fmt.Errorf("failed to record tune: %w", err)
	}

	return ts.trim()
}

// Recent returns up to limit history rows, newest first.
func (ts *TuneStore) Recent(limit int) ([]protocol.TuneEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := ts.db.Query(
		`SELECT id, timestamp, model, frequency, mode
		 FROM tunes ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tune history: %w", err)
	}
	defer rows.Close()

	var entries []protocol.TuneEntry
	for rows.Next() {
		var e protocol.TuneEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Model, &e.Frequency, &e.Mode); err != nil {
			return nil, fmt.Errorf("failed to scan tune row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored tunes.
func (ts *TuneStore) Count() (int, error) {
	var n int
	err := ts.db.QueryRow(`SELECT COUNT(*) FROM tunes`).Scan(&n)
	return n, err
}

func (ts *TuneStore) trim() error {
	if ts.maxEntries <= 0 {
		return nil
	}
	_, err := ts.db.Exec(
		`DELETE FROM tunes WHERE id NOT IN
		 (SELECT id FROM tunes ORDER BY id DESC LIMIT ?)`, ts.maxEntries)
	return err
}

// Close closes the database.
func (ts *TuneStore) Close() error {
	if ts.db != nil {
		return ts.db.Close()
	}
	return nil
}
