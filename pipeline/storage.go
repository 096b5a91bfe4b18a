package pipeline

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage caches fetched raw dataset rows in SQLite so a retrain can run
// without the network. It holds ETL input only; model artifacts stay on the
// registry's flat files.
type Storage struct {
	db *sql.DB
}

// OpenStorage opens (and if needed creates) the cache database.
func OpenStorage(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	query := `
    CREATE TABLE IF NOT EXISTS raw_rows (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        row TEXT NOT NULL
    );
    CREATE TABLE IF NOT EXISTS fetches (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        source_url TEXT NOT NULL,
        row_count INTEGER NOT NULL,
        fetched_at DATETIME NOT NULL
    );`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache tables: %w", err)
	}

	return &Storage{db: db}, nil
}

// SaveRows replaces the cached rows with a fresh fetch.
func (s *Storage) SaveRows(sourceURL string, records [][]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM raw_rows`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO raw_rows (row) VALUES (?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.Exec(strings.Join(record, ",")); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO fetches (source_url, row_count, fetched_at) VALUES (?, ?, ?)`,
		sourceURL, len(records), time.Now().UTC(),
	); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadRows returns the cached rows from the most recent fetch.
func (s *Storage) LoadRows() ([][]string, error) {
	rows, err := s.db.Query(`SELECT row FROM raw_rows ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		records = append(records, strings.Split(line, ","))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset cache is empty")
	}
	return records, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}
