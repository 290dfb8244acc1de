// Package ledger tracks which Drive files have already been ingested
// across runs, so re-running the scraper against a folder that keeps
// accumulating exports doesn't re-process files it has already seen. Each
// file is still downloaded, since its content hash is what the ledger
// compares. This is not present in the original scraper (which always
// re-pulled everything); it's a local addition adapted from the teacher
// CLI's sqlite session store.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger wraps a SQLite database recording (drive_file_id -> last-seen
// content hash and ingestion time).
type Ledger struct {
	conn *sql.DB
}

// Open opens or creates the ledger database at path, creating parent
// directories as needed.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	l := &Ledger{conn: conn}
	if err := l.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) Close() error {
	return l.conn.Close()
}

func (l *Ledger) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingested_files (
		drive_file_id TEXT PRIMARY KEY,
		folder_id     TEXT NOT NULL,
		content_hash  TEXT NOT NULL,
		ingested_at   DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ingested_files_folder ON ingested_files(folder_id);
	`
	if _, err := l.conn.Exec(schema); err != nil {
		return fmt.Errorf("initialize ledger schema: %w", err)
	}
	return nil
}

// AlreadyIngested reports whether fileID was previously ingested with
// exactly this content hash — if the file changed since, it's treated as
// new.
func (l *Ledger) AlreadyIngested(fileID, contentHash string) (bool, error) {
	var existing string
	err := l.conn.QueryRow(
		`SELECT content_hash FROM ingested_files WHERE drive_file_id = ?`, fileID,
	).Scan(&existing)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query ledger for %q: %w", fileID, err)
	}
	return existing == contentHash, nil
}

// Record marks fileID as ingested with contentHash at time at.
func (l *Ledger) Record(fileID, folderID, contentHash string, at time.Time) error {
	_, err := l.conn.Exec(
		`INSERT INTO ingested_files (drive_file_id, folder_id, content_hash, ingested_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(drive_file_id) DO UPDATE SET content_hash = excluded.content_hash, ingested_at = excluded.ingested_at`,
		fileID, folderID, contentHash, at,
	)
	if err != nil {
		return fmt.Errorf("record ingestion of %q: %w", fileID, err)
	}
	return nil
}
