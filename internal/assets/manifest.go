// =============================================================================
// B2B-WC Converter - Download Manifest
// =============================================================================
//
// A small SQLite database records every asset the tool has fetched. Catalog
// conversions are re-run whenever the supplier ships an update, and most
// image URLs are unchanged between updates; the manifest lets those re-runs
// skip straight to the new assets without hammering the CDN.
//
// One row per source URL. Status is "done", "skipped" or "failed"; failed
// URLs are retried on the next run.
//
// =============================================================================

package assets

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const manifestSchema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

CREATE TABLE IF NOT EXISTS assets (
    url        TEXT PRIMARY KEY,
    sku        TEXT NOT NULL,
    filename   TEXT NOT NULL,
    size       INTEGER NOT NULL DEFAULT 0,
    status     TEXT NOT NULL,
    fetched_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assets_sku ON assets(sku);
CREATE INDEX IF NOT EXISTS idx_assets_status ON assets(status);
`

// Manifest is the persistent record of downloaded assets.
type Manifest struct {
	db *sql.DB
}

// OpenManifest opens (creating if needed) the manifest database at path.
func OpenManifest(path string) (*Manifest, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest database: %w", err)
	}

	if _, err := db.Exec(manifestSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize manifest schema: %w", err)
	}

	return &Manifest{db: db}, nil
}

// Close releases the database handle.
func (m *Manifest) Close() error {
	return m.db.Close()
}

// IsDone reports whether the URL has already been fetched successfully
// (status done or skipped) and the file name it was stored under.
func (m *Manifest) IsDone(url string) (bool, string) {
	var status, filename string
	err := m.db.QueryRow(
		`SELECT status, filename FROM assets WHERE url = ?`, url,
	).Scan(&status, &filename)
	if err != nil {
		return false, ""
	}
	return status == "done" || status == "skipped", filename
}

// Record upserts the outcome for a URL.
func (m *Manifest) Record(url, sku, filename string, size int64, status string, fetchedAt time.Time) error {
	_, err := m.db.Exec(`
		INSERT INTO assets (url, sku, filename, size, status, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			sku        = excluded.sku,
			filename   = excluded.filename,
			size       = excluded.size,
			status     = excluded.status,
			fetched_at = excluded.fetched_at`,
		url, sku, filename, size, status, fetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record asset: %w", err)
	}
	return nil
}

// Counts returns per-status row counts, for the run summary.
func (m *Manifest) Counts() (map[string]int, error) {
	rows, err := m.db.Query(`SELECT status, COUNT(*) FROM assets GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
