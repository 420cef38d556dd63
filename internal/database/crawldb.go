package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/uciscope/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "uciscope.db"

// CrawlDB provides SQLite-based storage for page records and crawl reports.
//
// Design decision: One database file holds every crawl. Page records are
// keyed by canonical URL, so re-crawling a page updates its row rather than
// adding a second one, while every crawl report is kept for history.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so that readers do not block the
	// crawl's writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a crawl first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; the crawl's page callback serializes on it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	// A report command may read while a crawl is writing.
	if _, err := db.ExecContext(context.Background(), "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per processed page, keyed by canonical URL
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		host TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		outcome TEXT NOT NULL,
		word_count INTEGER DEFAULT 0,
		exact_hash TEXT,
		simhash TEXT,
		link_count INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_pages_host ON pages(host);
	CREATE INDEX IF NOT EXISTS idx_pages_outcome ON pages(outcome);
	CREATE INDEX IF NOT EXISTS idx_pages_simhash ON pages(simhash);

	-- Crawl reports store complete run results as JSON
	CREATE TABLE IF NOT EXISTS crawl_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		unique_pages INTEGER DEFAULT 0,
		pages_fetched INTEGER DEFAULT 0,
		timed_out INTEGER DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_started ON crawl_reports(started_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// PageRecord represents a stored page.
type PageRecord struct {
	ID         int64
	URL        string
	Host       string
	Timestamp  time.Time
	StatusCode int
	Outcome    model.Outcome
	WordCount  int
	ExactHash  string
	SimHash    string
	LinkCount  int
}

// NewPageRecord builds the record for a pipeline result.
// It returns nil when the page never got a canonical identity (fetch
// failures and pages rejected before canonicalization).
func NewPageRecord(result *model.PageResult) *PageRecord {
	if result == nil || result.Page == nil || result.CanonicalURL == "" {
		return nil
	}

	rec := &PageRecord{
		URL:        result.CanonicalURL,
		Host:       result.Host,
		StatusCode: result.Page.StatusCode,
		Outcome:    result.Outcome,
		WordCount:  result.WordCount,
		LinkCount:  len(result.Links),
	}
	// Only pages that reached the admission step have a fingerprint.
	if result.Fingerprint != (model.PageFingerprint{}) {
		rec.ExactHash = result.Fingerprint.ExactHex()
		rec.SimHash = result.Fingerprint.SimHex()
	}
	return rec
}

// InsertPageRecord inserts or updates a page record.
// Uses UPSERT so that re-processing a URL replaces the older row.
func (cdb *CrawlDB) InsertPageRecord(ctx context.Context, record *PageRecord) (int64, error) {
	query := `
	INSERT INTO pages (url, host, status_code, outcome, word_count, exact_hash, simhash, link_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		host = excluded.host,
		status_code = excluded.status_code,
		outcome = excluded.outcome,
		word_count = excluded.word_count,
		exact_hash = excluded.exact_hash,
		simhash = excluded.simhash,
		link_count = excluded.link_count,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := cdb.db.ExecContext(ctx, query,
		record.URL,
		record.Host,
		record.StatusCode,
		record.Outcome.String(),
		record.WordCount,
		record.ExactHash,
		record.SimHash,
		record.LinkCount,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page record: %w", err)
	}

	return result.LastInsertId()
}

// GetPageRecord retrieves a page record by canonical URL.
// It returns nil, nil when the URL is not stored.
func (cdb *CrawlDB) GetPageRecord(ctx context.Context, url string) (*PageRecord, error) {
	query := `
	SELECT id, url, host, timestamp, status_code, outcome, word_count, exact_hash, simhash, link_count
	FROM pages
	WHERE url = ?
	`

	var record PageRecord
	var timestamp, outcome string

	err := cdb.db.QueryRowContext(ctx, query, url).Scan(
		&record.ID,
		&record.URL,
		&record.Host,
		&timestamp,
		&record.StatusCode,
		&outcome,
		&record.WordCount,
		&record.ExactHash,
		&record.SimHash,
		&record.LinkCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page record: %w", err)
	}

	record.Timestamp = parseTimestamp(timestamp)
	record.Outcome = model.ParseOutcome(outcome)
	return &record, nil
}

// CountPages returns the number of stored pages.
func (cdb *CrawlDB) CountPages(ctx context.Context) (int, error) {
	var count int
	if err := cdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

// CountPagesByOutcome returns the number of stored pages per outcome.
func (cdb *CrawlDB) CountPagesByOutcome(ctx context.Context) (map[model.Outcome]int, error) {
	rows, err := cdb.db.QueryContext(ctx, "SELECT outcome, COUNT(*) FROM pages GROUP BY outcome")
	if err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Outcome]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[model.ParseOutcome(outcome)] += n
	}
	return counts, rows.Err()
}

// SaveCrawlReport stores a crawl report and sets its ID.
func (cdb *CrawlDB) SaveCrawlReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO crawl_reports (started_at, finished_at, unique_pages, pages_fetched, timed_out, report_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.FinishedAt.UTC().Format(time.RFC3339Nano),
		report.Stats.UniquePages,
		report.PagesFetched,
		report.TimedOut,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save crawl report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read report id: %w", err)
	}
	report.ID = id
	return id, nil
}

// GetLatestCrawlReport retrieves the most recent crawl report.
// It returns nil, nil when no report is stored.
func (cdb *CrawlDB) GetLatestCrawlReport(ctx context.Context) (*model.CrawlReport, error) {
	query := `
	SELECT id, report_json FROM crawl_reports
	ORDER BY id DESC
	LIMIT 1
	`
	return cdb.scanReport(cdb.db.QueryRowContext(ctx, query))
}

// GetCrawlReportByID retrieves a crawl report by its database ID.
// It returns nil, nil when no such report exists.
func (cdb *CrawlDB) GetCrawlReportByID(ctx context.Context, id int64) (*model.CrawlReport, error) {
	query := `
	SELECT id, report_json FROM crawl_reports
	WHERE id = ?
	`
	return cdb.scanReport(cdb.db.QueryRowContext(ctx, query, id))
}

func (cdb *CrawlDB) scanReport(row *sql.Row) (*model.CrawlReport, error) {
	var id int64
	var reportJSON string
	err := row.Scan(&id, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	report.ID = id
	return &report, nil
}

// CrawlReportMetadata contains summary information about a stored crawl.
// This is used for listing crawl history without loading full reports.
type CrawlReportMetadata struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   time.Time
	UniquePages  int
	PagesFetched int
	TimedOut     bool
}

// Duration returns how long the crawl ran.
func (m CrawlReportMetadata) Duration() time.Duration {
	if m.FinishedAt.IsZero() {
		return 0
	}
	return m.FinishedAt.Sub(m.StartedAt)
}

// ListCrawlReports returns metadata for every stored crawl, newest first.
func (cdb *CrawlDB) ListCrawlReports(ctx context.Context) ([]CrawlReportMetadata, error) {
	query := `
	SELECT id, started_at, finished_at, unique_pages, pages_fetched, timed_out
	FROM crawl_reports
	ORDER BY id DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl reports: %w", err)
	}
	defer rows.Close()

	var results []CrawlReportMetadata
	for rows.Next() {
		var meta CrawlReportMetadata
		var started string
		var finished sql.NullString

		if err := rows.Scan(&meta.ID, &started, &finished, &meta.UniquePages, &meta.PagesFetched, &meta.TimedOut); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.StartedAt = parseTimestamp(started)
		if finished.Valid {
			meta.FinishedAt = parseTimestamp(finished.String)
		}
		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
