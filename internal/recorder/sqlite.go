package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"FinAnalyst/internal/model"
)

// SQLiteRecorder journals reports to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			session_id  TEXT NOT NULL,
			query_id    TEXT NOT NULL,
			query_text  TEXT,
			kind        TEXT,
			tickers     TEXT,
			report_text TEXT,
			gen_error   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_ts ON reports(timestamp)`,

		`CREATE TABLE IF NOT EXISTS report_tickers (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id     INTEGER NOT NULL REFERENCES reports(id),
			ticker        TEXT NOT NULL,
			window_start  TEXT,
			window_end    TEXT,
			first_close   REAL,
			last_close    REAL,
			pct_change    REAL,
			trend         TEXT,
			price_error   TEXT,
			headlines     INTEGER,
			sentiment     TEXT,
			positive      INTEGER,
			negative      INTEGER,
			neutral       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_report_tickers_ticker ON report_tickers(ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordReport stores the report and one row per analyzed ticker in a single transaction.
func (r *SQLiteRecorder) RecordReport(sessionID string, q model.Query, rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO reports
		(timestamp, session_id, query_id, query_text, kind, tickers, report_text, gen_error)
		VALUES (?,?,?,?,?,?,?,?)`,
		rep.CreatedAt.Unix(), sessionID, q.ID, q.Text, string(rep.Kind),
		strings.Join(rep.Tickers, ","), rep.Text, rep.GenerationErr,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	reportID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("report id: %w", err)
	}

	for _, c := range rep.Contexts {
		var first, last float64
		if c.HasPrices() {
			first, last = c.Points[0].Close, c.Points[len(c.Points)-1].Close
		}
		var priceErr string
		if c.PriceErr != nil {
			priceErr = c.PriceErr.Error()
		}
		if _, err := tx.Exec(`INSERT INTO report_tickers
			(report_id, ticker, window_start, window_end, first_close, last_close, pct_change, trend,
			 price_error, headlines, sentiment, positive, negative, neutral)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			reportID, c.Ticker, c.Window.Start.Format("2006-01-02"), c.Window.End.Format("2006-01-02"),
			first, last, c.Change, c.Trend, priceErr, len(c.Headlines),
			string(c.Aggregate.Label), c.Aggregate.Positive, c.Aggregate.Negative, c.Aggregate.Neutral,
		); err != nil {
			return fmt.Errorf("insert ticker %s: %w", c.Ticker, err)
		}
	}
	return tx.Commit()
}

// Recent returns the latest entries, newest first.
func (r *SQLiteRecorder) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, session_id, query_id, query_text, kind, tickers, report_text, gen_error
		FROM reports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			ts      int64
			kind    string
			tickers string
		)
		if err := rows.Scan(&ts, &e.SessionID, &e.QueryID, &e.Query, &kind, &tickers, &e.Text, &e.GenErr); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		e.CreatedAt = time.Unix(ts, 0)
		e.Kind = model.ReportKind(kind)
		if tickers != "" {
			e.Tickers = strings.Split(tickers, ",")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
