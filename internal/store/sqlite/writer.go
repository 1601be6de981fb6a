// Package sqlite persists candle series and a journal of backtest runs.
// Candles feed the offline replay in cmd/backtest; the run journal keeps
// configuration and stats of every completed backtest.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"backtest-systemv1/internal/model"
)

// Writer owns the SQLite connection for schema setup and inserts.
type Writer struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (w *Writer) DB() *sql.DB { return w.db }

// New opens the database in WAL mode and creates the schema.
func New(dbPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	log.Printf("[sqlite] opened database at %s", dbPath)
	return &Writer{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS candles (
			symbol  TEXT    NOT NULL,
			ts      INTEGER NOT NULL,
			open    REAL    NOT NULL,
			high    REAL    NOT NULL,
			low     REAL    NOT NULL,
			close   REAL    NOT NULL,
			volume  REAL    NOT NULL,
			PRIMARY KEY (symbol, ts)
		);

		CREATE TABLE IF NOT EXISTS backtest_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol      TEXT    NOT NULL,
			config      TEXT    NOT NULL,
			stats       TEXT    NOT NULL,
			num_trades  INTEGER NOT NULL,
			created_at  INTEGER NOT NULL
		);
	`)
	return err
}

// SaveCandles upserts a candle series for a symbol in one transaction.
func (w *Writer) SaveCandles(symbol string, series model.Series) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO candles (symbol, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range series {
		if _, err := stmt.Exec(symbol, c.TS.Unix(), c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert candle: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

// SaveRun journals one completed backtest: its config, stats, and trade count.
func (w *Writer) SaveRun(symbol string, config any, result *model.BacktestResult) error {
	cfgJSON, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("sqlite marshal config: %w", err)
	}
	statsJSON, err := json.Marshal(result.Stats)
	if err != nil {
		return fmt.Errorf("sqlite marshal stats: %w", err)
	}
	_, err = w.db.Exec(`
		INSERT INTO backtest_runs (symbol, config, stats, num_trades, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, symbol, string(cfgJSON), string(statsJSON), result.Stats.TotalTrades, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("sqlite insert run: %w", err)
	}
	return nil
}

// Close closes the database.
func (w *Writer) Close() error { return w.db.Close() }
