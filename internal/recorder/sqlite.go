package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"BandSentinel/internal/logger"
	"BandSentinel/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
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

	logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id              TEXT PRIMARY KEY,
			started_at      INTEGER NOT NULL,
			finished_at     INTEGER NOT NULL,
			provider        TEXT,
			start_date      TEXT,
			end_date        TEXT,
			band_window     INTEGER,
			band_k          REAL,
			initial_capital REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON backtest_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS ticker_results (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL REFERENCES backtest_runs(id),
			ticker            TEXT NOT NULL,
			status            TEXT NOT NULL,
			final_value       REAL,
			total_return      REAL,
			annual_return     REAL,
			annual_volatility REAL,
			sharpe_ratio      REAL,
			sortino_ratio     REAL,
			max_drawdown      REAL,
			error             TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON ticker_results(run_id)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL REFERENCES backtest_runs(id),
			ticker    TEXT NOT NULL,
			seq       INTEGER NOT NULL,
			side      TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			price     REAL NOT NULL,
			shares    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_run_ticker ON transactions(run_id, ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run, its per-ticker results and their transaction logs atomically.
func (r *SQLiteRecorder) RecordRun(run *model.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO backtest_runs
		(id, started_at, finished_at, provider, start_date, end_date, band_window, band_k, initial_capital)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.FinishedAt.Unix(), run.Provider,
		run.Start.Format("2006-01-02"), run.End.Format("2006-01-02"),
		run.Window, run.BandK, run.InitialCapital,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i := range run.Results {
		res := &run.Results[i]
		var m model.PerformanceReport
		if res.Metrics != nil {
			m = *res.Metrics
		}
		errText := res.Error
		if errText == "" {
			errText = res.MetricsError
		}
		if _, err := tx.Exec(`INSERT INTO ticker_results
			(run_id, ticker, status, final_value, total_return, annual_return, annual_volatility,
			 sharpe_ratio, sortino_ratio, max_drawdown, error)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			run.ID, res.Ticker, res.Status(), res.FinalValue,
			m.TotalReturn, m.AnnualReturn, m.AnnualVolatility,
			m.SharpeRatio, m.SortinoRatio, m.MaxDrawdown, errText,
		); err != nil {
			return fmt.Errorf("insert result %s: %w", res.Ticker, err)
		}

		for seq, t := range res.Transactions {
			if _, err := tx.Exec(`INSERT INTO transactions
				(run_id, ticker, seq, side, timestamp, price, shares)
				VALUES (?,?,?,?,?,?,?)`,
				run.ID, res.Ticker, seq, string(t.Side), t.Time.Unix(), t.Price, t.Shares,
			); err != nil {
				return fmt.Errorf("insert transaction %s #%d: %w", res.Ticker, seq, err)
			}
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
