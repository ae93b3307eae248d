package storage

// sqlite.go — histórico de runs en SQLite (pure Go, sin CGo).
//
//   - `runs`: una fila por run con parámetros y escalares del resultado.
//   - `trades`: los trades cerrados de cada backtest, en orden cronológico.
//   - `optimizer_results`: el top-N persistido de cada barrido.
//
// Prune automático al abrir: runs (y sus filas hijas) de más de 90 días.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/basisbt/internal/backtest"
	"github.com/alejandrodnm/basisbt/internal/optimize"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    created_at      DATETIME NOT NULL,
    kind            TEXT     NOT NULL, -- backtest | optimization
    source          TEXT     NOT NULL, -- origen del feed (ruta CSV, "synthetic", ...)
    entry_threshold REAL     NOT NULL DEFAULT 0,
    stop_threshold  REAL     NOT NULL DEFAULT 0,
    exit_threshold  REAL     NOT NULL DEFAULT 0,
    holding_days    INTEGER  NOT NULL DEFAULT 0,
    funding_rate    REAL     NOT NULL DEFAULT 0,
    position_size   REAL     NOT NULL DEFAULT 0,
    initial_capital REAL     NOT NULL DEFAULT 0,
    final_capital   REAL     NOT NULL DEFAULT 0,
    total_return    REAL     NOT NULL DEFAULT 0,
    sharpe          REAL     NOT NULL DEFAULT 0,
    max_drawdown    REAL     NOT NULL DEFAULT 0,
    win_rate        REAL     NOT NULL DEFAULT 0,
    total_trades    INTEGER  NOT NULL DEFAULT 0,
    period_start    DATETIME,
    period_end      DATETIME
);

CREATE TABLE IF NOT EXISTS trades (
    run_id         TEXT     NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq            INTEGER  NOT NULL,
    entry_date     DATETIME NOT NULL,
    exit_date      DATETIME NOT NULL,
    entry_contract TEXT     NOT NULL,
    entry_spot     REAL     NOT NULL,
    entry_futures  REAL     NOT NULL,
    exit_spot      REAL     NOT NULL,
    exit_futures   REAL     NOT NULL,
    exit_reason    TEXT     NOT NULL,
    funding_cost   REAL     NOT NULL,
    realized_pnl   REAL     NOT NULL,
    return_pct     REAL     NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS optimizer_results (
    run_id       TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    rank         INTEGER NOT NULL,
    entry        REAL    NOT NULL,
    stop         REAL    NOT NULL,
    exit_thresh  REAL    NOT NULL,
    holding_days INTEGER NOT NULL,
    total_return REAL    NOT NULL,
    sharpe       REAL    NOT NULL,
    max_drawdown REAL    NOT NULL,
    win_rate     REAL    NOT NULL,
    total_trades INTEGER NOT NULL,
    PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_runs_at    ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
`

const runRetention = 90 * 24 * time.Hour

// SQLiteStorage implementa ports.RunStorage sobre un archivo SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada, aplica el
// schema y limpia runs antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveBacktest persiste el run y sus trades en una transacción.
func (s *SQLiteStorage) SaveBacktest(ctx context.Context, source string, cfg backtest.Config, res backtest.Result) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage.SaveBacktest: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(id, created_at, kind, source, entry_threshold, stop_threshold,
			 exit_threshold, holding_days, funding_rate, position_size,
			 initial_capital, final_capital, total_return, sharpe,
			 max_drawdown, win_rate, total_trades, period_start, period_end)
		VALUES (?, ?, 'backtest', ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC(), source,
		cfg.Thresholds.Entry, cfg.Thresholds.StopLoss, cfg.Thresholds.Exit,
		cfg.HoldingDays, cfg.AnnualFundingRate, cfg.PositionSize,
		res.InitialCapital, res.FinalCapital, res.TotalReturnPct, res.SharpeRatio,
		res.MaxDrawdownPct, res.WinRate, res.TotalTrades,
		res.PeriodStart, res.PeriodEnd,
	); err != nil {
		return "", fmt.Errorf("storage.SaveBacktest: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
			(run_id, seq, entry_date, exit_date, entry_contract, entry_spot,
			 entry_futures, exit_spot, exit_futures, exit_reason,
			 funding_cost, realized_pnl, return_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("storage.SaveBacktest: prepare trades: %w", err)
	}
	defer stmt.Close()

	for i, t := range res.Trades {
		if _, err := stmt.ExecContext(ctx,
			id, i, t.EntryDate, t.ExitDate, t.EntryContractID,
			t.EntrySpot, t.EntryFutures, t.ExitSpot, t.ExitFutures,
			t.ExitReason.String(), t.FundingCost, t.RealizedPnL, t.ReturnPct,
		); err != nil {
			return "", fmt.Errorf("storage.SaveBacktest: insert trade %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage.SaveBacktest: commit: %w", err)
	}
	return id, nil
}

// SaveOptimization persiste el top-N del barrido.
func (s *SQLiteStorage) SaveOptimization(ctx context.Context, source string, report optimize.Report, topN int) (string, error) {
	id := uuid.NewString()
	top := report.Top(topN)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage.SaveOptimization: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, kind, source, total_trades)
		VALUES (?, ?, 'optimization', ?, ?)`,
		id, time.Now().UTC(), source, report.Evaluated,
	); err != nil {
		return "", fmt.Errorf("storage.SaveOptimization: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO optimizer_results
			(run_id, rank, entry, stop, exit_thresh, holding_days,
			 total_return, sharpe, max_drawdown, win_rate, total_trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("storage.SaveOptimization: prepare: %w", err)
	}
	defer stmt.Close()

	for rank, r := range top {
		if _, err := stmt.ExecContext(ctx,
			id, rank+1, r.Params.Entry, r.Params.StopLoss, r.Params.Exit,
			r.Params.HoldingDays, r.Backtest.TotalReturnPct, r.Backtest.SharpeRatio,
			r.Backtest.MaxDrawdownPct, r.Backtest.WinRate, r.Backtest.TotalTrades,
		); err != nil {
			return "", fmt.Errorf("storage.SaveOptimization: insert rank %d: %w", rank+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage.SaveOptimization: commit: %w", err)
	}
	return id, nil
}

// RunSummary es una fila ligera del histórico de runs.
type RunSummary struct {
	ID          string
	CreatedAt   time.Time
	Kind        string
	Source      string
	TotalReturn float64
	TotalTrades int
}

// RecentRuns devuelve los últimos runs registrados, el más nuevo primero.
func (s *SQLiteStorage) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, kind, source, total_return, total_trades
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentRuns: query: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Kind, &r.Source, &r.TotalReturn, &r.TotalTrades); err != nil {
			return nil, fmt.Errorf("storage.RecentRuns: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TradeCount devuelve cuántos trades se persistieron para un run.
func (s *SQLiteStorage) TradeCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trades WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage.TradeCount: %w", err)
	}
	return n, nil
}

// Close cierra la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra runs más viejos que la retención y sus filas hijas. Es
// best-effort: un fallo aquí no bloquea el arranque.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-runRetention)
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		// Las FK no están activadas por defecto: limpiar huérfanos a mano
		s.db.ExecContext(ctx, `DELETE FROM trades WHERE run_id NOT IN (SELECT id FROM runs)`)
		s.db.ExecContext(ctx, `DELETE FROM optimizer_results WHERE run_id NOT IN (SELECT id FROM runs)`)
	}
}
