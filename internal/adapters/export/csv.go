package export

// csv.go — volcado de resultados a CSV para analizarlos fuera (hojas de
// cálculo, notebooks). Una fila por trade o por combinación del barrido.

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/alejandrodnm/basisbt/internal/domain"
	"github.com/alejandrodnm/basisbt/internal/optimize"
)

const dateLayout = "2006-01-02"

// WriteTrades escribe los trades cerrados de un run a la ruta dada.
func WriteTrades(path string, trades []domain.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export.WriteTrades: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"entry_date", "exit_date", "holding_days", "contract_id",
		"entry_spot", "entry_futures", "exit_spot", "exit_futures",
		"exit_reason", "funding_cost", "realized_pnl", "return_pct",
	}); err != nil {
		return fmt.Errorf("export.WriteTrades: header: %w", err)
	}

	for i, t := range trades {
		row := []string{
			t.EntryDate.Format(dateLayout),
			t.ExitDate.Format(dateLayout),
			strconv.Itoa(t.HoldingDays()),
			t.EntryContractID,
			ffloat(t.EntrySpot),
			ffloat(t.EntryFutures),
			ffloat(t.ExitSpot),
			ffloat(t.ExitFutures),
			t.ExitReason.String(),
			ffloat(t.FundingCost),
			ffloat(t.RealizedPnL),
			ffloat(t.ReturnPct),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("export.WriteTrades: fila %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export.WriteTrades: flush: %w", err)
	}
	return nil
}

// WriteOptimization escribe el top-N del barrido a la ruta dada.
func WriteOptimization(path string, report optimize.Report, topN int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export.WriteOptimization: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"rank", "entry_threshold", "stop_threshold", "exit_threshold",
		"holding_days", "total_return_pct", "sharpe", "max_drawdown_pct",
		"win_rate", "profit_factor", "total_trades",
	}); err != nil {
		return fmt.Errorf("export.WriteOptimization: header: %w", err)
	}

	for i, r := range report.Top(topN) {
		row := []string{
			strconv.Itoa(i + 1),
			ffloat(r.Params.Entry),
			ffloat(r.Params.StopLoss),
			ffloat(r.Params.Exit),
			strconv.Itoa(r.Params.HoldingDays),
			ffloat(r.Backtest.TotalReturnPct),
			ffloat(r.Backtest.SharpeRatio),
			ffloat(r.Backtest.MaxDrawdownPct),
			ffloat(r.Backtest.WinRate),
			ffloat(r.Backtest.ProfitFactor),
			strconv.Itoa(r.Backtest.TotalTrades),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("export.WriteOptimization: fila %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export.WriteOptimization: flush: %w", err)
	}
	return nil
}

// ffloat formatea floats sin ceros de relleno (mismo criterio que strconv 'g'
// pero con notación fija para que el CSV sea legible en hojas de cálculo).
func ffloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
