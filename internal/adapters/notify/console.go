package notify

// console.go — salida por consola de resultados de backtest y optimización.
// Dos modos: compacto (una línea con lo esencial) y tabla completa.

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/basisbt/internal/backtest"
	"github.com/alejandrodnm/basisbt/internal/domain"
	"github.com/alejandrodnm/basisbt/internal/optimize"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyBacktest imprime el resultado de un run en el modo configurado.
func (c *Console) NotifyBacktest(_ context.Context, res backtest.Result) error {
	if res.TotalTrades == 0 {
		fmt.Fprintln(c.out, "backtest: sin trades cerrados en el periodo")
		return nil
	}

	if c.table {
		c.printBacktestFull(res)
	} else {
		c.printBacktestCompact(res)
	}
	return nil
}

// printBacktestCompact imprime lo esencial en una línea.
func (c *Console) printBacktestCompact(res backtest.Result) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s → %s] %d trades | ret %s | sharpe %.2f | dd %.2f%% | win %.0f%% | pf %s",
		res.PeriodStart.Format("2006-01-02"), res.PeriodEnd.Format("2006-01-02"),
		res.TotalTrades,
		pctLabel(res.TotalReturnPct),
		res.SharpeRatio,
		res.MaxDrawdownPct*100,
		res.WinRate*100,
		pfLabel(res.ProfitFactor),
	)
	fmt.Fprintln(c.out, sb.String())
}

// printBacktestFull imprime el resumen completo y la tabla de trades.
func (c *Console) printBacktestFull(res backtest.Result) {
	fmt.Fprintf(c.out, "\n=== BACKTEST %s → %s ===\n",
		res.PeriodStart.Format("2006-01-02"), res.PeriodEnd.Format("2006-01-02"))
	fmt.Fprintf(c.out, "  Capital:       $%.2f → $%.2f (%s)\n",
		res.InitialCapital, res.FinalCapital, pctLabel(res.TotalReturnPct))
	fmt.Fprintf(c.out, "  Trades:        %d (%d win / %d loss, win rate %.1f%%)\n",
		res.TotalTrades, res.WinningTrades, res.LosingTrades, res.WinRate*100)
	fmt.Fprintf(c.out, "  Avg win/loss:  %s / %s\n",
		pctLabel(res.AvgWinPct), pctLabel(res.AvgLossPct))
	fmt.Fprintf(c.out, "  Profit factor: %s\n", pfLabel(res.ProfitFactor))
	fmt.Fprintf(c.out, "  Sharpe:        %.2f\n", res.SharpeRatio)
	fmt.Fprintf(c.out, "  Max drawdown:  %.2f%%\n\n", res.MaxDrawdownPct*100)

	c.printTrades(res.Trades)
}

// printTrades imprime la tabla de trades cerrados.
func (c *Console) printTrades(trades []domain.Trade) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Entry", "Exit", "Days", "Contract", "Spot in/out", "Fut in/out", "Funding", "PnL", "Ret%", "Reason")

	for i, t := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.EntryDate.Format("2006-01-02"),
			t.ExitDate.Format("2006-01-02"),
			fmt.Sprintf("%d", t.HoldingDays()),
			t.EntryContractID,
			fmt.Sprintf("%.0f/%.0f", t.EntrySpot, t.ExitSpot),
			fmt.Sprintf("%.0f/%.0f", t.EntryFutures, t.ExitFutures),
			fmt.Sprintf("$%.2f", t.FundingCost),
			fmt.Sprintf("$%.2f", t.RealizedPnL),
			fmt.Sprintf("%.2f", t.ReturnPct*100),
			t.ExitReason.String(),
		)
	}
	table.Render()
}

// NotifyOptimization imprime el top-N del barrido con la línea base de los
// parámetros por defecto para comparar.
func (c *Console) NotifyOptimization(_ context.Context, report optimize.Report, baseline backtest.Result, topN int) error {
	top := report.Top(topN)

	fmt.Fprintf(c.out, "\n=== GRID SEARCH — %d evaluadas, %d descartadas, %d fallidas ===\n",
		report.Evaluated, report.Skipped, report.Failed)

	if len(top) == 0 {
		fmt.Fprintln(c.out, "  sin resultados")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Rank", "Entry", "Stop", "Exit", "Hold", "Return", "Sharpe", "MaxDD", "WinRate", "Trades")

	for i, r := range top {
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.3f%%", r.Params.Entry*100),
			fmt.Sprintf("%.3f%%", r.Params.StopLoss*100),
			fmt.Sprintf("%.3f%%", r.Params.Exit*100),
			fmt.Sprintf("%dd", r.Params.HoldingDays),
			pctLabel(r.Backtest.TotalReturnPct),
			fmt.Sprintf("%.2f", r.Backtest.SharpeRatio),
			fmt.Sprintf("%.2f%%", r.Backtest.MaxDrawdownPct*100),
			fmt.Sprintf("%.0f%%", r.Backtest.WinRate*100),
			fmt.Sprintf("%d", r.Backtest.TotalTrades),
		)
	}
	base := backtest.DefaultConfig()
	table.Append(
		"base",
		fmt.Sprintf("%.3f%%", base.Thresholds.Entry*100),
		fmt.Sprintf("%.3f%%", base.Thresholds.StopLoss*100),
		fmt.Sprintf("%.3f%%", base.Thresholds.Exit*100),
		fmt.Sprintf("%dd", base.HoldingDays),
		pctLabel(baseline.TotalReturnPct),
		fmt.Sprintf("%.2f", baseline.SharpeRatio),
		fmt.Sprintf("%.2f%%", baseline.MaxDrawdownPct*100),
		fmt.Sprintf("%.0f%%", baseline.WinRate*100),
		fmt.Sprintf("%d", baseline.TotalTrades),
	)
	table.Render()

	best := top[0]
	delta := best.Backtest.TotalReturnPct - baseline.TotalReturnPct
	fmt.Fprintf(c.out, "\n  Mejor combinación vs base: %s de diferencia en retorno total\n\n",
		pctLabel(delta))
	return nil
}

// --- helpers ---

func pctLabel(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

func pfLabel(pf float64) string {
	if math.IsInf(pf, 1) {
		return "INF"
	}
	return fmt.Sprintf("%.2f", pf)
}
