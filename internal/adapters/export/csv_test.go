package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/basisbt/internal/backtest"
	"github.com/alejandrodnm/basisbt/internal/domain"
	"github.com/alejandrodnm/basisbt/internal/optimize"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteTrades(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
	}
	trades := []domain.Trade{
		{
			EntryDate: day(2), ExitDate: day(10), EntryContractID: "MBTF4",
			EntrySpot: 50000, EntryFutures: 50500, ExitSpot: 52000, ExitFutures: 52013,
			ExitReason: domain.ExitSignal, PositionSize: 1,
			RealizedPnL: 350.5, ReturnPct: 0.007, FundingCost: 137, Closed: true,
		},
	}

	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, WriteTrades(path, trades))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "entry_date", rows[0][0])
	assert.Equal(t, "2024-01-02", rows[1][0])
	assert.Equal(t, "2024-01-10", rows[1][1])
	assert.Equal(t, "8", rows[1][2], "holding_days")
	assert.Equal(t, "MBTF4", rows[1][3])
	assert.Equal(t, "signal", rows[1][8])
	assert.Equal(t, "350.5", rows[1][10])
}

func TestWriteTrades_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, WriteTrades(path, nil))

	rows := readCSV(t, path)
	assert.Len(t, rows, 1, "solo la cabecera")
}

func TestWriteOptimization(t *testing.T) {
	report := optimize.Report{
		Results: []optimize.Result{
			{
				Params: optimize.Params{Entry: 0.006, StopLoss: 0.002, Exit: 0.04, HoldingDays: 20},
				Backtest: backtest.Result{
					TotalReturnPct: 0.12, SharpeRatio: 1.4, MaxDrawdownPct: 0.03,
					WinRate: 0.75, ProfitFactor: 2.5, TotalTrades: 8,
				},
			},
			{
				Params:   optimize.Params{Entry: 0.008, StopLoss: 0.002, Exit: 0.05, HoldingDays: 30},
				Backtest: backtest.Result{TotalReturnPct: 0.05, TotalTrades: 3},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "grid.csv")
	require.NoError(t, WriteOptimization(path, report, 1))

	rows := readCSV(t, path)
	require.Len(t, rows, 2, "topN=1 limita las filas")
	assert.Equal(t, "rank", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "0.006", rows[1][1])
	assert.Equal(t, "20", rows[1][4])
	assert.Equal(t, "0.12", rows[1][5])
}

func TestWriteTrades_BadPath(t *testing.T) {
	err := WriteTrades("/nonexistent/dir/trades.csv", nil)
	assert.Error(t, err)
}
