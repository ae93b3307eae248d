package backtest

// result.go — estadísticas agregadas sobre la lista de trades cerrados.
//
// Casos borde con valor definido, nunca error:
//   - sin trades → todos los escalares a cero, capital final = inicial
//   - profit factor sin perdedores → +Inf; sin ganadores y ≥1 perdedor → 0
//   - Sharpe con <2 trades o varianza cero → 0

import (
	"math"
	"time"

	"github.com/alejandrodnm/basisbt/internal/domain"
)

// tradingDaysPerYear es el factor de anualización del Sharpe:
// sqrt(252 / media de días en posición).
const tradingDaysPerYear = 252

// Result es la vista de solo lectura sobre los trades cerrados de un run.
type Result struct {
	Trades []domain.Trade

	TotalReturnPct float64 // (final - inicial) / inicial
	SharpeRatio    float64
	MaxDrawdownPct float64 // caída pico-valle máxima, fracción positiva
	WinRate        float64
	AvgWinPct      float64
	AvgLossPct     float64
	ProfitFactor   float64

	InitialCapital float64
	FinalCapital   float64
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int

	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Summarize agrega la secuencia cronológica de trades cerrados. El capital
// compone trade a trade: capital_i = capital_{i-1} + pnl_i.
//
// Regla de desempate explícita: un trade con pnl == 0 cuenta como perdedor.
func Summarize(trades []domain.Trade, initialCapital float64, periodStart, periodEnd time.Time) Result {
	res := Result{
		Trades:         trades,
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
		TotalTrades:    len(trades),
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
	}
	if len(trades) == 0 {
		return res
	}

	var (
		grossProfit, grossLoss float64
		sumWinPct, sumLossPct  float64
		wins, losses           int
		capital                = initialCapital
		peak                   = initialCapital
		maxDD                  float64
		sumHold                int
	)

	for _, t := range trades {
		capital += t.RealizedPnL
		if capital > peak {
			peak = capital
		}
		if dd := (peak - capital) / peak; dd > maxDD {
			maxDD = dd
		}

		if t.RealizedPnL > 0 {
			wins++
			sumWinPct += t.ReturnPct
			grossProfit += t.RealizedPnL
		} else {
			losses++ // pnl == 0 cuenta como perdedor
			sumLossPct += t.ReturnPct
			grossLoss += -math.Min(t.RealizedPnL, 0)
		}
		sumHold += t.HoldingDays()
	}

	res.FinalCapital = capital
	res.TotalReturnPct = (capital - initialCapital) / initialCapital
	res.MaxDrawdownPct = maxDD
	res.WinningTrades = wins
	res.LosingTrades = losses
	res.WinRate = float64(wins) / float64(len(trades))

	if wins > 0 {
		res.AvgWinPct = sumWinPct / float64(wins)
	}
	if losses > 0 {
		res.AvgLossPct = sumLossPct / float64(losses)
	}

	switch {
	case grossLoss == 0 && grossProfit > 0:
		res.ProfitFactor = math.Inf(1)
	case grossLoss > 0:
		res.ProfitFactor = grossProfit / grossLoss
	}

	res.SharpeRatio = sharpe(trades, sumHold)
	return res
}

// sharpe calcula media / desviación estándar poblacional de los retornos por
// trade, anualizado por sqrt(252 / media de días en posición).
func sharpe(trades []domain.Trade, sumHold int) float64 {
	n := len(trades)
	if n < 2 {
		return 0
	}
	avgHold := float64(sumHold) / float64(n)
	if avgHold <= 0 {
		return 0
	}

	var sum float64
	for _, t := range trades {
		sum += t.ReturnPct
	}
	mean := sum / float64(n)

	var variance float64
	for _, t := range trades {
		d := t.ReturnPct - mean
		variance += d * d
	}
	variance /= float64(n)
	if variance == 0 {
		return 0
	}

	return mean / math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear/avgHold)
}
