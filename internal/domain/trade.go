package domain

import "time"

// ExitReason indica por qué se cerró un trade.
type ExitReason int

const (
	ExitSignal ExitReason = iota // salida normal por señal
	ExitHoldingPeriod            // límite de días en posición
	ExitContractRoll             // cambio de contrato de futuros
)

// String devuelve el nombre estable del motivo (se persiste y se exporta).
func (r ExitReason) String() string {
	switch r {
	case ExitHoldingPeriod:
		return "holding_period_expired"
	case ExitContractRoll:
		return "contract_roll"
	default:
		return "signal"
	}
}

// Trade es un trade de base: largo spot, corto futuro. Se crea al entrar y
// se finaliza al salir. Invariante: o está abierto (campos de salida sin
// setear) o cerrado (todos seteados); nunca hay más de uno abierto.
type Trade struct {
	EntryDate       time.Time
	EntrySpot       float64
	EntryFutures    float64
	EntryContractID string
	PositionSize    float64 // unidades del subyacente, fijo por trade

	ExitDate    time.Time
	ExitSpot    float64
	ExitFutures float64
	ExitReason  ExitReason

	RealizedPnL float64
	ReturnPct   float64
	FundingCost float64
	Closed      bool
}

// HoldingDays devuelve los días que el trade estuvo abierto.
func (t Trade) HoldingDays() int {
	if !t.Closed {
		return 0
	}
	return daysBetween(t.EntryDate, t.ExitDate)
}

// Close finaliza el trade con el snapshot de salida dado y calcula el P&L
// realizado con el coste de funding a la tasa anual indicada.
func (t *Trade) Close(date time.Time, spot, futures float64, reason ExitReason, annualFundingRate float64) {
	t.ExitDate = date
	t.ExitSpot = spot
	t.ExitFutures = futures
	t.ExitReason = reason

	pnl := ComputePnL(*t, annualFundingRate)
	t.RealizedPnL = pnl.Realized
	t.ReturnPct = pnl.ReturnPct
	t.FundingCost = pnl.FundingCost
	t.Closed = true
}
