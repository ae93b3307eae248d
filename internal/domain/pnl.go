package domain

// PnL es el desglose del P&L realizado de un trade de base.
// Aritmética pura sobre los snapshots de entrada/salida: mismos inputs,
// mismos bits en la salida.
type PnL struct {
	SpotPnL     float64 // (exitSpot - entrySpot) × size
	FuturesPnL  float64 // (entryFut - exitFut) × size — pata corta
	FundingCost float64 // coste de carry proporcional a los días en posición
	Realized    float64 // spot + futuros - funding
	ReturnPct   float64 // realized / notional de entrada
	HeldDays    int
}

// ComputePnL calcula el desglose para un trade con los snapshots de entrada
// y salida ya fijados. El funding se devenga sobre el notional de entrada:
// (tasa anual / 365) × días × (entrySpot × size).
func ComputePnL(t Trade, annualFundingRate float64) PnL {
	size := t.PositionSize
	heldDays := daysBetween(t.EntryDate, t.ExitDate)
	notional := t.EntrySpot * size

	spotPnL := (t.ExitSpot - t.EntrySpot) * size
	futuresPnL := (t.EntryFutures - t.ExitFutures) * size
	funding := (annualFundingRate / 365.0) * float64(heldDays) * notional
	realized := spotPnL + futuresPnL - funding

	return PnL{
		SpotPnL:     spotPnL,
		FuturesPnL:  futuresPnL,
		FundingCost: funding,
		Realized:    realized,
		ReturnPct:   realized / notional,
		HeldDays:    heldDays,
	}
}
