package backtest

import "github.com/alejandrodnm/basisbt/internal/domain"

// Valores por defecto de la estrategia. Mismos que la configuración de
// ejemplo; el motor nunca lee config global — recibe un Config resuelto.
const (
	DefaultEntryThreshold    = 0.005
	DefaultStopLossThreshold = 0.002
	DefaultExitThreshold     = 0.035
	DefaultHoldingDays       = 30
	DefaultFundingRate       = 0.05
	DefaultInitialCapital    = 200000
	DefaultPositionSize      = 1.0
)

// Config son los parámetros de un run de backtest, todos resueltos antes de
// la primera llamada. Un Config se puede copiar y mutar por combinación en el
// optimizador sin estado compartido.
type Config struct {
	Thresholds        domain.Thresholds
	HoldingDays       int     // máximo de días en posición
	AnnualFundingRate float64 // coste de carry anual sobre el notional
	InitialCapital    float64
	PositionSize      float64 // unidades del subyacente por trade
}

// DefaultConfig devuelve la configuración por defecto de la estrategia.
func DefaultConfig() Config {
	return Config{
		Thresholds: domain.Thresholds{
			Entry:    DefaultEntryThreshold,
			StopLoss: DefaultStopLossThreshold,
			Exit:     DefaultExitThreshold,
		},
		HoldingDays:       DefaultHoldingDays,
		AnnualFundingRate: DefaultFundingRate,
		InitialCapital:    DefaultInitialCapital,
		PositionSize:      DefaultPositionSize,
	}
}
