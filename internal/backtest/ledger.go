package backtest

// ledger.go — máquina de estados de la posición: FLAT ↔ IN_POSITION.
//
// Consume observaciones en orden estrictamente cronológico, una por paso.
// Estando en posición, dos cierres forzosos tienen precedencia sobre
// cualquier señal:
//   a. roll de contrato — el contract_id cambió: cerrar a los precios de la
//      observación ANTERIOR (la última aún sobre el contrato original) y
//      re-evaluar la observación actual desde FLAT.
//   b. límite de días en posición — cerrar a los precios actuales, sin
//      re-entrada el mismo día.
//
// La lógica de entrada/salida se calcula por contrato: dejar que una posición
// cruce dos futuros distintos mezclaría bases incomparables y rompería en
// silencio el supuesto de contrato único del monthly basis.

import (
	"time"

	"github.com/alejandrodnm/basisbt/internal/domain"
)

// Ledger mantiene como mucho un trade abierto y la secuencia cronológica de
// trades cerrados de un run. No es seguro para uso concurrente: cada run de
// backtest usa su propio Ledger.
type Ledger struct {
	cfg     Config
	open    *domain.Trade
	prev    domain.BasisObservation // última observación procesada (para el roll)
	closed  []domain.Trade
	capital float64
}

// NewLedger crea un ledger FLAT con el capital inicial de la configuración.
func NewLedger(cfg Config) *Ledger {
	return &Ledger{cfg: cfg, capital: cfg.InitialCapital}
}

// InPosition indica si hay un trade abierto.
func (l *Ledger) InPosition() bool { return l.open != nil }

// Capital devuelve el balance acumulado (inicial + P&L realizado).
func (l *Ledger) Capital() float64 { return l.capital }

// ClosedTrades devuelve los trades cerrados en orden cronológico.
// Un trade aún abierto al acabar el feed NO aparece aquí: se queda abierto
// a propósito, sin cierre forzoso de fin de datos — determinismo del
// resultado ante feeds truncados.
func (l *Ledger) ClosedTrades() []domain.Trade { return l.closed }

// OpenTrade devuelve el trade abierto, o nil si el ledger está FLAT.
func (l *Ledger) OpenTrade() *domain.Trade { return l.open }

// Step procesa una observación y devuelve la señal clasificada.
func (l *Ledger) Step(obs domain.BasisObservation) domain.Signal {
	if l.open != nil {
		// a. Roll de contrato: cerrar sobre la última observación del
		// contrato original y seguir evaluando esta desde FLAT.
		if obs.ContractID != l.open.EntryContractID {
			l.closeAt(l.prev.Date, l.prev.SpotPrice, l.prev.FuturesPrice, domain.ExitContractRoll)
		} else if daysHeld(l.open.EntryDate, obs.Date) >= l.cfg.HoldingDays {
			// b. Límite de días: cierre a precios actuales, sin re-entrada hoy.
			l.closeAt(obs.Date, obs.SpotPrice, obs.FuturesPrice, domain.ExitHoldingPeriod)
			l.prev = obs
			return domain.Classify(obs, l.cfg.Thresholds)
		}
	}

	sig := domain.Classify(obs, l.cfg.Thresholds)

	switch {
	case l.open != nil && sig.IsExit():
		l.closeAt(obs.Date, obs.SpotPrice, obs.FuturesPrice, domain.ExitSignal)
	case l.open == nil && sig.IsEntry():
		l.open = &domain.Trade{
			EntryDate:       obs.Date,
			EntrySpot:       obs.SpotPrice,
			EntryFutures:    obs.FuturesPrice,
			EntryContractID: obs.ContractID,
			PositionSize:    l.cfg.PositionSize,
		}
	}

	l.prev = obs
	return sig
}

// closeAt cierra el trade abierto, actualiza el capital y lo archiva.
func (l *Ledger) closeAt(date time.Time, spot, futures float64, reason domain.ExitReason) {
	t := l.open
	t.Close(date, spot, futures, reason, l.cfg.AnnualFundingRate)
	l.capital += t.RealizedPnL
	l.closed = append(l.closed, *t)
	l.open = nil
}

// daysHeld devuelve los días de calendario entre la entrada y la fecha dada.
func daysHeld(entry, now time.Time) int {
	return int(now.Sub(entry) / (24 * time.Hour))
}
