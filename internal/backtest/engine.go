package backtest

// engine.go — orquestación de un run: recorre el histórico con un Ledger
// fresco y agrega el resultado. Sin I/O, sin bloqueos, sin estado global:
// el feed llega ya materializado y validado en la frontera de ingestión.

import (
	"log/slog"
	"time"

	"github.com/alejandrodnm/basisbt/internal/domain"
)

// Run ejecuta un backtest completo sobre la secuencia de observaciones.
// El slice debe venir ordenado cronológicamente y validado (ports.Feed se
// encarga); una secuencia vacía produce un resultado neutro.
func Run(observations []domain.BasisObservation, cfg Config) Result {
	if len(observations) == 0 {
		return Summarize(nil, cfg.InitialCapital, time.Time{}, time.Time{})
	}

	ledger := NewLedger(cfg)
	for _, obs := range observations {
		ledger.Step(obs)
	}

	if open := ledger.OpenTrade(); open != nil {
		// Política deliberada: la posición abierta al acabar el feed no se
		// fuerza a cerrar ni entra en las estadísticas.
		slog.Debug("backtest: posición abierta al final del feed, excluida",
			"entry_date", open.EntryDate.Format("2006-01-02"),
			"contract", open.EntryContractID,
		)
	}

	return Summarize(
		ledger.ClosedTrades(),
		cfg.InitialCapital,
		observations[0].Date,
		observations[len(observations)-1].Date,
	)
}
