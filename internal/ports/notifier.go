package ports

import (
	"context"

	"github.com/alejandrodnm/basisbt/internal/backtest"
	"github.com/alejandrodnm/basisbt/internal/optimize"
)

// Notifier presenta los resultados al usuario.
type Notifier interface {
	// NotifyBacktest muestra el resultado de un run.
	// En la implementación de consola, imprime el resumen y la tabla de trades.
	NotifyBacktest(ctx context.Context, res backtest.Result) error

	// NotifyOptimization muestra el top-N del barrido junto con el resultado
	// de los parámetros por defecto como línea base.
	NotifyOptimization(ctx context.Context, report optimize.Report, baseline backtest.Result, topN int) error
}
