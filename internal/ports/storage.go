package ports

import (
	"context"

	"github.com/alejandrodnm/basisbt/internal/backtest"
	"github.com/alejandrodnm/basisbt/internal/optimize"
)

// RunStorage persiste el histórico de runs de backtest y optimización.
type RunStorage interface {
	// SaveBacktest persiste un run con sus trades cerrados y devuelve el id
	// asignado al run.
	SaveBacktest(ctx context.Context, source string, cfg backtest.Config, res backtest.Result) (string, error)

	// SaveOptimization persiste las mejores filas de un barrido.
	SaveOptimization(ctx context.Context, source string, report optimize.Report, topN int) (string, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
