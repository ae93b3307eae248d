package ports

import (
	"context"

	"github.com/alejandrodnm/basisbt/internal/domain"
)

// ObservationFeed produce la secuencia cronológica de observaciones de base
// que consume el motor. El core depende solo de esta capacidad, nunca de una
// fuente concreta (CSV, sintética, acumulador externo).
type ObservationFeed interface {
	// Observations devuelve la serie completa, ordenada por fecha y ya
	// validada: ninguna fila inválida llega al motor.
	Observations(ctx context.Context) ([]domain.BasisObservation, error)
}
