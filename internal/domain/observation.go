package domain

import (
	"fmt"
	"time"
)

// BasisObservation es una fila del histórico: precios spot y futuro del mismo
// subyacente en una fecha, junto con el contrato de futuros vigente.
// Inmutable una vez producida por el feed.
type BasisObservation struct {
	Date          time.Time // clave de ordenación (fecha de calendario)
	ContractID    string    // identificador opaco del contrato, ej. "MBTG4"
	SpotPrice     float64
	FuturesPrice  float64
	FuturesExpiry time.Time
}

// DaysToExpiry devuelve los días de calendario hasta el vencimiento del futuro.
func (o BasisObservation) DaysToExpiry() int {
	return daysBetween(o.Date, o.FuturesExpiry)
}

// BasisPct es la base como fracción del precio spot: (futuro - spot) / spot.
func (o BasisObservation) BasisPct() float64 {
	return (o.FuturesPrice - o.SpotPrice) / o.SpotPrice
}

// MonthlyBasis normaliza la base a un horizonte equivalente de 30 días.
// Es la decisión de diseño central: hace comparable la magnitud de la base
// entre contratos con distinto days-to-expiry, así un solo set de umbrales
// aplica sin importar lo cerca que esté el vencimiento.
//
// Ojo: con days-to-expiry muy pequeño el multiplicador 30/d amplifica la
// base; no se aplica ningún clamp — solo se rechaza d <= 0 en el feed.
func (o BasisObservation) MonthlyBasis() float64 {
	return o.BasisPct() * (30.0 / float64(o.DaysToExpiry()))
}

// Validate comprueba que la observación sea consumible por el motor.
// El feed rechaza cualquier fila inválida antes de que llegue al core.
func (o BasisObservation) Validate() error {
	if o.SpotPrice <= 0 {
		return fmt.Errorf("domain.BasisObservation: spot price %.4f no positivo en %s",
			o.SpotPrice, o.Date.Format("2006-01-02"))
	}
	if o.FuturesPrice <= 0 {
		return fmt.Errorf("domain.BasisObservation: futures price %.4f no positivo en %s",
			o.FuturesPrice, o.Date.Format("2006-01-02"))
	}
	if o.DaysToExpiry() <= 0 {
		return fmt.Errorf("domain.BasisObservation: days_to_expiry %d <= 0 en %s (expiry %s)",
			o.DaysToExpiry(), o.Date.Format("2006-01-02"), o.FuturesExpiry.Format("2006-01-02"))
	}
	return nil
}

// ValidateSeries comprueba cada observación y que las fechas sean
// estrictamente crecientes. Se ejecuta en la frontera de ingestión.
func ValidateSeries(obs []BasisObservation) error {
	for i, o := range obs {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("fila %d: %w", i, err)
		}
		if i > 0 && !obs[i-1].Date.Before(o.Date) {
			return fmt.Errorf("domain.ValidateSeries: fila %d: fecha %s no posterior a %s",
				i, o.Date.Format("2006-01-02"), obs[i-1].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// daysBetween devuelve días de calendario completos entre dos fechas.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
