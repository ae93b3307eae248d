package feed

// synthetic.go — feed sintético para probar la estrategia sin datos reales.
//
// Camina el spot con ruido gaussiano y muestrea la base mensualizada de una
// normal en contango (media 1.5%), escalada a la base bruta según los días a
// vencimiento del contrato vigente. Los contratos son mensuales al estilo
// CME: vencen el último viernes del mes y el id lleva el código de mes y el
// último dígito del año (ej. "MBTG4" = febrero 2024).

import (
	"context"
	"math/rand"
	"time"

	"github.com/alejandrodnm/basisbt/internal/domain"
)

// Códigos de mes de futuros: F=ene ... Z=dic.
var monthCodes = [12]byte{'F', 'G', 'H', 'J', 'K', 'M', 'N', 'Q', 'U', 'V', 'X', 'Z'}

// Synthetic implementa ports.ObservationFeed con datos generados.
// Mismo seed → misma serie, bit a bit.
type Synthetic struct {
	Start     time.Time
	Days      int
	BasePrice float64
	Symbol    string
	Seed      int64
}

// NewSynthetic crea un generador con los defaults del histórico de ejemplo.
func NewSynthetic(start time.Time, days int, seed int64) *Synthetic {
	return &Synthetic{
		Start:     start.UTC().Truncate(24 * time.Hour),
		Days:      days,
		BasePrice: 50000,
		Symbol:    "MBT",
		Seed:      seed,
	}
}

// Observations genera la serie completa.
func (s *Synthetic) Observations(_ context.Context) ([]domain.BasisObservation, error) {
	rng := rand.New(rand.NewSource(s.Seed))
	obs := make([]domain.BasisObservation, 0, s.Days)

	price := s.BasePrice
	for d := 0; d < s.Days; d++ {
		date := s.Start.AddDate(0, 0, d)

		price += rng.NormFloat64() * 0.02 * price
		if price < 10000 {
			price = 10000
		}

		expiry := frontExpiry(date)
		daysToExpiry := int(expiry.Sub(date) / (24 * time.Hour))

		// Base mensualizada en contango, acotada por abajo; la base bruta se
		// escala con los días restantes para que el monthly basis observado
		// sea directamente la muestra.
		monthly := 0.015 + rng.NormFloat64()*0.01
		if monthly < -0.01 {
			monthly = -0.01
		}
		basisPct := monthly * float64(daysToExpiry) / 30.0

		obs = append(obs, domain.BasisObservation{
			Date:          date,
			ContractID:    s.contractID(expiry),
			SpotPrice:     price,
			FuturesPrice:  price * (1 + basisPct),
			FuturesExpiry: expiry,
		})
	}
	return obs, nil
}

// contractID compone el id del contrato vigente, ej. "MBTG4".
func (s *Synthetic) contractID(expiry time.Time) string {
	code := monthCodes[expiry.Month()-1]
	yearDigit := byte('0' + expiry.Year()%10)
	return s.Symbol + string(code) + string(yearDigit)
}

// frontExpiry devuelve el vencimiento del contrato front-month para la fecha:
// el último viernes del mes, o el del mes siguiente si ya pasó (o es hoy,
// porque days_to_expiry debe ser > 0).
func frontExpiry(date time.Time) time.Time {
	expiry := lastFriday(date.Year(), date.Month())
	if !expiry.After(date) {
		// time.Date normaliza month+1 > diciembre al año siguiente
		expiry = lastFriday(date.Year(), date.Month()+1)
	}
	return expiry
}

// lastFriday devuelve el último viernes del mes dado.
func lastFriday(year int, month time.Month) time.Time {
	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	d := firstOfNext.AddDate(0, 0, -1)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
