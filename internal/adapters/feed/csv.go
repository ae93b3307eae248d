package feed

// csv.go — feed de observaciones desde un CSV acumulado.
//
// Columnas esperadas (por nombre de cabecera, el resto se ignora):
//   date, contract_id, spot_price, futures_price, futures_expiry
//
// Toda fila se valida aquí, en la frontera: fechas estrictamente crecientes,
// precios positivos y days_to_expiry > 0. El motor nunca recibe una fila
// malformada.

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alejandrodnm/basisbt/internal/domain"
)

const dateLayout = "2006-01-02"

// CSV implementa ports.ObservationFeed leyendo un archivo acumulado.
type CSV struct {
	path string
}

// NewCSV crea un feed sobre la ruta dada. El archivo se lee en cada llamada
// a Observations, no se cachea.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Observations lee, parsea y valida la serie completa.
func (f *CSV) Observations(_ context.Context) ([]domain.BasisObservation, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("feed.CSV: open %q: %w", f.path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("feed.CSV: parse %q: %w", f.path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("feed.CSV: %q: sin filas de datos", f.path)
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, fmt.Errorf("feed.CSV: %q: %w", f.path, err)
	}

	obs := make([]domain.BasisObservation, 0, len(rows)-1)
	for i, row := range rows[1:] {
		o, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("feed.CSV: %q fila %d: %w", f.path, i+1, err)
		}
		obs = append(obs, o)
	}

	if err := domain.ValidateSeries(obs); err != nil {
		return nil, fmt.Errorf("feed.CSV: %q: %w", f.path, err)
	}
	return obs, nil
}

// columns son los índices de las columnas requeridas dentro del CSV.
type columns struct {
	date, contract, spot, futures, expiry int
}

func headerIndex(header []string) (columns, error) {
	idx := map[string]int{}
	for i, name := range header {
		idx[name] = i
	}

	cols := columns{}
	required := []struct {
		name string
		dst  *int
	}{
		{"date", &cols.date},
		{"contract_id", &cols.contract},
		{"spot_price", &cols.spot},
		{"futures_price", &cols.futures},
		{"futures_expiry", &cols.expiry},
	}
	for _, req := range required {
		i, ok := idx[req.name]
		if !ok {
			return columns{}, fmt.Errorf("falta la columna %q", req.name)
		}
		*req.dst = i
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (domain.BasisObservation, error) {
	date, err := parseDate(row[cols.date])
	if err != nil {
		return domain.BasisObservation{}, fmt.Errorf("date: %w", err)
	}
	expiry, err := parseDate(row[cols.expiry])
	if err != nil {
		return domain.BasisObservation{}, fmt.Errorf("futures_expiry: %w", err)
	}
	spot, err := strconv.ParseFloat(row[cols.spot], 64)
	if err != nil {
		return domain.BasisObservation{}, fmt.Errorf("spot_price: %w", err)
	}
	futures, err := strconv.ParseFloat(row[cols.futures], 64)
	if err != nil {
		return domain.BasisObservation{}, fmt.Errorf("futures_price: %w", err)
	}

	return domain.BasisObservation{
		Date:          date,
		ContractID:    row[cols.contract],
		SpotPrice:     spot,
		FuturesPrice:  futures,
		FuturesExpiry: expiry,
	}, nil
}

// parseDate acepta fecha sola o timestamp ISO completo (el acumulador
// original escribe ambos según la fuente).
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha %q no parseable", s)
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}
