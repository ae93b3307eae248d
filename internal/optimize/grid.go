package optimize

// grid.go — espacio de búsqueda del grid search: listas finitas y ordenadas
// de candidatos por parámetro. El producto cartesiano se filtra antes de
// evaluar: entry <= stop o exit <= entry es una estrategia sin sentido
// (entraría por debajo del stop o saldría por debajo de la entrada).

import "math"

// Params es una combinación de parámetros de estrategia a evaluar.
type Params struct {
	Entry       float64
	StopLoss    float64
	Exit        float64
	HoldingDays int
}

// Less ordena tuplas de parámetros lexicográficamente (entry, stop, exit,
// holding). Es el criterio de desempate determinista del ranking.
func (p Params) Less(q Params) bool {
	if p.Entry != q.Entry {
		return p.Entry < q.Entry
	}
	if p.StopLoss != q.StopLoss {
		return p.StopLoss < q.StopLoss
	}
	if p.Exit != q.Exit {
		return p.Exit < q.Exit
	}
	return p.HoldingDays < q.HoldingDays
}

// Valid descarta combinaciones incoherentes.
func (p Params) Valid() bool {
	return p.Entry > p.StopLoss && p.Exit > p.Entry
}

// Grid define las listas de candidatos por parámetro.
type Grid struct {
	Entry       []float64
	StopLoss    []float64
	Exit        []float64
	HoldingDays []int
}

// DefaultGrid devuelve el espacio por defecto: 10 × 5 × 9 × 6 = 2700
// combinaciones brutas antes del filtro de validez.
func DefaultGrid() Grid {
	return Grid{
		Entry:       Frange(0.002, 0.020, 0.002),
		StopLoss:    Frange(0.001, 0.005, 0.001),
		Exit:        Frange(0.020, 0.060, 0.005),
		HoldingDays: []int{10, 20, 30, 40, 50, 60},
	}
}

// Size devuelve el número de combinaciones brutas.
func (g Grid) Size() int {
	return len(g.Entry) * len(g.StopLoss) * len(g.Exit) * len(g.HoldingDays)
}

// Combinations enumera el producto cartesiano completo en orden lexicográfico.
// Devuelve las combinaciones válidas y el número de descartadas por el filtro.
func (g Grid) Combinations() (valid []Params, skipped int) {
	valid = make([]Params, 0, g.Size())
	for _, entry := range g.Entry {
		for _, stop := range g.StopLoss {
			for _, exit := range g.Exit {
				for _, hold := range g.HoldingDays {
					p := Params{Entry: entry, StopLoss: stop, Exit: exit, HoldingDays: hold}
					if !p.Valid() {
						skipped++
						continue
					}
					valid = append(valid, p)
				}
			}
		}
	}
	return valid, skipped
}

// Frange genera la lista cerrada [start, stop] con el paso dado, redondeada
// a 6 decimales para que los valores sean estables al serializar.
func Frange(start, stop, step float64) []float64 {
	var values []float64
	for v := start; v <= stop+step/10; v += step {
		values = append(values, math.Round(v*1e6)/1e6)
	}
	return values
}
