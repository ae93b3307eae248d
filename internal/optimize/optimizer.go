package optimize

// optimizer.go — grid search por fuerza bruta sobre los umbrales de la
// estrategia. Cada combinación corre un backtest completo y aislado (Ledger
// propio, sin estado compartido), así que el barrido se reparte en un worker
// pool; el orden del resultado lo fija el score, nunca el orden de
// terminación.
//
// Una combinación que falle (panic) no aborta el barrido: se recupera,
// se loggea y se salta.

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/alejandrodnm/basisbt/internal/backtest"
	"github.com/alejandrodnm/basisbt/internal/domain"
)

// Result es una fila del barrido: la tupla de parámetros y los escalares del
// backtest que produjo.
type Result struct {
	Params   Params
	Backtest backtest.Result
}

// Report es el resultado completo de una optimización.
type Report struct {
	Results   []Result // ordenados por retorno total desc, empates por tupla asc
	Evaluated int      // combinaciones evaluadas
	Skipped   int      // descartadas por el filtro de validez
	Failed    int      // evaluaciones recuperadas de un panic
}

// Top devuelve las n mejores filas.
func (r Report) Top(n int) []Result {
	if n > len(r.Results) {
		n = len(r.Results)
	}
	return r.Results[:n]
}

// Optimizer ejecuta el barrido sobre un feed fijo de observaciones.
type Optimizer struct {
	base    backtest.Config // el resto de parámetros (funding, capital, size)
	workers int
}

// New crea un optimizador. Si workers <= 0 usa runtime.NumCPU().
func New(base backtest.Config, workers int) *Optimizer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Optimizer{base: base, workers: workers}
}

// Run evalúa el producto cartesiano del grid sobre las observaciones dadas.
// El contexto cancela el trabajo pendiente; las combinaciones ya encoladas
// a un worker terminan su backtest en curso.
func (o *Optimizer) Run(ctx context.Context, observations []domain.BasisObservation, grid Grid) Report {
	combos, skipped := grid.Combinations()

	slog.Info("grid search",
		"raw", grid.Size(),
		"valid", len(combos),
		"skipped", skipped,
		"workers", o.workers,
	)

	workCh := make(chan Params, len(combos))
	resultCh := make(chan Result, len(combos))
	var failedMu sync.Mutex
	failedCount := 0

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range workCh {
				select {
				case <-ctx.Done():
					return
				default:
				}
				res, ok := o.evaluate(observations, p)
				if !ok {
					failedMu.Lock()
					failedCount++
					failedMu.Unlock()
					continue
				}
				resultCh <- res
			}
		}()
	}
	for _, p := range combos {
		workCh <- p
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]Result, 0, len(combos))
	for res := range resultCh {
		results = append(results, res)
	}

	// Ranking determinista: score desc, empates por tupla de parámetros asc.
	sort.Slice(results, func(i, j int) bool {
		ri, rj := results[i], results[j]
		if ri.Backtest.TotalReturnPct != rj.Backtest.TotalReturnPct {
			return ri.Backtest.TotalReturnPct > rj.Backtest.TotalReturnPct
		}
		return ri.Params.Less(rj.Params)
	})

	return Report{
		Results:   results,
		Evaluated: len(results),
		Skipped:   skipped,
		Failed:    failedCount,
	}
}

// evaluate corre un backtest aislado para la combinación dada. Un panic en
// la evaluación se convierte en un salto loggeado, no en un abort.
func (o *Optimizer) evaluate(observations []domain.BasisObservation, p Params) (res Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("combinación fallida, se salta",
				"entry", p.Entry, "stop", p.StopLoss, "exit", p.Exit,
				"holding_days", p.HoldingDays, "panic", r,
			)
			ok = false
		}
	}()

	cfg := o.base
	cfg.Thresholds = domain.Thresholds{Entry: p.Entry, StopLoss: p.StopLoss, Exit: p.Exit}
	cfg.HoldingDays = p.HoldingDays

	return Result{Params: p, Backtest: backtest.Run(observations, cfg)}, true
}
