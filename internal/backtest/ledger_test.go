package backtest

import (
	"math/rand"
	"testing"
	"time"

	"github.com/alejandrodnm/basisbt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

// obs construye una observación con la base mensualizada pedida y 30 DTE
// (multiplicador neutro 30/30).
func obs(d int, contract string, spot, monthly float64) domain.BasisObservation {
	return domain.BasisObservation{
		Date:          day(d),
		ContractID:    contract,
		SpotPrice:     spot,
		FuturesPrice:  spot * (1 + monthly),
		FuturesExpiry: day(d + 30),
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HoldingDays = 30
	return cfg
}

func TestLedger_EntryOpensPosition(t *testing.T) {
	l := NewLedger(testConfig())
	sig := l.Step(obs(0, "MBTG4", 50000, 0.010)) // > entry 0.5%

	assert.Equal(t, domain.StrongEntry, sig)
	require.True(t, l.InPosition())
	assert.Equal(t, "MBTG4", l.OpenTrade().EntryContractID)
	assert.Empty(t, l.ClosedTrades())
}

func TestLedger_NoEntryStaysFlat(t *testing.T) {
	l := NewLedger(testConfig())
	l.Step(obs(0, "MBTG4", 50000, 0.004)) // < entry
	assert.False(t, l.InPosition())
}

func TestLedger_ExitSignalIgnoredWhileFlat(t *testing.T) {
	l := NewLedger(testConfig())
	sig := l.Step(obs(0, "MBTG4", 50000, -0.01)) // stop loss sin posición
	assert.Equal(t, domain.StopLoss, sig)
	assert.False(t, l.InPosition())
	assert.Empty(t, l.ClosedTrades())
}

func TestLedger_EntrySignalIgnoredInPosition(t *testing.T) {
	l := NewLedger(testConfig())
	l.Step(obs(0, "MBTG4", 50000, 0.010))
	entry := *l.OpenTrade()

	l.Step(obs(1, "MBTG4", 51000, 0.012)) // otra señal de entrada

	require.True(t, l.InPosition())
	assert.Equal(t, entry.EntryDate, l.OpenTrade().EntryDate, "no debe reabrir ni promediar")
	assert.Empty(t, l.ClosedTrades())
}

func TestLedger_FullExitClosesWithSignalReason(t *testing.T) {
	l := NewLedger(testConfig())
	l.Step(obs(0, "MBTG4", 50000, 0.010))
	l.Step(obs(5, "MBTG4", 51000, 0.040)) // > exit 3.5%

	assert.False(t, l.InPosition())
	require.Len(t, l.ClosedTrades(), 1)
	tr := l.ClosedTrades()[0]
	assert.Equal(t, domain.ExitSignal, tr.ExitReason)
	assert.Equal(t, day(5), tr.ExitDate)
	assert.InDelta(t, 51000.0, tr.ExitSpot, 1e-9)
}

func TestLedger_StopLossCloses(t *testing.T) {
	l := NewLedger(testConfig())
	l.Step(obs(0, "MBTG4", 50000, 0.010))
	l.Step(obs(3, "MBTG4", 49000, -0.005)) // base negativa

	assert.False(t, l.InPosition())
	require.Len(t, l.ClosedTrades(), 1)
	assert.Equal(t, domain.ExitSignal, l.ClosedTrades()[0].ExitReason)
}

func TestLedger_PartialExitCloses(t *testing.T) {
	l := NewLedger(testConfig())
	l.Step(obs(0, "MBTG4", 50000, 0.010))
	l.Step(obs(3, "MBTG4", 50500, 0.025)) // entre midpoint 2.0% y exit 3.5%

	assert.False(t, l.InPosition())
	require.Len(t, l.ClosedTrades(), 1)
}

func TestLedger_ContractRoll_ClosesAtPreviousPrices(t *testing.T) {
	l := NewLedger(testConfig())
	l.Step(obs(0, "MBTG4", 50000, 0.010))
	l.Step(obs(1, "MBTG4", 50500, 0.012)) // última observación del contrato original
	l.Step(obs(2, "MBTH4", 51000, 0.010)) // cambia el contrato

	require.Len(t, l.ClosedTrades(), 1)
	tr := l.ClosedTrades()[0]
	assert.Equal(t, domain.ExitContractRoll, tr.ExitReason)
	// Cierre sobre la observación ANTERIOR, no la primera del contrato nuevo
	assert.Equal(t, day(1), tr.ExitDate)
	assert.InDelta(t, 50500.0, tr.ExitSpot, 1e-9)
}

func TestLedger_ContractRoll_ReentersSameDay(t *testing.T) {
	l := NewLedger(testConfig())
	l.Step(obs(0, "MBTG4", 50000, 0.010))
	l.Step(obs(1, "MBTH4", 51000, 0.010)) // roll + señal de entrada en el contrato nuevo

	require.Len(t, l.ClosedTrades(), 1)
	assert.Equal(t, domain.ExitContractRoll, l.ClosedTrades()[0].ExitReason)
	require.True(t, l.InPosition(), "tras el roll se re-evalúa desde FLAT y puede reabrir")
	assert.Equal(t, "MBTH4", l.OpenTrade().EntryContractID)
	assert.Equal(t, day(1), l.OpenTrade().EntryDate)
}

func TestLedger_ContractRoll_NoReentryWithoutSignal(t *testing.T) {
	l := NewLedger(testConfig())
	l.Step(obs(0, "MBTG4", 50000, 0.010))
	l.Step(obs(1, "MBTH4", 51000, 0.004)) // roll, pero el nuevo contrato no da entrada

	require.Len(t, l.ClosedTrades(), 1)
	assert.False(t, l.InPosition())
}

func TestLedger_HoldingPeriodExpiry(t *testing.T) {
	cfg := testConfig()
	cfg.HoldingDays = 10
	l := NewLedger(cfg)

	l.Step(obs(0, "MBTG4", 50000, 0.010))
	for d := 1; d < 10; d++ {
		l.Step(obs(d, "MBTG4", 50000, 0.010)) // sin señal de salida
		require.True(t, l.InPosition(), "día %d", d)
	}
	l.Step(obs(10, "MBTG4", 50200, 0.010)) // día 10: límite alcanzado

	assert.False(t, l.InPosition())
	require.Len(t, l.ClosedTrades(), 1)
	tr := l.ClosedTrades()[0]
	assert.Equal(t, domain.ExitHoldingPeriod, tr.ExitReason)
	assert.Equal(t, day(10), tr.ExitDate)
	assert.InDelta(t, 50200.0, tr.ExitSpot, 1e-9)
}

func TestLedger_HoldingPeriodExpiry_NoSameDayReentry(t *testing.T) {
	cfg := testConfig()
	cfg.HoldingDays = 5
	l := NewLedger(cfg)

	l.Step(obs(0, "MBTG4", 50000, 0.010))
	l.Step(obs(5, "MBTG4", 50100, 0.010)) // cierre forzoso aunque la señal sea de entrada

	require.Len(t, l.ClosedTrades(), 1)
	assert.Equal(t, domain.ExitHoldingPeriod, l.ClosedTrades()[0].ExitReason)
	assert.False(t, l.InPosition(), "el cierre por límite de días no re-entra el mismo día")
}

func TestLedger_RollTakesPrecedenceOverHolding(t *testing.T) {
	cfg := testConfig()
	cfg.HoldingDays = 5
	l := NewLedger(cfg)

	l.Step(obs(0, "MBTG4", 50000, 0.010))
	l.Step(obs(4, "MBTG4", 50100, 0.010))
	// Día 6: expiraría el límite de días, pero el contrato también cambió.
	// El roll va primero: cierre a los precios del día 4.
	l.Step(obs(6, "MBTH4", 50500, 0.004))

	require.Len(t, l.ClosedTrades(), 1)
	tr := l.ClosedTrades()[0]
	assert.Equal(t, domain.ExitContractRoll, tr.ExitReason)
	assert.Equal(t, day(4), tr.ExitDate)
}

func TestLedger_CapitalCompounds(t *testing.T) {
	cfg := testConfig()
	l := NewLedger(cfg)
	assert.InDelta(t, cfg.InitialCapital, l.Capital(), 1e-9)

	l.Step(obs(0, "MBTG4", 50000, 0.010))
	l.Step(obs(5, "MBTG4", 51000, 0.040))

	require.Len(t, l.ClosedTrades(), 1)
	assert.InDelta(t, cfg.InitialCapital+l.ClosedTrades()[0].RealizedPnL, l.Capital(), 1e-9)
}

// Propiedad: como mucho un trade abierto en cualquier punto de una secuencia
// arbitraria, y los cierres siempre cronológicos.
func TestLedger_SinglePositionInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	contracts := []string{"MBTG4", "MBTH4", "MBTJ4"}

	for run := 0; run < 50; run++ {
		cfg := testConfig()
		cfg.HoldingDays = 5 + rng.Intn(20)
		l := NewLedger(cfg)

		spot := 50000.0
		for d := 0; d < 120; d++ {
			spot += rng.NormFloat64() * 0.02 * spot
			if spot < 10000 {
				spot = 10000
			}
			monthly := rng.NormFloat64()*0.01 + 0.01
			contract := contracts[d/40] // roll cada 40 días
			l.Step(obs(d, contract, spot, monthly))

			open := 0
			if l.InPosition() {
				open = 1
			}
			require.LessOrEqual(t, open, 1)
		}

		closed := l.ClosedTrades()
		for i := 1; i < len(closed); i++ {
			require.False(t, closed[i].ExitDate.Before(closed[i-1].ExitDate),
				"cierres fuera de orden en el run %d", run)
			require.True(t, closed[i].Closed)
		}
	}
}
