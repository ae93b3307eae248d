package feed

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/basisbt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthetic_ValidSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	obs, err := NewSynthetic(start, 180, 42).Observations(context.Background())
	require.NoError(t, err)
	require.Len(t, obs, 180)

	// El generador debe producir una serie que pase la validación de frontera
	assert.NoError(t, domain.ValidateSeries(obs))
}

func TestSynthetic_Deterministic(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, err := NewSynthetic(start, 90, 7).Observations(context.Background())
	require.NoError(t, err)
	b, err := NewSynthetic(start, 90, 7).Observations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewSynthetic(start, 90, 8).Observations(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "seeds distintos deben producir series distintas")
}

func TestSynthetic_ContractRolls(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	obs, err := NewSynthetic(start, 120, 42).Observations(context.Background())
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, o := range obs {
		seen[o.ContractID] = true
	}
	// 120 días cruzan varios vencimientos mensuales
	assert.GreaterOrEqual(t, len(seen), 3, "debe haber rolls de contrato")
}

func TestSynthetic_ContractIDFormat(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	obs, err := NewSynthetic(start, 10, 1).Observations(context.Background())
	require.NoError(t, err)

	// Enero 2024: el último viernes es el 26 → contrato MBTF4
	assert.Equal(t, "MBTF4", obs[0].ContractID)
	assert.Equal(t, time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC), obs[0].FuturesExpiry)
}

func TestLastFriday(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC), lastFriday(2024, time.January))
	assert.Equal(t, time.Date(2024, 2, 23, 0, 0, 0, 0, time.UTC), lastFriday(2024, time.February))
	assert.Equal(t, time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC), lastFriday(2024, time.December))
	// Normalización de month+1 más allá de diciembre
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), lastFriday(2024, time.December+1))
}

func TestFrontExpiry_RollsPastLastFriday(t *testing.T) {
	// El 26 de enero de 2024 es el último viernes: ese mismo día el front
	// pasa a febrero (days_to_expiry debe ser > 0).
	jan25 := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)
	jan26 := time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC), frontExpiry(jan25))
	assert.Equal(t, time.Date(2024, 2, 23, 0, 0, 0, 0, time.UTC), frontExpiry(jan26))
}
