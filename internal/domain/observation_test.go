package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validObs(d int) BasisObservation {
	return BasisObservation{
		Date:          day(d),
		ContractID:    "MBTG4",
		SpotPrice:     50000,
		FuturesPrice:  50500,
		FuturesExpiry: day(d + 25),
	}
}

func TestObservation_Derived(t *testing.T) {
	o := validObs(0)
	assert.Equal(t, 25, o.DaysToExpiry())
	assert.InDelta(t, 0.01, o.BasisPct(), 1e-12)
	assert.InDelta(t, 0.012, o.MonthlyBasis(), 1e-12) // 1% × 30/25
}

func TestObservation_Validate_OK(t *testing.T) {
	require.NoError(t, validObs(0).Validate())
}

func TestObservation_Validate_BadPrices(t *testing.T) {
	o := validObs(0)
	o.SpotPrice = 0
	assert.Error(t, o.Validate())

	o = validObs(0)
	o.FuturesPrice = -1
	assert.Error(t, o.Validate())
}

func TestObservation_Validate_ExpiredContract(t *testing.T) {
	o := validObs(5)
	o.FuturesExpiry = day(5) // vence hoy → days_to_expiry = 0
	assert.Error(t, o.Validate())

	o.FuturesExpiry = day(3) // ya vencido
	assert.Error(t, o.Validate())
}

func TestValidateSeries_OK(t *testing.T) {
	obs := []BasisObservation{validObs(0), validObs(1), validObs(2)}
	require.NoError(t, ValidateSeries(obs))
}

func TestValidateSeries_OutOfOrder(t *testing.T) {
	obs := []BasisObservation{validObs(0), validObs(2), validObs(1)}
	assert.Error(t, ValidateSeries(obs))
}

func TestValidateSeries_DuplicateDate(t *testing.T) {
	obs := []BasisObservation{validObs(0), validObs(0)}
	assert.Error(t, ValidateSeries(obs))
}

func TestValidateSeries_PropagatesRowError(t *testing.T) {
	bad := validObs(1)
	bad.SpotPrice = 0
	obs := []BasisObservation{validObs(0), bad}
	err := ValidateSeries(obs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fila 1")
}
