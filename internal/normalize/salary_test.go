package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalaryHourlyConversion(t *testing.T) {
	res := Salary(127, 0, "hourly", "")
	require.NotNil(t, res)
	require.NotNil(t, res.AnnualMin)
	assert.InDelta(t, 127*2080, *res.AnnualMin, 0.01)
	assert.Nil(t, res.AnnualMax)
	assert.False(t, res.Estimated)
	// conversion from an hourly rate is never fully confident
	assert.Less(t, res.Confidence, 1.0)
}

func TestSalaryHourlyBandOnOriginalValue(t *testing.T) {
	// 127*2080 = 264,160 would fail a naive annual-band check applied
	// after conversion; the band must run on the hourly value.
	res := Salary(127, 130, "hour", "")
	require.NotNil(t, res)
	require.NotNil(t, res.AnnualMin)
	require.NotNil(t, res.AnnualMax)

	// below the hourly floor
	res = Salary(18, 0, "hour", "")
	assert.Nil(t, res)

	// above the hourly ceiling
	res = Salary(400, 0, "hour", "")
	assert.Nil(t, res)
}

func TestSalaryAnnualBands(t *testing.T) {
	tests := []struct {
		name   string
		min    float64
		text   string
		wantOK bool
	}{
		{"within strict band", 150_000, "", true},
		{"below strict band", 70_000, "", false},
		{"below strict band but estimated loosens it", 70_000, "estimated salary", true},
		{"above strict band", 350_000, "", false},
		{"above strict band but estimated loosens it", 350_000, "estimated salary", true},
		{"absurdly high", 900_000, "estimated salary", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Salary(tt.min, 0, "year", tt.text)
			if tt.wantOK {
				require.NotNil(t, res)
				assert.NotNil(t, res.AnnualMin)
			} else {
				assert.Nil(t, res)
			}
		})
	}
}

func TestSalaryPeriodDetection(t *testing.T) {
	// free-text keyword beats magnitude inference
	res := Salary(90, 110, "", "pay is $90-$110/hour")
	require.NotNil(t, res)
	assert.InDelta(t, 90*2080, *res.AnnualMin, 0.01)

	// magnitude inference: <500 reads as hourly
	res = Salary(95, 0, "", "")
	require.NotNil(t, res)
	assert.InDelta(t, 95*2080, *res.AnnualMin, 0.01)

	// magnitude inference: six figures reads as annual
	res = Salary(140_000, 0, "", "")
	require.NotNil(t, res)
	assert.InDelta(t, 140_000, *res.AnnualMin, 0.01)
}

func TestSalarySwapsReversedBounds(t *testing.T) {
	res := Salary(220_000, 120_000, "year", "")
	require.NotNil(t, res)
	require.NotNil(t, res.AnnualMin)
	require.NotNil(t, res.AnnualMax)
	assert.LessOrEqual(t, *res.AnnualMin, *res.AnnualMax)
	assert.InDelta(t, 120_000, *res.AnnualMin, 0.01)
	assert.InDelta(t, 220_000, *res.AnnualMax, 0.01)
}

func TestSalaryWideSpreadLowersConfidence(t *testing.T) {
	narrow := Salary(120_000, 150_000, "year", "")
	wide := Salary(60, 200, "hour", "")
	require.NotNil(t, narrow)
	require.NotNil(t, wide)
	assert.Less(t, wide.Confidence, narrow.Confidence)
}

func TestSalaryEstimationDetection(t *testing.T) {
	res := Salary(150_000, 0, "year", "Estimated from similar roles")
	require.NotNil(t, res)
	assert.True(t, res.Estimated)
	assert.InDelta(t, 0.6, res.Confidence, 0.001)
}

func TestSalaryRejectsEmptyInput(t *testing.T) {
	assert.Nil(t, Salary(0, 0, "", ""))
	assert.Nil(t, Salary(-5, 0, "year", ""))
}

func TestSalaryPartialRejection(t *testing.T) {
	// max is out of band, min survives
	res := Salary(150_000, 900_000, "year", "")
	require.NotNil(t, res)
	assert.NotNil(t, res.AnnualMin)
	assert.Nil(t, res.AnnualMax)
}
