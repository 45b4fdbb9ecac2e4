package engine

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosof/domain/core"
	"gosof/domain/sof"
	"gosof/internal/nuclide"
)

func newTestEngine() *Engine {
	return New(nuclide.NewCanonicalizer(nil))
}

func sampleTable(columns []string, rows ...[]string) *sof.Table {
	t := &sof.Table{Columns: columns}
	for _, cells := range rows {
		row := sof.Row{}
		for i, c := range columns {
			if i < len(cells) {
				row[c] = cells[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func TestCompute_SingleNuclide(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "1.0", "Bq/g"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2.0", "Bq/g"})

	res, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.Summary.SofTotal, 1e-12)
	assert.True(t, res.Summary.PassLimit)
	assert.InDelta(t, 0.5, res.Summary.MarginTo1, 1e-12)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Cs-137", res.Rows[0].Nuclide)
	assert.InDelta(t, 0.5, res.Rows[0].Fraction, 1e-12)
	// (1 - 0.5) * 2.0 Bq/g of headroom on this nuclide.
	assert.InDelta(t, 1.0, res.Rows[0].AllowedAdditional, 1e-12)
	assert.False(t, res.Rows[0].FractionSigma.Valid)
	assert.False(t, res.Summary.SofSigma.Valid)
}

func TestCompute_MixedUnitsSameDimension(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "1.0", "Bq/g"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2000", "Bq/kg"})

	res, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Summary.SofTotal, 1e-12)
	assert.Equal(t, "1000 Bq/kg", res.Rows[0].ConcDisplay)
	assert.Equal(t, "2000 Bq/kg", res.Rows[0].LimitDisplay)
}

func TestCompute_SigmaPropagation(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit", "sigma"},
		[]string{"Cs-137", "1.0", "Bq/g", "0.1"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2000", "Bq/kg"})

	res, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.NoError(t, err)

	// 1.0 +/- 0.1 Bq/g is 1000 +/- 100 Bq/kg; over a 2000 Bq/kg limit the
	// fraction is 0.5 +/- 0.05.
	row := res.Rows[0]
	require.True(t, row.FractionSigma.Valid)
	assert.InDelta(t, 0.05, row.FractionSigma.Value, 1e-12)
	require.True(t, res.Summary.SofSigma.Valid)
	assert.InDelta(t, 0.05, res.Summary.SofSigma.Value, 1e-12)
	assert.True(t, res.Summary.SigmaComplete)
}

func TestCompute_CombineDuplicates(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit", "sigma"},
		[]string{"Cs-137", "0.6", "Bq/g", "0.3"},
		[]string{"137Cs", "0.8", "Bq/g", "0.4"},
		[]string{"Sr-90", "1.0", "Bq/g", ""})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2.0", "Bq/g"},
		[]string{"Sr-90", "4.0", "Bq/g"})

	res, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	cs := res.Rows[0]
	assert.Equal(t, "Cs-137", cs.Nuclide)
	assert.InDelta(t, 0.7, cs.Fraction, 1e-12) // (0.6+0.8)/2.0
	require.True(t, cs.FractionSigma.Valid)
	assert.InDelta(t, 0.25, cs.FractionSigma.Value, 1e-12) // sqrt(0.09+0.16)/2

	sr := res.Rows[1]
	assert.False(t, sr.FractionSigma.Valid, "row without sigma stays undefined")

	// Aggregate sigma counts only defined rows; completeness is reported.
	assert.True(t, res.Summary.SofSigma.Valid)
	assert.InDelta(t, 0.25, res.Summary.SofSigma.Value, 1e-12)
	assert.False(t, res.Summary.SigmaComplete)
}

func TestCompute_DuplicatesKeptWhenDisabled(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "0.6", "Bq/g"},
		[]string{"Cs-137", "0.8", "Bq/g"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2.0", "Bq/g"})

	opts := sof.DefaultOptions()
	opts.CombineDuplicates = false
	res, err := e.Compute(samples, limits, opts)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.InDelta(t, 0.7, res.Summary.SofTotal, 1e-12)
}

func TestCompute_OverLimit(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "3.0", "Bq/g"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2.0", "Bq/g"})

	res, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.Summary.PassLimit)
	assert.InDelta(t, -0.5, res.Summary.MarginTo1, 1e-12)
	assert.Equal(t, 0.0, res.Rows[0].AllowedAdditional, "headroom clamps at zero when over limit")
}

func TestCompute_CountsUnitsFailFast(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "100", "cpm"},
		[]string{"Sr-90", "1.0", "Bq/g"},
		[]string{"Co-60", "50", "counts per minute"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2.0", "Bq/g"})

	_, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrCountsUnit))
	// Every distinct offending unit is named.
	assert.Contains(t, err.Error(), "cpm")
	assert.Contains(t, err.Error(), "counts per minute")
}

func TestCompute_MissingLimit(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "1.0", "Bq/g"},
		[]string{"Pu-239", "0.5", "Bq/g"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2.0", "Bq/g"})

	opts := sof.DefaultOptions()
	opts.TreatMissingAsZero = false
	_, err := e.Compute(samples, limits, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNuclideNotFound))
	assert.Contains(t, err.Error(), "Pu-239")

	opts.TreatMissingAsZero = true
	res, err := e.Compute(samples, limits, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pu-239"}, res.Summary.MissingLimitForSamples)
	assert.Len(t, res.Rows, 1)
	assert.InDelta(t, 0.5, res.Summary.SofTotal, 1e-12)
}

func TestCompute_AmbiguousLimit(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "1.0", "Bq/g"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2.0", "Bq/g"},
		[]string{"137Cs", "5.0", "Bq/g"})

	_, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrAmbiguousLimit))
	assert.Contains(t, err.Error(), "Cs-137")
}

func TestCompute_CategoryFilter(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "1.0", "Bq/g"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit", "category"},
		[]string{"Cs-137", "2.0", "Bq/g", "Class A"},
		[]string{"Cs-137", "10.0", "Bq/g", "Class B"})

	opts := sof.DefaultOptions()
	opts.Category = "  class a " // trimmed, case-insensitive
	res, err := e.Compute(samples, limits, opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Summary.SofTotal, 1e-12)

	opts.Category = "Class C"
	_, err = e.Compute(samples, limits, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrEmptyCategory))
}

func TestCompute_CategoryIgnoredWithoutColumn(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "1.0", "Bq/g"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2.0", "Bq/g"})

	opts := sof.DefaultOptions()
	opts.Category = "Class A"
	res, err := e.Compute(samples, limits, opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Summary.SofTotal, 1e-12)
}

func TestCompute_NonPositiveLimit(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "1.0", "Bq/g"})

	for _, bad := range []string{"0", "-2.0"} {
		limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
			[]string{"Cs-137", bad, "Bq/g"})
		_, err := e.Compute(samples, limits, sof.DefaultOptions())
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrNonPositiveLimit))
		assert.Contains(t, err.Error(), "Cs-137")
	}
}

func TestCompute_UnitMismatch(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "1.0", "Bq/g"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2.0", "mSv/yr"})

	_, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnitMismatch))
	for _, want := range []string{"Bq/g", "mSv/yr", "Cs-137"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestCompute_SchemaErrors(t *testing.T) {
	e := newTestEngine()
	good := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "2.0", "Bq/g"})

	noUnit := sampleTable([]string{"nuclide", "value"},
		[]string{"Cs-137", "1.0"})
	_, err := e.Compute(noUnit, good, sof.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSchema))
	assert.True(t, strings.Contains(err.Error(), "unit"))

	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Cs-137", "1.0", "Bq/g"})
	noLimitValue := sampleTable([]string{"nuclide", "limit_unit"},
		[]string{"Cs-137", "Bq/g"})
	_, err = e.Compute(samples, noLimitValue, sof.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSchema))
}

func TestCompute_UnmappedAliasesReported(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"137cs", "1.0", "Bq/g"},  // regex fallback changes this
		[]string{"Cs-137", "1.0", "Bq/g"}) // already canonical, not reported
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Cs-137", "4.0", "Bq/g"})

	res, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"137cs"}, res.Summary.UnmappedAliases)
}

func TestCompute_EmptyInputs(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"})

	res, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Equal(t, 0.0, res.Summary.SofTotal)
	assert.True(t, res.Summary.PassLimit)
	assert.False(t, res.Summary.SofSigma.Valid)
	assert.InDelta(t, 1.0, res.Summary.MarginTo1, 1e-15)
}

func TestCompute_SurfaceContamination(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Co-60", "600", "dpm/100 cm^2"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Co-60", "2000", "Bq/m^2"})

	res, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.NoError(t, err)
	// 600 dpm/100cm^2 is 1000 Bq/m^2, half the limit.
	assert.True(t, math.Abs(res.Summary.SofTotal-0.5) < 1e-6)
}

func TestCompute_SurfaceLimitUnits(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit"},
		[]string{"Co-60", "1000", "Bq/m^2"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Co-60", "1200", "dpm/100 cm^2"})

	res, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.NoError(t, err)

	// 1200 dpm/100cm^2 is 20 Bq over 0.01 m^2, so the limit re-expresses
	// as 2000 Bq/m^2 and both magnitudes display in that unit.
	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 0.5, res.Summary.SofTotal, 1e-9)
	assert.Equal(t, "1000 Bq/m^2", res.Rows[0].ConcDisplay)
	assert.Equal(t, "2000 Bq/m^2", res.Rows[0].LimitDisplay)
	assert.InDelta(t, 1000, res.Rows[0].AllowedAdditional, 1e-9)
}

func TestCompute_SurfaceUnitsBothSides(t *testing.T) {
	e := newTestEngine()
	samples := sampleTable([]string{"nuclide", "value", "unit", "sigma"},
		[]string{"Co-60", "600", "dpm/100cm^2", "60"})
	limits := sampleTable([]string{"nuclide", "limit_value", "limit_unit"},
		[]string{"Co-60", "1200", "dpm/100cm^2"})

	res, err := e.Compute(samples, limits, sof.DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 0.5, res.Summary.SofTotal, 1e-9)
	require.True(t, res.Rows[0].FractionSigma.Valid)
	assert.InDelta(t, 0.05, res.Rows[0].FractionSigma.Value, 1e-9)
	assert.Equal(t, "1000 Bq/m^2", res.Rows[0].ConcDisplay)
	assert.Equal(t, "2000 Bq/m^2", res.Rows[0].LimitDisplay)
}

func TestQuadratureCombinator(t *testing.T) {
	none := sof.Quadrature(sof.NoSigma, sof.NoSigma)
	assert.False(t, none.Valid, "all-absent input stays absent, not zero")

	some := sof.Quadrature(sof.SigmaOf(3), sof.NoSigma, sof.SigmaOf(4))
	require.True(t, some.Valid)
	assert.InDelta(t, 5.0, some.Value, 1e-12)
}
