package units

import (
	"math"
	"testing"

	"gosof/domain/core"
)

func relDiff(a, b float64) float64 {
	if b == 0 {
		return math.Abs(a)
	}
	return math.Abs(a-b) / math.Abs(b)
}

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		value float64
		unit  string
	}{
		{1.0, "Bq/g"},
		{3.5, "Bq/kg"},
		{0.25, "uCi/g"},
		{600, "dpm"},
		{42, "Ci"},
		{7.3, "mSv/yr"},
		{120, "mrem/h"},
		{0.8, "Bq/m^2"},
		{5, "Bq/L"},
		{9.9, "kBq/cm^2"},
		{2.5, "uSv/h"},
	}
	for _, tt := range tests {
		q, err := Parse(tt.value, tt.unit)
		if err != nil {
			t.Fatalf("Parse(%v, %q): %v", tt.value, tt.unit, err)
		}
		back, err := q.In(tt.unit)
		if err != nil {
			t.Fatalf("In(%q): %v", tt.unit, err)
		}
		if relDiff(back, tt.value) > 1e-12 {
			t.Errorf("round trip %v %q: got %v", tt.value, tt.unit, back)
		}
	}
}

func TestConvert_ExactFactors(t *testing.T) {
	tests := []struct {
		value    float64
		from, to string
		want     float64
	}{
		{1, "Ci", "Bq", 3.7e10},
		{1, "rem", "Sv", 0.01},
		{1, "Sv", "rem", 100},
		{1, "yr", "d", 365.25},
		{60, "dpm", "Bq", 1},
		{1, "Bq", "dps", 1},
		{1, "Bq/g", "Bq/kg", 1000},
		{2000, "Bq/kg", "Bq/g", 2},
		{1, "uCi", "Bq", 3.7e4},
		{1, "mSv/yr", "rem/yr", 0.1},
		{1, "becquerel", "Bq", 1},
		{1, "millisievert", "mSv", 1},
		{3, "becquerels / kilogram", "Bq/kg", 3},
	}
	for _, tt := range tests {
		got, err := Convert(tt.value, tt.from, tt.to)
		if err != nil {
			t.Fatalf("Convert(%v, %q, %q): %v", tt.value, tt.from, tt.to, err)
		}
		if relDiff(got, tt.want) > 1e-12 {
			t.Errorf("Convert(%v, %q, %q) = %v, want %v", tt.value, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParse_SurfaceConvention(t *testing.T) {
	// 600 dpm per 100 cm^2 is 10 Bq over 0.01 m^2.
	tests := []string{
		"dpm/100 cm^2",
		"dpm/100cm^2",
		"dpm/100 cm**2",
		"DPM/100 CM^2",
		"dpm per 100 cm^2",
	}
	for _, unit := range tests {
		q, err := Parse(600, unit)
		if err != nil {
			t.Fatalf("Parse(600, %q): %v", unit, err)
		}
		got, err := q.In("Bq/m^2")
		if err != nil {
			t.Fatalf("In(Bq/m^2) for %q: %v", unit, err)
		}
		if relDiff(got, 1000) > 1e-6 {
			t.Errorf("600 %q = %v Bq/m^2, want 1000", unit, got)
		}
	}
}

func TestResolveTarget_SurfaceConvention(t *testing.T) {
	// A per-100cm^2 target re-expresses as Bq/m^2, so converting into it
	// yields the becquerel-per-square-meter magnitude.
	for _, unit := range []string{"dpm/100 cm^2", "dpm/100cm^2", "DPM/100 CM^2"} {
		target, err := ResolveTarget(unit)
		if err != nil {
			t.Fatalf("ResolveTarget(%q): %v", unit, err)
		}
		if target.Label != "Bq/m^2" {
			t.Errorf("ResolveTarget(%q).Label = %q, want Bq/m^2", unit, target.Label)
		}

		got, err := Convert(1000, "Bq/m^2", unit)
		if err != nil {
			t.Fatalf("Convert(1000, Bq/m^2, %q): %v", unit, err)
		}
		if relDiff(got, 1000) > 1e-9 {
			t.Errorf("Convert(1000, Bq/m^2, %q) = %v, want 1000", unit, got)
		}
	}

	// Both sides in the convention.
	got, err := Convert(600, "dpm/100cm^2", "dpm/100 cm^2")
	if err != nil {
		t.Fatal(err)
	}
	if relDiff(got, 1000) > 1e-9 {
		t.Errorf("600 dpm/100cm^2 = %v Bq/m^2, want 1000", got)
	}
}

func TestResolveTarget_PlainUnit(t *testing.T) {
	target, err := ResolveTarget("Bq / kg")
	if err != nil {
		t.Fatal(err)
	}
	if target.Label != "Bq/kg" {
		t.Errorf("Label = %q, want Bq/kg", target.Label)
	}
	if relDiff(target.FromBase(3), 3) > 1e-12 {
		t.Errorf("FromBase(3) = %v, want 3", target.FromBase(3))
	}
}

func TestParse_SurfaceConventionRejectsNonActivity(t *testing.T) {
	if _, err := Parse(1, "g/100 cm^2"); err == nil {
		t.Fatal("expected error for non-activity surface unit")
	}
}

func TestCountsGuard(t *testing.T) {
	blocked := []string{
		"cpm", "cps", "count", "counts",
		"counts per minute", "count/s", "counts/min",
		"CPM", "Counts Per Second", "net counts",
	}
	for _, unit := range blocked {
		if _, err := Parse(1000, unit); !core.IsUnitError(err) {
			t.Errorf("Parse(%q) should fail with a counts error, got %v", unit, err)
		}
	}

	// Symmetric on the target side.
	q, err := Parse(1, "Bq")
	if err != nil {
		t.Fatal(err)
	}
	for _, unit := range []string{"counts", "cpm", "count/s"} {
		if _, err := q.In(unit); err == nil {
			t.Errorf("In(%q) should fail", unit)
		}
	}

	// dpm and dps are real activity units, not counts.
	for _, unit := range []string{"dpm", "dps"} {
		if IsCountsUnit(unit) {
			t.Errorf("%q wrongly flagged as counts", unit)
		}
	}
}

func TestParse_InvalidUnits(t *testing.T) {
	// Bare numbers are dimensionless, not units.
	for _, unit := range []string{"", "   ", "florps", "Bq/", "/g", "Bq^x", "100", "2^3"} {
		if _, err := Parse(1, unit); err == nil {
			t.Errorf("Parse(%q) should fail", unit)
		}
	}
}

func TestIn_IncompatibleDimensions(t *testing.T) {
	q, err := Parse(1, "Bq/g")
	if err != nil {
		t.Fatal(err)
	}
	for _, unit := range []string{"Bq", "Sv", "Bq/m^2", "g"} {
		if _, err := q.In(unit); !core.IsUnitError(err) {
			t.Errorf("In(%q) should fail with a unit error, got %v", unit, err)
		}
	}
}

func TestNormalize_MicroAndPowerNotation(t *testing.T) {
	a, err := Convert(1, "µCi", "uCi")
	if err != nil {
		t.Fatal(err)
	}
	if relDiff(a, 1) > 1e-12 {
		t.Errorf("µCi/uCi mismatch: %v", a)
	}

	b, err := Convert(1, "Bq/m**2", "Bq/m^2")
	if err != nil {
		t.Fatal(err)
	}
	if relDiff(b, 1) > 1e-12 {
		t.Errorf("** vs ^ mismatch: %v", b)
	}
}
