package nuclide

import "testing"

func TestToCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"137Cs", "Cs-137"},
		{"cs137", "Cs-137"},
		{"Cs-137", "Cs-137"},
		{"99mTc", "Tc-99m"},
		{"TC99M", "Tc-99m"},
		{"Tc-99m", "Tc-99m"},
		{"Tc99m", "Tc-99m"},
		{"241Am", "Am-241"},
		{"99Mo", "Mo-99"},
		// Both readings name real elements; the longer symbol wins.
		{"99mo", "Mo-99"},
		{"99mtc", "Tc-99m"},
		{"sr 90", "Sr-90"},
		{"Co_60", "Co-60"},
		{"ag-110m", "Ag-110m"},
		{"110m2Ag", "Ag-110m2"},
		{"Ba-137(m)", "Ba-137m"},
		{"H-3", "H-3"},
		{"u238", "U-238"},
		// No pattern matches: normalized input returned unchanged.
		{"gross alpha", "grossalpha"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToCanonical(tt.in); got != tt.want {
			t.Errorf("ToCanonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToCanonical_Idempotent(t *testing.T) {
	inputs := []string{"137Cs", "99mTc", "Tc-99m", "cs137", "241Am", "Ag-110m2", "grossalpha"}
	for _, in := range inputs {
		once := ToCanonical(in)
		if twice := ToCanonical(once); twice != once {
			t.Errorf("ToCanonical not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestCanonicalizeSample_AliasPrecedesRegex(t *testing.T) {
	aliases := &AliasMap{entries: map[string]string{
		"cesium137": "Cs-137",
		"tc99m":     "Tc-99m",
	}}
	c := NewCanonicalizer(aliases)

	tests := []struct {
		in        string
		want      string
		wantAlias bool
	}{
		{"Cesium 137", "Cs-137", true},
		{"cesium_137", "Cs-137", true}, // underscores stripped in the key
		{"Cesium-137", "Cs-137", true}, // hyphen-stripped variant tried second
		{"TC 99M", "Tc-99m", true},
		{"137Cs", "Cs-137", false}, // regex fallback
		{"mystery", "mystery", false},
	}
	for _, tt := range tests {
		got, usedAlias := c.CanonicalizeSample(tt.in)
		if got != tt.want || usedAlias != tt.wantAlias {
			t.Errorf("CanonicalizeSample(%q) = (%q, %v), want (%q, %v)",
				tt.in, got, usedAlias, tt.want, tt.wantAlias)
		}
	}
}

func TestCanonicalizeLimit_NeverUsesAliases(t *testing.T) {
	aliases := &AliasMap{entries: map[string]string{"cs-137": "WRONG"}}
	c := NewCanonicalizer(aliases)
	if got := c.CanonicalizeLimit("cs-137"); got != "Cs-137" {
		t.Errorf("CanonicalizeLimit(cs-137) = %q, want Cs-137", got)
	}
}
