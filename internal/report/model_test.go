package report

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValueJSONRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   Value
		want string
	}{
		{"measured", NewMeasured(decimal.RequireFromString("30")), `{"measured":"30"}`},
		{"below detection", NewBelowDetection(decimal.RequireFromString("0.25")), `{"belowDetection":"0.25"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(tc.in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(raw) != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, raw)
			}
			var out Value
			if err := json.Unmarshal(raw, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if out.Kind() != tc.in.Kind() || !out.Amount().Equal(tc.in.Amount()) {
				t.Fatalf("round trip lost data: %v vs %v", out, tc.in)
			}
		})
	}
}

func TestValueJSONRejectsAmbiguous(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"measured":"1","belowDetection":"2"}`), &v); err == nil {
		t.Fatalf("both tags present must fail")
	}
	if err := json.Unmarshal([]byte(`{}`), &v); err == nil {
		t.Fatalf("no tag present must fail")
	}
}

func TestValueString(t *testing.T) {
	if got := NewBelowDetection(decimal.RequireFromString("0.5")).String(); got != "< 0.5" {
		t.Fatalf("expected \"< 0.5\", got %q", got)
	}
	if got := NewMeasured(decimal.RequireFromString("12.5")).String(); got != "12.5" {
		t.Fatalf("expected \"12.5\", got %q", got)
	}
}

func TestParseMatrix(t *testing.T) {
	cases := []struct {
		raw    string
		want   Matrix
		wantOK bool
	}{
		{"Jord", MatrixJord, true},
		{"  soil sample ", MatrixJord, true},
		{"ASFALT", MatrixAsfalt, true},
		{"asphalt core", MatrixAsfalt, true},
		{"vatten", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseMatrix(tc.raw)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("ParseMatrix(%q) = %q, %v; want %q, %v", tc.raw, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestParseUnitDefaultsToMgPerKgTS(t *testing.T) {
	cases := map[string]Unit{
		"mg/kg TS": UnitMgPerKgTS,
		"MG/KG ts": UnitMgPerKgTS,
		"mg/kg":    UnitMgPerKg,
		"%":        UnitPercent,
		"":         UnitMgPerKgTS,
		"ppm":      UnitMgPerKgTS,
	}
	for raw, want := range cases {
		if got := ParseUnit(raw); got != want {
			t.Fatalf("ParseUnit(%q) = %q, want %q", raw, got, want)
		}
	}
}
