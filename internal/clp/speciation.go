package clp

import (
	"github.com/shopspring/decimal"

	"github.com/everlof/sonda/internal/report"
)

// Resolved is a lab row mapped to its worst-case CLP compound with the
// concentration expressed in percent by weight.
type Resolved struct {
	Row       *report.Row
	Substance *Substance
	CAS       string
	Compound  string
	// ConcentrationPct is raw mg/kg TS times the conversion factor,
	// divided by 10000. Zero for below-detection rows.
	ConcentrationPct decimal.Decimal
	BelowDetection   bool
}

// mg/kg to % w/w.
var mgkgToPct = decimal.New(1, -4)

// groupMarkers are report lines that describe aggregates rather than
// substances; they resolve to neither list.
var groupMarkers = map[string]bool{
	"pah_l":  true,
	"pah_m":  true,
	"pah_h":  true,
	"pah_16": true,
	"ts":     true,
}

// Resolve maps every row of a report onto the reference data.
//
// Rows without a speciation entry are returned by name in the second list;
// partial data still classifies, so a miss is informational, not an error.
func (st *Store) Resolve(rep *report.Report) ([]Resolved, []string) {
	var resolved []Resolved
	var unresolved []string

	for i := range rep.Rows {
		row := &rep.Rows[i]
		name := row.NormalizedName

		if groupMarkers[name] {
			continue
		}

		if metal, ok := st.metalsBy[name]; ok {
			sub, _ := st.Lookup(metal.CAS)
			pct, below := toPct(row.Value, metal.ConversionFactor)
			resolved = append(resolved, Resolved{
				Row:              row,
				Substance:        sub,
				CAS:              metal.CAS,
				Compound:         metal.Compound,
				ConcentrationPct: pct,
				BelowDetection:   below,
			})
			continue
		}

		if direct, ok := st.directsBy[name]; ok {
			sub, _ := st.Lookup(direct.CAS)
			pct, below := toPct(row.Value, decimal.NewFromInt(1))
			resolved = append(resolved, Resolved{
				Row:              row,
				Substance:        sub,
				CAS:              direct.CAS,
				Compound:         row.RawName,
				ConcentrationPct: pct,
				BelowDetection:   below,
			})
			continue
		}

		unresolved = append(unresolved, name)
	}

	return resolved, unresolved
}

// toPct converts a lab value to % w/w of the worst-case compound.
// Below-detection values contribute no mass: concentration is forced to
// zero and only the flag survives.
func toPct(v report.Value, factor decimal.Decimal) (decimal.Decimal, bool) {
	switch v.Kind() {
	case report.BelowDetection:
		return decimal.Zero, true
	default:
		return v.Amount().Mul(factor).Mul(mgkgToPct), false
	}
}
