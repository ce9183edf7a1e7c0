package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/everlof/sonda/internal/clp"
	"github.com/everlof/sonda/internal/report"
)

// Category labels for the hazardous-waste verdict.
const (
	CategoryHazardous    = "FA"
	CategoryNotHazardous = "Icke FA"
)

// HazardRulesetName labels the hazard evaluation in aggregated results.
const HazardRulesetName = "Farligt avfall (HP-bedömning)"

// ClassifyHazard evaluates a report against the nine HP criteria of EU
// regulations 1357/2014 and 2017/997 and returns the FA / Icke FA verdict.
//
// Below-detection rows resolve to zero concentration and are excluded from
// every criterion, no matter how high the detection limit is.
func ClassifyHazard(rep *report.Report, store *clp.Store) RuleSetResult {
	resolved, unresolved := store.Resolve(rep)

	criteria := []CriterionResult{
		evaluateHP7(resolved),
		evaluateHP11(resolved),
		evaluateHP10(resolved),
		evaluateHP5(resolved),
		evaluateHP6(resolved),
		evaluateHP4(resolved),
		evaluateHP8(resolved),
		evaluateHP13(resolved),
		evaluateHP14(resolved),
	}

	isHazardous := false
	var triggeredIDs []string
	for _, c := range criteria {
		if c.Triggered {
			isHazardous = true
			triggeredIDs = append(triggeredIDs, c.ID)
		}
	}

	overallCategory := CategoryNotHazardous
	overallReason := "Icke farligt avfall: no HP criteria triggered"
	if isHazardous {
		overallCategory = CategoryHazardous
		overallReason = "Farligt avfall: triggered by " + strings.Join(triggeredIDs, ", ")
	}

	substanceResults := make([]SubstanceResult, 0, len(resolved))
	for i := range resolved {
		r := &resolved[i]
		category := CategoryNotHazardous
		if contributesToVerdict(criteria, r.Row.NormalizedName) {
			category = CategoryHazardous
		}
		substanceResults = append(substanceResults, SubstanceResult{
			Substance: r.Row.NormalizedName,
			RawName:   r.Row.RawName,
			Value:     r.Row.Value,
			Unit:      string(report.UnitMgPerKgTS),
			Category:  category,
			Reason: fmt.Sprintf("%s -> %s (%s): %s%% w/w",
				r.Row.RawName, r.Compound, r.CAS, r.ConcentrationPct.StringFixed(4)),
		})
	}

	return RuleSetResult{
		RulesetName:           HazardRulesetName,
		OverallCategory:       overallCategory,
		OverallReason:         overallReason,
		DeterminingSubstances: determiningHazardSubstances(criteria),
		SubstanceResults:      substanceResults,
		UnmatchedSubstances:   unresolved,
		UnmatchedRules:        []string{},
		HazardDetails: &HazardDetails{
			IsHazardous: isHazardous,
			Criteria:    criteria,
		},
	}
}

// contributesToVerdict reports whether a substance triggers any triggered
// criterion.
func contributesToVerdict(criteria []CriterionResult, substance string) bool {
	for _, c := range criteria {
		if !c.Triggered {
			continue
		}
		for _, contribution := range c.Contributions {
			if contribution.Substance == substance && contribution.Triggers {
				return true
			}
		}
	}
	return false
}

// determiningHazardSubstances is the deduplicated, sorted union of
// triggering contributions across triggered criteria.
func determiningHazardSubstances(criteria []CriterionResult) []string {
	seen := make(map[string]bool)
	for _, c := range criteria {
		if !c.Triggered {
			continue
		}
		for _, contribution := range c.Contributions {
			if contribution.Triggers {
				seen[contribution.Substance] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// individualLimit appends a contribution per substance carrying the exact
// H-code, each triggering on its own concentration.
func individualLimit(resolved []clp.Resolved, hCode string, threshold decimal.Decimal, contributions *[]Contribution) bool {
	triggered := false
	for i := range resolved {
		r := &resolved[i]
		if r.BelowDetection || !r.Substance.HasHCode(hCode) {
			continue
		}
		triggers := r.ConcentrationPct.Cmp(threshold) >= 0
		if triggers {
			triggered = true
		}
		*contributions = append(*contributions, contribution(r, hCode, r.ConcentrationPct, threshold, triggers))
	}
	return triggered
}

// summation sums concentrations across substances carrying the exact
// H-code; every contributor shares the aggregate outcome.
func summation(resolved []clp.Resolved, hCode string, threshold decimal.Decimal, contributions *[]Contribution) (bool, decimal.Decimal) {
	sum := decimal.Zero
	for i := range resolved {
		r := &resolved[i]
		if r.BelowDetection || !r.Substance.HasHCode(hCode) {
			continue
		}
		sum = sum.Add(r.ConcentrationPct)
	}
	triggered := sum.Cmp(threshold) >= 0
	for i := range resolved {
		r := &resolved[i]
		if r.BelowDetection || !r.Substance.HasHCode(hCode) {
			continue
		}
		*contributions = append(*contributions, contribution(r, hCode, r.ConcentrationPct, threshold, triggered))
	}
	return triggered, sum
}

func contribution(r *clp.Resolved, hCode string, pct, threshold decimal.Decimal, triggers bool) Contribution {
	return Contribution{
		Substance:        r.Row.NormalizedName,
		Compound:         r.Compound,
		HCode:            hCode,
		ConcentrationPct: pct,
		ThresholdPct:     &threshold,
		Triggers:         triggers,
	}
}

// HP7 Carcinogenic: H350 and variants >= 0.1%, H351 >= 1.0%, per substance.
func evaluateHP7(resolved []clp.Resolved) CriterionResult {
	var contributions []Contribution
	triggered := false

	carc1Threshold := dec("0.1")
	for i := range resolved {
		r := &resolved[i]
		if r.BelowDetection {
			continue
		}
		if hc, ok := r.Substance.FindHCodePrefix("H350"); ok {
			triggers := r.ConcentrationPct.Cmp(carc1Threshold) >= 0
			if triggers {
				triggered = true
			}
			contributions = append(contributions, contribution(r, hc.HCode, r.ConcentrationPct, carc1Threshold, triggers))
		}
	}
	if individualLimit(resolved, "H351", dec("1.0"), &contributions) {
		triggered = true
	}

	reason := "No substances exceed carcinogenic concentration limits"
	if triggered {
		reason = "One or more substances exceed individual carcinogenic concentration limits"
	}
	return CriterionResult{ID: "HP7", Name: "Carcinogenic", Triggered: triggered, Reason: reason, Contributions: contributions}
}

// HP11 Mutagenic: H340 >= 0.1%, H341 >= 1.0%, per substance.
func evaluateHP11(resolved []clp.Resolved) CriterionResult {
	var contributions []Contribution
	triggered := individualLimit(resolved, "H340", dec("0.1"), &contributions)
	if individualLimit(resolved, "H341", dec("1.0"), &contributions) {
		triggered = true
	}

	reason := "No substances exceed mutagenic concentration limits"
	if triggered {
		reason = "One or more substances exceed individual mutagenic concentration limits"
	}
	return CriterionResult{ID: "HP11", Name: "Mutagenic", Triggered: triggered, Reason: reason, Contributions: contributions}
}

// HP10 Toxic for reproduction: H360 variants >= 0.3% unless a Repr.1A/1B
// specific concentration limit overrides the generic one; H361 >= 0.3%.
func evaluateHP10(resolved []clp.Resolved) CriterionResult {
	var contributions []Contribution
	triggered := false

	generic := dec("0.3")
	for i := range resolved {
		r := &resolved[i]
		if r.BelowDetection {
			continue
		}
		if hc, ok := r.Substance.FindHCodePrefix("H360"); ok {
			threshold := generic
			if scl, ok := r.Substance.SCL("Repr.1A"); ok {
				threshold = scl
			} else if scl, ok := r.Substance.SCL("Repr.1B"); ok {
				threshold = scl
			}
			triggers := r.ConcentrationPct.Cmp(threshold) >= 0
			if triggers {
				triggered = true
			}
			contributions = append(contributions, contribution(r, hc.HCode, r.ConcentrationPct, threshold, triggers))
		}
		if hc, ok := r.Substance.FindHCodePrefix("H361"); ok {
			triggers := r.ConcentrationPct.Cmp(generic) >= 0
			if triggers {
				triggered = true
			}
			contributions = append(contributions, contribution(r, hc.HCode, r.ConcentrationPct, generic, triggers))
		}
	}

	reason := "No substances exceed reproductive toxicity concentration limits"
	if triggered {
		reason = "One or more substances exceed reproductive toxicity concentration limits"
	}
	return CriterionResult{ID: "HP10", Name: "Toxic for reproduction", Triggered: triggered, Reason: reason, Contributions: contributions}
}

// HP5 STOT SE/RE: individual limits for single exposure (H370 1.0%, H371
// 10.0%) plus summation for repeated exposure (H372 1.0%, H373 10.0%).
func evaluateHP5(resolved []clp.Resolved) CriterionResult {
	var contributions []Contribution

	triggered := individualLimit(resolved, "H370", dec("1.0"), &contributions)
	if individualLimit(resolved, "H371", dec("10.0"), &contributions) {
		triggered = true
	}
	h372Triggered, h372Sum := summation(resolved, "H372", dec("1.0"), &contributions)
	h373Triggered, h373Sum := summation(resolved, "H373", dec("10.0"), &contributions)
	triggered = triggered || h372Triggered || h373Triggered

	reason := fmt.Sprintf("STOT not triggered (H372 sum: %s%%, H373 sum: %s%%)",
		h372Sum.StringFixed(4), h373Sum.StringFixed(4))
	if triggered {
		reason = fmt.Sprintf("STOT triggered (H372 sum: %s%% >= 1%%, H373 sum: %s%% >= 10%%)",
			h372Sum.StringFixed(4), h373Sum.StringFixed(4))
	}
	return CriterionResult{ID: "HP5", Name: "STOT SE/RE", Triggered: triggered, Reason: reason, Contributions: contributions}
}

// HP6 Acute toxicity: nine summation checks, three severity tiers for each
// of the oral, dermal and inhalation routes. Any one check triggers.
func evaluateHP6(resolved []clp.Resolved) CriterionResult {
	checks := []struct {
		hCode     string
		threshold string
	}{
		{"H300", "0.1"}, {"H301", "5.0"}, {"H302", "25.0"},
		{"H310", "0.1"}, {"H311", "5.0"}, {"H312", "25.0"},
		{"H330", "0.1"}, {"H331", "5.0"}, {"H332", "25.0"},
	}

	var contributions []Contribution
	triggered := false
	var triggerDetails []string

	for _, check := range checks {
		threshold := dec(check.threshold)
		checkTriggered, sum := summation(resolved, check.hCode, threshold, &contributions)
		if checkTriggered {
			triggered = true
			triggerDetails = append(triggerDetails,
				fmt.Sprintf("%s sum %s%% >= %s%%", check.hCode, sum.StringFixed(4), threshold))
		}
	}

	reason := "No acute toxicity summation thresholds exceeded"
	if triggered {
		reason = "Acute toxicity triggered: " + strings.Join(triggerDetails, "; ")
	}
	return CriterionResult{ID: "HP6", Name: "Acute Toxicity", Triggered: triggered, Reason: reason, Contributions: contributions}
}

// HP4 Irritant: skin (H315) and eye (H319) summations, 20% each.
func evaluateHP4(resolved []clp.Resolved) CriterionResult {
	var contributions []Contribution
	h315Triggered, _ := summation(resolved, "H315", dec("20.0"), &contributions)
	h319Triggered, _ := summation(resolved, "H319", dec("20.0"), &contributions)
	triggered := h315Triggered || h319Triggered

	reason := "Irritant summation thresholds not exceeded"
	if triggered {
		reason = "Irritant summation threshold exceeded"
	}
	return CriterionResult{ID: "HP4", Name: "Irritant", Triggered: triggered, Reason: reason, Contributions: contributions}
}

// HP8 Corrosive: H314 summation, 5%.
func evaluateHP8(resolved []clp.Resolved) CriterionResult {
	var contributions []Contribution
	triggered, sum := summation(resolved, "H314", dec("5.0"), &contributions)

	reason := fmt.Sprintf("Corrosive not triggered: H314 sum %s%% < 5%%", sum.StringFixed(4))
	if triggered {
		reason = fmt.Sprintf("Corrosive: H314 sum %s%% >= 5%%", sum.StringFixed(4))
	}
	return CriterionResult{ID: "HP8", Name: "Corrosive", Triggered: triggered, Reason: reason, Contributions: contributions}
}

// HP13 Sensitising: H317 and H334, 10% each, per substance.
func evaluateHP13(resolved []clp.Resolved) CriterionResult {
	var contributions []Contribution
	threshold := dec("10.0")
	triggered := individualLimit(resolved, "H317", threshold, &contributions)
	if individualLimit(resolved, "H334", threshold, &contributions) {
		triggered = true
	}

	reason := "Sensitising thresholds not exceeded"
	if triggered {
		reason = "Sensitising threshold exceeded"
	}
	return CriterionResult{ID: "HP13", Name: "Sensitising", Triggered: triggered, Reason: reason, Contributions: contributions}
}

// HP14 Ecotoxic: two M-factor-weighted summations, either of which
// triggers. Check 1: Σ(c × M_acute) over H400 >= 25%. Check 2:
// 100 × Σ(c × M_chronic) over H410 >= 25%. A missing M-factor counts as 1.
func evaluateHP14(resolved []clp.Resolved) CriterionResult {
	threshold := dec("25.0")
	hundred := decimal.NewFromInt(100)

	acuteSum := decimal.Zero
	chronicSumRaw := decimal.Zero
	for i := range resolved {
		r := &resolved[i]
		if r.BelowDetection {
			continue
		}
		if r.Substance.HasHCode("H400") {
			acuteSum = acuteSum.Add(r.ConcentrationPct.Mul(r.Substance.AcuteM()))
		}
		if r.Substance.HasHCode("H410") {
			chronicSumRaw = chronicSumRaw.Add(r.ConcentrationPct.Mul(r.Substance.ChronicM()))
		}
	}
	chronicSum := hundred.Mul(chronicSumRaw)

	acuteTriggered := acuteSum.Cmp(threshold) >= 0
	chronicTriggered := chronicSum.Cmp(threshold) >= 0
	triggered := acuteTriggered || chronicTriggered

	var contributions []Contribution
	for i := range resolved {
		r := &resolved[i]
		if r.BelowDetection {
			continue
		}
		if r.Substance.HasHCode("H400") {
			weighted := r.ConcentrationPct.Mul(r.Substance.AcuteM())
			contributions = append(contributions, contribution(r, "H400", weighted, threshold, acuteTriggered))
		}
		if r.Substance.HasHCode("H410") {
			weighted := hundred.Mul(r.ConcentrationPct.Mul(r.Substance.ChronicM()))
			contributions = append(contributions, contribution(r, "H410", weighted, threshold, chronicTriggered))
		}
	}

	var reason string
	switch {
	case triggered:
		var parts []string
		if acuteTriggered {
			parts = append(parts, fmt.Sprintf("H400×M(ac) sum: %s%% >= 25%%", acuteSum.StringFixed(4)))
		}
		if chronicTriggered {
			parts = append(parts, fmt.Sprintf("100×H410×M(ch) sum: %s%% >= 25%%", chronicSum.StringFixed(4)))
		}
		reason = "Ecotoxic triggered: " + strings.Join(parts, "; ")
	default:
		reason = fmt.Sprintf("Ecotoxic not triggered (H400×M sum: %s%%, 100×H410×M sum: %s%%)",
			acuteSum.StringFixed(4), chronicSum.StringFixed(4))
	}
	return CriterionResult{ID: "HP14", Name: "Ecotoxic", Triggered: triggered, Reason: reason, Contributions: contributions}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
