package classify

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/everlof/sonda/internal/report"
	"github.com/everlof/sonda/internal/rules"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return v
}

func soilRuleset(t *testing.T) rules.RuleSet {
	t.Helper()
	rs, err := rules.LoadPreset("nv")
	if err != nil {
		t.Fatalf("load nv preset: %v", err)
	}
	return rs
}

func soilReport(rows ...report.Row) *report.Report {
	return &report.Report{
		Header: report.Header{SampleID: "S1", Matrix: report.MatrixJord},
		Rows:   rows,
	}
}

func measured(t *testing.T, name, amount string) report.Row {
	t.Helper()
	return report.Row{
		RawName:        name,
		NormalizedName: name,
		Value:          report.NewMeasured(d(t, amount)),
		Unit:           report.UnitMgPerKgTS,
	}
}

func belowDetection(t *testing.T, name, limit string) report.Row {
	t.Helper()
	return report.Row{
		RawName:        name,
		NormalizedName: name,
		Value:          report.NewBelowDetection(d(t, limit)),
		Unit:           report.UnitMgPerKgTS,
	}
}

func findSubstance(t *testing.T, result RuleSetResult, name string) SubstanceResult {
	t.Helper()
	for _, sr := range result.SubstanceResults {
		if sr.Substance == name {
			return sr
		}
	}
	t.Fatalf("no result for substance %q", name)
	return SubstanceResult{}
}

func TestClassifyAllBelowFirstThreshold(t *testing.T) {
	rep := soilReport(
		measured(t, "arsenik", "5"),
		measured(t, "bly", "20"),
		measured(t, "kadmium", "0.5"),
	)
	results := Classify(rep, []rules.RuleSet{soilRuleset(t)})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.OverallCategory != "KM" {
		t.Fatalf("expected overall KM, got %q (%s)", r.OverallCategory, r.OverallReason)
	}
	for _, sr := range r.SubstanceResults {
		if sr.Category != "KM" {
			t.Fatalf("%s: expected KM, got %q", sr.Substance, sr.Category)
		}
		if sr.Uncertain {
			t.Fatalf("%s: measured value flagged uncertain", sr.Substance)
		}
	}
}

func TestClassifyIntermediateCategory(t *testing.T) {
	// Arsenic KM threshold is 10, MKM is 25; 15 lands between them.
	rep := soilReport(measured(t, "arsenik", "15"))
	r := Classify(rep, []rules.RuleSet{soilRuleset(t)})[0]
	sr := findSubstance(t, r, "arsenik")
	if sr.Category != "MKM" {
		t.Fatalf("expected MKM, got %q (%s)", sr.Category, sr.Reason)
	}
	if sr.ExceededThreshold == nil || !sr.ExceededThreshold.Equal(d(t, "10")) {
		t.Fatalf("expected exceeded threshold 10, got %v", sr.ExceededThreshold)
	}
	if r.OverallCategory != "MKM" {
		t.Fatalf("expected overall MKM, got %q", r.OverallCategory)
	}
}

func TestClassifyExceedsAllThresholds(t *testing.T) {
	rep := soilReport(
		measured(t, "arsenik", "100"),
		measured(t, "bly", "20"),
	)
	r := Classify(rep, []rules.RuleSet{soilRuleset(t)})[0]
	sr := findSubstance(t, r, "arsenik")
	if sr.Category != "> MKM" {
		t.Fatalf("expected \"> MKM\", got %q", sr.Category)
	}
	if sr.ExceededThreshold == nil || !sr.ExceededThreshold.Equal(d(t, "25")) {
		t.Fatalf("expected exceeded threshold 25, got %v", sr.ExceededThreshold)
	}
	if r.OverallCategory != "> MKM" {
		t.Fatalf("synthetic category must dominate overall, got %q", r.OverallCategory)
	}
	if len(r.DeterminingSubstances) != 1 || r.DeterminingSubstances[0] != "arsenik" {
		t.Fatalf("expected arsenik determining, got %v", r.DeterminingSubstances)
	}
}

func TestClassifyThresholdBoundaryIsInclusive(t *testing.T) {
	// v <= threshold classifies into the category, so exactly 10 is KM.
	rep := soilReport(measured(t, "arsenik", "10"))
	r := Classify(rep, []rules.RuleSet{soilRuleset(t)})[0]
	sr := findSubstance(t, r, "arsenik")
	if sr.Category != "KM" {
		t.Fatalf("value equal to threshold must classify into it, got %q", sr.Category)
	}
}

func TestClassifyBelowDetectionConfident(t *testing.T) {
	// Detection limit 0.2 is strictly under the mercury KM threshold 0.25.
	rep := soilReport(belowDetection(t, "kvicksilver", "0.2"))
	r := Classify(rep, []rules.RuleSet{soilRuleset(t)})[0]
	sr := findSubstance(t, r, "kvicksilver")
	if sr.Category != "KM" {
		t.Fatalf("expected KM, got %q", sr.Category)
	}
	if sr.Uncertain {
		t.Fatalf("limit strictly below the threshold must not be uncertain")
	}
}

func TestClassifyBelowDetectionLimitEqualToThresholdEscalates(t *testing.T) {
	// Strict comparison: a limit exactly at the KM threshold cannot prove
	// the true value is under it, so the next tier is assigned.
	rep := soilReport(belowDetection(t, "kvicksilver", "0.25"))
	r := Classify(rep, []rules.RuleSet{soilRuleset(t)})[0]
	sr := findSubstance(t, r, "kvicksilver")
	if sr.Category != "MKM" {
		t.Fatalf("expected MKM, got %q (%s)", sr.Category, sr.Reason)
	}
	if sr.Uncertain {
		t.Fatalf("intermediate escalation is silent; only exceeding every threshold sets uncertain")
	}
}

func TestClassifyBelowDetectionExceedsAllThresholdsUncertain(t *testing.T) {
	rep := soilReport(belowDetection(t, "kvicksilver", "5"))
	r := Classify(rep, []rules.RuleSet{soilRuleset(t)})[0]
	sr := findSubstance(t, r, "kvicksilver")
	if sr.Category != "MKM" {
		t.Fatalf("expected last category MKM, got %q", sr.Category)
	}
	if !sr.Uncertain {
		t.Fatalf("detection limit above every threshold must be uncertain")
	}
	if sr.ExceededThreshold == nil || !sr.ExceededThreshold.Equal(d(t, "2.5")) {
		t.Fatalf("expected last threshold 2.5 recorded, got %v", sr.ExceededThreshold)
	}
}

func TestClassifyUnmatchedTracking(t *testing.T) {
	rep := soilReport(
		measured(t, "arsenik", "5"),
		measured(t, "okänt_ämne", "100"),
	)
	r := Classify(rep, []rules.RuleSet{soilRuleset(t)})[0]
	if len(r.UnmatchedSubstances) != 1 || r.UnmatchedSubstances[0] != "okänt_ämne" {
		t.Fatalf("expected okänt_ämne unmatched, got %v", r.UnmatchedSubstances)
	}
	found := false
	for _, name := range r.UnmatchedRules {
		if name == "bly" {
			found = true
		}
	}
	if !found {
		t.Fatalf("bly absent from report must be in unmatched rules, got %v", r.UnmatchedRules)
	}
}

func TestClassifyEmptyReport(t *testing.T) {
	rep := soilReport()
	r := Classify(rep, []rules.RuleSet{soilRuleset(t)})[0]
	if r.OverallCategory != "N/A" {
		t.Fatalf("expected N/A, got %q", r.OverallCategory)
	}
	if r.OverallReason != "No substances matched any rules" {
		t.Fatalf("unexpected reason %q", r.OverallReason)
	}
}

func TestClassifyMatrixFilteredRuleSkipped(t *testing.T) {
	asphalt, err := rules.LoadPreset("asfalt")
	if err != nil {
		t.Fatalf("load asfalt preset: %v", err)
	}
	rep := soilReport(measured(t, "pah_16", "100"))
	r := Classify(rep, []rules.RuleSet{asphalt})[0]
	if len(r.SubstanceResults) != 0 {
		t.Fatalf("asphalt rules must not match a soil report: %+v", r.SubstanceResults)
	}
}

func TestClassifyMatrixMatchAsphalt(t *testing.T) {
	asphalt, err := rules.LoadPreset("asfalt")
	if err != nil {
		t.Fatalf("load asfalt preset: %v", err)
	}
	rep := &report.Report{
		Header: report.Header{SampleID: "A1", Matrix: report.MatrixAsfalt},
		Rows:   []report.Row{measured(t, "pah_16", "100")},
	}
	r := Classify(rep, []rules.RuleSet{asphalt})[0]
	sr := findSubstance(t, r, "pah_16")
	if sr.Category != "Begränsad återvinning" {
		t.Fatalf("PAH16 of 100 exceeds 70: expected Begränsad återvinning, got %q", sr.Category)
	}
}

func TestClassifyMonotonicity(t *testing.T) {
	// Raising a value never yields a cleaner category.
	rs := soilRuleset(t)
	prevRank := -1
	ranked := append([]string{}, rs.Categories...)
	ranked = append(ranked, "> "+rs.Categories[len(rs.Categories)-1])
	rank := func(cat string) int {
		for i, c := range ranked {
			if c == cat {
				return i
			}
		}
		return -1
	}
	for _, amount := range []string{"1", "10", "11", "25", "26", "1000"} {
		rep := soilReport(measured(t, "arsenik", amount))
		r := Classify(rep, []rules.RuleSet{rs})[0]
		got := rank(findSubstance(t, r, "arsenik").Category)
		if got < prevRank {
			t.Fatalf("category rank regressed at %s mg/kg", amount)
		}
		prevRank = got
	}
}

func TestClassifyReasonMentionsCategory(t *testing.T) {
	rep := soilReport(measured(t, "arsenik", "5"))
	r := Classify(rep, []rules.RuleSet{soilRuleset(t)})[0]
	sr := findSubstance(t, r, "arsenik")
	if !strings.Contains(sr.Reason, "KM") {
		t.Fatalf("reason must name the category: %q", sr.Reason)
	}
}
