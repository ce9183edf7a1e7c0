package classify

import (
	"fmt"
	"strings"

	"github.com/everlof/sonda/internal/clp"
	"github.com/everlof/sonda/internal/report"
	"github.com/everlof/sonda/internal/rules"
)

// Options selects what a sample is evaluated against.
type Options struct {
	// RuleSets are the threshold rulesets to classify against. Rulesets
	// whose matrix does not match the report are skipped.
	RuleSets []rules.RuleSet

	// IncludeHazard additionally runs the HP hazardous-waste evaluation.
	IncludeHazard bool

	// Store provides CLP substance and speciation data for the hazard
	// evaluation. When nil the embedded dataset is used.
	Store *clp.Store
}

// Sample evaluates one lab report and aggregates per-ruleset results.
//
// A ruleset that declares a matrix is skipped when the report's matrix
// differs. When every requested ruleset is skipped and no hazard
// evaluation was asked for, Sample fails with ErrMatrixMismatch rather
// than returning an empty result.
func Sample(rep *report.Report, opts Options) (SampleResult, error) {
	applicable := make([]rules.RuleSet, 0, len(opts.RuleSets))
	for _, rs := range opts.RuleSets {
		if rulesetApplies(&rs, rep.Header.Matrix) {
			applicable = append(applicable, rs)
		}
	}

	if len(applicable) == 0 && !opts.IncludeHazard {
		return SampleResult{}, fmt.Errorf("%w: matrix %q, %d ruleset(s) requested",
			ErrMatrixMismatch, rep.Header.Matrix, len(opts.RuleSets))
	}

	results := Classify(rep, applicable)

	if opts.IncludeHazard {
		store := opts.Store
		if store == nil {
			store = clp.Default()
		}
		results = append(results, ClassifyHazard(rep, store))
	}

	return SampleResult{
		SampleID:       sampleID(&rep.Header),
		RulesetResults: results,
	}, nil
}

// sampleID names the sample: the sample id when the lab assigned one,
// else the lab report id, else "unknown".
func sampleID(h *report.Header) string {
	if h.SampleID != "" {
		return h.SampleID
	}
	if h.LabReportID != "" {
		return h.LabReportID
	}
	return "unknown"
}

// rulesetApplies reports whether a ruleset's matrix filter admits the
// report. An empty ruleset matrix admits everything; a declared matrix
// requires a known, equal report matrix.
func rulesetApplies(rs *rules.RuleSet, matrix report.Matrix) bool {
	if rs.Matrix == "" {
		return true
	}
	return matrix != "" && strings.EqualFold(rs.Matrix, string(matrix))
}
