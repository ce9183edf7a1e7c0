// Package classify contains the threshold classification engine, the HP
// hazard evaluator, and the result schema both of them populate.
package classify

import (
	"github.com/shopspring/decimal"

	"github.com/everlof/sonda/internal/report"
)

// SubstanceResult is the classification of one report row against one rule.
type SubstanceResult struct {
	// Substance is the normalized name used for matching.
	Substance string `json:"substance"`
	// RawName is the name as printed in the lab report.
	RawName string       `json:"rawName"`
	Value   report.Value `json:"value"`
	Unit    string       `json:"unit"`
	// Category is the assigned category, or "> <last>" when every
	// threshold is exceeded.
	Category string `json:"category"`
	Reason   string `json:"reason"`
	// ExceededThreshold is the highest threshold the value passed, if any.
	ExceededThreshold *decimal.Decimal `json:"exceededThreshold,omitempty"`
	// Uncertain marks a below-detection row whose detection limit could
	// not rule out contamination above every threshold.
	Uncertain bool `json:"uncertain"`
}

// Contribution is one substance's part in an HP criterion evaluation.
type Contribution struct {
	Substance string `json:"substance"`
	// Compound is the worst-case CLP compound the row resolved to.
	Compound string `json:"compound"`
	HCode    string `json:"hCode"`
	// ConcentrationPct is the contribution in % w/w (M-factor weighted
	// for the ecotoxic checks).
	ConcentrationPct decimal.Decimal  `json:"concentrationPct"`
	ThresholdPct     *decimal.Decimal `json:"thresholdPct,omitempty"`
	// Triggers is the aggregate outcome for summation checks and the
	// individual outcome for individual-limit checks.
	Triggers bool `json:"triggers"`
}

// CriterionResult is the outcome of one HP criterion.
type CriterionResult struct {
	ID            string         `json:"hpId"`
	Name          string         `json:"hpName"`
	Triggered     bool           `json:"triggered"`
	Reason        string         `json:"reason"`
	Contributions []Contribution `json:"contributions"`
}

// HazardDetails is the full HP evaluation attached to a hazard result.
type HazardDetails struct {
	IsHazardous bool              `json:"isHazardous"`
	Criteria    []CriterionResult `json:"criteriaResults"`
}

// RuleSetResult is one ruleset (or the hazard evaluation) applied to one
// sample report.
type RuleSetResult struct {
	RulesetName     string `json:"rulesetName"`
	OverallCategory string `json:"overallCategory"`
	OverallReason   string `json:"overallReason"`
	// LowestCategory is the cleanest category the ruleset defines, for
	// display layers that render scales. Empty for hazard results.
	LowestCategory string `json:"lowestCategory,omitempty"`
	// DeterminingSubstances drove the overall category.
	DeterminingSubstances []string          `json:"determiningSubstances"`
	SubstanceResults      []SubstanceResult `json:"substanceResults"`
	// UnmatchedSubstances are report rows no rule matched.
	UnmatchedSubstances []string `json:"unmatchedSubstances"`
	// UnmatchedRules are ruleset substances absent from the report.
	UnmatchedRules []string       `json:"unmatchedRules"`
	HazardDetails  *HazardDetails `json:"hazardDetails,omitempty"`
}

// SampleResult aggregates every requested evaluation of one sample.
type SampleResult struct {
	SampleID       string          `json:"sampleId"`
	RulesetResults []RuleSetResult `json:"rulesetResults"`
}
