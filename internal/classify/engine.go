package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/everlof/sonda/internal/report"
	"github.com/everlof/sonda/internal/rules"
)

// Classify runs a report against one or more threshold rulesets.
func Classify(rep *report.Report, rulesets []rules.RuleSet) []RuleSetResult {
	results := make([]RuleSetResult, 0, len(rulesets))
	for i := range rulesets {
		results = append(results, classifyOne(rep, &rulesets[i]))
	}
	return results
}

func classifyOne(rep *report.Report, ruleset *rules.RuleSet) RuleSetResult {
	var substanceResults []SubstanceResult
	matchedSubstances := make(map[string]bool)
	matchedRules := make(map[string]bool)

	for i := range rep.Rows {
		row := &rep.Rows[i]
		matching := matchingRules(row, rep.Header.Matrix, ruleset)
		if len(matching) == 0 {
			continue
		}
		matchedSubstances[row.NormalizedName] = true
		for _, rule := range matching {
			matchedRules[rule.Substance] = true
			substanceResults = append(substanceResults, classifySubstance(row, rule, ruleset.Categories))
		}
	}

	overallCategory, overallReason, determining := determineOverall(substanceResults, ruleset.Categories)

	result := RuleSetResult{
		RulesetName:           ruleset.Name,
		OverallCategory:       overallCategory,
		OverallReason:         overallReason,
		DeterminingSubstances: determining,
		SubstanceResults:      substanceResults,
		UnmatchedSubstances:   unmatchedNames(reportSubstances(rep), matchedSubstances),
		UnmatchedRules:        unmatchedNames(ruleSubstances(ruleset), matchedRules),
	}
	if len(ruleset.Categories) > 0 {
		result.LowestCategory = ruleset.Categories[0]
	}
	return result
}

// matchingRules selects every rule that applies to a row. A rule with a
// matrix filter applies only when the report's matrix is known and equal;
// an unknown report matrix blocks matrix-filtered rules entirely.
func matchingRules(row *report.Row, matrix report.Matrix, ruleset *rules.RuleSet) []*rules.SubstanceRule {
	var matching []*rules.SubstanceRule
	for i := range ruleset.Rules {
		rule := &ruleset.Rules[i]
		if rule.Substance != row.NormalizedName {
			continue
		}
		if rule.Matrix != "" {
			if matrix == "" || !strings.EqualFold(rule.Matrix, string(matrix)) {
				continue
			}
		}
		matching = append(matching, rule)
	}
	return matching
}

func classifySubstance(row *report.Row, rule *rules.SubstanceRule, categories []string) SubstanceResult {
	unit := rule.Unit
	if unit == "" {
		unit = string(report.UnitMgPerKgTS)
	}
	switch row.Value.Kind() {
	case report.BelowDetection:
		return classifyBelowDetection(row, rule, categories, unit)
	default:
		return classifyMeasured(row, rule, categories, unit)
	}
}

// classifyMeasured assigns the first category whose threshold the value
// does not exceed (non-strict), else the synthetic exceeds-all category.
func classifyMeasured(row *report.Row, rule *rules.SubstanceRule, categories []string, unit string) SubstanceResult {
	value := row.Value.Amount()

	for i, cat := range categories {
		threshold, ok := rule.Thresholds[cat]
		if !ok {
			continue
		}
		if value.Cmp(threshold) <= 0 {
			return SubstanceResult{
				Substance:         row.NormalizedName,
				RawName:           row.RawName,
				Value:             row.Value,
				Unit:              unit,
				Category:          cat,
				Reason:            measuredReason(row, rule, categories, i, cat, threshold, unit),
				ExceededThreshold: lastThresholdBefore(rule, categories, i),
			}
		}
	}

	// Exceeds every defined threshold.
	lastCat := ""
	if len(categories) > 0 {
		lastCat = categories[len(categories)-1]
	}
	return SubstanceResult{
		Substance: row.NormalizedName,
		RawName:   row.RawName,
		Value:     row.Value,
		Unit:      unit,
		Category:  "> " + lastCat,
		Reason: fmt.Sprintf("%s: %s %s > %s -> exceeds all thresholds",
			row.RawName, value, unit, strings.Join(thresholdParts(rule, categories), ", ")),
		ExceededThreshold: lastThresholdBefore(rule, categories, len(categories)),
	}
}

// classifyBelowDetection assigns the first category whose threshold lies
// strictly above the detection limit. When no threshold does, the row lands
// in the last category flagged uncertain: the limit cannot rule out
// contamination above every threshold.
func classifyBelowDetection(row *report.Row, rule *rules.SubstanceRule, categories []string, unit string) SubstanceResult {
	limit := row.Value.Amount()

	for _, cat := range categories {
		threshold, ok := rule.Thresholds[cat]
		if !ok {
			continue
		}
		if limit.Cmp(threshold) < 0 {
			return SubstanceResult{
				Substance: row.NormalizedName,
				RawName:   row.RawName,
				Value:     row.Value,
				Unit:      unit,
				Category:  cat,
				Reason: fmt.Sprintf("%s: < %s %s, detection limit below %s threshold (%s) -> classified as %s",
					row.RawName, limit, unit, cat, threshold, cat),
			}
		}
	}

	lastCat := ""
	if len(categories) > 0 {
		lastCat = categories[len(categories)-1]
	}
	result := SubstanceResult{
		Substance: row.NormalizedName,
		RawName:   row.RawName,
		Value:     row.Value,
		Unit:      unit,
		Category:  lastCat,
		Reason: fmt.Sprintf("%s: < %s %s, detection limit exceeds all thresholds (%s) -> uncertain",
			row.RawName, limit, unit, strings.Join(thresholdParts(rule, categories), ", ")),
		Uncertain: true,
	}
	if threshold, ok := rule.Thresholds[lastCat]; ok {
		result.ExceededThreshold = &threshold
	}
	return result
}

func measuredReason(row *report.Row, rule *rules.SubstanceRule, categories []string, idx int, cat string, threshold decimal.Decimal, unit string) string {
	value := row.Value.Amount()
	if idx == 0 {
		return fmt.Sprintf("%s: %s %s <= %s (%s) -> classified as %s",
			row.RawName, value, unit, threshold, cat, cat)
	}
	var prevParts []string
	for _, prevCat := range categories[:idx] {
		if prev, ok := rule.Thresholds[prevCat]; ok {
			prevParts = append(prevParts, fmt.Sprintf("%s > %s:%s", value, prevCat, prev))
		}
	}
	return fmt.Sprintf("%s: %s %s %s but <= %s:%s -> classified as %s",
		row.RawName, value, unit, strings.Join(prevParts, ", "), cat, threshold, cat)
}

// lastThresholdBefore returns the threshold of the closest earlier category
// that defines one, or nil for a first-category classification.
func lastThresholdBefore(rule *rules.SubstanceRule, categories []string, idx int) *decimal.Decimal {
	for i := idx - 1; i >= 0; i-- {
		if threshold, ok := rule.Thresholds[categories[i]]; ok {
			return &threshold
		}
	}
	return nil
}

func thresholdParts(rule *rules.SubstanceRule, categories []string) []string {
	var parts []string
	for _, cat := range categories {
		if threshold, ok := rule.Thresholds[cat]; ok {
			parts = append(parts, fmt.Sprintf("%s:%s", cat, threshold))
		}
	}
	return parts
}

// determineOverall picks the worst category rank across substance results.
// The synthetic exceeds-all category outranks every defined one.
func determineOverall(results []SubstanceResult, categories []string) (string, string, []string) {
	if len(results) == 0 {
		return "N/A", "No substances matched any rules", []string{}
	}

	hasExceeds := false
	worstIdx := -1
	for _, r := range results {
		if strings.HasPrefix(r.Category, "> ") {
			hasExceeds = true
			break
		}
		for idx, cat := range categories {
			if cat == r.Category && idx > worstIdx {
				worstIdx = idx
			}
		}
	}

	if hasExceeds {
		lastCat := ""
		if len(categories) > 0 {
			lastCat = categories[len(categories)-1]
		}
		var determining []string
		for _, r := range results {
			if strings.HasPrefix(r.Category, "> ") {
				determining = append(determining, r.RawName)
			}
		}
		return "> " + lastCat, "Determined by " + strings.Join(determining, ", "), determining
	}

	if worstIdx < 0 {
		worstIdx = 0
	}
	worstCat := categories[worstIdx]

	var determining []string
	for _, r := range results {
		if r.Category == worstCat {
			determining = append(determining, r.RawName)
		}
	}

	reason := fmt.Sprintf("Determined by %d substances at %s level", len(determining), worstCat)
	if len(determining) == 1 {
		reason = fmt.Sprintf("Determined by %s (%s)", determining[0], worstCat)
	}
	return worstCat, reason, determining
}

func reportSubstances(rep *report.Report) map[string]bool {
	names := make(map[string]bool, len(rep.Rows))
	for _, row := range rep.Rows {
		names[row.NormalizedName] = true
	}
	return names
}

func ruleSubstances(ruleset *rules.RuleSet) map[string]bool {
	names := make(map[string]bool, len(ruleset.Rules))
	for _, rule := range ruleset.Rules {
		names[rule.Substance] = true
	}
	return names
}

// unmatchedNames is the sorted set difference all \ matched.
func unmatchedNames(all map[string]bool, matched map[string]bool) []string {
	out := make([]string, 0, len(all))
	for name := range all {
		if !matched[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
