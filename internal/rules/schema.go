// Package rules defines threshold rulesets and the builtin presets.
package rules

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RuleSet holds ordered classification categories and per-substance
// thresholds. Categories run from cleanest to most contaminated; the order
// is load-bearing, not cosmetic.
type RuleSet struct {
	Name                 string            `json:"name"`
	Description          string            `json:"description,omitempty"`
	Version              string            `json:"version"`
	Matrix               string            `json:"matrix,omitempty"`
	Categories           []string          `json:"categories"`
	CategoryDescriptions map[string]string `json:"categoryDescriptions,omitempty"`
	Rules                []SubstanceRule   `json:"rules"`
}

// SubstanceRule maps one substance to its per-category thresholds.
// Thresholds are exact decimals; float64 would lose regulatory precision.
type SubstanceRule struct {
	Substance  string                     `json:"substance"`
	Thresholds map[string]decimal.Decimal `json:"thresholds"`
	Matrix     string                     `json:"matrix,omitempty"`
	Unit       string                     `json:"unit,omitempty"`
	Note       string                     `json:"note,omitempty"`
}

// Validate checks the structural invariants a ruleset must satisfy before
// it can be classified against.
func (rs *RuleSet) Validate() error {
	if rs.Name == "" {
		return fmt.Errorf("ruleset name is required")
	}
	if rs.Version == "" {
		return fmt.Errorf("ruleset %q: version is required", rs.Name)
	}
	if len(rs.Categories) == 0 {
		return fmt.Errorf("ruleset %q: categories must be non-empty", rs.Name)
	}
	seen := make(map[string]bool, len(rs.Categories))
	for _, cat := range rs.Categories {
		if cat == "" {
			return fmt.Errorf("ruleset %q: empty category name", rs.Name)
		}
		if seen[cat] {
			return fmt.Errorf("ruleset %q: duplicate category %q", rs.Name, cat)
		}
		seen[cat] = true
	}
	for i, rule := range rs.Rules {
		if rule.Substance == "" {
			return fmt.Errorf("ruleset %q: rule %d has no substance", rs.Name, i)
		}
		if len(rule.Thresholds) == 0 {
			return fmt.Errorf("ruleset %q: rule %q has no thresholds", rs.Name, rule.Substance)
		}
		for cat := range rule.Thresholds {
			if !seen[cat] {
				return fmt.Errorf("ruleset %q: rule %q references unknown category %q", rs.Name, rule.Substance, cat)
			}
		}
	}
	return nil
}

// CategoryRank returns the index of a category in the ordered list, or -1.
func (rs *RuleSet) CategoryRank(category string) int {
	for i, cat := range rs.Categories {
		if cat == category {
			return i
		}
	}
	return -1
}
