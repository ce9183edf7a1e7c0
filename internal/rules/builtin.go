package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed data/nv-riktvarden.json
var nvRiktvardenJSON []byte

//go:embed data/asfalt-pah16.json
var asfaltPAH16JSON []byte

// Presets lists the bundled preset names, including the hazard-based "fa".
var Presets = []string{"nv", "asfalt", "fa"}

// IsHazardPreset reports whether a preset runs the HP hazard engine instead
// of threshold comparison.
func IsHazardPreset(name string) bool {
	return name == "fa"
}

// LoadPreset returns a bundled ruleset by name.
//
// "fa" is hazard-based and has no threshold definition; callers must check
// IsHazardPreset first.
func LoadPreset(name string) (RuleSet, error) {
	var raw []byte
	switch name {
	case "nv":
		raw = nvRiktvardenJSON
	case "asfalt":
		raw = asfaltPAH16JSON
	case "fa":
		return RuleSet{}, fmt.Errorf("%w: %q is hazard-based, request hazard evaluation instead", ErrInvalidRuleSet, name)
	default:
		return RuleSet{}, fmt.Errorf("%w: unknown preset %q (available: nv, asfalt, fa)", ErrNotFound, name)
	}
	return decode(raw, name)
}

// LoadFile reads and validates a caller-supplied ruleset JSON file.
func LoadFile(path string) (RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read ruleset %s: %w", path, err)
	}
	return decode(raw, path)
}

func decode(raw []byte, source string) (RuleSet, error) {
	var rs RuleSet
	if err := json.Unmarshal(raw, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("%w: %s: %v", ErrInvalidRuleSet, source, err)
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, fmt.Errorf("%w: %s: %v", ErrInvalidRuleSet, source, err)
	}
	return rs, nil
}
