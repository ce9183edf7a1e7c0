package rules

import "errors"

var (
	ErrInvalidRuleSet = errors.New("invalid ruleset")
	ErrNotFound       = errors.New("ruleset not found")
)
