package classify

import "errors"

// ErrMatrixMismatch means none of the selected rulesets apply to the
// report's matrix and no hazard evaluation was requested, so there is
// nothing to classify against.
var ErrMatrixMismatch = errors.New("no ruleset applies to report matrix")
