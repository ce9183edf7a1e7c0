package classifications

import (
	"time"

	"github.com/everlof/sonda/internal/classify"
)

// Classification is one stored evaluation of a lab report sample.
type Classification struct {
	ID            string
	SampleID      string
	Matrix        string
	Rulesets      []string
	IncludeHazard bool
	// Summary maps each evaluated ruleset name to its overall category.
	Summary   map[string]string
	Result    classify.SampleResult
	CreatedAt time.Time
}
