package classifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/everlof/sonda/internal/classify"
	"github.com/everlof/sonda/internal/clp"
	"github.com/everlof/sonda/internal/report"
	"github.com/everlof/sonda/internal/rules"
	"github.com/everlof/sonda/internal/shared/metrics"
)

// Service runs classifications and persists their results.
type Service struct {
	Repo Repo
	// Store supplies CLP reference data; nil means the embedded dataset.
	Store *clp.Store
	// DefaultRulesets are used when a request names none.
	DefaultRulesets []string
}

// Create validates the request, evaluates the report and stores the result.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Classification, error) {
	if len(req.Rulesets) == 0 && !req.IncludeHazard {
		req.Rulesets = append([]string{}, s.DefaultRulesets...)
	}
	if err := validateRequest(&req); err != nil {
		return Classification{}, err
	}

	rulesets, includeHazard, err := resolveRulesets(req.Rulesets)
	if err != nil {
		return Classification{}, err
	}
	includeHazard = includeHazard || req.IncludeHazard

	metrics.IncClassificationStarted()
	started := time.Now()

	result, err := classify.Sample(&req.Report, classify.Options{
		RuleSets:      rulesets,
		IncludeHazard: includeHazard,
		Store:         s.Store,
	})
	if err != nil {
		metrics.IncClassificationFailed()
		return Classification{}, err
	}

	metrics.IncClassificationCompleted()
	metrics.ObserveClassificationDurationMs(float64(time.Since(started).Microseconds()) / 1000.0)

	summary := make(map[string]string, len(result.RulesetResults))
	for _, rr := range result.RulesetResults {
		summary[rr.RulesetName] = rr.OverallCategory
		if rr.OverallCategory == classify.CategoryHazardous {
			metrics.IncHazardousVerdict()
		}
	}

	cl := Classification{
		ID:            uuid.NewString(),
		SampleID:      req.Report.Header.SampleID,
		Matrix:        string(req.Report.Header.Matrix),
		Rulesets:      req.Rulesets,
		IncludeHazard: includeHazard,
		Summary:       summary,
		Result:        result,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, cl); err != nil {
		return Classification{}, err
	}
	return cl, nil
}

// Get returns a stored classification by id.
func (s *Service) Get(ctx context.Context, id string) (Classification, error) {
	if id == "" {
		return Classification{}, fmt.Errorf("%w: id required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns stored classifications, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Classification, error) {
	return s.Repo.List(ctx, limit, offset)
}

func validateRequest(req *CreateRequest) error {
	if len(req.Report.Rows) == 0 {
		return fmt.Errorf("%w: report has no rows", ErrInvalidInput)
	}
	for i, row := range req.Report.Rows {
		if row.NormalizedName == "" {
			return fmt.Errorf("%w: row %d has no substance name", ErrInvalidInput, i)
		}
	}
	if req.Report.Header.Matrix != "" {
		if _, ok := report.ParseMatrix(string(req.Report.Header.Matrix)); !ok {
			return fmt.Errorf("%w: unknown matrix %q", ErrInvalidInput, req.Report.Header.Matrix)
		}
	}
	if len(req.Rulesets) == 0 && !req.IncludeHazard {
		return fmt.Errorf("%w: at least one ruleset or includeHazard is required", ErrInvalidInput)
	}
	return nil
}

// resolveRulesets loads the named presets. The hazard preset is a request
// for hazard evaluation, not a threshold ruleset.
func resolveRulesets(names []string) ([]rules.RuleSet, bool, error) {
	var out []rules.RuleSet
	includeHazard := false
	for _, name := range names {
		if rules.IsHazardPreset(name) {
			includeHazard = true
			continue
		}
		rs, err := rules.LoadPreset(name)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		out = append(out, rs)
	}
	return out, includeHazard, nil
}
