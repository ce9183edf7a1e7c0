package classifications

import (
	"time"

	"github.com/everlof/sonda/internal/classify"
	"github.com/everlof/sonda/internal/report"
)

// CreateRequest is the body of POST /classifications.
type CreateRequest struct {
	Report report.Report `json:"report"`
	// Rulesets are preset names or previously loaded ruleset names.
	// The hazard preset "fa" may appear here instead of setting the flag.
	Rulesets      []string `json:"rulesets"`
	IncludeHazard bool     `json:"includeHazard"`
}

// ClassificationResponse is the outward-facing representation of a stored
// classification.
type ClassificationResponse struct {
	ClassificationID string                `json:"classificationId"`
	SampleID         string                `json:"sampleId"`
	Matrix           string                `json:"matrix,omitempty"`
	Rulesets         []string              `json:"rulesets"`
	IncludeHazard    bool                  `json:"includeHazard"`
	Summary          map[string]string     `json:"summary"`
	Result           classify.SampleResult `json:"result"`
	CreatedAt        time.Time             `json:"createdAt"`
}

// ListItemResponse is the compact list representation; the full result
// payload is only returned on single fetches.
type ListItemResponse struct {
	ClassificationID string            `json:"classificationId"`
	SampleID         string            `json:"sampleId"`
	Matrix           string            `json:"matrix,omitempty"`
	Rulesets         []string          `json:"rulesets"`
	IncludeHazard    bool              `json:"includeHazard"`
	Summary          map[string]string `json:"summary"`
	CreatedAt        time.Time         `json:"createdAt"`
}

func toResponse(cl Classification) ClassificationResponse {
	return ClassificationResponse{
		ClassificationID: cl.ID,
		SampleID:         cl.SampleID,
		Matrix:           cl.Matrix,
		Rulesets:         cl.Rulesets,
		IncludeHazard:    cl.IncludeHazard,
		Summary:          cl.Summary,
		Result:           cl.Result,
		CreatedAt:        cl.CreatedAt,
	}
}

func toListItem(cl Classification) ListItemResponse {
	return ListItemResponse{
		ClassificationID: cl.ID,
		SampleID:         cl.SampleID,
		Matrix:           cl.Matrix,
		Rulesets:         cl.Rulesets,
		IncludeHazard:    cl.IncludeHazard,
		Summary:          cl.Summary,
		CreatedAt:        cl.CreatedAt,
	}
}
