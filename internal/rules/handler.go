package rules

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/everlof/sonda/internal/shared/server/respond"
)

// PresetSummary is the list representation of a bundled ruleset.
type PresetSummary struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName,omitempty"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version,omitempty"`
	Matrix      string   `json:"matrix,omitempty"`
	Type        string   `json:"type"`
	Categories  []string `json:"categories,omitempty"`
}

// Handler exposes the bundled rulesets over HTTP.
type Handler struct{}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes attaches ruleset routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rulesets", h.list)
	rg.GET("/rulesets/:name", h.get)
}

func (h *Handler) list(c *gin.Context) {
	out := make([]PresetSummary, 0, len(Presets))
	for _, name := range Presets {
		out = append(out, summarize(name))
	}
	respond.OK(c, gin.H{"rulesets": out})
}

func (h *Handler) get(c *gin.Context) {
	name := c.Param("name")
	if IsHazardPreset(name) {
		respond.OK(c, summarize(name))
		return
	}
	rs, err := LoadPreset(name)
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "unknown ruleset", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to load ruleset", nil)
		return
	}
	respond.OK(c, rs)
}

func summarize(name string) PresetSummary {
	if IsHazardPreset(name) {
		return PresetSummary{
			Name:        name,
			DisplayName: "Farligt avfall (HP-bedömning)",
			Description: "Hazardous-waste assessment per EU 1357/2014 and 2017/997; evaluated by the HP engine, not by thresholds.",
			Type:        "hazard",
		}
	}
	rs, err := LoadPreset(name)
	if err != nil {
		return PresetSummary{Name: name, Type: "threshold"}
	}
	return PresetSummary{
		Name:        name,
		DisplayName: rs.Name,
		Description: rs.Description,
		Version:     rs.Version,
		Matrix:      rs.Matrix,
		Type:        "threshold",
		Categories:  rs.Categories,
	}
}
