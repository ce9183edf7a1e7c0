package classifications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/everlof/sonda/internal/classify"
	"github.com/everlof/sonda/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches classification routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/classifications", h.create)
	rg.GET("/classifications/:id", h.get)
	rg.GET("/classifications", h.list)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", err.Error())
		return
	}

	cl, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, classify.ErrMatrixMismatch):
			respond.Error(c, http.StatusUnprocessableEntity, "matrix_mismatch", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "failed to classify report", nil)
		}
		return
	}

	c.Set("classificationId", cl.ID)
	c.Set("sampleId", cl.SampleID)
	respond.JSON(c, http.StatusCreated, toResponse(cl))
}

func (h *Handler) get(c *gin.Context) {
	cl, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "classification not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "failed to load classification", nil)
		}
		return
	}
	respond.OK(c, toResponse(cl))
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to list classifications", nil)
		return
	}

	out := make([]ListItemResponse, 0, len(items))
	for _, cl := range items {
		out = append(out, toListItem(cl))
	}
	respond.OK(c, gin.H{"classifications": out})
}
