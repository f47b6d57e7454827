package directory

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	directoryService "github.com/ryucoder/crown-backend/internal/service/directory"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
	"github.com/ryucoder/crown-backend/pkg/httputil"
)

type Handler struct {
	service *directoryService.Service
}

func NewHandler(service *directoryService.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the reference data endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	directory := r.Group("/directory")
	{
		directory.GET("/states", h.ListStates)
		directory.GET("/states/:id/districts", h.ListDistricts)
		directory.GET("/districts/:id/cities", h.ListCities)
		directory.GET("/job-types", h.ListJobTypes)
		directory.GET("/options", h.ListOptions)
	}
}

func (h *Handler) ListStates(c *gin.Context) {
	states, err := h.service.ListStates(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, states)
}

func (h *Handler) ListDistricts(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	districts, err := h.service.ListDistricts(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, districts)
}

func (h *Handler) ListCities(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	cities, err := h.service.ListCities(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, cities)
}

func (h *Handler) ListJobTypes(c *gin.Context) {
	jobTypes, err := h.service.ListJobTypes(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, jobTypes)
}

func (h *Handler) ListOptions(c *gin.Context) {
	options, err := h.service.ListOptions(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, options)
}

func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.InvalidFormat("id", "not a valid UUID")
	}
	return id, nil
}
