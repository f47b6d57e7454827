package order

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ryucoder/crown-backend/internal/middleware"
	"github.com/ryucoder/crown-backend/internal/model"
	orderService "github.com/ryucoder/crown-backend/internal/service/order"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
	"github.com/ryucoder/crown-backend/pkg/httputil"
)

type Handler struct {
	service *orderService.Service
}

func NewHandler(service *orderService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.PUT("/:id", h.Update)
		orders.DELETE("/:id", h.Delete)
		orders.POST("/:id/status", h.UpdateStatus)
		orders.GET("/:id/statuses", h.ListStatuses)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor := middleware.MustActor(c)

	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	order, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, order)
}

func (h *Handler) List(c *gin.Context) {
	actor := middleware.MustActor(c)

	var p model.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		p = model.Pagination{}
	}
	p.Normalize()
	status := model.OrderStatusValue(c.Query("status"))

	orders, total, err := h.service.List(c.Request.Context(), actor, status, p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPage(c, orders, p.Page, p.PageSize, total)
}

func (h *Handler) Get(c *gin.Context) {
	actor := middleware.MustActor(c)

	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	order, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, order)
}

func (h *Handler) Update(c *gin.Context) {
	actor := middleware.MustActor(c)

	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	order, err := h.service.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, order)
}

func (h *Handler) Delete(c *gin.Context) {
	actor := middleware.MustActor(c)

	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	actor := middleware.MustActor(c)

	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, order)
}

func (h *Handler) ListStatuses(c *gin.Context) {
	actor := middleware.MustActor(c)

	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	statuses, err := h.service.ListStatuses(c.Request.Context(), actor, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, statuses)
}

func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.InvalidFormat("id", "not a valid UUID")
	}
	return id, nil
}
