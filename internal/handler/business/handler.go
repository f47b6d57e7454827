package business

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ryucoder/crown-backend/internal/middleware"
	"github.com/ryucoder/crown-backend/internal/model"
	businessService "github.com/ryucoder/crown-backend/internal/service/business"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
	"github.com/ryucoder/crown-backend/pkg/httputil"
)

type Handler struct {
	service *businessService.Service
}

func NewHandler(service *businessService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	businesses := r.Group("/businesses")
	{
		businesses.GET("/mine", h.GetMine)
		businesses.PUT("/mine", h.UpdateMine)
		businesses.DELETE("/mine", h.DeactivateMine)
		businesses.GET("/except-mine", h.ListExceptMine)
		businesses.GET("/connected", h.ListConnected)
		businesses.POST("/related", h.CreateRelated)
		businesses.POST("/connects", h.Connect)
		businesses.POST("/connects/toggle", h.ToggleConnect)
		businesses.POST("/employees", h.CreateEmployee)

		businesses.POST("/addresses", h.CreateAddress)
		businesses.GET("/addresses", h.ListAddresses)
		businesses.PUT("/addresses/:id", h.UpdateAddress)
		businesses.POST("/addresses/:id/toggle-default", h.ToggleDefaultAddress)

		businesses.POST("/accounts", h.CreateAccount)
		businesses.GET("/accounts", h.ListAccounts)
		businesses.POST("/accounts/:id/toggle-default", h.ToggleDefaultAccount)

		businesses.POST("/contacts", h.CreateContact)
		businesses.GET("/contacts", h.ListContacts)
		businesses.PUT("/contacts/:id", h.UpdateContact)
		businesses.DELETE("/contacts/:id", h.DeleteContact)
	}
}

func (h *Handler) GetMine(c *gin.Context) {
	actor := middleware.MustActor(c)

	business, err := h.service.Get(c.Request.Context(), actor.Business.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, business)
}

type updateBusinessRequest struct {
	Name    *string `json:"name"`
	GSTIN   *string `json:"gstin"`
	Website *string `json:"website"`
}

func (h *Handler) UpdateMine(c *gin.Context) {
	actor := middleware.MustActor(c)

	var req updateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	business := *actor.Business
	if req.Name != nil {
		business.Name = *req.Name
	}
	if req.GSTIN != nil {
		business.GSTIN = req.GSTIN
	}
	if req.Website != nil {
		business.Website = req.Website
	}

	updated, err := h.service.Update(c.Request.Context(), actor, &business)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, updated)
}

func (h *Handler) DeactivateMine(c *gin.Context) {
	actor := middleware.MustActor(c)

	if err := h.service.Deactivate(c.Request.Context(), actor); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deactivated": true})
}

func (h *Handler) ListExceptMine(c *gin.Context) {
	actor := middleware.MustActor(c)
	p := pagination(c)

	businesses, total, err := h.service.ListExceptMine(c.Request.Context(), actor, p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPage(c, businesses, p.Page, p.PageSize, total)
}

func (h *Handler) ListConnected(c *gin.Context) {
	actor := middleware.MustActor(c)
	p := pagination(c)

	businesses, total, err := h.service.ListConnected(c.Request.Context(), actor, p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPage(c, businesses, p.Page, p.PageSize, total)
}

func (h *Handler) CreateRelated(c *gin.Context) {
	actor := middleware.MustActor(c)

	var req model.CreateBusinessWithOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	business, err := h.service.CreateRelatedBusiness(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, business)
}

func (h *Handler) Connect(c *gin.Context) {
	actor := middleware.MustActor(c)

	var req model.ConnectBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	connect, err := h.service.Connect(c.Request.Context(), actor, req.BusinessID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, connect)
}

func (h *Handler) ToggleConnect(c *gin.Context) {
	actor := middleware.MustActor(c)

	var req model.ToggleConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	connect, err := h.service.ToggleConnect(c.Request.Context(), actor, req.ConnectID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, connect)
}

func (h *Handler) CreateEmployee(c *gin.Context) {
	actor := middleware.MustActor(c)

	var req model.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	employee, err := h.service.CreateEmployee(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, employee)
}

func (h *Handler) CreateAddress(c *gin.Context) {
	actor := middleware.MustActor(c)

	var req model.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	address, err := h.service.CreateAddress(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, address)
}

func (h *Handler) ListAddresses(c *gin.Context) {
	actor := middleware.MustActor(c)

	addresses, err := h.service.ListAddresses(c.Request.Context(), actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, addresses)
}

func (h *Handler) UpdateAddress(c *gin.Context) {
	actor := middleware.MustActor(c)

	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	address, err := h.service.UpdateAddress(c.Request.Context(), actor, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, address)
}

func (h *Handler) ToggleDefaultAddress(c *gin.Context) {
	actor := middleware.MustActor(c)

	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	address, err := h.service.ToggleDefaultAddress(c.Request.Context(), actor, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, address)
}

func (h *Handler) CreateAccount(c *gin.Context) {
	actor := middleware.MustActor(c)

	var req model.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, account)
}

func (h *Handler) ListAccounts(c *gin.Context) {
	actor := middleware.MustActor(c)

	accounts, err := h.service.ListAccounts(c.Request.Context(), actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, accounts)
}

func (h *Handler) ToggleDefaultAccount(c *gin.Context) {
	actor := middleware.MustActor(c)

	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	account, err := h.service.ToggleDefaultAccount(c.Request.Context(), actor, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, account)
}

func (h *Handler) CreateContact(c *gin.Context) {
	actor := middleware.MustActor(c)

	var req model.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	contact, err := h.service.CreateContact(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, contact)
}

func (h *Handler) ListContacts(c *gin.Context) {
	actor := middleware.MustActor(c)

	contacts, err := h.service.ListContacts(c.Request.Context(), actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, contacts)
}

func (h *Handler) UpdateContact(c *gin.Context) {
	actor := middleware.MustActor(c)

	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	contact, err := h.service.UpdateContact(c.Request.Context(), actor, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, contact)
}

func (h *Handler) DeleteContact(c *gin.Context) {
	actor := middleware.MustActor(c)

	id, err := pathID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.DeleteContact(c.Request.Context(), actor, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.InvalidFormat("id", "not a valid UUID")
	}
	return id, nil
}

func pagination(c *gin.Context) model.Pagination {
	p := model.Pagination{}
	if err := c.ShouldBindQuery(&p); err != nil {
		p = model.Pagination{}
	}
	p.Normalize()
	return p
}
