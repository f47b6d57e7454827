package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ryucoder/crown-backend/internal/model"
	authService "github.com/ryucoder/crown-backend/internal/service/auth"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
	"github.com/ryucoder/crown-backend/pkg/httputil"
)

type Handler struct {
	service *authService.Service
}

func NewHandler(service *authService.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the unauthenticated auth endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/signup", h.Signup)
		auth.POST("/signup/verify", h.VerifySignup)
		auth.POST("/password-reset", h.RequestPasswordReset)
		auth.POST("/password-reset/confirm", h.ResetPassword)
		auth.POST("/mobile-token", h.RequestMobileToken)
		auth.POST("/mobile-token/verify", h.VerifyMobileToken)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	details, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, details)
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, tokens)
}

func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	user, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, user)
}

func (h *Handler) VerifySignup(c *gin.Context) {
	var req model.VerifySignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	if err := h.service.VerifySignup(c.Request.Context(), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"verified": true})
}

func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req model.RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"sent": true})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"reset": true})
}

func (h *Handler) RequestMobileToken(c *gin.Context) {
	var req model.MobileTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	token, err := h.service.RequestMobileToken(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, gin.H{"expiry": token.Expiry})
}

func (h *Handler) VerifyMobileToken(c *gin.Context) {
	var req model.VerifyMobileTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidFormat("body", err.Error()))
		return
	}

	if err := h.service.VerifyMobileToken(c.Request.Context(), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"verified": true})
}
