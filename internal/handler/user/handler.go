package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ryucoder/crown-backend/internal/middleware"
	authService "github.com/ryucoder/crown-backend/internal/service/auth"
	"github.com/ryucoder/crown-backend/pkg/httputil"
)

type Handler struct {
	service *authService.Service
}

func NewHandler(service *authService.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the authenticated user endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/me", h.UserDetails)
	}
}

// UserDetails returns the caller's per-user_type view: the owned
// business for owners, the employer for employees.
func (h *Handler) UserDetails(c *gin.Context) {
	actor := middleware.MustActor(c)

	details, err := h.service.UserDetails(c.Request.Context(), actor.User.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, details)
}
