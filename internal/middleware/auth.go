package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/repository"
	"github.com/ryucoder/crown-backend/pkg/auth"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
	"github.com/ryucoder/crown-backend/pkg/httputil"
)

const contextActor = "actor"

// Auth validates the bearer token, loads the user and the business
// they act for, and stores the resulting Actor on the request context.
func Auth(jwtSvc auth.JWTService, users repository.UserRepository, businesses repository.BusinessRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, apperrors.Unauthorized(fmt.Errorf("missing authorization header")))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, apperrors.Unauthorized(fmt.Errorf("malformed authorization header")))
			return
		}

		claims, err := jwtSvc.ValidateToken(parts[1])
		if err != nil {
			abort(c, apperrors.Unauthorized(err))
			return
		}

		user, err := users.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			abort(c, apperrors.Unauthorized(fmt.Errorf("unknown user")))
			return
		}
		if !user.IsActive {
			abort(c, apperrors.Unauthorized(fmt.Errorf("account deactivated")))
			return
		}

		actor := &model.Actor{User: user}
		business, err := businesses.GetForUser(c.Request.Context(), user.ID)
		if err == nil {
			actor.Business = business
		} else if apperrors.CodeOf(err) != apperrors.CodeAbsent {
			abort(c, err)
			return
		}

		c.Set(contextActor, actor)
		c.Next()
	}
}

// RequireBusiness rejects callers not attached to an active business.
// Mounted after Auth on the workflow routes.
func RequireBusiness() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := MustActor(c)
		if actor.Business == nil {
			abort(c, apperrors.Forbidden("no business attached to this account"))
			return
		}
		if !actor.Business.IsActive {
			abort(c, apperrors.Forbidden("business is deactivated"))
			return
		}
		c.Next()
	}
}

// MustActor returns the Actor set by Auth. Panics when called on a
// route outside the authenticated group.
func MustActor(c *gin.Context) *model.Actor {
	actor, ok := c.Get(contextActor)
	if !ok {
		panic("actor missing from context")
	}
	return actor.(*model.Actor)
}

func abort(c *gin.Context, err error) {
	httputil.RespondWithError(c, err)
	c.Abort()
}
