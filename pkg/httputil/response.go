package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ryucoder/crown-backend/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents an API error
type Error struct {
	Code    int    `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Page is the list envelope every paginated endpoint returns.
type Page struct {
	ItemsPerPage int         `json:"items_per_page"`
	CurrentPage  int         `json:"current_page"`
	TotalPages   int         `json:"total_pages"`
	TotalItems   int         `json:"total_items"`
	Results      interface{} `json:"results"`
}

// NewPage builds a Page from a result slice and total row count.
func NewPage(results interface{}, page, pageSize, total int) Page {
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	return Page{
		ItemsPerPage: pageSize,
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		Results:      results,
	}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithPage sends a paginated success response
func RespondWithPage(c *gin.Context, results interface{}, page, pageSize, total int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    NewPage(results, page, pageSize, total),
	})
}

// RespondWithError sends an error response with the HTTP status
// mapped from the application error code.
func RespondWithError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   &Error{Code: int(errors.CodeInternal), Message: "internal server error"},
		})
		return
	}

	c.JSON(httpStatus(appErr.Code), Response{
		Success: false,
		Error: &Error{
			Code:    int(appErr.Code),
			Field:   appErr.Field,
			Message: appErr.Message,
		},
	})
}

func httpStatus(code errors.Code) int {
	switch code {
	case errors.CodeAbsent:
		return http.StatusNotFound
	case errors.CodeAlreadyExists:
		return http.StatusConflict
	case errors.CodeInvalidFormat, errors.CodeMismatch:
		return http.StatusBadRequest
	case errors.CodeExpired, errors.CodeUsed, errors.CodePrecondition, errors.CodeIllegalTransition:
		return http.StatusUnprocessableEntity
	case errors.CodeUnauthorized:
		return http.StatusUnauthorized
	case errors.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
