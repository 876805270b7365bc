package server

import (
	"errors"
	"net/http"

	catalogdomain "github.com/facturehq/facture/internal/catalog/domain"
	customerdomain "github.com/facturehq/facture/internal/customer/domain"
	invoicedomain "github.com/facturehq/facture/internal/invoice/domain"
	plandomain "github.com/facturehq/facture/internal/plan/domain"
	subscriptiondomain "github.com/facturehq/facture/internal/subscription/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware converts errors recorded on the gin context
// into a JSON error body with an appropriate status code. Handlers
// record errors with AbortWithError and never write error bodies
// themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isNotFound(err):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}
	case isValidation(err):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error()}
	case isConflict(err):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, customerdomain.ErrNotFound) ||
		errors.Is(err, catalogdomain.ErrNotFound) ||
		errors.Is(err, plandomain.ErrNotFound) ||
		errors.Is(err, subscriptiondomain.ErrNotFound) ||
		errors.Is(err, invoicedomain.ErrNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

func isValidation(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, customerdomain.ErrInvalidID) ||
		errors.Is(err, customerdomain.ErrInvalidName) ||
		errors.Is(err, customerdomain.ErrInvalidEmail) ||
		errors.Is(err, catalogdomain.ErrInvalidID) ||
		errors.Is(err, catalogdomain.ErrInvalidName) ||
		errors.Is(err, plandomain.ErrInvalidID) ||
		errors.Is(err, plandomain.ErrInvalidName) ||
		errors.Is(err, subscriptiondomain.ErrInvalidID) ||
		errors.Is(err, subscriptiondomain.ErrInvalidCustomer) ||
		errors.Is(err, subscriptiondomain.ErrInvalidPlan) ||
		errors.Is(err, subscriptiondomain.ErrInvalidStatus) ||
		errors.Is(err, subscriptiondomain.ErrInvalidWindow) ||
		errors.Is(err, invoicedomain.ErrInvalidInvoiceID) ||
		errors.Is(err, invoicedomain.ErrEmptyPatch)
}

func isConflict(err error) bool {
	return errors.Is(err, invoicedomain.ErrInvalidTransition) ||
		errors.Is(err, invoicedomain.ErrDocumentMissing)
}
