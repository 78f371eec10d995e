package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/cutdesk/internal/model"
)

// Error codes returned in the error envelope.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeNotFound          = "NOT_FOUND"
	CodeManagerAuth       = "MANAGER_AUTHORIZATION"
	CodeInternal          = "INTERNAL_ERROR"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// badRequest reports a request body that could not be bound.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    CodeValidation,
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// writeError maps domain errors to HTTP status codes. Anything unknown is
// a 500 whose detail is logged but not returned.
func writeError(c *gin.Context, err error) {
	var (
		ve *model.ValidationError
		se *model.InsufficientStockError
		nf *model.NotFoundError
		ae *model.AuthorizationError
	)
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, CodeValidation, ve.Error())
	case errors.As(err, &se):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":      CodeInsufficientStock,
				"message":   se.Error(),
				"available": se.Available,
				"needed":    se.Needed,
			},
		})
	case errors.As(err, &nf):
		fail(c, http.StatusNotFound, CodeNotFound, nf.Error())
	case errors.As(err, &ae):
		fail(c, http.StatusForbidden, CodeManagerAuth, ae.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, CodeInternal, "Internal server error")
	}
}
