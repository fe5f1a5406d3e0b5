package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commonsfund/quadfund/src/QFApi/engine"
)

// respondError maps the engine taxonomy onto HTTP status codes. Blocking
// states land on 409 so UIs can tell them apart from bad input.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, engine.ErrPreconditionFailed):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrArithmeticOverflow):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"err": err.Error()})
}
