package handler

import (
	"errors"
	"net/http"

	"assetverse/internal/repository"
	"assetverse/internal/service"
	"assetverse/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps the business error taxonomy onto HTTP status codes
// and machine-readable codes the frontend switches on.
func respondError(c *gin.Context, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, repository.ErrNotFound):
		status, code = http.StatusNotFound, "NotFound"
	case errors.Is(err, repository.ErrAlreadyProcessed):
		status, code = http.StatusConflict, "AlreadyProcessed"
	case errors.Is(err, repository.ErrInsufficientQuantity):
		status, code = http.StatusConflict, "InsufficientQuantity"
	case errors.Is(err, repository.ErrCapacityExceeded):
		status, code = http.StatusConflict, "CapacityExceeded"
	case errors.Is(err, repository.ErrAlreadyAffiliated):
		status, code = http.StatusConflict, "AlreadyAffiliated"
	case errors.Is(err, service.ErrReconciliationRequired):
		status, code = http.StatusInternalServerError, "ReconciliationRequired"
	case errors.Is(err, repository.ErrStoreUnavailable):
		status, code = http.StatusServiceUnavailable, "StoreUnavailable"
	default:
		status, code = http.StatusBadRequest, "BadRequest"
	}

	c.JSON(status, response.Error(status, code, err.Error()))
}
