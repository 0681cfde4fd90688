package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps domain outcomes onto status codes and machine-readable
// error codes so the UI can re-fetch current state instead of retrying
// blindly. 4xx means nothing committed and the request was the problem;
// 5xx means storage trouble and a retry from scratch is safe.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		c.JSON(http.StatusNotFound, types.NewErrorResponse("NOT_FOUND", "Entity not found", err.Error()))
	case errors.Is(err, types.ErrMachineUnavailable):
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("MACHINE_UNAVAILABLE", "Machine is not available", err.Error()))
	case errors.Is(err, types.ErrMachineBusy):
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("MACHINE_BUSY", "Machine is held by an order", err.Error()))
	case errors.Is(err, types.ErrConflict):
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("CONFLICT", "Order state changed, re-fetch and retry", err.Error()))
	case errors.Is(err, types.ErrInvalid):
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid request", err.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, types.NewErrorResponse("TIMEOUT", "Transition timed out, re-query order state", err.Error()))
	case errors.Is(err, types.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, types.NewErrorResponse("STORAGE_UNAVAILABLE", "Storage unavailable, nothing committed", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse("INTERNAL", "Unexpected error", err.Error()))
	}
}

// pathID parses the :id route parameter. Writes the 400 itself on failure.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid id", err.Error()))
		return uuid.Nil, false
	}
	return id, true
}
