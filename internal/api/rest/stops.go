package rest

import (
	"net/http"
	"time"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/gin-gonic/gin"
)

// GET /api/v1/orders/:id/stops
func (s *Server) listOrderStops(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	stops, err := s.db.ListStopsByOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stops)
}

// GET /api/v1/stops/summary?from=...&to=...&category=...
func (s *Server) stopSummary(c *gin.Context) {
	var filter types.StopFilter

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid from timestamp", err.Error()))
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid to timestamp", err.Error()))
			return
		}
		filter.To = &to
	}
	filter.Category = c.Query("category")

	summary, err := s.db.AggregateStops(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
