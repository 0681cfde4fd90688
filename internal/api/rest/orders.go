package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/KevinKickass/FloorCore/internal/lifecycle"
	"github.com/KevinKickass/FloorCore/internal/oee"
	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// POST /api/v1/orders
func (s *Server) createOrder(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Failed to read request body", err.Error()))
		return
	}
	if err := s.validator.ValidateOrderCreate(body); err != nil {
		respondError(c, err)
		return
	}

	var spec types.OrderSpec
	if err := json.Unmarshal(body, &spec); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid request body", err.Error()))
		return
	}

	order, err := s.db.CreateOrder(c.Request.Context(), spec)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GET /api/v1/orders
func (s *Server) listOrders(c *gin.Context) {
	var filter types.OrderFilter

	if raw := c.Query("status"); raw != "" {
		for _, st := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, types.OrderStatus(strings.TrimSpace(st)))
		}
	}
	filter.Environment = c.Query("environment")
	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid archived filter", err.Error()))
			return
		}
		filter.Archived = &archived
	}
	if raw := c.Query("machine_id"); raw != "" {
		machineID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid machine_id filter", err.Error()))
			return
		}
		filter.MachineID = &machineID
	}

	orders, err := s.db.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/v1/orders/active
func (s *Server) listActiveOrders(c *gin.Context) {
	orders, err := s.db.ListActiveOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/v1/orders/history
func (s *Server) listOrderHistory(c *gin.Context) {
	orders, err := s.db.ListOrderHistory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/v1/orders/:id
func (s *Server) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := s.db.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// POST /api/v1/orders/:id/start
func (s *Server) startOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		MachineID  string `json:"machine_id" binding:"required"`
		OperatorID string `json:"operator_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid request body", err.Error()))
		return
	}

	machineID, err := uuid.Parse(req.MachineID)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid machine_id", err.Error()))
		return
	}

	cmd := lifecycle.StartCommand{OrderID: id, MachineID: machineID}
	if req.OperatorID != "" {
		operatorID, err := uuid.Parse(req.OperatorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid operator_id", err.Error()))
			return
		}
		cmd.OperatorID = &operatorID
	}

	order, err := s.coordinator.Start(c.Request.Context(), cmd)
	if err != nil {
		s.logger.Warn("Start failed",
			zap.String("order_id", id.String()),
			zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// POST /api/v1/orders/:id/halt
func (s *Server) haltOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Reason      string `json:"reason" binding:"required"`
		Category    string `json:"category"`
		Notes       string `json:"notes"`
		RequestedBy string `json:"requested_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid request body", err.Error()))
		return
	}

	cmd := lifecycle.HaltCommand{
		OrderID:  id,
		Reason:   req.Reason,
		Category: req.Category,
		Notes:    req.Notes,
	}
	if req.RequestedBy != "" {
		requestedBy, err := uuid.Parse(req.RequestedBy)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid requested_by", err.Error()))
			return
		}
		cmd.RequestedBy = &requestedBy
	}

	result, err := s.coordinator.Halt(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/v1/orders/:id/resume
func (s *Server) resumeOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		ResolvedBy string `json:"resolved_by"`
	}
	// Body is optional on resume
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid request body", err.Error()))
			return
		}
	}

	cmd := lifecycle.ResumeCommand{OrderID: id}
	if req.ResolvedBy != "" {
		resolvedBy, err := uuid.Parse(req.ResolvedBy)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid resolved_by", err.Error()))
			return
		}
		cmd.ResolvedBy = &resolvedBy
	}

	result, err := s.coordinator.Resume(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/v1/orders/:id/complete
func (s *Server) completeOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		ActualQuantity *int `json:"actual_quantity" binding:"required"`
		Waste          *int `json:"waste"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid request body", err.Error()))
		return
	}

	order, err := s.coordinator.Complete(c.Request.Context(), lifecycle.CompleteCommand{
		OrderID:        id,
		ActualQuantity: *req.ActualQuantity,
		Waste:          req.Waste,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":                 order,
		"actual_quantity":       order.ActualQuantity,
		"efficiency_percentage": order.EfficiencyPercentage,
	})
}

// POST /api/v1/orders/:id/abort
func (s *Server) abortOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Reason      string `json:"reason" binding:"required"`
		Notes       string `json:"notes"`
		RequestedBy string `json:"requested_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid request body", err.Error()))
		return
	}

	cmd := lifecycle.AbortCommand{OrderID: id, Reason: req.Reason, Notes: req.Notes}
	if req.RequestedBy != "" {
		requestedBy, err := uuid.Parse(req.RequestedBy)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid requested_by", err.Error()))
			return
		}
		cmd.RequestedBy = &requestedBy
	}

	result, err := s.coordinator.Abort(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/v1/orders/:id/oee?scheduled_minutes=480
func (s *Server) getOrderOEE(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	scheduled := 0
	if raw := c.Query("scheduled_minutes"); raw != "" {
		var err error
		scheduled, err = strconv.Atoi(raw)
		if err != nil || scheduled < 0 {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid scheduled_minutes", raw))
			return
		}
	}

	order, err := s.db.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	stops, err := s.db.ListStopsByOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, oee.Compute(order, stops, scheduled))
}
