package rest

import (
	"encoding/json"
	"net/http"

	"github.com/KevinKickass/FloorCore/internal/events"
	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/gin-gonic/gin"
)

// POST /api/v1/machines
func (s *Server) createMachine(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Failed to read request body", err.Error()))
		return
	}
	if err := s.validator.ValidateMachineCreate(body); err != nil {
		respondError(c, err)
		return
	}

	var spec types.MachineSpec
	if err := json.Unmarshal(body, &spec); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid request body", err.Error()))
		return
	}

	machine, err := s.db.CreateMachine(c.Request.Context(), spec)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}

// GET /api/v1/machines
func (s *Server) listMachines(c *gin.Context) {
	machines, err := s.db.ListMachines(c.Request.Context(), c.Query("environment"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GET /api/v1/machines/:id
func (s *Server) getMachine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	machine, err := s.db.GetMachine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

// PATCH /api/v1/machines/:id/status
func (s *Server) setMachineStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID", "Invalid request body", err.Error()))
		return
	}

	previous, err := s.db.SetMachineStatus(c.Request.Context(), id, types.MachineStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	s.hub.Publish(events.NewMachineEvent(id, req.Status, string(previous)))

	machine, err := s.db.GetMachine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

// DELETE /api/v1/machines/:id
func (s *Server) deleteMachine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.db.DeleteMachine(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine deleted"})
}
