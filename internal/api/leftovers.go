package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CreateLeftoverRequest adds a leftover by hand
type CreateLeftoverRequest struct {
	Length float64 `json:"length" binding:"required,gt=0,lte=1000000"`
}

// listLeftovers handles GET /api/v1/leftovers
func (s *Server) listLeftovers(c *gin.Context) {
	leftovers, err := s.plannerService.Inventory(c.Request.Context())
	if err != nil {
		s.errorResponse(c, statusFor(err), "Failed to list leftovers: "+err.Error())
		return
	}

	s.successResponse(c, leftovers)
}

// createLeftover handles POST /api/v1/leftovers
func (s *Server) createLeftover(c *gin.Context) {
	var req CreateLeftoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	id, err := s.plannerService.AddLeftover(c.Request.Context(), req.Length)
	if err != nil {
		s.errorResponse(c, statusFor(err), "Failed to create leftover: "+err.Error())
		return
	}

	s.createdResponse(c, gin.H{"id": id, "length": req.Length})
}

// deleteLeftover handles DELETE /api/v1/leftovers/:id
func (s *Server) deleteLeftover(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid leftover id: "+c.Param("id"))
		return
	}

	if err := s.plannerService.RemoveLeftover(c.Request.Context(), id); err != nil {
		s.errorResponse(c, statusFor(err), "Failed to delete leftover: "+err.Error())
		return
	}

	s.successResponse(c, gin.H{"message": "Leftover deleted successfully"})
}

// clearLeftovers handles DELETE /api/v1/leftovers
func (s *Server) clearLeftovers(c *gin.Context) {
	n, err := s.plannerService.ClearInventory(c.Request.Context())
	if err != nil {
		s.errorResponse(c, statusFor(err), "Failed to clear leftovers: "+err.Error())
		return
	}

	s.successResponse(c, gin.H{"deleted": n})
}
