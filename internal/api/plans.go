package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samruddhi/pipecut/internal/services"
)

// planSingle handles POST /api/v1/plans/single
func (s *Server) planSingle(c *gin.Context) {
	var req services.SingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	plan, err := s.plannerService.Single(c.Request.Context(), req)
	if err != nil {
		s.errorResponse(c, statusFor(err), "Failed to plan: "+err.Error())
		return
	}

	s.successResponse(c, plan)
}

// planMulti handles POST /api/v1/plans/multi
func (s *Server) planMulti(c *gin.Context) {
	var req services.MultiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	plan, err := s.plannerService.Multi(c.Request.Context(), req)
	if err != nil {
		s.errorResponse(c, statusFor(err), "Failed to plan: "+err.Error())
		return
	}

	s.successResponse(c, plan)
}
