package api

import (
	"github.com/gin-gonic/gin"
)

// getStats handles GET /api/v1/stats
func (s *Server) getStats(c *gin.Context) {
	stats, err := s.statsService.GetInventoryStats(c.Request.Context())
	if err != nil {
		s.errorResponse(c, statusFor(err), "Failed to get stats: "+err.Error())
		return
	}

	s.successResponse(c, stats)
}
