package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printhaus/portal/internal/dashboard"
	obslog "github.com/printhaus/portal/internal/observability/logger"
	"go.uber.org/zap"
)

func (s *Server) GetDashboard(c *gin.Context) {
	profile, err := s.currentProfile(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	stats, err := s.dashboardsvc.Stats(c.Request.Context(), profile.ID)
	if err != nil {
		// Backend failures degrade to zeroed stats; the customer view
		// never surfaces them as a fatal error.
		if degradable(err) {
			obslog.FromContext(c.Request.Context()).Warn("dashboard degraded to defaults", zap.Error(err))
			c.JSON(http.StatusOK, dashboard.Stats{})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
