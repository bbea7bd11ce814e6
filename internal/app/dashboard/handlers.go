package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

// hoursWindow parses the hours query parameter, defaulting to 24 and
// clamping to one week.
func hoursWindow(c *gin.Context) time.Duration {
	hours := 24
	if raw := c.Query("hours"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			hours = v
		}
	}
	if hours < 1 {
		hours = 1
	}
	if hours > 168 {
		hours = 168
	}
	return time.Duration(hours) * time.Hour
}

// respondList normalizes a nil result to an empty JSON array.
func respondList[T any](c *gin.Context, rows []T) {
	if rows == nil {
		rows = []T{}
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) fail(c *gin.Context, msg string, err error) {
	s.obs.LogError(msg, err, ports.Field{Key: "path", Value: c.Request.URL.Path})
	c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDashboard(c *gin.Context) {
	snap, err := s.store.RealtimeSnapshot(c.Request.Context())
	if err != nil {
		s.fail(c, "load realtime snapshot", err)
		return
	}
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot available yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleEquipment(c *gin.Context) {
	rows, err := s.store.EquipmentHealth(c.Request.Context())
	if err != nil {
		s.fail(c, "load equipment health", err)
		return
	}
	respondList(c, rows)
}

func (s *Server) handleEquipmentPerformance(c *gin.Context) {
	rows, err := s.store.EquipmentPerformance(c.Request.Context(), c.Param("id"), hoursWindow(c))
	if err != nil {
		s.fail(c, "load equipment performance", err)
		return
	}
	respondList(c, rows)
}

func (s *Server) handleProductionMetrics(c *gin.Context) {
	rows, err := s.store.ProductionMetrics(c.Request.Context(), c.Query("line"), hoursWindow(c))
	if err != nil {
		s.fail(c, "load production metrics", err)
		return
	}
	respondList(c, rows)
}

func (s *Server) handleQualitySummary(c *gin.Context) {
	rows, err := s.store.QualitySummary(c.Request.Context(), c.Query("product"), hoursWindow(c))
	if err != nil {
		s.fail(c, "load quality summary", err)
		return
	}
	respondList(c, rows)
}

func (s *Server) handleMaintenance(c *gin.Context) {
	rows, err := s.store.MaintenanceOutlook(c.Request.Context())
	if err != nil {
		s.fail(c, "load maintenance outlook", err)
		return
	}
	respondList(c, rows)
}

func (s *Server) handleLines(c *gin.Context) {
	rows, err := s.store.ProductionLines(c.Request.Context())
	if err != nil {
		s.fail(c, "load production lines", err)
		return
	}
	respondList(c, rows)
}

func (s *Server) handleProducts(c *gin.Context) {
	rows, err := s.store.Products(c.Request.Context())
	if err != nil {
		s.fail(c, "load products", err)
		return
	}
	respondList(c, rows)
}

func (s *Server) handleWS(c *gin.Context) {
	s.hub.serve(c.Writer, c.Request)
}
