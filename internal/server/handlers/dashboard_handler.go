package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/flockbook/internal/service/reporting"
)

// DashboardService computes statistics for the dashboard.
type DashboardService interface {
	Dashboard() reporting.Dashboard
	DashboardBetween(start, end time.Time) reporting.Dashboard
	Summary(d reporting.Dashboard) string
}

// DashboardHandler serves aggregated statistics.
type DashboardHandler struct {
	svc    DashboardService
	logger *zap.Logger
}

// NewDashboardHandler constructs the dashboard handler.
func NewDashboardHandler(svc DashboardService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

// Get returns statistics, restricted to [start, end] when both query
// parameters are given.
func (h *DashboardHandler) Get(c *gin.Context) {
	startParam, endParam := c.Query("start"), c.Query("end")

	var dashboard reporting.Dashboard
	if startParam == "" && endParam == "" {
		dashboard = h.svc.Dashboard()
	} else {
		start, err := parseDate(startParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date", "field": "start"})
			return
		}
		end, err := parseDate(endParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date", "field": "end"})
			return
		}
		if end.Before(start) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end must not precede start", "field": "end"})
			return
		}
		// A bare end date covers the whole day.
		if len(endParam) == len("2006-01-02") {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		dashboard = h.svc.DashboardBetween(start, end)
	}

	h.logger.Debug("dashboard computed", zap.Int("reports", dashboard.Reports))
	c.JSON(http.StatusOK, gin.H{
		"dashboard": dashboard,
		"summary":   h.svc.Summary(dashboard),
	})
}
