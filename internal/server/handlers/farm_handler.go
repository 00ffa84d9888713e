package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/flockbook/internal/domain/models"
	"github.com/mamadbah2/flockbook/internal/service/farms"
	"github.com/mamadbah2/flockbook/internal/store"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339Nano}

// FarmService is the facade the HTTP adapter drives.
type FarmService interface {
	RegisterFarm(ctx context.Context, draft models.FarmDraft) error
	SubmitReport(ctx context.Context, report models.DailyReport) error
	ClearFarmData(ctx context.Context) error
	ClearReports(ctx context.Context) error
	Farms() store.FarmsState
	Reports() store.ReportsState
}

// FarmHandler exposes farm registration and daily reports over HTTP.
type FarmHandler struct {
	svc    FarmService
	logger *zap.Logger
}

// NewFarmHandler constructs the HTTP handler adapter.
func NewFarmHandler(svc FarmService, logger *zap.Logger) *FarmHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FarmHandler{svc: svc, logger: logger}
}

type farmRequest struct {
	FarmName  string `json:"farmName"`
	OwnerName string `json:"ownerName"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	FlockType string `json:"flockType"`
	BirdCount string `json:"birdCount"`
	StartDate string `json:"startDate"`
}

type reportRequest struct {
	FarmID        string `json:"farmId"`
	Date          string `json:"date"`
	EggsCollected string `json:"eggsCollected"`
	FeedUsed      string `json:"feedUsed"`
	Mortality     string `json:"mortality"`
}

// ListFarms returns the farms slice.
func (h *FarmHandler) ListFarms(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Farms())
}

// FlockTypes lists the accepted flock types.
func (h *FarmHandler) FlockTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"flockTypes": models.FlockTypes})
}

// RegisterFarm accepts a registration form. The farm is created asynchronously.
func (h *FarmHandler) RegisterFarm(c *gin.Context) {
	var req farmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid farm payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Start date is required.", "field": "startDate"})
		return
	}

	draft := models.FarmDraft{
		FarmName:  strings.TrimSpace(req.FarmName),
		OwnerName: strings.TrimSpace(req.OwnerName),
		Latitude:  strings.TrimSpace(req.Latitude),
		Longitude: strings.TrimSpace(req.Longitude),
		FlockType: models.FlockType(strings.TrimSpace(req.FlockType)),
		BirdCount: strings.TrimSpace(req.BirdCount),
		StartDate: startDate,
	}

	if err := h.svc.RegisterFarm(c.Request.Context(), draft); err != nil {
		h.writeError(c, "failed registering farm", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// ClearFarms purges every farm and, by cascade, every report.
func (h *FarmHandler) ClearFarms(c *gin.Context) {
	if err := h.svc.ClearFarmData(c.Request.Context()); err != nil {
		h.writeError(c, "failed clearing farms", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListReports returns the report slice, optionally filtered by farmId.
func (h *FarmHandler) ListReports(c *gin.Context) {
	state := h.svc.Reports()
	farmID := c.Query("farmId")
	if farmID == "" {
		c.JSON(http.StatusOK, state)
		return
	}

	filtered := make([]models.DailyReport, 0, len(state.Reports))
	for _, r := range state.Reports {
		if r.FarmID == farmID {
			filtered = append(filtered, r)
		}
	}
	state.Reports = filtered
	c.JSON(http.StatusOK, state)
}

// SubmitReport accepts a daily report form.
func (h *FarmHandler) SubmitReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid report payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Report date is required.", "field": "date"})
		return
	}

	report := models.DailyReport{
		FarmID:        strings.TrimSpace(req.FarmID),
		Date:          date,
		EggsCollected: strings.TrimSpace(req.EggsCollected),
		FeedUsed:      strings.TrimSpace(req.FeedUsed),
		Mortality:     strings.TrimSpace(req.Mortality),
	}

	if err := h.svc.SubmitReport(c.Request.Context(), report); err != nil {
		h.writeError(c, "failed submitting report", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// ClearReports empties the report slice.
func (h *FarmHandler) ClearReports(c *gin.Context) {
	if err := h.svc.ClearReports(c.Request.Context()); err != nil {
		h.writeError(c, "failed clearing reports", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FarmHandler) writeError(c *gin.Context, msg string, err error) {
	var vErr *farms.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, store.ErrClosed):
		h.logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shutting down"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
