package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/id"
	"stocklot/internal/domain/reports"
)

// ReportsHandler exposes the analytics reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// parseDate accepts a plain date or a full RFC3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, value)
}

func (h *ReportsHandler) optionalDate(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	parsed, err := parseDate(value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+name+" format").WithDetail(name, value))
		return nil, false
	}
	return &parsed, true
}

// GetFIFO handles GET /reports/fifo
func (h *ReportsHandler) GetFIFO(c *gin.Context) {
	ctx := c.Request.Context()

	filter := reports.FIFOReportFilter{}

	if productID := c.Query("productId"); productID != "" {
		parsed, err := id.Parse(productID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		filter.ProductID = &parsed
	}

	var ok bool
	if filter.DateFrom, ok = h.optionalDate(c, "dateFrom"); !ok {
		return
	}
	if filter.DateTo, ok = h.optionalDate(c, "dateTo"); !ok {
		return
	}

	report, err := h.service.FIFO(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetRollingAverages handles GET /reports/rolling-averages
// Windows are given as repeated params: ?window=30&window=90
func (h *ReportsHandler) GetRollingAverages(c *gin.Context) {
	ctx := c.Request.Context()

	var windows []int
	for _, raw := range c.QueryArray("window") {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid window value").WithDetail("window", raw))
			return
		}
		windows = append(windows, parsed)
	}

	report, err := h.service.RollingAverages(ctx, windows)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetABC handles GET /reports/abc
func (h *ReportsHandler) GetABC(c *gin.Context) {
	ctx := c.Request.Context()

	filter := reports.ABCReportFilter{}

	var ok bool
	if filter.DateFrom, ok = h.optionalDate(c, "dateFrom"); !ok {
		return
	}
	if filter.DateTo, ok = h.optionalDate(c, "dateTo"); !ok {
		return
	}

	report, err := h.service.ABC(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetDepletion handles GET /reports/depletion
func (h *ReportsHandler) GetDepletion(c *gin.Context) {
	ctx := c.Request.Context()

	filter := reports.DepletionReportFilter{
		TrailingDays: h.ParseIntQuery(c, "trailingDays", 0),
		WithinDays:   h.ParseIntQuery(c, "withinDays", 0),
	}

	report, err := h.service.Depletion(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetDormant handles GET /reports/dormant
func (h *ReportsHandler) GetDormant(c *gin.Context) {
	ctx := c.Request.Context()

	filter := reports.DormantReportFilter{
		OlderThanDays: h.ParseIntQuery(c, "olderThanDays", 0),
	}

	report, err := h.service.Dormant(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetTurnover handles GET /reports/turnover
func (h *ReportsHandler) GetTurnover(c *gin.Context) {
	ctx := c.Request.Context()

	filter := reports.TurnoverReportFilter{}

	if value := c.Query("dateFrom"); value != "" {
		parsed, err := parseDate(value)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateFrom format").WithDetail("dateFrom", value))
			return
		}
		filter.DateFrom = parsed
	}

	if value := c.Query("dateTo"); value != "" {
		parsed, err := parseDate(value)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateTo format").WithDetail("dateTo", value))
			return
		}
		filter.DateTo = parsed
	}

	report, err := h.service.Turnover(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
