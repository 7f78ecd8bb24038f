package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/id"
	"stocklot/internal/domain/dailyagg"
)

// AggregatesHandler exposes the materialized daily aggregates.
type AggregatesHandler struct {
	*BaseHandler
	service *dailyagg.Service
}

// NewAggregatesHandler creates a new aggregates handler.
func NewAggregatesHandler(base *BaseHandler, service *dailyagg.Service) *AggregatesHandler {
	return &AggregatesHandler{
		BaseHandler: base,
		service:     service,
	}
}

// dateRange parses optional dateFrom/dateTo query params (date or RFC3339).
func (h *AggregatesHandler) dateRange(c *gin.Context) (from, to *time.Time, ok bool) {
	parse := func(value string) (*time.Time, error) {
		if parsed, err := time.Parse("2006-01-02", value); err == nil {
			return &parsed, nil
		}
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	}

	if value := c.Query("dateFrom"); value != "" {
		parsed, err := parse(value)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateFrom format").WithDetail("dateFrom", value))
			return nil, nil, false
		}
		from = parsed
	}

	if value := c.Query("dateTo"); value != "" {
		parsed, err := parse(value)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateTo format").WithDetail("dateTo", value))
			return nil, nil, false
		}
		to = parsed
	}

	return from, to, true
}

// GetDaily handles GET /aggregates/daily
func (h *AggregatesHandler) GetDaily(c *gin.Context) {
	ctx := c.Request.Context()

	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	filter := dailyagg.ReadFilter{
		DateFrom: from,
		DateTo:   to,
		Limit:    h.ParseIntQuery(c, "limit", 1000),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}

	if productID := c.Query("productId"); productID != "" {
		parsed, err := id.Parse(productID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		filter.ProductID = &parsed
	}

	if currency := c.Query("currency"); currency != "" {
		filter.Currency = &currency
	}

	rows, err := h.service.Read(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": rows,
		"count": len(rows),
	})
}

// GetDailyByCustomer handles GET /aggregates/daily/customers
func (h *AggregatesHandler) GetDailyByCustomer(c *gin.Context) {
	ctx := c.Request.Context()

	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	filter := dailyagg.CustomerReadFilter{
		DateFrom: from,
		DateTo:   to,
		Limit:    h.ParseIntQuery(c, "limit", 1000),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}

	if customerID := c.Query("customerId"); customerID != "" {
		parsed, err := id.Parse(customerID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customerId format"))
			return
		}
		filter.CustomerID = &parsed
	}

	rows, err := h.service.ReadByCustomer(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": rows,
		"count": len(rows),
	})
}

// Rebuild handles POST /aggregates/daily/rebuild
// Recomputes the aggregate tables from the ledger. Idempotent.
func (h *AggregatesHandler) Rebuild(c *gin.Context) {
	ctx := c.Request.Context()

	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	rows, err := h.service.Rebuild(ctx, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rebuilt": true,
		"rows":    rows,
	})
}
