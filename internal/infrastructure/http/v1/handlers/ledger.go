package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
	"stocklot/internal/domain/ledger"
)

// LedgerHandler exposes the movement ledger and cached stock balances.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetMovements handles GET /ledger/movements
func (h *LedgerHandler) GetMovements(c *gin.Context) {
	ctx := c.Request.Context()

	filter := ledger.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if productID := c.Query("productId"); productID != "" {
		parsed, err := id.Parse(productID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		filter.ProductID = &parsed
	}

	if transactionID := c.Query("transactionId"); transactionID != "" {
		parsed, err := id.Parse(transactionID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid transactionId format"))
			return
		}
		filter.TransactionID = &parsed
	}

	if kind := c.Query("kind"); kind != "" {
		k := entity.MovementKind(kind)
		filter.Kind = &k
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}

	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	filter.EffectiveOnly = c.Query("effectiveOnly") == "true"
	filter.Descending = c.Query("order") != "asc"

	movements, err := h.service.Query(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": movements,
		"count": len(movements),
	})
}

// GetStock handles GET /ledger/stock
func (h *LedgerHandler) GetStock(c *gin.Context) {
	ctx := c.Request.Context()

	balances, err := h.service.AllStock(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": balances,
		"count": len(balances),
	})
}

// GetProductStock handles GET /ledger/stock/:productId
func (h *LedgerHandler) GetProductStock(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	quantity, err := h.service.CurrentStock(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"productId": productID.String(),
		"quantity":  quantity,
	})
}
