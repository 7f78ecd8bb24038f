package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stocklot/internal/core/id"
	"stocklot/internal/domain"
	"stocklot/internal/domain/documents/purchase"
	"stocklot/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles HTTP requests for Purchase documents.
type PurchaseHandler struct {
	*BaseDocumentHandler[*purchase.Purchase, dto.CreatePurchaseRequest, dto.UpdatePurchaseRequest]
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	cfg := BaseDocumentHandlerConfig[*purchase.Purchase, dto.CreatePurchaseRequest, dto.UpdatePurchaseRequest]{
		Service:    service,
		EntityName: "purchase",
		MapCreateDTO: func(req dto.CreatePurchaseRequest) *purchase.Purchase {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdatePurchaseRequest, existing *purchase.Purchase) *purchase.Purchase {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *purchase.Purchase) any {
			return dto.FromPurchase(entity)
		},
	}

	return &PurchaseHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /purchases with document-specific filters.
func (h *PurchaseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := purchase.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if supplierID := c.Query("supplierId"); supplierID != "" {
		if parsed, err := id.Parse(supplierID); err == nil {
			filter.SupplierID = &parsed
		}
	}

	if posted := c.Query("posted"); posted != "" {
		val := posted == "true"
		filter.Posted = &val
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

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.PurchaseResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromPurchase(doc)
	}

	c.JSON(http.StatusOK, dto.PurchaseListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
