package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stocklot/internal/domain"
	"stocklot/internal/domain/catalogs/counterparty"
	"stocklot/internal/infrastructure/http/v1/dto"
)

// CounterpartyHTTPHandler is the generic catalog handler specialized for counterparties.
type CounterpartyHTTPHandler = CatalogHandler[
	*counterparty.Counterparty,
	dto.CreateCounterpartyRequest,
	dto.UpdateCounterpartyRequest,
]

// CounterpartyHandler extends the generic handler with type filters.
type CounterpartyHandler struct {
	*CounterpartyHTTPHandler
	service *counterparty.Service
}

// NewCounterpartyHandler creates a new counterparty handler.
func NewCounterpartyHandler(base *BaseHandler, service *counterparty.Service) *CounterpartyHandler {
	config := CatalogHandlerConfig[
		*counterparty.Counterparty,
		dto.CreateCounterpartyRequest,
		dto.UpdateCounterpartyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "counterparty",

		MapCreateDTO: func(req dto.CreateCounterpartyRequest) *counterparty.Counterparty {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateCounterpartyRequest, existing *counterparty.Counterparty) *counterparty.Counterparty {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *counterparty.Counterparty) any {
			return dto.FromCounterparty(entity)
		},
	}

	return &CounterpartyHandler{
		CounterpartyHTTPHandler: NewCatalogHandler(base, config),
		service:                 service,
	}
}

// ListCustomers handles GET /counterparties/customers
func (h *CounterpartyHandler) ListCustomers(c *gin.Context) {
	h.listByType(c, h.service.FindCustomers)
}

// ListSuppliers handles GET /counterparties/suppliers
func (h *CounterpartyHandler) ListSuppliers(c *gin.Context) {
	h.listByType(c, h.service.FindSuppliers)
}

func (h *CounterpartyHandler) listByType(
	c *gin.Context,
	find func(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*counterparty.Counterparty], error),
) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")

	result, err := find(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.CounterpartyResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromCounterparty(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
