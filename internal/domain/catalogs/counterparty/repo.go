package counterparty

import (
	"context"

	"stocklot/internal/domain"
)

// Repository defines the interface for Counterparty persistence.
type Repository interface {
	domain.CatalogRepository[*Counterparty]

	// FindByType retrieves counterparties of the given type,
	// including "both" entries.
	FindByType(ctx context.Context, cpType CounterpartyType, filter domain.ListFilter) (domain.ListResult[*Counterparty], error)
}
