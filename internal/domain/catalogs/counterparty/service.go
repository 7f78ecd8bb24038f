package counterparty

import (
	"context"
	"fmt"
	"time"

	"stocklot/internal/core/numerator"
	"stocklot/internal/core/tx"
	"stocklot/internal/domain"
)

// Service provides business logic for the Counterparty catalog.
type Service struct {
	*domain.CatalogService[*Counterparty]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Counterparty service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Counterparty]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "counterparty",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

// prepareForCreate generates the code when not provided.
func (s *Service) prepareForCreate(ctx context.Context, item *Counterparty) error {
	if item.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("CP"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		item.Code = code
	}
	return nil
}

// --- Entity-specific methods ---

// FindCustomers retrieves counterparties usable as customers.
func (s *Service) FindCustomers(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Counterparty], error) {
	return s.repo.FindByType(ctx, TypeCustomer, filter)
}

// FindSuppliers retrieves counterparties usable as suppliers.
func (s *Service) FindSuppliers(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Counterparty], error) {
	return s.repo.FindByType(ctx, TypeSupplier, filter)
}
