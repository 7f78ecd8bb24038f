// Package main provides a CLI tool for seeding the database with demo data:
// a small catalog of products and counterparties plus a posted purchase and
// sale history so the reports have something to chew on.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"stocklot/internal/domain/catalogs/counterparty"
	"stocklot/internal/domain/catalogs/product"
	"stocklot/internal/domain/documents/purchase"
	"stocklot/internal/domain/documents/sale"
	"stocklot/internal/domain/ledger"
	"stocklot/internal/domain/posting"
	"stocklot/internal/infrastructure/numerator"
	"stocklot/internal/infrastructure/storage/postgres"
	"stocklot/internal/infrastructure/storage/postgres/catalog_repo"
	"stocklot/internal/infrastructure/storage/postgres/document_repo"
	"stocklot/internal/infrastructure/storage/postgres/ledger_repo"
	"stocklot/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	ctx = postgres.WithTxManager(ctx, txManager)

	numeratorService := numerator.New(pool)

	productRepo := catalog_repo.NewProductRepo()
	productService := product.NewService(productRepo, txManager, numeratorService)
	counterpartyService := counterparty.NewService(catalog_repo.NewCounterpartyRepo(), txManager, numeratorService)

	ledgerService := ledger.NewService(ledger_repo.NewRepo(), productRepo)
	postingEngine := posting.NewEngine(ledgerService, txManager, nil)

	purchaseService := purchase.NewService(document_repo.NewPurchaseRepo(), postingEngine, numeratorService, txManager)
	saleService := sale.NewService(document_repo.NewSaleRepo(), postingEngine, numeratorService, txManager)

	products, err := seedProducts(ctx, productService, log)
	if err != nil {
		log.Fatalw("failed to seed products", "error", err)
	}

	supplier, customer, err := seedCounterparties(ctx, counterpartyService, log)
	if err != nil {
		log.Fatalw("failed to seed counterparties", "error", err)
	}

	if err := seedDocuments(ctx, purchaseService, saleService, products, supplier, customer, log); err != nil {
		log.Fatalw("failed to seed documents", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedProducts(ctx context.Context, service *product.Service, log *logger.Logger) ([]*product.Product, error) {
	specs := []struct {
		name string
		sku  string
		unit string
	}{
		{"Oak Table", "TBL-OAK-01", "pcs"},
		{"Office Chair", "CHR-STD-01", "pcs"},
		{"Pine Plank 2m", "PLK-PINE-2M", "pcs"},
		{"Wood Varnish", "VRN-CLR-05", "l"},
	}

	products := make([]*product.Product, 0, len(specs))
	for _, spec := range specs {
		if existing, err := service.FindBySKU(ctx, spec.sku); err == nil {
			log.Infow("product already exists", "sku", spec.sku)
			products = append(products, existing)
			continue
		}

		p := product.NewProduct("", spec.name)
		p.SKU = strPtr(spec.sku)
		p.Unit = spec.unit

		if err := service.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create product %s: %w", spec.sku, err)
		}
		log.Infow("product created", "sku", spec.sku, "code", p.Code)
		products = append(products, p)
	}

	return products, nil
}

func seedCounterparties(ctx context.Context, service *counterparty.Service, log *logger.Logger) (supplier, customer *counterparty.Counterparty, err error) {
	supplier = counterparty.NewCounterparty("", "Northwood Lumber Ltd", counterparty.TypeSupplier)
	supplier.Email = strPtr("sales@northwood-lumber.example")
	if err = service.Create(ctx, supplier); err != nil {
		return nil, nil, fmt.Errorf("create supplier: %w", err)
	}
	log.Infow("supplier created", "code", supplier.Code)

	customer = counterparty.NewCounterparty("", "Cornerstone Interiors", counterparty.TypeCustomer)
	customer.Email = strPtr("orders@cornerstone.example")
	if err = service.Create(ctx, customer); err != nil {
		return nil, nil, fmt.Errorf("create customer: %w", err)
	}
	log.Infow("customer created", "code", customer.Code)

	return supplier, customer, nil
}

func seedDocuments(
	ctx context.Context,
	purchases *purchase.Service,
	sales *sale.Service,
	products []*product.Product,
	supplier, customer *counterparty.Counterparty,
	log *logger.Logger,
) error {
	price := decimal.RequireFromString
	qty := decimal.NewFromInt

	// Two purchase batches at different costs, backdated so the sales
	// consume across FIFO layers
	firstBatch := purchase.NewPurchase(supplier.ID, "USD")
	firstBatch.Date = time.Now().AddDate(0, 0, -60)
	firstBatch.AddLine(products[0].ID, qty(10), price("120.00"))
	firstBatch.AddLine(products[1].ID, qty(40), price("35.50"))
	firstBatch.AddLine(products[2].ID, qty(200), price("4.80"))
	if err := createAndPostPurchase(ctx, purchases, firstBatch); err != nil {
		return fmt.Errorf("first purchase: %w", err)
	}
	log.Infow("purchase posted", "number", firstBatch.Number)

	secondBatch := purchase.NewPurchase(supplier.ID, "USD")
	secondBatch.Date = time.Now().AddDate(0, 0, -25)
	secondBatch.AddLine(products[0].ID, qty(5), price("132.00"))
	secondBatch.AddLine(products[2].ID, qty(100), price("5.10"))
	// Varnish arrives without an invoice price
	secondBatch.AddUnpricedLine(products[3].ID, qty(20))
	if err := createAndPostPurchase(ctx, purchases, secondBatch); err != nil {
		return fmt.Errorf("second purchase: %w", err)
	}
	log.Infow("purchase posted", "number", secondBatch.Number)

	firstSale := sale.NewSale(customer.ID, "USD")
	firstSale.Date = time.Now().AddDate(0, 0, -20)
	firstSale.AddLine(products[0].ID, qty(8), price("199.00"))
	firstSale.AddLine(products[1].ID, qty(12), price("59.00"))
	if err := createAndPostSale(ctx, sales, firstSale); err != nil {
		return fmt.Errorf("first sale: %w", err)
	}
	log.Infow("sale posted", "number", firstSale.Number)

	secondSale := sale.NewSale(customer.ID, "USD")
	secondSale.Date = time.Now().AddDate(0, 0, -5)
	secondSale.AddLine(products[0].ID, qty(4), price("205.00"))
	secondSale.AddLine(products[2].ID, qty(150), price("7.90"))
	secondSale.AddLine(products[3].ID, qty(6), price("18.00"))
	if err := createAndPostSale(ctx, sales, secondSale); err != nil {
		return fmt.Errorf("second sale: %w", err)
	}
	log.Infow("sale posted", "number", secondSale.Number)

	return nil
}

func strPtr(s string) *string {
	return &s
}

func createAndPostPurchase(ctx context.Context, service *purchase.Service, doc *purchase.Purchase) error {
	if err := service.Create(ctx, doc); err != nil {
		return err
	}
	return service.Post(ctx, doc.ID)
}

func createAndPostSale(ctx context.Context, service *sale.Service, doc *sale.Sale) error {
	if err := service.Create(ctx, doc); err != nil {
		return err
	}
	return service.Post(ctx, doc.ID)
}
