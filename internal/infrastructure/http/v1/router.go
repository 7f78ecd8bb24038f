package v1

import (
	"github.com/gin-gonic/gin"

	"stocklot/internal/core/numerator"
	"stocklot/internal/domain/catalogs/counterparty"
	"stocklot/internal/domain/catalogs/product"
	"stocklot/internal/domain/dailyagg"
	"stocklot/internal/domain/documents/purchase"
	"stocklot/internal/domain/documents/sale"
	"stocklot/internal/domain/ledger"
	"stocklot/internal/domain/posting"
	"stocklot/internal/domain/reports"
	"stocklot/internal/infrastructure/http/v1/handlers"
	"stocklot/internal/infrastructure/http/v1/middleware"
	"stocklot/internal/infrastructure/storage/postgres"
	"stocklot/internal/infrastructure/storage/postgres/catalog_repo"
	"stocklot/internal/infrastructure/storage/postgres/dailyagg_repo"
	"stocklot/internal/infrastructure/storage/postgres/document_repo"
	"stocklot/internal/infrastructure/storage/postgres/ledger_repo"
	"stocklot/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (health checks)
	Pool *postgres.Pool

	// TxManager runs repository operations; injected into every
	// request context by the Database middleware
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// Numerator for document number and catalog code generation
	Numerator numerator.Generator

	// Auditor records posting lifecycle events; nil disables auditing
	Auditor posting.Auditor
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Database(cfg.TxManager))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Shared domain wiring. Repos are stateless: each obtains the
	// TxManager from the request context per call.
	productRepo := catalog_repo.NewProductRepo()
	productService := product.NewService(productRepo, cfg.TxManager, cfg.Numerator)

	counterpartyRepo := catalog_repo.NewCounterpartyRepo()
	counterpartyService := counterparty.NewService(counterpartyRepo, cfg.TxManager, cfg.Numerator)

	ledgerService := ledger.NewService(ledger_repo.NewRepo(), productRepo)
	postingEngine := posting.NewEngine(ledgerService, cfg.TxManager, cfg.Auditor)

	saleService := sale.NewService(document_repo.NewSaleRepo(), postingEngine, cfg.Numerator, cfg.TxManager)
	purchaseService := purchase.NewService(document_repo.NewPurchaseRepo(), postingEngine, cfg.Numerator, cfg.TxManager)

	aggService := dailyagg.NewService(ledgerService, dailyagg_repo.NewRepo(), cfg.TxManager)
	reportService := reports.NewService(ledgerService, ledgerService)

	baseHandler := handlers.NewBaseHandler()

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		catalogs := apiV1.Group("/catalog")
		{
			handler := handlers.NewProductHandler(baseHandler, productService)
			group := catalogs.Group("/products")
			group.GET("/by-sku/:sku", handler.GetBySKU)
			RegisterCatalogRoutes(group, handler)
		}
		{
			handler := handlers.NewCounterpartyHandler(baseHandler, counterpartyService)
			group := catalogs.Group("/counterparties")
			group.GET("/customers", handler.ListCustomers)
			group.GET("/suppliers", handler.ListSuppliers)
			RegisterCatalogRoutes(group, handler)
		}

		documents := apiV1.Group("/document")
		{
			handler := handlers.NewSaleHandler(baseHandler, saleService)
			RegisterDocumentRoutes(documents.Group("/sales"), handler)
		}
		{
			handler := handlers.NewPurchaseHandler(baseHandler, purchaseService)
			RegisterDocumentRoutes(documents.Group("/purchases"), handler)
		}

		{
			handler := handlers.NewLedgerHandler(baseHandler, ledgerService)
			group := apiV1.Group("/ledger")
			group.GET("/movements", handler.GetMovements)
			group.GET("/stock", handler.GetStock)
			group.GET("/stock/:productId", handler.GetProductStock)
		}

		{
			handler := handlers.NewAggregatesHandler(baseHandler, aggService)
			group := apiV1.Group("/aggregates")
			group.GET("/daily", handler.GetDaily)
			group.GET("/daily/customers", handler.GetDailyByCustomer)
			group.POST("/daily/rebuild", handler.Rebuild)
		}

		{
			handler := handlers.NewReportsHandler(baseHandler, reportService)
			group := apiV1.Group("/reports")
			group.GET("/fifo", handler.GetFIFO)
			group.GET("/rolling-averages", handler.GetRollingAverages)
			group.GET("/abc", handler.GetABC)
			group.GET("/depletion", handler.GetDepletion)
			group.GET("/dormant", handler.GetDormant)
			group.GET("/turnover", handler.GetTurnover)
		}
	}

	return router
}
