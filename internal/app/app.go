package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/rgoulart/optpulse/config"
	"github.com/rgoulart/optpulse/internal/api"
	"github.com/rgoulart/optpulse/internal/liquidity"
	"github.com/rgoulart/optpulse/internal/service"
	"github.com/rgoulart/optpulse/internal/storage"
)

// InitializeApp sets up all application dependencies for API mode and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL.
//   - Initializes the repository layer (catalog, series store, ALM).
//   - Creates the reporting service and HTTP handler layer.
//   - Configures the Gin router and health/readiness probes.
//   - Provides a cleanup function to close resources.
func InitializeApp(cfg config.Config) (*gin.Engine, func(), error) {
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	catalog := storage.NewContractCatalog(db)
	series := storage.NewTimeSeriesStore(db)
	almRepo := storage.NewALMRepository(db)
	filter := liquidity.NewFilter(cfg.Liquidity)

	svc := service.NewReportingService(almRepo, catalog, series, filter, cfg.Ledger.Timezone)
	handler := api.NewHandler(svc)
	router := api.NewRouter(handler, cfg.Server.RateLimit)

	healthHandler := api.NewHealthHandler(db.Ping)
	healthHandler.Register(router)

	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
