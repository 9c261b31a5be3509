package main

//
//  @title           optpulse API
//  @version         1.0
//  @description     SPY 0DTE options data congruence & ALM ledger service.
//  @contact.name    API Support
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        alm
//  @tag.description Ledger and daily NAV summary endpoints
//
//  @tag.name        contracts
//  @tag.description Per-contract series counts and congruence state
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rgoulart/optpulse/config"
	_ "github.com/rgoulart/optpulse/docs" // swagger docs
	"github.com/rgoulart/optpulse/internal/alm"
	"github.com/rgoulart/optpulse/internal/app"
	"github.com/rgoulart/optpulse/internal/congruence"
	"github.com/rgoulart/optpulse/internal/ingestion"
	"github.com/rgoulart/optpulse/internal/logger"
	"github.com/rgoulart/optpulse/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown terminates the HTTP server and cleans up resources when an
// OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the optpulse application.
//
// Modes (selected via --mode flag):
//   - init:   Creates the database schema if missing.
//   - ingest: Loads the last N trading sessions of export files into the store.
//   - repair: Runs a congruence pass over the catalog's contracts.
//   - alm:    Rebuilds an account's ledger and daily NAV summaries.
//   - api:    Starts the REST API over persisted ledgers and contract state.
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		// Logger not initialized yet; stderr is all we have.
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Init()

	mode := flag.String("mode", "ingest", "Mode: init, ingest, repair, alm, or api")
	dir := flag.String("dir", "./data/exports", "Directory with export .csv files")
	symbol := flag.String("symbol", "SPY", "Underlying symbol")
	days := flag.Int("days", 7, "Number of last trading sessions to ingest (1-30)")
	parallel := flag.Int("parallel", 0, "How many days to process concurrently (0=auto up to CPU, max 7)")
	force := flag.Bool("force", false, "Reprocess days even if already ingested (deletes existing records for that day)")
	repairMode := flag.String("repair-mode", "strict", "Congruence target state: strict or complete")
	expiration := flag.String("expiration", "", "Restrict repair to one expiration date (YYYY-MM-DD)")
	account := flag.String("account", "", "Account identifier for ALM ledger build")
	startingNAV := flag.Float64("starting-nav", 0, "Account starting NAV for ALM ledger build")
	port := flag.String("port", cfg.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "init":
		db := mustConnect(cfg)
		defer func() { _ = db.Close() }()
		if err := storage.EnsureSchema(db); err != nil {
			logger.L().Fatal().Err(err).Msg("schema init failed")
		}
		logger.L().Info().Msg("schema ready")

	case "ingest":
		logger.L().Info().Msg("running ingestion")
		db := mustConnect(cfg)
		defer func() { _ = db.Close() }()

		opts := ingestion.Options{
			Dir:      *dir,
			Symbol:   *symbol,
			Days:     *days,
			Parallel: *parallel,
			Force:    *force,
			Timezone: cfg.Congruence.Timezone,
		}
		if err := ingestion.ProcessDirectory(ctx, db, opts); err != nil {
			logger.L().Fatal().Err(err).Msg("ingestion failed")
		}
		logger.L().Info().Msg("ingestion completed successfully")

	case "repair":
		db := mustConnect(cfg)
		defer func() { _ = db.Close() }()
		runRepair(db, cfg, *symbol, *repairMode, *expiration)

	case "alm":
		if *account == "" {
			logger.L().Fatal().Msg("--account is required for alm mode")
		}
		db := mustConnect(cfg)
		defer func() { _ = db.Close() }()
		runALM(db, cfg, *account, *startingNAV)

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}

func mustConnect(cfg config.Config) *sql.DB {
	db, err := app.InitPostgres(cfg)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("db connect error")
	}
	return db
}

// runRepair runs one congruence pass over the symbol's contracts.
func runRepair(db *sql.DB, cfg config.Config, symbol, mode, expiration string) {
	var expFilter *time.Time
	if expiration != "" {
		parsed, err := time.Parse("2006-01-02", expiration)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("invalid --expiration, expected YYYY-MM-DD")
		}
		expFilter = &parsed
	}

	var target congruence.Mode
	switch mode {
	case "strict":
		target = congruence.ModeStrict
	case "complete":
		target = congruence.ModeComplete
	default:
		logger.L().Fatal().Str("repair_mode", mode).Msg("unknown repair mode")
	}

	catalog := storage.NewContractCatalog(db)
	series := storage.NewTimeSeriesStore(db)
	repo := storage.NewCongruenceRepository(db)

	contracts, err := catalog.List(symbol, expFilter)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("list contracts failed")
	}
	if len(contracts) == 0 {
		logger.L().Info().Str("symbol", symbol).Msg("no contracts to repair")
		return
	}

	enforcer := congruence.NewEnforcer(cfg.Congruence, repo, series)
	report := enforcer.Enforce(contracts, target)

	logger.L().Info().
		Str("mode", string(report.Mode)).
		Int("repaired", report.Repaired).
		Int("failed", report.Failed).
		Msg("congruence pass finished")
	if report.Failed > 0 {
		os.Exit(1)
	}
}

// runALM rebuilds one account's ledger and daily summaries from raw events.
// A reconciliation mismatch is fatal: it indicates an upstream data or
// ledger-construction bug, never something to paper over.
func runALM(db *sql.DB, cfg config.Config, account string, startingNAV float64) {
	repo := storage.NewALMRepository(db)

	events, err := repo.FetchRawEvents(account)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("fetch raw events failed")
	}
	if len(events) == 0 {
		logger.L().Info().Str("account", account).Msg("no raw events for account")
		return
	}

	builder := alm.NewLedgerBuilder(cfg.Ledger.FXRate)
	entries := builder.Build(account, startingNAV, events)

	aggregator, err := alm.NewAggregator(cfg.Ledger.Timezone)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("aggregator init failed")
	}
	summaries, err := aggregator.Aggregate(account, startingNAV, entries)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("daily reconciliation failed")
	}

	if err := repo.ReplaceLedger(account, entries, summaries); err != nil {
		logger.L().Fatal().Err(err).Msg("persist ledger failed")
	}

	logger.L().Info().
		Str("account", account).
		Int("entries", len(entries)).
		Int("days", len(summaries)).
		Float64("final_nav", entries[len(entries)-1].NAVAfter).
		Msg("ledger rebuilt")
}
