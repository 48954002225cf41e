package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"galachain-trade-bot-go/internal/config"
	"galachain-trade-bot-go/internal/database"
	"galachain-trade-bot-go/internal/gswap"
	"galachain-trade-bot-go/internal/ledger"
	"galachain-trade-bot-go/internal/logger"
	"galachain-trade-bot-go/internal/pricing"
	"galachain-trade-bot-go/internal/trader"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize the DEX gateway client and probe connectivity.
	gateway := gswap.NewClient(&cfg.Gateway, log)
	if err := gateway.GetStatus(context.Background()); err != nil {
		log.Fatal("Failed to reach DEX gateway", zap.Error(err))
	}
	log.Info("Successfully connected to DEX gateway")

	// Pricing: layered resolver plus the PnL calculator on top of it.
	reference := pricing.NewReferenceClient(
		cfg.Pricing.ReferenceURL,
		time.Duration(cfg.Pricing.ReferenceTimeout)*time.Second,
		log,
	)
	resolver := pricing.NewResolver(&cfg.Pricing, gateway, reference, log)
	calculator := pricing.NewCalculator(gateway, resolver, log)

	// Transaction ledger over the configured store backend.
	store, err := newStore(&cfg.Ledger, log)
	if err != nil {
		log.Fatal("Failed to open ledger store", zap.Error(err))
	}
	txLedger := ledger.New(store, calculator, cfg.Ledger.Capacity, log)
	log.Info("Transaction ledger ready", zap.Int("records", txLedger.Len()))

	// Strategy lifecycle manager and its shared context.
	manager := trader.NewManager(trader.StrategyContext{
		Logger:  log,
		Cfg:     &cfg,
		Gateway: gateway,
		Ledger:  txLedger,
		Results: trader.NewResultsBuffer(),
		Clock:   trader.SystemClock,
	})

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start the configured exclusive strategy, plus the arbitrage probe
	// in its named slot when enabled.
	kind, err := trader.ParseKind(cfg.Trading.Strategy)
	if err != nil {
		log.Fatal("Invalid strategy in configuration", zap.Error(err))
	}
	if err := manager.Start(ctx, kind, trader.Overrides{}); err != nil {
		log.Fatal("Failed to start strategy", zap.Error(err))
	}
	if cfg.Trading.ArbitrageEnabled {
		if err := manager.Start(ctx, trader.KindArbitrage, trader.Overrides{}); err != nil {
			log.Error("Failed to start arbitrage probe", zap.Error(err))
		}
	}

	// HTTP status API.
	api := trader.NewAPIServer(manager, txLedger, cfg.Trading.ApiPort, log)
	api.Start()

	<-ctx.Done()

	manager.StopAll()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := api.Stop(shutdownCtx); err != nil {
		log.Error("API server shutdown failed", zap.Error(err))
	}
	log.Info("Bot has been shut down.")
}

// newStore picks the ledger store backend from configuration.
func newStore(cfg *config.Ledger, log *zap.Logger) (ledger.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		db, err := database.NewDatabase(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return ledger.NewGormStore(db, log), nil
	default:
		return ledger.NewFileStore(cfg.Path, log)
	}
}
