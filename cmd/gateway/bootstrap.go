package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"trading-gateway/internal/eod"
	"trading-gateway/internal/eod/eodobs"
	"trading-gateway/internal/gateway"
	"trading-gateway/internal/gateway/gatewayobs"
	"trading-gateway/internal/gateway/live"
	"trading-gateway/internal/gateway/sdk"
	"trading-gateway/internal/gateway/session"
	"trading-gateway/internal/gateway/sim"
	"trading-gateway/internal/interfaces"
	"trading-gateway/internal/logger"
	"trading-gateway/internal/store"
	"trading-gateway/internal/trace"
	"trading-gateway/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	// Initialize EOD summarizer with observability
	eod.SetDefaultSummarizer(eodobs.Wrap(eod.NewSummarizer()))

	return nil
}

// compressOldLogs compresses old journal files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("GATEWAY_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old journals", "error", err)
		}
	}
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// initializeGateway builds the gateway connection for the configured mode
// and wraps it with observability middleware.
func initializeGateway(ctx context.Context, cfg *store.Config) (interfaces.Gateway, *simHooks) {
	opts := gateway.Options{
		MDAddress: cfg.Gateway.MDAddress,
		TDAddress: cfg.Gateway.TDAddress,
		Credentials: gateway.Credentials{
			BrokerID:    cfg.Gateway.BrokerID,
			UserID:      cfg.Gateway.UserID,
			Password:    cfg.Password(),
			AppID:       cfg.Gateway.AppID,
			AuthCode:    cfg.Gateway.AuthCode,
			ProductInfo: cfg.Gateway.ProductInfo,
		},
		ConnectTimeout:   time.Duration(cfg.Timeouts.ConnectSeconds) * time.Second,
		LoginTimeout:     time.Duration(cfg.Timeouts.LoginSeconds) * time.Second,
		QueryTimeout:     time.Duration(cfg.Timeouts.QuerySeconds) * time.Second,
		QueryMinInterval: time.Duration(cfg.Query.MinIntervalMillis) * time.Millisecond,
		Reconnect: session.ReconnectPolicy{
			BaseDelay:   time.Duration(cfg.Reconnect.BaseDelaySeconds) * time.Second,
			MaxDelay:    time.Duration(cfg.Reconnect.MaxDelaySeconds) * time.Second,
			MaxAttempts: cfg.Reconnect.MaxAttempts,
		},
	}

	var mdAPI sdk.MarketDataAPI
	var tdAPI sdk.TraderAPI
	var hooks *simHooks

	if cfg.Mode == "MOCK" {
		logger.Warn(ctx, "Running in MOCK mode - gateway is simulated in-process")
		md := sim.NewMarketData(sim.Script{})
		td := sim.NewTrader(sim.Script{})
		mdAPI, tdAPI = md, td
		hooks = &simHooks{md: md}
	} else {
		logger.Info(ctx, "Connecting to LIVE gateway fronts",
			"md_address", cfg.Gateway.MDAddress,
			"td_address", cfg.Gateway.TDAddress,
		)
		mdAPI = live.NewMarketData()
		tdAPI = live.NewTrader()
	}

	conn := gateway.New(mdAPI, tdAPI, opts)

	// Wrap with observability middleware
	return gatewayobs.Wrap(conn), hooks
}

// simHooks keeps the mock bindings reachable for scripted tick flow.
type simHooks struct {
	md *sim.MarketData
}

func (h *simHooks) startTicks() {
	if h != nil {
		h.md.StartTicks(500 * time.Millisecond)
	}
}
