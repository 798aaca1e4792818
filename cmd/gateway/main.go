package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-gateway/internal/eod"
	"trading-gateway/internal/interfaces"
	"trading-gateway/internal/logger"
	"trading-gateway/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() { _ = logger.Shutdown(context.Background()) }()
	defer func() { _ = trace.Shutdown(context.Background()) }()

	cfg, err := loadConfig(ctx)
	must(err)

	compressOldLogs(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	gw, hooks := initializeGateway(ctx, cfg)
	must(gw.Connect(ctx))
	must(gw.Subscribe(ctx, cfg.Universe))
	hooks.startTicks()

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()
	eodTick := time.NewTicker(60 * time.Second)
	defer eodTick.Stop()

	logger.Info(ctx, "Gateway started", "universe", cfg.Universe, "mode", cfg.Mode)
	for {
		select {
		case <-tick.C:
			pollOnce(ctx, cfg.Universe, gw)
		case <-eodTick.C:
			if ok, _ := eod.ShouldRunNow(); ok {
				if p, err := eod.SummarizeToday(); err == nil && p != "" {
					logger.Info(ctx, "EOD CSV written", "path", p)
				}
			}
		case <-sigc:
			logger.Info(ctx, "Shutting down...")
			if p, err := eod.SummarizeToday(); err == nil && p != "" {
				logger.Info(ctx, "EOD CSV written", "path", p)
			}
			_ = gw.Disconnect(ctx)
			return
		case <-ctx.Done():
			return
		}
	}
}

// pollOnce prints the latest ticks and refreshes account and position state.
func pollOnce(ctx context.Context, universe []string, gw interfaces.Gateway) {
	for _, id := range universe {
		tickData, err := gw.GetMarketData(id)
		if err != nil {
			logger.Debug(ctx, "No market data yet", "instrument", id)
			continue
		}
		b, _ := json.Marshal(tickData)
		fmt.Println(string(b))
	}

	if acct, err := gw.QueryAccount(ctx); err != nil {
		logger.Warn(ctx, "Account poll failed", "error", err)
	} else {
		logger.Info(ctx, "Account",
			"balance", acct.Balance,
			"available", acct.Available,
			"margin", acct.Margin,
			"risk_ratio", acct.RiskRatio(),
		)
	}

	if positions, err := gw.QueryPositions(ctx); err != nil {
		logger.Warn(ctx, "Position poll failed", "error", err)
	} else {
		logger.Info(ctx, "Positions", "count", len(positions))
	}

	mdStatus, tdStatus := gw.ReconnectStatus()
	if mdStatus.InProgress || tdStatus.InProgress {
		logger.Warn(ctx, "Reconnect in progress",
			"md_attempts", mdStatus.Attempts,
			"td_attempts", tdStatus.Attempts,
		)
	}
}
