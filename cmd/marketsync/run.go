package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dexux/marketsync/internal/config"
	"github.com/dexux/marketsync/internal/connection"
	"github.com/dexux/marketsync/internal/console"
	"github.com/dexux/marketsync/internal/coordinator"
	"github.com/dexux/marketsync/internal/refresh"
	"github.com/dexux/marketsync/internal/session"
	"github.com/dexux/marketsync/internal/version"
)

type runFlags struct {
	pair     string
	asset    string
	currency string
	contract string
	commands bool
}

func newRunCmd(configPath *string) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the data server and keep the market in sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadAndValidate(*configPath)
			if err != nil {
				return err
			}
			applyMarketFlags(cmd, &flags, cfg)
			return run(cmd.Context(), cfg, flags.commands)
		},
	}

	cmd.Flags().StringVar(&flags.pair, "pair", "", "starting pair, e.g. BTS_USD or XBTSX.BTC:USD")
	cmd.Flags().StringVar(&flags.asset, "asset", "", "base asset of the starting pair")
	cmd.Flags().StringVar(&flags.currency, "currency", "", "quote asset of the starting pair")
	cmd.Flags().StringVar(&flags.contract, "contract", "", "1.0.0 for an orderbook, the pool id for a pool")
	cmd.Flags().BoolVar(&flags.commands, "commands", true, "read user commands from stdin")
	return cmd
}

// applyMarketFlags overrides the configured market with flags that were set.
func applyMarketFlags(cmd *cobra.Command, flags *runFlags, cfg *config.SyncConfig) {
	set := cmd.Flags().Changed
	if set("pair") {
		cfg.Market.Pair = flags.pair
	}
	if set("asset") {
		cfg.Market.Asset = flags.asset
	}
	if set("currency") {
		cfg.Market.Currency = flags.currency
	}
	if set("contract") {
		cfg.Market.Contract = flags.contract
	}
}

func run(ctx context.Context, cfg *config.SyncConfig, readCommands bool) error {
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting marketsync", version.LogAttrs()...)
	logger.Info("configuration loaded",
		"ws_url", cfg.Server.WSURL,
		"pair", cfg.Market.Pair,
		"contract", cfg.Market.Contract,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := connection.NewManager(connection.ManagerConfig{
		WSURL:            cfg.Server.WSURL,
		PingTimeout:      cfg.Connection.PingTimeout,
		WriteTimeout:     cfg.Connection.WriteTimeout,
		HandshakeTimeout: cfg.Connection.HandshakeTimeout,
		BufferSize:       cfg.Connection.BufferSize,
	}, logger.With("component", "connection"))

	dom := console.NewDOM(map[string]string{
		coordinator.CtrlCandleSize: cfg.Chart.CandleSize,
		coordinator.CtrlChartType:  cfg.Chart.ChartType,
		coordinator.CtrlSearch:     cfg.Search.Query,
	}, logger.With("component", "dom"))

	filter, err := session.ParseFilter(cfg.Search.Filter)
	if err != nil {
		return err
	}

	coord := coordinator.New(coordinator.Config{
		Pair:     cfg.Market.Pair,
		Asset:    cfg.Market.Asset,
		Currency: cfg.Market.Currency,
		Contract: cfg.Market.Contract,
		Delays: refresh.Delays{
			Book:     cfg.Refresh.Book,
			Ticker:   cfg.Refresh.Ticker,
			Blocknum: cfg.Refresh.Blocknum,
			Candles:  cfg.Refresh.Candles,
		},
		LogScale:  cfg.Chart.LogScale,
		Filter:    filter,
		AssetA:    cfg.Search.AssetA,
		QueueSize: cfg.Connection.BufferSize,
	}, manager, dom, console.NewRenderer(logger.With("component", "renderer")), logger)

	healthServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           newHealthHandler(coord, cfg.Metrics.Path),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := coord.Run(gctx)
		switch {
		case errors.Is(err, session.ErrInvalidInit):
			// The sync feature is off, the process and its health endpoint stay up.
			return nil
		case errors.Is(err, coordinator.ErrTransport):
			// No reconnect: /health keeps reporting the lost connection.
			logger.Error("sync stopped", "error", err)
			return nil
		case errors.Is(err, context.Canceled):
			return nil
		}
		return err
	})

	g.Go(func() error {
		logger.Info("starting health server", "port", cfg.Metrics.Port, "metrics_path", cfg.Metrics.Path)
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	if readCommands {
		g.Go(func() error {
			return console.NewCommands(coord, dom, logger.With("component", "commands")).Run(gctx, os.Stdin)
		})
	}

	err = g.Wait()
	logger.Info("marketsync stopped", "session_id", coord.ID())
	return err
}
