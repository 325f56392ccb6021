package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dexux/marketsync/internal/config"
	"github.com/dexux/marketsync/internal/connection"
	"github.com/dexux/marketsync/internal/router"
	"github.com/dexux/marketsync/internal/session"
)

func newStreamCmd(configPath *string) *cobra.Command {
	var (
		flags   runFlags
		verbose bool
		count   int
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Request every resource once and print the routed answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadAndValidate(*configPath)
			if err != nil {
				return err
			}
			applyMarketFlags(cmd, &flags, cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return stream(ctx, cfg, cmd.OutOrStdout(), verbose, count)
		},
	}

	cmd.Flags().StringVar(&flags.pair, "pair", "", "pair to request")
	cmd.Flags().StringVar(&flags.asset, "asset", "", "base asset of the pair")
	cmd.Flags().StringVar(&flags.currency, "currency", "", "quote asset of the pair")
	cmd.Flags().StringVar(&flags.contract, "contract", "", "1.0.0 for an orderbook, the pool id for a pool")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print full payloads")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many messages (0 streams until interrupted)")
	return cmd
}

func stream(ctx context.Context, cfg *config.SyncConfig, out io.Writer, verbose bool, count int) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s := session.New()
	if err := s.Initialize(cfg.Market.Pair, cfg.Market.Asset, cfg.Market.Currency, cfg.Market.Contract); err != nil {
		return err
	}
	filter, err := session.ParseFilter(cfg.Search.Filter)
	if err != nil {
		return err
	}
	snap := s.Snapshot()

	mgr := connection.NewManager(connection.ManagerConfig{
		WSURL:            cfg.Server.WSURL,
		PingTimeout:      cfg.Connection.PingTimeout,
		WriteTimeout:     cfg.Connection.WriteTimeout,
		HandshakeTimeout: cfg.Connection.HandshakeTimeout,
		BufferSize:       cfg.Connection.BufferSize,
	}, logger)
	if err := mgr.Connect(ctx, snap.Pair, snap.Contract); err != nil {
		return err
	}
	defer mgr.Close()

	flags := filter.Flags()
	requests := []connection.Request{
		connection.NewBookRequest(snap.Pair, snap.Contract),
		connection.NewTickerRequest(snap.Pair, snap.Contract),
		connection.NewBlocknumRequest(),
		connection.NewCandlesRequest(cfg.Chart.ChartType, cfg.Chart.CandleSize, snap.Pair, snap.Contract),
		connection.ListAssetsRequest{
			Res:         connection.ResourceListAssets,
			Search:      cfg.Search.Query,
			AssetA:      cfg.Search.AssetA,
			UseMPA:      flags.MPA,
			UseLPT:      flags.LPT,
			UseUIA:      flags.UIA,
			UsePool:     flags.Pool,
			FirstChoice: true,
			UseBTS:      flags.BTS,
		},
	}
	for _, req := range requests {
		if err := mgr.Send(req); err != nil {
			return err
		}
	}

	rtr := router.NewRouter(&printer{out: out, verbose: verbose}, logger)
	for seen := 0; count == 0 || seen < count; seen++ {
		select {
		case <-ctx.Done():
			return nil
		case err := <-mgr.Errors():
			return err
		case msg := <-mgr.Messages():
			rtr.Route(msg)
		}
	}

	stats := rtr.Stats()
	fmt.Fprintf(out, "[STATS] received=%d routed=%d parse_errors=%d unknown=%d\n",
		stats.MessagesReceived, stats.MessagesRouted, stats.ParseErrors, stats.UnknownMessages)
	return nil
}

// printer writes one line per routed payload.
type printer struct {
	out     io.Writer
	verbose bool
}

func (p *printer) HandleBook(b router.BookPayload) {
	if p.verbose {
		p.dump("BOOK", b)
		return
	}
	fmt.Fprintf(p.out, "[BOOK] bid_levels=%d ask_levels=%d html_bytes=%d\n",
		len(b.Bid.Price), len(b.Ask.Price), len(b.Book))
}

func (p *printer) HandleBlocknum(n int64) {
	fmt.Fprintf(p.out, "[BLOCKNUM] %d\n", n)
}

func (p *printer) HandleTicker(raw json.RawMessage) {
	fmt.Fprintf(p.out, "[TICKER] %s\n", raw)
}

func (p *printer) HandleListAssets(html string) {
	if p.verbose {
		fmt.Fprintf(p.out, "[LIST_ASSETS] %s\n", html)
		return
	}
	fmt.Fprintf(p.out, "[LIST_ASSETS] html_bytes=%d\n", len(html))
}

func (p *printer) HandleCandles(c router.CandlePayload) {
	if p.verbose {
		p.dump("CANDLES", c)
		return
	}
	fmt.Fprintf(p.out, "[CANDLES] style=%s regime=%s series_bytes=%d\n", c.Style, c.Regime, len(c.Series))
}

func (p *printer) dump(tag string, v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintf(p.out, "[%s] %s\n", tag, data)
}
