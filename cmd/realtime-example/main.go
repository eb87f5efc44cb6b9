//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

// Command realtime-example is a thin cobra driver over the realtime client
// library: flag parsing and callback printing only, no decoding or
// reconnection logic of its own (spec.md §1 treats example drivers as
// external collaborators, interfaces only). Adapted from cmd/root.go's
// cobra + godotenv bootstrap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	realtime "github.com/cloudmanic/realtime-client"
	"github.com/cloudmanic/realtime-client/internal/config"
	"github.com/cloudmanic/realtime-client/internal/replay"
	"github.com/cloudmanic/realtime-client/internal/wire"
)

var (
	flagProvider   string
	flagTradesOnly bool
	flagDelayed    bool
	flagLegacy     bool
	flagDebug      bool
	flagMask       string
)

var rootCmd = &cobra.Command{
	Use:   "realtime-example",
	Short: "Example driver for the realtime market-data streaming client",
}

var equitiesCmd = &cobra.Command{
	Use:   "equities [channels...]",
	Short: "Stream equities trades and quotes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEquities,
}

var optionsCmd = &cobra.Command{
	Use:   "options [channels...]",
	Short: "Stream options trades, quotes, refresh, and unusual activity",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOptions,
}

var replayCmd = &cobra.Command{
	Use:   "replay [provider] [date]",
	Short: "Replay a captured equities session in merged time order",
	Args:  cobra.ExactArgs(2),
	RunE:  runReplay,
}

func init() {
	cobra.OnInitialize(loadEnv)

	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "REALTIME", "provider (REALTIME, DELAYED_SIP, NASDAQ_BASIC, IEX, CBOE_ONE, OPRA, MANUAL)")
	rootCmd.PersistentFlags().BoolVar(&flagDelayed, "delayed", false, "append &delayed=true to the socket URL")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	equitiesCmd.Flags().BoolVar(&flagTradesOnly, "trades-only", false, "subscribe trades-only")
	equitiesCmd.Flags().BoolVar(&flagLegacy, "legacy", false, "use the legacy (pre-v2) equities wire format")

	optionsCmd.Flags().StringVar(&flagMask, "events", "trades,quotes,refresh,ua", "comma-separated event kinds to subscribe")

	rootCmd.AddCommand(equitiesCmd, optionsCmd, replayCmd)
}

func loadEnv() {
	_ = godotenv.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func baseConfig(channels []string) *config.Config {
	cfg := &config.Config{
		Provider: config.Provider(flagProvider),
		Delayed:  flagDelayed,
		Debug:    flagDebug,
		Channels: channels,
	}
	cfg.FromEnvironment()
	return cfg
}

func runEquities(cmd *cobra.Command, args []string) error {
	cfg := baseConfig(args)
	cfg.TradesOnly = flagTradesOnly

	client, err := realtime.NewEquitiesClient(cfg, flagLegacy)
	if err != nil {
		return err
	}
	client.OnTrade(func(trade wire.EquitiesTrade, backlog int) {
		fmt.Printf("trade  %-8s price=%.4f size=%d backlog=%d\n", trade.Symbol, trade.Price, trade.Size, backlog)
	})
	client.OnQuote(func(quote wire.EquitiesQuote, backlog int) {
		fmt.Printf("quote  %-8s %-3s price=%.4f size=%d backlog=%d\n", quote.Symbol, quote.Type, quote.Price, quote.Size, backlog)
	})

	return runUntilSignal(cmd.Context(), client)
}

func runOptions(cmd *cobra.Command, args []string) error {
	cfg := baseConfig(args)

	var mask byte
	for _, kind := range strings.Split(flagMask, ",") {
		switch strings.TrimSpace(kind) {
		case "trades":
			mask |= realtime.OptionsMaskTrades
		case "quotes":
			mask |= realtime.OptionsMaskQuotes
		case "refresh":
			mask |= realtime.OptionsMaskRefresh
		case "ua":
			mask |= realtime.OptionsMaskUA
		}
	}

	client, err := realtime.NewOptionsClient(cfg, mask)
	if err != nil {
		return err
	}
	client.OnTrade(func(trade wire.OptionsTrade, backlog int) {
		fmt.Printf("trade  %-24s price=%.2f size=%d backlog=%d\n", trade.Contract, trade.Price, trade.Size, backlog)
	})
	client.OnQuote(func(quote wire.OptionsQuote, backlog int) {
		fmt.Printf("quote  %-24s bid=%.2f ask=%.2f backlog=%d\n", quote.Contract, quote.BidPrice, quote.AskPrice, backlog)
	})
	client.OnRefresh(func(refresh wire.OptionsRefresh, backlog int) {
		fmt.Printf("refresh %-23s oi=%d open=%.2f close=%.2f backlog=%d\n", refresh.Contract, refresh.OpenInterest, refresh.OpenPrice, refresh.ClosePrice, backlog)
	})
	client.OnUnusualActivity(func(ua wire.OptionsUnusualActivity, backlog int) {
		fmt.Printf("ua     %-24s type=%d sentiment=%d backlog=%d\n", ua.Contract, ua.Type, ua.Sentiment, backlog)
	})

	return runUntilSignal(cmd.Context(), client)
}

// streamingClient is the subset of EquitiesClient/OptionsClient the example
// driver needs: start, stop, and a stats snapshot.
type streamingClient interface {
	Start(ctx context.Context)
	Stop()
	GetStats() realtime.Stats
}

func runUntilSignal(ctx context.Context, client streamingClient) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client.Start(ctx)
	defer client.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	fmt.Fprintln(os.Stderr, "shutting down")
	return nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	providerArg, dateArg := args[0], args[1]
	provider := config.Provider(providerArg)
	subproviders := replay.ResolveSubproviders(provider)
	if len(subproviders) == 0 {
		return fmt.Errorf("no subproviders known for provider %q", providerArg)
	}

	downloader := replay.NewHTTPDownloader(func(subprovider, replayDate string) (string, error) {
		return fmt.Sprintf("https://replay.intrinio.com/%s/%s.bin", subprovider, replayDate), nil
	})

	var streams [][]replay.Tick
	for _, sp := range subproviders {
		path, err := downloader.Download(cmd.Context(), sp, dateArg)
		if err != nil {
			return fmt.Errorf("downloading %s capture: %w", sp, err)
		}
		ticks, err := replay.ReadTicks(path)
		if err != nil {
			return fmt.Errorf("reading %s capture: %w", sp, err)
		}
		streams = append(streams, ticks)
	}

	merged := replay.MergeStreams(streams)
	pacer := replay.NewPacer(false)
	for _, tick := range merged {
		pacer.Wait(tick)
		frame := tick.ToGroupFrame()
		events, err := wire.DecodeEquitiesV2Group(frame, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode error: %v\n", err)
			continue
		}
		for _, event := range events {
			fmt.Printf("%+v\n", event)
		}
	}
	return nil
}
