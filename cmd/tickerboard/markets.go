package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/urfave/cli/v3"

	"github.com/rickgao/upbit-ticker/internal/lifetime"
	"github.com/rickgao/upbit-ticker/internal/market"
	"github.com/rickgao/upbit-ticker/internal/model"
)

func marketsCommand() *cli.Command {
	return &cli.Command{
		Name:      "markets",
		Usage:     "List the market catalog, or only the given market codes",
		ArgsUsage: "[CODE...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "subscription",
				Usage: "print the all-markets subscription text instead of the table",
			},
		},
		Action: marketsAction,
	}
}

func marketsAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	opts := []market.FetcherOption{
		market.WithFetcherLogger(logger),
		market.WithChannelType(cfg.Subscription.Type),
		market.WithQuote(cfg.Subscription.Quote),
	}
	if cmd.IsSet("ticket") {
		opts = append(opts, market.WithTicket(lifetime.Ticket(cmd.String("ticket"))))
	}
	fetcher := market.NewFetcher(newAPIClient(cfg.API, logger), opts...)

	out := cmd.Root().Writer
	if cmd.Bool("subscription") {
		text, err := fetcher.FetchSubscription(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}

	catalog, err := fetcher.FetchCatalog(ctx)
	if err != nil {
		return err
	}
	markets, err := selectMarkets(catalog, cmd.Args().Slice(), cfg.Subscription.Quote)
	if err != nil {
		return err
	}
	return writeMarketTable(out, markets)
}

// selectMarkets returns the named markets in argument order, or the whole
// catalog filtered by quote when no codes are given.
func selectMarkets(catalog *market.Catalog, codes []string, quote string) ([]model.MarketDescriptor, error) {
	if len(codes) == 0 {
		markets := catalog.Markets()
		if quote == "" {
			return markets, nil
		}
		kept := markets[:0]
		for _, m := range markets {
			if strings.EqualFold(m.Quote(), quote) {
				kept = append(kept, m)
			}
		}
		return kept, nil
	}

	markets := make([]model.MarketDescriptor, 0, len(codes))
	for _, code := range codes {
		m, ok := catalog.Get(strings.ToUpper(code))
		if !ok {
			return nil, fmt.Errorf("unknown market %q", code)
		}
		markets = append(markets, m)
	}
	return markets, nil
}

// writeMarketTable prints markets in aligned columns. Korean names are
// double-width in a terminal, so padding is by display width.
func writeMarketTable(w io.Writer, markets []model.MarketDescriptor) error {
	headers := [3]string{"MARKET", "KOREAN NAME", "ENGLISH NAME"}
	rows := make([][3]string, len(markets))
	var widths [3]int
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for i, m := range markets {
		rows[i] = [3]string{m.Market, m.KoreanName, m.EnglishName}
		for j, cell := range rows[i] {
			widths[j] = max(widths[j], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	writeRow := func(cells [3]string) {
		for j, cell := range cells {
			if j == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[j]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}

	writeRow(headers)
	for _, r := range rows {
		writeRow(r)
	}
	fmt.Fprintf(&b, "%d markets\n", len(markets))

	_, err := io.WriteString(w, b.String())
	return err
}
