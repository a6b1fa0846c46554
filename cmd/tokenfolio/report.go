package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/rovshanmuradov/tokenfolio/internal/export"
	"github.com/rovshanmuradov/tokenfolio/internal/portfolio"
	"github.com/rovshanmuradov/tokenfolio/internal/prices"
	"github.com/rovshanmuradov/tokenfolio/internal/pricesource"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/component"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const reportTrendingLimit = 7

type reportOptions struct {
	PageSize       int
	// SnapshotFormat, when set, also writes the priced portfolio to
	// SnapshotDir.
	SnapshotFormat export.Format
	SnapshotDir    string
	SnapshotHeld   bool
}

// runReport fetches prices and the trending list concurrently and prints a
// one-shot portfolio report. A failed price fetch is reported in the output
// rather than returned.
func runReport(ctx context.Context, w io.Writer, tokens []domain.Token, source pricesource.Source, opts reportOptions, logger *zap.Logger) error {
	ids := make([]string, 0, len(tokens))
	for _, t := range tokens {
		ids = append(ids, t.ID)
	}

	cache := prices.NewCache(ctx, source, logger)
	defer cache.Close()

	var trending []domain.SearchResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		req := cache.Sync(ids)
		if req == nil {
			return nil
		}
		if outcome := cache.Apply(cache.Fetch(req)); outcome == prices.Failed {
			// Print what is known; missing prices count as zero.
			logger.Warn("Report prices unavailable", zap.String("error", cache.Err()))
		}
		return nil
	})

	g.Go(func() error {
		results, err := source.Trending(gctx)
		if err != nil {
			// The report is still useful without the trending list.
			logger.Warn("Trending fetch failed", zap.Error(err))
			return nil
		}
		trending = results
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	state := cache.State()
	writeReport(w, tokens, state, trending, opts.PageSize)
	if state.Err != "" {
		fmt.Fprintf(w, "\n%s\n", prices.Notification(state.Err))
	}

	if opts.SnapshotFormat == "" {
		return nil
	}
	path, err := export.NewSnapshotExporter(logger).Export(tokens, state.Snapshots, state.LastUpdated, export.Options{
		Format:    opts.SnapshotFormat,
		OutputDir: opts.SnapshotDir,
		OnlyHeld:  opts.SnapshotHeld,
	})
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	fmt.Fprintf(w, "\nSnapshot written to %s\n", path)
	return nil
}

func writeReport(w io.Writer, tokens []domain.Token, state prices.State, trending []domain.SearchResult, pageSize int) {
	summary := portfolio.Aggregate(tokens, state.Snapshots)

	fmt.Fprintf(w, "Portfolio Total: %s\n", portfolio.FormatCurrency(summary.TotalValue))
	if !state.LastUpdated.IsZero() {
		fmt.Fprintf(w, "Last updated: %s\n", state.LastUpdated.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(w)

	if len(summary.Breakdown) > 0 {
		fmt.Fprintln(w, "Breakdown")
		for _, item := range summary.Breakdown {
			fmt.Fprintf(w, "  %-8s %7s  %s\n", item.Symbol, portfolio.FormatShare(item.Percentage), portfolio.FormatCurrency(item.Value))
		}
		fmt.Fprintln(w)
	}

	if len(tokens) == 0 {
		fmt.Fprintln(w, "Your watchlist is empty.")
	} else {
		table := component.NewTable().
			SetSelectable(false).
			SetShowBorder(false).
			AddColumn("Token", 24, lipgloss.Left).
			AddColumn("Price", 14, lipgloss.Right).
			AddColumn("24h %", 9, lipgloss.Right).
			AddColumn("7d", 14, lipgloss.Left).
			AddColumn("Holdings", 12, lipgloss.Right).
			AddColumn("Value", 16, lipgloss.Right)

		for page := 1; page <= portfolio.TotalPages(len(tokens), pageSize); page++ {
			pg := portfolio.Project(tokens, state.Snapshots, page, pageSize)
			rows := make([]component.TableRow, 0, len(pg.Rows))
			for _, r := range pg.Rows {
				rows = append(rows, component.TableRow{Data: []string{
					fmt.Sprintf("%s (%s)", r.Name, r.DisplaySymbol()),
					portfolio.FormatPrice(r.CurrentPrice),
					portfolio.FormatChange(r.Change24hPct),
					component.NewSparkline(14).SetData(r.Sparkline7d).Plain(),
					portfolio.FormatHoldings(r.Holdings),
					portfolio.FormatCurrency(r.Value),
				}})
			}
			table.SetRows(rows)
			fmt.Fprintln(w, table.View())
			fmt.Fprintf(w, "Page %d of %d\n", pg.Page, pg.TotalPages)
		}
	}

	if len(trending) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Trending")
		limit := min(len(trending), reportTrendingLimit)
		names := make([]string, 0, limit)
		for _, t := range trending[:limit] {
			names = append(names, fmt.Sprintf("%s (%s)", t.Name, strings.ToUpper(t.Symbol)))
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(names, ", "))
	}
}
