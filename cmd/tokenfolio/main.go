package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/tokenfolio/internal/config"
	"github.com/rovshanmuradov/tokenfolio/internal/discovery"
	"github.com/rovshanmuradov/tokenfolio/internal/export"
	"github.com/rovshanmuradov/tokenfolio/internal/logger"
	"github.com/rovshanmuradov/tokenfolio/internal/metrics"
	"github.com/rovshanmuradov/tokenfolio/internal/prices"
	"github.com/rovshanmuradov/tokenfolio/internal/pricesource"
	"github.com/rovshanmuradov/tokenfolio/internal/ui"
	"github.com/rovshanmuradov/tokenfolio/internal/watchlist"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tokenfolio: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	once := flag.Bool("once", false, "Print the portfolio once and exit")
	importPath := flag.String("import", "", "Replace the watchlist with a JSON export and exit")
	exportPath := flag.String("export", "", "Write the watchlist as JSON and exit")
	snapshot := flag.String("snapshot", "", "With -once, also write a csv or json portfolio snapshot")
	snapshotHeld := flag.Bool("snapshot-held", false, "Only include tokens with holdings in the snapshot")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// The TUI owns the terminal, so only the headless modes log to stdout.
	appLogger, err := logger.New(&logger.Config{
		LogFile:     cfg.LogPath(),
		MaxSize:     20,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging || *debug,
		Console:     *once && (cfg.DebugLogging || *debug),
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	appLogger.Info("Starting tokenfolio",
		zap.String("config", *configPath),
		zap.String("data_dir", cfg.DataDir),
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("api_key", cfg.MaskedAPIKey()))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := watchlist.NewStore(watchlist.NewFilePersister(cfg.DataDir), appLogger.WithComponent("watchlist"))
	store.Load()

	switch {
	case *importPath != "":
		n, err := importWatchlist(store, *importPath)
		if err != nil {
			appLogger.LogError("Import failed", err, zap.String("path", *importPath))
			return err
		}
		fmt.Printf("Imported %d token(s) from %s\n", n, *importPath)
		return nil
	case *exportPath != "":
		if err := exportWatchlist(store, *exportPath); err != nil {
			appLogger.LogError("Export failed", err, zap.String("path", *exportPath))
			return err
		}
		fmt.Printf("Exported %d token(s) to %s\n", store.Len(), *exportPath)
		return nil
	}

	collector := metrics.NewCollector()
	source := pricesource.NewCoinGecko(pricesource.CoinGeckoConfig{
		BaseURL:    cfg.APIBaseURL,
		APIKey:     cfg.APIKey,
		VsCurrency: cfg.VsCurrency,
		Timeout:    cfg.RequestTimeout,
		Retries:    cfg.Retries,
		Observer:   collector,
	}, appLogger.WithComponent("pricesource"))

	if *once {
		opts := reportOptions{PageSize: cfg.PageSize}
		if *snapshot != "" {
			format, err := export.ParseFormat(*snapshot)
			if err != nil {
				return err
			}
			opts.SnapshotFormat = format
			opts.SnapshotDir = filepath.Join(cfg.DataDir, "exports")
			opts.SnapshotHeld = *snapshotHeld
		}

		end := appLogger.TrackPerformance("report")
		defer end()
		if err := runReport(rootCtx, os.Stdout, store.Tokens(), source, opts, appLogger.WithComponent("report")); err != nil {
			appLogger.LogError("Report failed", err)
			return err
		}
		return nil
	}
	if err := runTUI(rootCtx, cfg, store, source, collector, appLogger); err != nil {
		appLogger.LogError("TUI exited with error", err)
		return err
	}
	return nil
}

// runTUI hosts the interactive dashboard until the user quits or a signal
// arrives
func runTUI(ctx context.Context, cfg *config.Config, store *watchlist.Store, source pricesource.Source, collector *metrics.Collector, appLogger *logger.Logger) error {
	log := appLogger.WithOperation("tui")

	cache := prices.NewCache(ctx, source, log)
	defer cache.Close()

	bus := ui.NewBus(ui.DefaultBusSize, log)
	session := discovery.NewSession(source, store, discovery.Options{
		Debounce: cfg.SearchDebounce,
		OnDebounce: func(tag uint64) {
			bus.Send(ui.DebounceMsg{Tag: tag})
		},
	}, log)

	svc := &ui.Services{
		Ctx:             ctx,
		Store:           store,
		Prices:          cache,
		Discovery:       session,
		Bus:             bus,
		Logger:          log,
		Metrics:         collector,
		PageSize:        cfg.PageSize,
		RefreshInterval: cfg.RefreshInterval,
	}

	program := tea.NewProgram(
		ui.NewSafeModel(NewAppModel(svc), log).WithBus(bus),
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run tui: %w", err)
		}
		return nil
	})

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			if err := collector.Serve(gctx, cfg.MetricsAddr, log); err != nil {
				log.Error("Metrics endpoint stopped", zap.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down TUI")
		program.Quit()
		return nil
	})

	return g.Wait()
}
