package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/basisbt/config"
	"github.com/alejandrodnm/basisbt/internal/adapters/export"
	"github.com/alejandrodnm/basisbt/internal/adapters/feed"
	"github.com/alejandrodnm/basisbt/internal/adapters/notify"
	"github.com/alejandrodnm/basisbt/internal/adapters/storage"
	"github.com/alejandrodnm/basisbt/internal/backtest"
	"github.com/alejandrodnm/basisbt/internal/domain"
	"github.com/alejandrodnm/basisbt/internal/optimize"
	"github.com/alejandrodnm/basisbt/internal/ports"
)

var errNoFeed = errors.New("no feed: pass -data <csv> or -synthetic")

func main() {
	configPath := flag.String("config", "", "path to config file (optional, defaults apply)")
	dataPath := flag.String("data", "", "path to basis CSV (date,contract_id,spot_price,futures_price,futures_expiry)")
	synthetic := flag.Bool("synthetic", false, "use a generated synthetic feed instead of a CSV")
	days := flag.Int("days", 365, "days of synthetic data to generate")
	seed := flag.Int64("seed", 42, "seed for the synthetic feed")
	optimizeRun := flag.Bool("optimize", false, "run the grid search instead of a single backtest")
	topN := flag.Int("top", 0, "top combinations to show (overrides config)")
	workers := flag.Int("workers", 0, "optimizer workers (0 = NumCPU, overrides config)")
	table := flag.Bool("table", false, "print full tables (default: compact 1-line)")
	exportPath := flag.String("export", "", "write trades (or grid results) to this CSV path")
	noStore := flag.Bool("no-store", false, "skip persisting the run to SQLite")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if *topN > 0 {
		cfg.Optimizer.TopN = *topN
	}
	if *workers > 0 {
		cfg.Optimizer.Workers = *workers
	}

	source, observations, err := loadObservations(*dataPath, *synthetic, *days, *seed)
	if err != nil {
		slog.Error("failed to load observations", "err", err)
		os.Exit(1)
	}

	slog.Info("basisbt starting",
		"source", source,
		"observations", len(observations),
		"optimize", *optimizeRun,
	)

	var store ports.RunStorage
	if !*noStore {
		s, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer s.Close()
		store = s
	}

	notifier := notify.NewConsole(*table)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *optimizeRun {
		runOptimization(ctx, cfg, source, observations, store, notifier, *exportPath)
		return
	}
	runBacktest(ctx, cfg, source, observations, store, notifier, *exportPath)
}

// loadObservations resuelve el feed según los flags: CSV o sintético.
func loadObservations(dataPath string, synthetic bool, days int, seed int64) (string, []domain.BasisObservation, error) {
	ctx := context.Background()
	if synthetic {
		start := time.Now().UTC().AddDate(0, 0, -days)
		obs, err := feed.NewSynthetic(start, days, seed).Observations(ctx)
		return "synthetic", obs, err
	}
	if dataPath == "" {
		return "", nil, errNoFeed
	}
	obs, err := feed.NewCSV(dataPath).Observations(ctx)
	return dataPath, obs, err
}

func runBacktest(ctx context.Context, cfg *config.Config, source string, observations []domain.BasisObservation, store ports.RunStorage, notifier *notify.Console, exportPath string) {
	btCfg := cfg.Backtest()
	res := backtest.Run(observations, btCfg)

	if err := notifier.NotifyBacktest(ctx, res); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if store != nil {
		id, err := store.SaveBacktest(ctx, source, btCfg, res)
		if err != nil {
			slog.Error("failed to persist run", "err", err)
			os.Exit(1)
		}
		slog.Info("run persisted", "id", id)
	}

	if exportPath != "" {
		if err := export.WriteTrades(exportPath, res.Trades); err != nil {
			slog.Error("failed to export trades", "err", err)
			os.Exit(1)
		}
		slog.Info("trades exported", "path", exportPath, "trades", len(res.Trades))
	}
}

func runOptimization(ctx context.Context, cfg *config.Config, source string, observations []domain.BasisObservation, store ports.RunStorage, notifier *notify.Console, exportPath string) {
	btCfg := cfg.Backtest()
	baseline := backtest.Run(observations, btCfg)

	opt := optimize.New(btCfg, cfg.Optimizer.Workers)
	report := opt.Run(ctx, observations, cfg.Grid())

	if err := notifier.NotifyOptimization(ctx, report, baseline, cfg.Optimizer.TopN); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if store != nil {
		id, err := store.SaveOptimization(ctx, source, report, cfg.Optimizer.TopN)
		if err != nil {
			slog.Error("failed to persist run", "err", err)
			os.Exit(1)
		}
		slog.Info("run persisted", "id", id)
	}

	if exportPath != "" {
		if err := export.WriteOptimization(exportPath, report, cfg.Optimizer.TopN); err != nil {
			slog.Error("failed to export grid results", "err", err)
			os.Exit(1)
		}
		slog.Info("grid results exported", "path", exportPath)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
