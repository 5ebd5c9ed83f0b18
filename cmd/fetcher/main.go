package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"nsecli/internal/config"
	"nsecli/internal/infrastructure"
	"nsecli/internal/nse"
)

// Build metadata, stamped via -ldflags at release time.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Add panic recovery at the very start to catch any crashes
	var logger *slog.Logger // Declare logger early for use in panic handler
	defer func() {
		if r := recover(); r != nil {
			// Log the panic with full stack trace
			fmt.Printf("PANIC RECOVERED: %v\n", r)
			fmt.Printf("Stack trace:\n%s\n", debug.Stack())

			// Try to log to file if logger is available
			if logger != nil {
				logger.Error("Fetcher panicked",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
			}
			os.Exit(1)
		}
	}()

	op := flag.String("op", "", "operation: bhavcopy | optionchain | index | corporate")
	dateStr := flag.String("date", "", "trade date (YYYY-MM-DD); blank means yesterday")
	symbol := flag.String("symbol", "", "symbol for the optionchain and corporate operations")
	expiry := flag.String("expiry", "", "optional expiry filter for optionchain, e.g. 30-Jan-2025")
	index := flag.String("index", "NIFTY 50", "index name for the index operation")
	outDir := flag.String("out", "", "directory to save downloads (defaults to data/downloads relative to executable)")
	format := flag.String("format", "xlsx", "derived table format: xlsx | csv")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("fetcher %s (built %s)\n", Version, BuildTime)
		return
	}

	// Initialize paths first to get default directories
	paths, err := config.GetPaths()
	if err != nil {
		fmt.Printf("Error: Failed to initialize paths: %v\n", err)
		os.Exit(1)
	}

	// Ensure all required directories exist
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Printf("Error: Failed to create required directories: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Warning: Failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
		cfg.Logging.Output = "both"
		cfg.Logging.FilePath = paths.GetLogPath("fetcher.log")
	}

	// Flag wins over config; the centralized downloads directory is the
	// final fallback when neither names a destination.
	if *outDir == "" {
		*outDir = cfg.Fetch.OutputDir
	}
	if *outDir == "" {
		*outDir = paths.DownloadsDir
	}

	// Assign to pre-declared logger variable for panic handler
	var err2 error
	logger, err2 = infrastructure.InitializeLogger(cfg.Logging)
	if err2 != nil {
		fmt.Printf("Warning: Failed to initialize logger, using default: %v\n", err2)
		logger = slog.Default()
	}

	slog.Info("NSE Market Data Fetcher " + Version)
	logger.Info("Fetcher starting",
		slog.String("op", *op),
		slog.String("date", *dateStr),
		slog.String("symbol", *symbol),
		slog.String("expiry", *expiry),
		slog.String("index", *index),
		slog.String("output_dir", *outDir),
		slog.String("executable_dir", paths.ExecutableDir))

	if *op == "" {
		fmt.Println("Error: -op is required (bhavcopy | optionchain | index | corporate)")
		logger.Error("No operation specified")
		os.Exit(1)
	}

	if *format != string(nse.FormatXLSX) && *format != string(nse.FormatCSV) {
		fmt.Printf("Error: Invalid -format %q, expected xlsx or csv\n", *format)
		logger.Error("Invalid format flag", slog.String("format", *format))
		os.Exit(1)
	}

	date, err := resolveDate(*dateStr, time.Now())
	if err != nil {
		fmt.Printf("Error: Invalid -date %q: %v\n", *dateStr, err)
		logger.Error("Invalid date flag",
			slog.String("date", *dateStr),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create output directory if it doesn't exist (but don't delete existing files)
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output dir", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client, err := nse.New(*outDir, logger,
		nse.WithBaseURL(cfg.Fetch.BaseURL),
		nse.WithArchiveURL(cfg.Fetch.ArchiveURL),
		nse.WithTimeout(cfg.Fetch.Timeout),
		nse.WithFormat(nse.Format(*format)))
	if err != nil {
		logger.Error("failed to create NSE client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	start := time.Now()
	err = runOperation(context.Background(), client, *op, fetchParams{
		date:   date,
		symbol: *symbol,
		expiry: *expiry,
		index:  *index,
	}, logger)
	if err != nil {
		// Empty payloads are expected on holidays and quiet symbols;
		// report them and exit clean.
		if nse.KindFor(err) == nse.KindEmpty {
			slog.Info("No records available: " + err.Error())
			logger.Warn("Operation returned no records",
				slog.String("op", *op),
				slog.String("error", err.Error()))
			return
		}
		slog.Error("Operation failed: " + err.Error())
		logger.Error("Operation failed",
			slog.String("op", *op),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	slog.Info("Done in " + elapsed.String())
	logger.Info("Operation complete",
		slog.String("op", *op),
		slog.Duration("duration", elapsed))
}

// fetchParams carries the per-operation arguments collected from flags.
type fetchParams struct {
	date   time.Time
	symbol string
	expiry string
	index  string
}

// resolveDate parses a -date flag value. Blank means yesterday: NSE
// publishes each session's files after market close, so the prior day
// is the most recent complete one.
func resolveDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.AddDate(0, 0, -1), nil
	}
	return time.Parse("2006-01-02", s)
}

// runOperation dispatches a single fetch operation on the client.
// Symbol-scoped operations validate their arguments here so a missing
// -symbol fails before any request goes out.
func runOperation(ctx context.Context, client *nse.Client, op string, p fetchParams, logger *slog.Logger) error {
	switch op {
	case "bhavcopy":
		path, err := client.DownloadBhavcopy(ctx, p.date)
		if err != nil {
			return err
		}
		logger.Info("Bhavcopy downloaded", slog.String("path", path))
	case "optionchain":
		if p.symbol == "" {
			return fmt.Errorf("optionchain requires -symbol")
		}
		rows, err := client.DownloadOptionChain(ctx, p.symbol, p.expiry)
		if err != nil {
			return err
		}
		logger.Info("Option chain downloaded",
			slog.String("symbol", p.symbol),
			slog.Int("rows", len(rows)))
	case "index":
		table, err := client.DownloadIndexData(ctx, p.index)
		if err != nil {
			return err
		}
		logger.Info("Index data downloaded",
			slog.String("index", p.index),
			slog.Int("rows", len(table.Rows)))
	case "corporate":
		if p.symbol == "" {
			return fmt.Errorf("corporate requires -symbol")
		}
		table, err := client.DownloadCorporateActions(ctx, p.symbol)
		if err != nil {
			return err
		}
		logger.Info("Corporate actions downloaded",
			slog.String("symbol", p.symbol),
			slog.Int("rows", len(table.Rows)))
	default:
		return fmt.Errorf("unknown operation %q, expected bhavcopy, optionchain, index or corporate", op)
	}
	return nil
}
