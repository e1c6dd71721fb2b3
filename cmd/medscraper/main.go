package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/addy1947/web-scrapping/internal/api"
	"github.com/addy1947/web-scrapping/internal/config"
	"github.com/addy1947/web-scrapping/internal/database"
	"github.com/addy1947/web-scrapping/internal/export"
	"github.com/addy1947/web-scrapping/internal/fetch"
	"github.com/addy1947/web-scrapping/internal/models"
	"github.com/addy1947/web-scrapping/internal/parser"
	"github.com/addy1947/web-scrapping/internal/progress"
	"github.com/addy1947/web-scrapping/internal/scraper"
)

func main() {
	var (
		urlList    = flag.String("urls", "", "Comma-separated list of medicine page URLs to scrape")
		inputFile  = flag.String("file", "", "File containing URLs (one per line, # for comments)")
		batchFile  = flag.String("batch", "", "TOML batch file with urls, delay_seconds, save_progress, output")
		delayFlag  = flag.Float64("delay", -1, "Delay between requests in seconds (overrides config)")
		output     = flag.String("output", "", "Output file base path (writes .csv, .json, .xlsx)")
		noProgress = flag.Bool("no-progress", false, "Disable incremental progress persistence")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	setupLogger(cfg.Logging)
	logger := slog.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	urls, batchCfg, err := loadBatch(*urlList, *inputFile, *batchFile)
	if err != nil {
		logger.Error("failed to load batch", "error", err)
		os.Exit(1)
	}

	delay := cfg.Scraper.RequestDelay
	if batchCfg != nil {
		delay = time.Duration(batchCfg.DelaySeconds * float64(time.Second))
	}
	if *delayFlag >= 0 {
		delay = time.Duration(*delayFlag * float64(time.Second))
	}

	saveProgress := cfg.Progress.Enabled && !*noProgress
	if batchCfg != nil && !batchCfg.SaveProgress {
		saveProgress = false
	}

	outputBase := "medicines_scraped.csv"
	if batchCfg != nil && batchCfg.Output != "" {
		outputBase = batchCfg.Output
	}
	if *output != "" {
		outputBase = *output
	}

	fetcher, err := buildFetcher(cfg.Scraper)
	if err != nil {
		logger.Error("failed to initialize fetcher", "error", err)
		os.Exit(1)
	}
	defer fetcher.Close()

	tracker := progress.NewTracker(len(urls))
	sinks := []progress.Sink{tracker}

	if saveProgress {
		sinks = append(sinks, progress.NewFileSink(cfg.Progress.File))

		if cfg.Progress.RedisAddr != "" {
			redisSink := progress.NewRedisSink(cfg.Progress.RedisAddr, cfg.Progress.RedisTTL)
			defer redisSink.Close()
			sinks = append(sinks, redisSink)
		}

		if cfg.Database.Enabled {
			store, err := database.New(ctx, database.Config{
				Host:     cfg.Database.Host,
				Port:     cfg.Database.Port,
				User:     cfg.Database.User,
				Password: cfg.Database.Password,
				Database: cfg.Database.DBName,
				SSLMode:  cfg.Database.SSLMode,
			})
			if err != nil {
				logger.Error("failed to connect to database", "error", err)
				os.Exit(1)
			}
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				logger.Error("failed to migrate database", "error", err)
				os.Exit(1)
			}
			sinks = append(sinks, store)
		}
	}

	if cfg.API.Enabled {
		server := api.NewServer(tracker)
		go func() {
			if err := server.ListenAndServe(cfg.API.Addr); err != nil {
				logger.Error("progress API stopped", "error", err)
			}
		}()
	}

	runner := scraper.NewBatchRunner(fetcher, parser.NewMedicineParser(), delay, progress.NewMultiSink(sinks...))

	records, err := runner.Run(ctx, urls)
	if err != nil && len(records) == 0 {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}
	if err != nil {
		logger.Warn("batch interrupted", "error", err, "committed", len(records))
	}

	printSummary(records)

	if err := export.WriteAll(outputBase, records); err != nil {
		logger.Error("failed to export results", "error", err)
		os.Exit(1)
	}
	logger.Info("results exported", "base", strings.TrimSuffix(outputBase, ".csv"))
}

func setupLogger(cfg config.LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
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
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadBatch assembles the URL list from flags, an input file, or a TOML
// batch file, preserving the given order.
func loadBatch(urlList, inputFile, batchFile string) ([]string, *config.BatchFile, error) {
	var urls []string
	var batchCfg *config.BatchFile

	if batchFile != "" {
		bf, err := config.LoadBatchFile(batchFile)
		if err != nil {
			return nil, nil, err
		}
		batchCfg = bf
		urls = append(urls, bf.URLs...)
	}

	if urlList != "" {
		for _, u := range strings.Split(urlList, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
	}

	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read input file: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				urls = append(urls, line)
			}
		}
	}

	if len(urls) == 0 {
		return nil, nil, fmt.Errorf("no URLs given; use -urls, -file, or -batch")
	}

	return urls, batchCfg, nil
}

func buildFetcher(cfg config.ScraperConfig) (fetch.Fetcher, error) {
	opts := fetch.Options{
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		UserAgent:  cfg.UserAgent,
	}
	if cfg.UseBrowser {
		return fetch.NewBrowserFetcher(opts)
	}
	return fetch.NewHTTPFetcher(opts), nil
}

func printSummary(records []models.MedicineRecord) {
	summary := models.Summarize(records)

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("SCRAPING SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Total URLs processed: %d\n", summary.Total)
	fmt.Printf("Successful: %d\n", summary.Success)
	fmt.Printf("Partial: %d\n", summary.Partial)
	fmt.Printf("Failed: %d\n", summary.Failed)

	if summary.Failed > 0 {
		fmt.Println("\nFailed URLs:")
		for _, rec := range records {
			if rec.Status == models.StatusFailed {
				fmt.Printf("  - %s: %s\n", rec.URL, rec.Error)
			}
		}
	}
	fmt.Println(strings.Repeat("=", 50))
}
