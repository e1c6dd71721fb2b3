package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/addy1947/web-scrapping/internal/fetch"
	"github.com/addy1947/web-scrapping/internal/models"
	"github.com/addy1947/web-scrapping/internal/progress"
	"github.com/addy1947/web-scrapping/internal/ratelimit"
)

// ErrNoURLs is the single batch-level fatal condition, reported before
// any per-URL processing begins.
var ErrNoURLs = errors.New("no URLs to scrape")

// Parser extracts listing fields from raw markup.
type Parser interface {
	Parse(html string, pageURL string) (models.Fields, error)
}

// BatchRunner drives one batch: fetch, extract, and build a record for
// each URL strictly in input order, checkpointing after every record.
// Per-URL failures of any kind become failed records; nothing short of
// cancellation stops the batch.
type BatchRunner struct {
	fetcher fetch.Fetcher
	parser  Parser
	limiter ratelimit.RateLimiter
	sink    progress.Sink
	delay   time.Duration
	logger  *slog.Logger
}

func NewBatchRunner(fetcher fetch.Fetcher, parser Parser, delay time.Duration, sink progress.Sink) *BatchRunner {
	if sink == nil {
		sink = progress.NewMultiSink()
	}
	return &BatchRunner{
		fetcher: fetcher,
		parser:  parser,
		limiter: ratelimit.NewFixedDelayLimiter(delay),
		sink:    sink,
		delay:   delay,
		logger:  slog.Default().With("component", "batch_runner"),
	}
}

// Run processes the URLs sequentially and returns one record per URL, in
// input order. On cancellation it returns the records committed so far
// together with the context error; every committed record has already
// been handed to the progress sink.
func (r *BatchRunner) Run(ctx context.Context, urls []string) ([]models.MedicineRecord, error) {
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	job := models.NewBatchJob(urls, r.delay.Seconds())
	r.logger.Info("starting batch", "batch", job.ID, "urls", len(urls), "delay", r.delay)

	for i, url := range urls {
		if err := r.limiter.Wait(ctx); err != nil {
			return job.Records, err
		}

		rec := r.processURL(ctx, url)
		job.Append(rec)

		if err := r.sink.Persist(ctx, job.ID, job.Snapshot()); err != nil {
			// Checkpointing is best-effort; a sink failure must not
			// abort the batch.
			r.logger.Warn("checkpoint failed", "batch", job.ID, "index", i, "error", err)
		}

		r.logOutcome(job.ID, i, len(urls), rec)
	}

	r.logger.Info("batch complete", "batch", job.ID, "summary", models.Summarize(job.Records))
	return job.Records, nil
}

// processURL produces exactly one record and never lets an error or a
// panic escape.
func (r *BatchRunner) processURL(ctx context.Context, url string) (rec models.MedicineRecord) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("recovered from panic", "url", url, "panic", p)
			rec = BuildRecord(url, models.Fields{}, fmt.Errorf("panic during extraction: %v", p))
		}
	}()

	html, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return BuildRecord(url, models.Fields{}, err)
	}

	fields, err := r.parser.Parse(html, url)
	if err != nil {
		return BuildRecord(url, models.Fields{}, fmt.Errorf("parse markup: %w", err))
	}

	return BuildRecord(url, fields, nil)
}

func (r *BatchRunner) logOutcome(batchID string, index, total int, rec models.MedicineRecord) {
	attrs := []any{
		"batch", batchID,
		"progress", fmt.Sprintf("%d/%d", index+1, total),
		"url", rec.URL,
		"status", rec.Status,
	}
	switch rec.Status {
	case models.StatusSuccess:
		r.logger.Info("scraped listing", append(attrs, "name", rec.Name)...)
	case models.StatusPartial:
		r.logger.Warn("partial extraction", append(attrs, "has_name", rec.Name != "")...)
	case models.StatusFailed:
		r.logger.Error("fetch failed", append(attrs, "error", rec.Error)...)
	}
}
