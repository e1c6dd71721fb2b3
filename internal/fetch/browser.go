package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BrowserFetcher renders pages in headless Chromium before handing the
// markup to the extractor. Listing sites that ship their product data
// through client-side rendering return a near-empty shell to plain HTTP;
// this fetcher is the fallback for those.
type BrowserFetcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	opts    Options
	logger  *slog.Logger
}

func NewBrowserFetcher(opts Options) (*BrowserFetcher, error) {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: &opts.UserAgent,
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": "en-US,en;q=0.5",
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	return &BrowserFetcher{
		pw:      pw,
		browser: browser,
		bctx:    bctx,
		opts:    opts,
		logger:  slog.Default().With("component", "browser_fetcher"),
	}, nil
}

// Fetch navigates to the URL with bounded retries and returns the
// rendered page content. Matches HTTPFetcher's contract: exhausted
// retries surface as a *FetchError.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	page, err := f.bctx.NewPage()
	if err != nil {
		return "", &FetchError{URL: url, Attempts: 0, Cause: fmt.Errorf("failed to create page: %w", err)}
	}
	defer page.Close()

	var lastErr error
	for attempt := 1; attempt <= f.opts.MaxRetries; attempt++ {
		if attempt > 1 {
			f.logger.Info("retrying navigation", "url", url, "attempt", attempt)
			select {
			case <-ctx.Done():
				return "", &FetchError{URL: url, Attempts: attempt - 1, Cause: ctx.Err()}
			case <-time.After(f.opts.RetryDelay):
			}
		}

		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(f.opts.Timeout.Milliseconds())),
		})
		if err != nil {
			lastErr = err
			f.logger.Warn("navigation failed", "url", url, "attempt", attempt, "error", err)
			continue
		}

		content, err := page.Content()
		if err != nil {
			lastErr = fmt.Errorf("failed to read page content: %w", err)
			continue
		}
		return content, nil
	}

	return "", &FetchError{URL: url, Attempts: f.opts.MaxRetries, Cause: lastErr}
}

func (f *BrowserFetcher) Close() error {
	var errs []error

	if f.bctx != nil {
		if err := f.bctx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}
	if f.browser != nil {
		if err := f.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}
	if f.pw != nil {
		if err := f.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}
