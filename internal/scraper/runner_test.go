package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addy1947/web-scrapping/internal/fetch"
	"github.com/addy1947/web-scrapping/internal/models"
	"github.com/addy1947/web-scrapping/internal/parser"
	"github.com/addy1947/web-scrapping/internal/progress"
)

// stubFetcher serves canned markup per URL; URLs without an entry fail
// with a FetchError the way an exhausted HTTPFetcher would.
type stubFetcher struct {
	pages map[string]string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	if html, ok := s.pages[url]; ok {
		return html, nil
	}
	return "", &fetch.FetchError{URL: url, Attempts: 2, Cause: context.DeadlineExceeded}
}

func (s *stubFetcher) Close() error { return nil }

// panicParser simulates an extraction bug on a specific URL.
type panicParser struct {
	inner   Parser
	panicOn string
}

func (p *panicParser) Parse(html string, pageURL string) (models.Fields, error) {
	if pageURL == p.panicOn {
		panic("selector bug")
	}
	return p.inner.Parse(html, pageURL)
}

// recordingSink captures every checkpoint payload length.
type recordingSink struct {
	batchIDs []string
	lengths  []int
}

func (r *recordingSink) Persist(_ context.Context, batchID string, records []models.MedicineRecord) error {
	r.batchIDs = append(r.batchIDs, batchID)
	r.lengths = append(r.lengths, len(records))
	return nil
}

const doloPage = `<h1 class="DrugHeader__title">Dolo 650</h1>
<div class="DrugPriceBox">MRP ₹30 ₹27 (10% off)</div>`

const namelessPage = `<div class="DrugPriceBox">MRP ₹12</div>`

const pricelessPage = `<h1 class="DrugHeader__title">Crocin Advance</h1>`

func newTestRunner(fetcher fetch.Fetcher, sink progress.Sink) *BatchRunner {
	return NewBatchRunner(fetcher, parser.NewMedicineParser(), 0, sink)
}

func TestRunProducesOneRecordPerURLInOrder(t *testing.T) {
	urls := []string{
		"https://site/drug/a",
		"https://site/drug/b",
		"https://site/drug/c",
	}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://site/drug/a": doloPage,
		"https://site/drug/c": pricelessPage,
	}}

	runner := newTestRunner(fetcher, nil)
	records, err := runner.Run(context.Background(), urls)
	require.NoError(t, err)

	require.Len(t, records, len(urls))
	for i, url := range urls {
		assert.Equal(t, url, records[i].URL)
	}

	assert.Equal(t, models.StatusSuccess, records[0].Status)
	assert.Equal(t, models.StatusFailed, records[1].Status)
	assert.Equal(t, models.StatusPartial, records[2].Status)
}

func TestRunEndToEndScenario(t *testing.T) {
	// URL a returns full markup; URL b times out. The batch still yields
	// exactly two records in input order.
	urls := []string{"https://site/drug/a", "https://site/drug/b"}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://site/drug/a": doloPage,
	}}

	runner := newTestRunner(fetcher, nil)
	records, err := runner.Run(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, records, 2)

	a := records[0]
	assert.Equal(t, models.StatusSuccess, a.Status)
	assert.Equal(t, "Dolo 650", a.Name)
	require.NotNil(t, a.MRP)
	assert.Equal(t, 30.0, *a.MRP)
	require.NotNil(t, a.DiscountedPrice)
	assert.Equal(t, 27.0, *a.DiscountedPrice)

	b := records[1]
	assert.Equal(t, models.StatusFailed, b.Status)
	assert.Contains(t, b.Error, "deadline exceeded")
	assert.Empty(t, b.Name)
	assert.Nil(t, b.MRP)
	assert.Nil(t, b.DiscountedPrice)
}

func TestRunFailedFetchDoesNotAbortBatch(t *testing.T) {
	urls := []string{"https://site/drug/x", "https://site/drug/a"}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://site/drug/a": doloPage,
	}}

	runner := newTestRunner(fetcher, nil)
	records, err := runner.Run(context.Background(), urls)
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, records[0].Status)
	assert.Equal(t, models.StatusSuccess, records[1].Status)
}

func TestRunMissingPriceYieldsPartialNotError(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://site/drug/p": pricelessPage,
	}}

	runner := newTestRunner(fetcher, nil)
	records, err := runner.Run(context.Background(), []string{"https://site/drug/p"})
	require.NoError(t, err)

	rec := records[0]
	assert.Equal(t, models.StatusPartial, rec.Status)
	assert.Equal(t, "Crocin Advance", rec.Name)
	assert.Nil(t, rec.MRP)
	assert.Nil(t, rec.DiscountedPrice)
	assert.Empty(t, rec.Error)
}

func TestRunMissingNameYieldsPartial(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://site/drug/n": namelessPage,
	}}

	runner := newTestRunner(fetcher, nil)
	records, err := runner.Run(context.Background(), []string{"https://site/drug/n"})
	require.NoError(t, err)

	rec := records[0]
	assert.Equal(t, models.StatusPartial, rec.Status)
	assert.Empty(t, rec.Name)
	require.NotNil(t, rec.MRP)
	assert.Equal(t, 12.0, *rec.MRP)
}

func TestRunInvokesSinkAfterEveryRecord(t *testing.T) {
	urls := []string{"https://site/drug/a", "https://site/drug/b", "https://site/drug/c"}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://site/drug/a": doloPage,
		"https://site/drug/b": doloPage,
		"https://site/drug/c": doloPage,
	}}
	sink := &recordingSink{}

	runner := newTestRunner(fetcher, sink)
	_, err := runner.Run(context.Background(), urls)
	require.NoError(t, err)

	// One call per URL, cumulative payloads in order.
	assert.Equal(t, []int{1, 2, 3}, sink.lengths)
	require.Len(t, sink.batchIDs, 3)
	assert.Equal(t, sink.batchIDs[0], sink.batchIDs[1])
	assert.Equal(t, sink.batchIDs[1], sink.batchIDs[2])
}

func TestRunEmptyURLListIsFatal(t *testing.T) {
	runner := newTestRunner(&stubFetcher{}, nil)

	records, err := runner.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoURLs)
	assert.Empty(t, records)
}

func TestRunRecoversFromParserPanic(t *testing.T) {
	urls := []string{"https://site/drug/a", "https://site/drug/boom", "https://site/drug/c"}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://site/drug/a":    doloPage,
		"https://site/drug/boom": doloPage,
		"https://site/drug/c":    doloPage,
	}}
	p := &panicParser{inner: parser.NewMedicineParser(), panicOn: "https://site/drug/boom"}

	runner := NewBatchRunner(fetcher, p, 0, nil)
	records, err := runner.Run(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, models.StatusSuccess, records[0].Status)
	assert.Equal(t, models.StatusFailed, records[1].Status)
	assert.Contains(t, records[1].Error, "panic")
	assert.Equal(t, models.StatusSuccess, records[2].Status)
}

func TestRunStopsBetweenURLsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(&stubFetcher{}, nil)
	records, err := runner.Run(ctx, []string{"https://site/drug/a"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, records)
}

func TestRunDeterministicForIdenticalMarkup(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://site/drug/a": doloPage,
	}}
	runner := newTestRunner(fetcher, nil)

	first, err := runner.Run(context.Background(), []string{"https://site/drug/a"})
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), []string{"https://site/drug/a"})
	require.NoError(t, err)

	// Identical markup yields identical extraction; only timestamps differ.
	first[0].ScrapedAt = second[0].ScrapedAt
	assert.Equal(t, first[0], second[0])
}
