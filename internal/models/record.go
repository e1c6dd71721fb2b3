package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status classifies the outcome of scraping a single listing URL.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// NotFound is the sentinel written into tabular output for fields the
// extractor could not locate. Distinguished from a parsed empty string,
// which never survives extraction.
const NotFound = "N/A"

// Fields holds the raw per-field extraction result for one page.
// A zero value means the field was not found; price pointers are nil
// when no parsable price text was located.
type Fields struct {
	Name            string
	MRP             *float64
	DiscountedPrice *float64
	Quantity        string
	Manufacturer    string
	Composition     string
	Image           string
}

// HasName reports whether the mandatory name field was recovered.
func (f Fields) HasName() bool {
	return f.Name != ""
}

// HasPrice reports whether at least one of the two price fields was recovered.
func (f Fields) HasPrice() bool {
	return f.MRP != nil || f.DiscountedPrice != nil
}

// MedicineRecord is the per-URL result row. Every record carries the same
// field set so the batch output is uniformly tabular.
type MedicineRecord struct {
	URL             string    `json:"url"`
	Status          Status    `json:"status"`
	Name            string    `json:"name,omitempty"`
	MRP             *float64  `json:"mrp,omitempty"`
	DiscountedPrice *float64  `json:"discounted_price,omitempty"`
	Quantity        string    `json:"quantity,omitempty"`
	Manufacturer    string    `json:"manufacturer,omitempty"`
	Composition     string    `json:"composition,omitempty"`
	Image           string    `json:"image,omitempty"`
	Error           string    `json:"error,omitempty"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// Header returns the column names for the tabular view, in row order.
func Header() []string {
	return []string{
		"url", "status", "name", "mrp", "discounted_price",
		"quantity", "manufacturer", "composition", "image", "error",
	}
}

// Row renders the record as one tabular row matching Header. Absent
// fields are rendered as the NotFound sentinel.
func (r MedicineRecord) Row() []string {
	return []string{
		r.URL,
		string(r.Status),
		orNotFound(r.Name),
		priceString(r.MRP),
		priceString(r.DiscountedPrice),
		orNotFound(r.Quantity),
		orNotFound(r.Manufacturer),
		orNotFound(r.Composition),
		orNotFound(r.Image),
		r.Error,
	}
}

func orNotFound(s string) string {
	if s == "" {
		return NotFound
	}
	return s
}

func priceString(p *float64) string {
	if p == nil {
		return NotFound
	}
	return fmt.Sprintf("%.2f", *p)
}

// BatchJob tracks one scraping batch from start to completion. The runner
// is the only mutator; everything else gets a read-only view of Records.
type BatchJob struct {
	ID           string           `json:"id"`
	URLs         []string         `json:"urls"`
	DelaySeconds float64          `json:"delay_seconds"`
	Records      []MedicineRecord `json:"records"`
	Checkpoint   int              `json:"checkpoint"`
	StartedAt    time.Time        `json:"started_at"`
}

func NewBatchJob(urls []string, delaySeconds float64) *BatchJob {
	return &BatchJob{
		ID:           uuid.NewString(),
		URLs:         urls,
		DelaySeconds: delaySeconds,
		Records:      make([]MedicineRecord, 0, len(urls)),
		Checkpoint:   -1,
		StartedAt:    time.Now(),
	}
}

// Append commits one record and advances the checkpoint to its index.
func (b *BatchJob) Append(rec MedicineRecord) {
	b.Records = append(b.Records, rec)
	b.Checkpoint = len(b.Records) - 1
}

// Complete reports whether every URL has a corresponding record.
func (b *BatchJob) Complete() bool {
	return len(b.Records) == len(b.URLs)
}

// Snapshot returns a copy of the records committed so far, safe to hand
// to progress sinks without exposing the runner's backing slice.
func (b *BatchJob) Snapshot() []MedicineRecord {
	out := make([]MedicineRecord, len(b.Records))
	copy(out, b.Records)
	return out
}

// Summary aggregates outcome counts for reporting.
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Partial int `json:"partial"`
	Failed  int `json:"failed"`
}

func Summarize(records []MedicineRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case StatusSuccess:
			s.Success++
		case StatusPartial:
			s.Partial++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
