package scraper

import (
	"time"

	"github.com/addy1947/web-scrapping/internal/models"
)

// BuildRecord assembles the per-URL result row. Pure function of its
// inputs: the status derivation is deterministic.
//
//   - fetchErr != nil        -> failed, extraction fields all empty
//   - name or both prices missing -> partial
//   - otherwise              -> success
func BuildRecord(url string, fields models.Fields, fetchErr error) models.MedicineRecord {
	rec := models.MedicineRecord{
		URL:       url,
		ScrapedAt: time.Now(),
	}

	if fetchErr != nil {
		rec.Status = models.StatusFailed
		rec.Error = fetchErr.Error()
		return rec
	}

	rec.Name = fields.Name
	rec.MRP = fields.MRP
	rec.DiscountedPrice = fields.DiscountedPrice
	rec.Quantity = fields.Quantity
	rec.Manufacturer = fields.Manufacturer
	rec.Composition = fields.Composition
	rec.Image = fields.Image

	if fields.HasName() && fields.HasPrice() {
		rec.Status = models.StatusSuccess
	} else {
		rec.Status = models.StatusPartial
	}

	return rec
}
