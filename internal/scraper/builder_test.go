package scraper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/addy1947/web-scrapping/internal/models"
)

func fptr(v float64) *float64 { return &v }

func TestBuildRecordStatusDerivation(t *testing.T) {
	tests := []struct {
		name     string
		fields   models.Fields
		fetchErr error
		want     models.Status
	}{
		{
			name:     "fetch error means failed",
			fields:   models.Fields{Name: "ignored"},
			fetchErr: errors.New("timeout"),
			want:     models.StatusFailed,
		},
		{
			name:   "name and mrp means success",
			fields: models.Fields{Name: "Dolo 650", MRP: fptr(30)},
			want:   models.StatusSuccess,
		},
		{
			name:   "name and discounted price means success",
			fields: models.Fields{Name: "Dolo 650", DiscountedPrice: fptr(27)},
			want:   models.StatusSuccess,
		},
		{
			name:   "name without any price means partial",
			fields: models.Fields{Name: "Dolo 650"},
			want:   models.StatusPartial,
		},
		{
			name:   "price without name means partial",
			fields: models.Fields{MRP: fptr(30)},
			want:   models.StatusPartial,
		},
		{
			name:   "nothing extracted means partial",
			fields: models.Fields{},
			want:   models.StatusPartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := BuildRecord("https://site/drug/a", tt.fields, tt.fetchErr)
			assert.Equal(t, tt.want, rec.Status)
			assert.Equal(t, "https://site/drug/a", rec.URL)
		})
	}
}

func TestBuildRecordFailedHasEmptyFields(t *testing.T) {
	rec := BuildRecord("https://site/drug/b", models.Fields{Name: "should not leak", MRP: fptr(30)}, errors.New("timeout"))

	assert.Equal(t, models.StatusFailed, rec.Status)
	assert.Equal(t, "timeout", rec.Error)
	assert.Empty(t, rec.Name)
	assert.Nil(t, rec.MRP)
	assert.Nil(t, rec.DiscountedPrice)
	assert.Empty(t, rec.Quantity)
	assert.Empty(t, rec.Manufacturer)
	assert.Empty(t, rec.Composition)
	assert.Empty(t, rec.Image)
}

func TestBuildRecordCarriesExtractedFields(t *testing.T) {
	fields := models.Fields{
		Name:            "Dolo 650",
		MRP:             fptr(30),
		DiscountedPrice: fptr(27),
		Quantity:        "15 tablets",
		Manufacturer:    "Micro Labs Ltd",
		Composition:     "Paracetamol (650mg)",
		Image:           "https://cdn.site/dolo.jpg",
	}

	rec := BuildRecord("https://site/drug/a", fields, nil)

	assert.Equal(t, models.StatusSuccess, rec.Status)
	assert.Equal(t, "Dolo 650", rec.Name)
	assert.Equal(t, 30.0, *rec.MRP)
	assert.Equal(t, 27.0, *rec.DiscountedPrice)
	assert.Equal(t, "15 tablets", rec.Quantity)
	assert.Equal(t, "Micro Labs Ltd", rec.Manufacturer)
	assert.Equal(t, "Paracetamol (650mg)", rec.Composition)
	assert.Equal(t, "https://cdn.site/dolo.jpg", rec.Image)
	assert.Empty(t, rec.Error)
}
