package parser

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/addy1947/web-scrapping/internal/models"
)

// Selector chains per field, most specific first. The first selector
// producing non-empty text wins; a chain with no hit leaves the field
// at its sentinel value. Chains cover the 1mg markup variants plus
// generic listing-page fallbacks.
var (
	nameSelectors = []string{
		".DrugHeader__title",
		".DrugHeader__name",
		".ProductInfo__title",
		".ProductInfo__name",
		"h1[class*='DrugHeader']",
		"h1[class*='ProductInfo']",
		"h1[class*='title']",
		"h1[class*='name']",
		"h1",
		".style__product-name",
		".medicine-name",
		".drug-name",
		".product-title",
	}

	manufacturerSelectors = []string{
		".DrugHeader__manufacturer",
		".DrugHeader__brand-name",
		".DrugHeader__company",
		".ProductInfo__manufacturer",
		".ProductInfo__brand",
		".manufacturer",
		".brand-name",
		".company-name",
		".drug-manufacturer",
		".medicine-brand",
		"[class*='manufacturer']",
		"[class*='brand']",
	}

	compositionSelectors = []string{
		".DrugHeader__salt-info",
		".DrugHeader__composition",
		".ProductInfo__composition",
		".ProductInfo__salt",
		".salt-info",
		".composition",
		".medicine-composition",
		".drug-composition",
		".salt-composition",
		"[class*='salt']",
		"[class*='composition']",
	}

	quantitySelectors = []string{
		".DrugHeader__pack-size",
		".DrugHeader__quantity",
		".ProductInfo__pack-size",
		".ProductInfo__quantity",
		".pack-size",
		".quantity",
		".tablet-count",
		".strip-count",
		"[class*='pack']",
		"[class*='quantity']",
	}

	priceContainerSelectors = []string{
		".DrugPriceBox",
		".PriceBox",
		".DrugPrice",
		".PriceBoxPlanOption",
		".price-container",
		".pricing",
		"[class*='price']",
		"[class*='Price']",
	}

	priceSelectors = []string{
		".DrugPriceBox__best-price",
		".DrugPriceBox__price",
		".PriceBox__price",
		".PriceBox__best-price",
		".PriceBoxPlanOption__offerPrice",
		".DrugPrice__price",
		".style__price-tag",
		".price-display",
		".price",
		".best-price",
		".offer-price",
		"[class*='price']",
		"[class*='Price']",
	}

	imageSelectors = []string{
		"img[class*='product-image']",
		"img[class*='ProductImage']",
		"img[class*='medicine-image']",
		"img[class*='drug-image']",
		".ProductImage img",
		".DrugImage img",
		".MedicineImage img",
		".product-photo img",
		".product-image img",
		".medicine-photo img",
		"img[alt*='medicine']",
		"img[alt*='drug']",
		"img[alt*='product']",
	}

	imageSrcAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

	imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}
)

// MedicineParser extracts listing fields from product-page markup.
// Stateless apart from compiled patterns; safe to reuse across pages.
type MedicineParser struct {
	prices   *pricePatterns
	quantity *quantityPatterns
}

func NewMedicineParser() *MedicineParser {
	return &MedicineParser{
		prices:   newPricePatterns(),
		quantity: newQuantityPatterns(),
	}
}

// Parse pulls every target field out of the markup. Each field is
// extracted independently; a missing or malformed field never disturbs
// the others. The only error is markup that cannot be parsed at all.
func (p *MedicineParser) Parse(html string, pageURL string) (models.Fields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.Fields{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	fields := models.Fields{
		Name:         extractField(doc, nameSelectors),
		Manufacturer: extractField(doc, manufacturerSelectors),
		Composition:  extractField(doc, compositionSelectors),
		Quantity:     p.extractQuantity(doc),
		Image:        p.extractImage(doc, pageURL),
	}
	fields.MRP, fields.DiscountedPrice = p.extractPrices(doc)

	return fields, nil
}

// extractField returns the first non-empty trimmed text across the chain.
func extractField(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// extractPrices tries price containers first, which often hold both the
// MRP and the discounted price in one text blob, then falls back to
// individual price elements.
func (p *MedicineParser) extractPrices(doc *goquery.Document) (mrp, discounted *float64) {
	for _, selector := range priceContainerSelectors {
		text := collapseWhitespace(doc.Find(selector).First().Text())
		if text == "" || !containsCurrency(text) {
			continue
		}
		if mrp, discounted = p.prices.parse(text); mrp != nil || discounted != nil {
			return mrp, discounted
		}
	}

	for _, selector := range priceSelectors {
		text := collapseWhitespace(doc.Find(selector).First().Text())
		if text == "" {
			continue
		}
		if mrp, discounted = p.prices.parse(text); mrp != nil || discounted != nil {
			return mrp, discounted
		}
	}

	return nil, nil
}

func (p *MedicineParser) extractQuantity(doc *goquery.Document) string {
	for _, selector := range quantitySelectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text == "" {
			continue
		}
		if q := p.quantity.normalize(text); q != "" {
			return q
		}
	}

	// Pack sizes like "15 tablets in 1 strip" frequently live outside any
	// dedicated element, so scan the whole page text last.
	return p.quantity.findInText(doc.Text())
}

func (p *MedicineParser) extractImage(doc *goquery.Document, pageURL string) string {
	for _, selector := range imageSelectors {
		img := doc.Find(selector).First()
		if img.Length() == 0 {
			continue
		}
		for _, attr := range imageSrcAttrs {
			src, ok := img.Attr(attr)
			if !ok || src == "" {
				continue
			}
			resolved := resolveURL(pageURL, src)
			if isImageURL(resolved) {
				return resolved
			}
		}
	}

	if src := imageFromJSONLD(doc); src != "" {
		return resolveURL(pageURL, src)
	}

	if src, ok := doc.Find("meta[property='og:image']").Attr("content"); ok && src != "" {
		return resolveURL(pageURL, src)
	}

	return ""
}

// imageFromJSONLD pulls the product image out of JSON-LD structured data.
func imageFromJSONLD(doc *goquery.Document) string {
	var found string
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		switch img := data["image"].(type) {
		case string:
			found = img
		case []interface{}:
			if len(img) > 0 {
				if first, ok := img[0].(string); ok {
					found = first
				}
			}
		}
		return found == ""
	})
	return found
}

func resolveURL(base, ref string) string {
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func isImageURL(s string) bool {
	lower := strings.ToLower(s)
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

func containsCurrency(s string) bool {
	return strings.Contains(s, "₹") || strings.Contains(s, "Rs") || strings.Contains(s, "INR")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
