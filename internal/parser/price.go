package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Numeric amount with optional thousands separators, e.g. "1,234.50".
const amount = `(\d+(?:,\d+)*(?:\.\d+)?)`

type pricePatterns struct {
	mrp        []*regexp.Regexp
	discounted []*regexp.Regexp
	any        *regexp.Regexp
}

func newPricePatterns() *pricePatterns {
	return &pricePatterns{
		mrp: []*regexp.Regexp{
			regexp.MustCompile(`(?i)MRP\s*₹\s*` + amount),
			regexp.MustCompile(`(?i)MRP\s*Rs\.?\s*` + amount),
			regexp.MustCompile(`(?i)Maximum Retail Price\s*₹\s*` + amount),
		},
		discounted: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Discounted Price:?\s*₹?\s*` + amount),
			regexp.MustCompile(`(?i)Offer Price:?\s*₹?\s*` + amount),
			regexp.MustCompile(`(?i)Best Price:?\s*₹?\s*` + amount),
			regexp.MustCompile(`(?i)Final Price:?\s*₹?\s*` + amount),
			regexp.MustCompile(`(?i)₹\s*` + amount + `\s*\(.*?off.*?\)`),
			regexp.MustCompile(`(?i)₹\s*` + amount + `\s*after.*?discount`),
		},
		any: regexp.MustCompile(`(?i)(?:₹|Rs\.?|INR)\s*` + amount),
	}
}

// parse extracts the MRP and the discounted price from currency-formatted
// text. Text with no parsable amount yields two nils; when only one of
// the two is present it is mirrored into the other, matching how listing
// pages show a single undiscounted price.
func (p *pricePatterns) parse(text string) (mrp, discounted *float64) {
	for _, pattern := range p.mrp {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if v, ok := parseAmount(m[1]); ok {
				mrp = &v
				break
			}
		}
	}

	for _, pattern := range p.discounted {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if v, ok := parseAmount(m[1]); ok {
				discounted = &v
				break
			}
		}
	}

	// Blobs like "MRP₹55 ₹50.1" list the MRP first and the effective
	// price second without any label on the second amount.
	if strings.Contains(text, "MRP") && (mrp == nil || discounted == nil) {
		all := p.any.FindAllStringSubmatch(text, -1)
		if len(all) >= 2 {
			if mrp == nil {
				if v, ok := parseAmount(all[0][1]); ok {
					mrp = &v
				}
			}
			if discounted == nil {
				if v, ok := parseAmount(all[1][1]); ok {
					discounted = &v
				}
			}
		}
	}

	if mrp == nil && discounted == nil {
		if m := p.any.FindStringSubmatch(text); m != nil {
			if v, ok := parseAmount(m[1]); ok {
				mrp = &v
			}
		}
	}

	if mrp == nil && discounted != nil {
		v := *discounted
		mrp = &v
	}
	if discounted == nil && mrp != nil {
		v := *mrp
		discounted = &v
	}

	return mrp, discounted
}

// parseAmount coerces currency-formatted digits into a float. Returns
// false for anything that does not parse, so the caller treats the
// field as not found instead of failing.
func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type quantityPatterns struct {
	unit     *regexp.Regexp
	hasDigit *regexp.Regexp
	text     []*regexp.Regexp
}

func newQuantityPatterns() *quantityPatterns {
	return &quantityPatterns{
		unit:     regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:tablets?|tabs?|strips?|capsules?|pills?)`),
		hasDigit: regexp.MustCompile(`\d`),
		text: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*tablets?\s*in\s*\d+\s*strips?`),
			regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*tablets?`),
			regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*tabs?`),
			regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*strips?`),
			regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*capsules?`),
			regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*pills?`),
			regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*pieces?`),
		},
	}
}

// normalize turns pack-size element text into a canonical "N tablets"
// form where a count+unit pattern is present; text with any digit at all
// is kept verbatim as a weaker signal.
func (q *quantityPatterns) normalize(text string) string {
	if m := q.unit.FindStringSubmatch(text); m != nil {
		return strings.TrimSuffix(m[1], ".0") + " tablets"
	}
	if q.hasDigit.MatchString(text) {
		return text
	}
	return ""
}

// findInText scans free-form page text for pack-size patterns.
func (q *quantityPatterns) findInText(text string) string {
	for _, pattern := range q.text {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSuffix(m[1], ".0") + " tablets"
		}
	}
	return ""
}
