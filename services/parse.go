package services

import (
	"regexp"
	"strconv"
	"strings"

	"funda-scraper/models"
)

// Field texts on funda mix Dutch and English depending on the visitor's
// locale, so every pattern carries both forms. All parsers recover from
// malformed input with a zero value; filtering on zeros happens once, in the
// normalizer, not at the call sites.
var (
	// RoomsPattern matches "4 kamers" / "4 rooms".
	RoomsPattern = regexp.MustCompile(`(\d{1,2})\s(?:kamers?|rooms?)`)
	// BedroomsPattern matches "3 slaapkamers" / "3 bedrooms".
	BedroomsPattern = regexp.MustCompile(`(\d{1,2})\s(?:slaapkamers?|bedrooms?)`)
	// BathroomsPattern matches "1 badkamer" / "2 bathrooms".
	BathroomsPattern = regexp.MustCompile(`(\d{1,2})\s(?:badkamers?|bathrooms?)`)
	// ToiletsPattern matches the separate-toilet phrasing, including the
	// "seperate" misspelling the site has carried for years.
	ToiletsPattern = regexp.MustCompile(`(\d{1,2})\s(?:aparte?|sep[ae]rate)`)
	// GardenWidthPattern matches "6,45 meter breed" / "6,45 metre wide".
	GardenWidthPattern = regexp.MustCompile(`(\d{1,2},\d{1,2})\s(?:meter breed|metre wide)`)
	// GardenDepthPattern matches "10,62 meter diep" / "10,62 metre deep".
	GardenDepthPattern = regexp.MustCompile(`(\d{1,2},\d{1,2})\s(?:meter diep|metre deep)`)

	gardenSizeRegexp = regexp.MustCompile(`(\d{1,5})\sm2`)
)

// ParsePrice extracts the integer amount from a price string such as
// "€ 1.000.000" or "€ 500.000 k.k.". Anything without a numeric token after
// the currency symbol ("Prijs op aanvraag", absent values) parses to 0, the
// documented "unknown" sentinel.
func ParsePrice(v models.RawValue) int {
	if !v.IsPresent() {
		return 0
	}
	fields := strings.Fields(v.Text())
	if len(fields) < 2 {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(fields[1], ".", ""))
	if err != nil {
		return 0
	}
	return n
}

// ParseYear handles the three construction-year formats the site uses: a
// plain four-digit year, a "1900-1910" range (start year wins), and a
// "before 1900" phrase. Everything else is 0.
func ParseYear(v models.RawValue) int {
	if !v.IsPresent() {
		return 0
	}
	s := v.Text()
	switch {
	case len(s) == 4:
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0
		}
		return n
	case strings.Contains(s, "-"):
		n, err := strconv.Atoi(strings.SplitN(s, "-", 2)[0])
		if err != nil {
			return 0
		}
		return n
	case strings.Contains(s, "before"):
		fields := strings.Fields(s)
		if len(fields) < 2 {
			return 0
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// ParseArea extracts the integer m² value from strings like "1.050 m²".
func ParseArea(v models.RawValue) int {
	return parseWithUnit(v, " m²")
}

// ParseVolume extracts the integer m³ value from strings like "285 m³".
func ParseVolume(v models.RawValue) int {
	return parseWithUnit(v, " m³")
}

func parseWithUnit(v models.RawValue, unit string) int {
	if !v.IsPresent() {
		return 0
	}
	s := strings.ReplaceAll(v.Text(), ".", "")
	n, err := strconv.Atoi(strings.SplitN(s, unit, 2)[0])
	if err != nil {
		return 0
	}
	return n
}

// ParseGardenSize extracts the surface from a garden description such as
// "Achtertuin 45 m² (10,62 meter diep en 4,25 meter breed)".
func ParseGardenSize(v models.RawValue) int {
	if !v.IsPresent() {
		return 0
	}
	s := strings.ReplaceAll(v.Text(), " m²", " m2")
	m := gardenSizeRegexp.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// FindCount applies a count pattern to a free-text phrase and returns the
// first captured number, or 0 when the pattern does not match.
func FindCount(v models.RawValue, pattern *regexp.Regexp) int {
	if !v.IsPresent() {
		return 0
	}
	m := pattern.FindStringSubmatch(v.Text())
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// FindFloat is FindCount for decimal captures; the Dutch comma decimal
// separator is normalized to a period before parsing.
func FindFloat(v models.RawValue, pattern *regexp.Regexp) float64 {
	if !v.IsPresent() {
		return 0
	}
	m := pattern.FindStringSubmatch(v.Text())
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0
	}
	return f
}

// NormalizeEnergyLabel reduces an energy label to its leading token. Every
// A-plus variant (A+, A++, A++++) collapses to the ceiling value ">A+".
// Unrecognized input passes through unchanged so odd labels stay visible in
// the dataset instead of disappearing.
func NormalizeEnergyLabel(v models.RawValue) string {
	if !v.IsPresent() {
		return ""
	}
	label := strings.Fields(v.Text())[0]
	if strings.Contains(label, "A+") {
		return ">A+"
	}
	return label
}
