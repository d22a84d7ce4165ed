package services

import (
	"testing"

	"funda-scraper/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  models.RawValue
		want int
	}{
		{models.Present("€ 1.000.000"), 1000000},
		{models.Present("€ 500.000 k.k."), 500000},
		{models.Present("€ 1.950 per maand"), 1950},
		{models.Present("Prijs op aanvraag"), 0},
		{models.Present("na"), 0},
		{models.Absent(), 0},
		{models.Present("€"), 0},
	}

	for _, tt := range tests {
		got := ParsePrice(tt.raw)
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %d; want %d", tt.raw.Text(), got, tt.want)
		}
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		raw  models.RawValue
		want int
	}{
		{models.Present("1990"), 1990},
		{models.Present("1990-2000"), 1990},
		{models.Present("before 1900"), 1900},
		{models.Present("unknown"), 0},
		{models.Present("abcd"), 0},
		{models.Absent(), 0},
	}

	for _, tt := range tests {
		got := ParseYear(tt.raw)
		if got != tt.want {
			t.Errorf("ParseYear(%q) = %d; want %d", tt.raw.Text(), got, tt.want)
		}
	}
}

func TestParseArea(t *testing.T) {
	tests := []struct {
		raw  models.RawValue
		want int
	}{
		{models.Present("100 m²"), 100},
		{models.Present("1.050 m²"), 1050},
		{models.Present("unknown"), 0},
		{models.Absent(), 0},
	}

	for _, tt := range tests {
		got := ParseArea(tt.raw)
		if got != tt.want {
			t.Errorf("ParseArea(%q) = %d; want %d", tt.raw.Text(), got, tt.want)
		}
	}
}

func TestParseVolume(t *testing.T) {
	if got := ParseVolume(models.Present("285 m³")); got != 285 {
		t.Errorf("ParseVolume(285 m³) = %d; want 285", got)
	}
	if got := ParseVolume(models.Present("geen idee")); got != 0 {
		t.Errorf("ParseVolume(garbage) = %d; want 0", got)
	}
}

func TestParseGardenSize(t *testing.T) {
	tests := []struct {
		raw  models.RawValue
		want int
	}{
		{models.Present("Achtertuin 45 m² (10,62 meter diep en 4,25 meter breed)"), 45},
		{models.Present("189 m²"), 189},
		{models.Present("Zonneterras"), 0},
		{models.Absent(), 0},
	}

	for _, tt := range tests {
		got := ParseGardenSize(tt.raw)
		if got != tt.want {
			t.Errorf("ParseGardenSize(%q) = %d; want %d", tt.raw.Text(), got, tt.want)
		}
	}
}

func TestFindCount(t *testing.T) {
	tests := []struct {
		raw     string
		pattern string
		want    int
	}{
		{"5 kamers", "rooms", 5},
		{"3 rooms", "rooms", 3},
		{"4 kamers (3 slaapkamers)", "rooms", 4},
		{"4 kamers (3 slaapkamers)", "bedrooms", 3},
		{"2 slaapkamers", "bedrooms", 2},
		{"4 bedrooms", "bedrooms", 4},
		{"1 badkamer", "bathrooms", 1},
		{"3 bathrooms", "bathrooms", 3},
		{"1 badkamer en 1 apart toilet", "toilets", 1},
		{"unknown", "rooms", 0},
		{"unknown", "bathrooms", 0},
	}

	for _, tt := range tests {
		pattern := RoomsPattern
		switch tt.pattern {
		case "bedrooms":
			pattern = BedroomsPattern
		case "bathrooms":
			pattern = BathroomsPattern
		case "toilets":
			pattern = ToiletsPattern
		}
		got := FindCount(models.Present(tt.raw), pattern)
		if got != tt.want {
			t.Errorf("FindCount(%q, %s) = %d; want %d", tt.raw, tt.pattern, got, tt.want)
		}
	}
}

func TestFindFloat(t *testing.T) {
	garden := models.Present("Achtertuin 45 m² (10,62 meter diep en 4,25 meter breed)")

	if got := FindFloat(garden, GardenDepthPattern); got != 10.62 {
		t.Errorf("garden depth = %v; want 10.62", got)
	}
	if got := FindFloat(garden, GardenWidthPattern); got != 4.25 {
		t.Errorf("garden width = %v; want 4.25", got)
	}
	if got := FindFloat(models.Present("no dimensions here"), GardenWidthPattern); got != 0 {
		t.Errorf("garden width on garbage = %v; want 0", got)
	}
}

func TestNormalizeEnergyLabel(t *testing.T) {
	tests := []struct {
		raw  models.RawValue
		want string
	}{
		{models.Present("A"), "A"},
		{models.Present("A+"), ">A+"},
		{models.Present("A++++"), ">A+"},
		{models.Present("B Wat betekent dit?"), "B"},
		{models.Present("unknown"), "unknown"},
		{models.Absent(), ""},
	}

	for _, tt := range tests {
		got := NormalizeEnergyLabel(tt.raw)
		if got != tt.want {
			t.Errorf("NormalizeEnergyLabel(%q) = %q; want %q", tt.raw.Text(), got, tt.want)
		}
	}
}
