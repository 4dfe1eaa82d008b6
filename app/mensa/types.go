package mensa

import (
	"strings"
	"time"
)

// Meal is the canonical record produced by the normalizer and consumed by the
// reconciliation engine. Prices are decimal strings; an empty string means the
// feed carried no price for that role.
type Meal struct {
	ExternalID    string
	Name          string
	Category      string
	Date          string // ISO calendar date, the venue's serving date
	Location      string
	PriceStudent  string
	PriceEmployee string
	PriceOther    string
	Notes         string // comma-joined subset of the dietary tag vocabulary
}

// IsEmpty reports whether the meal normalized to nothing useful: blank name,
// blank notes and no price in any role.
func (m Meal) IsEmpty() bool {
	return strings.TrimSpace(m.Name) == "" &&
		strings.TrimSpace(m.Notes) == "" &&
		strings.TrimSpace(m.PriceStudent) == "" &&
		strings.TrimSpace(m.PriceEmployee) == "" &&
		strings.TrimSpace(m.PriceOther) == ""
}

// Volatile category handling. At venues flagged in the registry the vegetable
// bar is collapsed to a single fixed-price placeholder row; pasta bar
// categories rotate daily at every venue.
const (
	VegetableBarName  = "Gemüsebar"
	VegetableBarPrice = "0.85"

	vegetableBarKeyword = "gemüse"
	pastaBarKeyword     = "pasta"
)

// IsVegetableBarVenue reports whether the venue carries a vegetable bar per
// the embedded registry.
func IsVegetableBarVenue(location string) bool {
	loc, err := GetLocation(location)
	return err == nil && loc.VegetableBar
}

// VegetableBarExternalID returns the fixed placeholder id for the collapsed
// vegetable bar row. The name part is deliberately ASCII-only.
func VegetableBarExternalID(location, date string) string {
	return location + "_" + date + "_Gemuesebar"
}

// IsVegetableBarCategory reports whether the category must be collapsed to the
// placeholder row at the given venue.
func IsVegetableBarCategory(location, category string) bool {
	return IsVegetableBarVenue(location) &&
		strings.Contains(strings.ToLower(category), vegetableBarKeyword)
}

// IsPastaBarCategory reports whether the category rotates daily.
func IsPastaBarCategory(category string) bool {
	return strings.Contains(strings.ToLower(category), pastaBarKeyword)
}

// ExternalID derives the stable upsert key from venue, serving date and the
// raw (uncleaned) item name.
func ExternalID(location, date, rawName string) string {
	return location + "_" + date + "_" + strings.ReplaceAll(strings.TrimSpace(rawName), " ", "_")
}

// IsWeekend reports whether t falls on a Saturday or Sunday. The venues serve
// no meals on weekends, so ingestion short-circuits without a network call.
func IsWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// OpeningTimes holds the weekday opening-hour ranges from a venue's meta
// document. Empty string means closed.
type OpeningTimes struct {
	Monday    string `json:"monday"`
	Tuesday   string `json:"tuesday"`
	Wednesday string `json:"wednesday"`
	Thursday  string `json:"thursday"`
	Friday    string `json:"friday"`
	Saturday  string `json:"saturday"`
	Sunday    string `json:"sunday"`
}
