package mensa

import (
	"log/slog"
	"regexp"
	"strings"
)

// allergenCodeRe matches a parenthetical group whose comma-separated contents
// are all short alphanumeric tokens (max 4 chars, letters/digits including
// umlauts). Those are allergen codes, not descriptive text; parentheticals
// with any longer token are kept verbatim.
var allergenCodeRe = regexp.MustCompile(`\(\s*[0-9A-Za-zÄÖÜäöüß]{1,4}(\s*,\s*[0-9A-Za-zÄÖÜäöüß]{1,4})*\s*\)`)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// ExtractMealsForDate normalizes the parsed feed into canonical meals for one
// venue and serving date. Structural anomalies are logged and yield an empty
// list so ingestion for the other venues is never affected.
func ExtractMealsForDate(canteen *Canteen, date string, location string) []Meal {
	if canteen == nil {
		slog.Warn("Feed document has no canteen node", "location", location, "date", date)
		return nil
	}

	day := findDay(canteen, date)
	if day == nil {
		slog.Debug("No day entry in feed", "location", location, "date", date)
		return nil
	}
	if day.Closed != nil {
		slog.Debug("Venue closed", "location", location, "date", date)
		return nil
	}

	var meals []Meal
	for _, category := range day.Categories {
		if IsVegetableBarCategory(location, category.Name) {
			// The rotating vegetable bar is collapsed to a single
			// fixed-price placeholder row.
			meals = append(meals, Meal{
				ExternalID:    VegetableBarExternalID(location, date),
				Name:          VegetableBarName,
				Category:      category.Name,
				Date:          date,
				Location:      location,
				PriceStudent:  VegetableBarPrice,
				PriceEmployee: VegetableBarPrice,
				PriceOther:    VegetableBarPrice,
			})
			continue
		}

		for _, item := range category.Meals {
			meals = append(meals, normalizeMealItem(item, category.Name, date, location))
		}
	}

	return meals
}

func findDay(canteen *Canteen, date string) *Day {
	for i := range canteen.Days {
		if canteen.Days[i].Date == date {
			return &canteen.Days[i]
		}
	}
	return nil
}

func normalizeMealItem(item MealItem, category, date, location string) Meal {
	meal := Meal{
		ExternalID: ExternalID(location, date, item.Name),
		Name:       CleanMealName(item.Name),
		Category:   category,
		Date:       date,
		Location:   location,
		Notes:      strings.Join(SimplifyNotes(item.Notes), ", "),
	}

	for _, price := range item.Prices {
		value := strings.TrimSpace(price.Value)
		switch price.Role {
		case PriceRoleStudent:
			meal.PriceStudent = value
		case PriceRoleEmployee:
			meal.PriceEmployee = value
		case PriceRoleOther:
			meal.PriceOther = value
		}
	}

	return meal
}

// CleanMealName strips allergen-code parentheticals from a raw item name and
// tidies the spacing left behind.
func CleanMealName(rawName string) string {
	name := allergenCodeRe.ReplaceAllString(rawName, "")
	name = multiSpaceRe.ReplaceAllString(name, " ")
	name = strings.ReplaceAll(name, " ,", ",")
	return strings.TrimSpace(name)
}
