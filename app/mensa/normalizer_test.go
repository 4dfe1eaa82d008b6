package mensa

import (
	"testing"
)

func TestCleanMealName_AllergenCodes(t *testing.T) {
	result := CleanMealName("Salat (A,C,G)")
	if result != "Salat" {
		t.Errorf("Expected 'Salat', got '%s'", result)
	}
}

func TestCleanMealName_DescriptiveParenthetical(t *testing.T) {
	// "Dressing" exceeds 4 chars, so the group is descriptive text
	result := CleanMealName("Salat (mit Dressing, Nüsse)")
	if result != "Salat (mit Dressing, Nüsse)" {
		t.Errorf("Expected name unchanged, got '%s'", result)
	}
}

func TestCleanMealName_InlineCodes(t *testing.T) {
	result := CleanMealName("Schnitzel (Sw,Wz) mit Pommes (Gl)")
	if result != "Schnitzel mit Pommes" {
		t.Errorf("Expected 'Schnitzel mit Pommes', got '%s'", result)
	}
}

func TestCleanMealName_CodesWithSpaces(t *testing.T) {
	result := CleanMealName("Eintopf ( A , C1 , G )")
	if result != "Eintopf" {
		t.Errorf("Expected 'Eintopf', got '%s'", result)
	}
}

func TestCleanMealName_NoParenthetical(t *testing.T) {
	result := CleanMealName("Kartoffelsuppe")
	if result != "Kartoffelsuppe" {
		t.Errorf("Expected 'Kartoffelsuppe', got '%s'", result)
	}
}

func TestExternalID(t *testing.T) {
	id := ExternalID("unicampus", "2026-03-02", "Salat (A,C,G)")
	if id != "unicampus_2026-03-02_Salat_(A,C,G)" {
		t.Errorf("Unexpected external id: %s", id)
	}
}

func TestExtractMealsForDate_NilCanteen(t *testing.T) {
	meals := ExtractMealsForDate(nil, "2026-03-02", "unicampus")
	if len(meals) != 0 {
		t.Errorf("Expected no meals for missing canteen node, got %d", len(meals))
	}
}

func TestExtractMealsForDate_MissingDay(t *testing.T) {
	canteen := &Canteen{
		Days: []Day{{Date: "2026-03-01"}},
	}

	meals := ExtractMealsForDate(canteen, "2026-03-02", "unicampus")
	if len(meals) != 0 {
		t.Errorf("Expected no meals when the date is absent from the feed, got %d", len(meals))
	}
}

func TestExtractMealsForDate_ClosedDay(t *testing.T) {
	canteen := &Canteen{
		Days: []Day{{
			Date:   "2026-03-02",
			Closed: &struct{}{},
			Categories: []Category{
				{Name: "Hauptgericht", Meals: []MealItem{{Name: "Gulasch"}}},
			},
		}},
	}

	meals := ExtractMealsForDate(canteen, "2026-03-02", "unicampus")
	if len(meals) != 0 {
		t.Errorf("Expected no meals on a closed day, got %d", len(meals))
	}
}

func TestExtractMealsForDate_OrdinaryCategory(t *testing.T) {
	canteen := &Canteen{
		Days: []Day{{
			Date: "2026-03-02",
			Categories: []Category{{
				Name: "Hauptgericht",
				Meals: []MealItem{{
					Name: "Rindergulasch (A,C)",
					Prices: []Price{
						{Role: "student", Value: "2.60"},
						{Role: "employee", Value: "4.10"},
						{Role: "other", Value: "5.20"},
					},
					Notes: []string{"enthält Rindfleisch"},
				}},
			}},
		}},
	}

	meals := ExtractMealsForDate(canteen, "2026-03-02", "herrenkrug")
	if len(meals) != 1 {
		t.Fatalf("Expected 1 meal, got %d", len(meals))
	}

	meal := meals[0]
	if meal.Name != "Rindergulasch" {
		t.Errorf("Expected cleaned name 'Rindergulasch', got '%s'", meal.Name)
	}
	if meal.ExternalID != "herrenkrug_2026-03-02_Rindergulasch_(A,C)" {
		t.Errorf("Unexpected external id: %s", meal.ExternalID)
	}
	if meal.Category != "Hauptgericht" {
		t.Errorf("Expected raw category label, got '%s'", meal.Category)
	}
	if meal.PriceStudent != "2.60" || meal.PriceEmployee != "4.10" || meal.PriceOther != "5.20" {
		t.Errorf("Unexpected prices: %s / %s / %s", meal.PriceStudent, meal.PriceEmployee, meal.PriceOther)
	}
	if meal.Notes != "Rindfleisch" {
		t.Errorf("Expected simplified notes 'Rindfleisch', got '%s'", meal.Notes)
	}
}

func TestExtractMealsForDate_MissingPriceRole(t *testing.T) {
	canteen := &Canteen{
		Days: []Day{{
			Date: "2026-03-02",
			Categories: []Category{{
				Name: "Beilagen",
				Meals: []MealItem{{
					Name:   "Reis",
					Prices: []Price{{Role: "student", Value: "0.60"}},
				}},
			}},
		}},
	}

	meals := ExtractMealsForDate(canteen, "2026-03-02", "stendal")
	if len(meals) != 1 {
		t.Fatalf("Expected 1 meal, got %d", len(meals))
	}
	if meals[0].PriceStudent != "0.60" {
		t.Errorf("Expected student price '0.60', got '%s'", meals[0].PriceStudent)
	}
	if meals[0].PriceEmployee != "" || meals[0].PriceOther != "" {
		t.Errorf("Missing roles must stay empty, got '%s' / '%s'", meals[0].PriceEmployee, meals[0].PriceOther)
	}
}

func TestExtractMealsForDate_VegetableBarCollapse(t *testing.T) {
	canteen := &Canteen{
		Days: []Day{{
			Date: "2026-03-02",
			Categories: []Category{{
				Name: "Gemüsebar",
				Meals: []MealItem{
					{Name: "Brokkoli"},
					{Name: "Blumenkohl"},
					{Name: "Karotten"},
					{Name: "Mais"},
					{Name: "Erbsen"},
				},
			}},
		}},
	}

	meals := ExtractMealsForDate(canteen, "2026-03-02", "unicampus")
	if len(meals) != 1 {
		t.Fatalf("Expected the vegetable bar collapsed to 1 meal, got %d", len(meals))
	}

	meal := meals[0]
	if meal.ExternalID != "unicampus_2026-03-02_Gemuesebar" {
		t.Errorf("Unexpected placeholder external id: %s", meal.ExternalID)
	}
	if meal.Name != VegetableBarName {
		t.Errorf("Expected fixed name '%s', got '%s'", VegetableBarName, meal.Name)
	}
	if meal.PriceStudent != "0.85" || meal.PriceEmployee != "0.85" || meal.PriceOther != "0.85" {
		t.Errorf("Expected fixed price 0.85 on all roles, got %s / %s / %s",
			meal.PriceStudent, meal.PriceEmployee, meal.PriceOther)
	}
}

func TestExtractMealsForDate_VegetableBarOtherVenue(t *testing.T) {
	canteen := &Canteen{
		Days: []Day{{
			Date: "2026-03-02",
			Categories: []Category{{
				Name:  "Gemüsebar",
				Meals: []MealItem{{Name: "Brokkoli"}, {Name: "Mais"}},
			}},
		}},
	}

	// The collapse applies at the UniCampus venue only
	meals := ExtractMealsForDate(canteen, "2026-03-02", "herrenkrug")
	if len(meals) != 2 {
		t.Errorf("Expected normal extraction at other venues, got %d meals", len(meals))
	}
}

func TestIsVegetableBarCategory(t *testing.T) {
	if !IsVegetableBarCategory("unicampus", "GEMÜSEBAR") {
		t.Error("Keyword match must be case-insensitive")
	}
	if IsVegetableBarCategory("unicampus", "Hauptgericht") {
		t.Error("Non-matching category must not be collapsed")
	}
	if IsVegetableBarCategory("stendal", "Gemüsebar") {
		t.Error("Collapse applies only at venues flagged in the registry")
	}
}

func TestIsPastaBarCategory(t *testing.T) {
	if !IsPastaBarCategory("Pastabar") || !IsPastaBarCategory("PASTA-Theke") {
		t.Error("Pasta keyword match must be case-insensitive")
	}
	if IsPastaBarCategory("Hauptgericht") {
		t.Error("Non-pasta category must not match")
	}
}
