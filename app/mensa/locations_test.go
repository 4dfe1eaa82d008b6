package mensa

import (
	"testing"
)

func TestLocations(t *testing.T) {
	locations, err := Locations()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(locations) == 0 {
		t.Fatal("Expected at least one registered location")
	}

	for _, loc := range locations {
		if loc.ID == "" || loc.Name == "" {
			t.Errorf("Location missing id or name: %+v", loc)
		}
		if loc.FeedID == 0 {
			t.Errorf("Location '%s' missing feed id", loc.ID)
		}
	}
}

func TestGetLocation(t *testing.T) {
	loc, err := GetLocation("unicampus")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loc.ID != "unicampus" {
		t.Errorf("Unexpected id: %s", loc.ID)
	}
	if !loc.VegetableBar {
		t.Error("UniCampus venue must carry the vegetable bar flag")
	}
}

func TestGetLocation_Unknown(t *testing.T) {
	_, err := GetLocation("nonexistent")
	if err == nil {
		t.Error("Expected error for unknown location id")
	}
}

func TestIsVegetableBarVenue(t *testing.T) {
	if !IsVegetableBarVenue("unicampus") {
		t.Error("Expected the flagged venue recognized")
	}
	if IsVegetableBarVenue("stendal") {
		t.Error("Venues without the registry flag must not be special-cased")
	}
	if IsVegetableBarVenue("nonexistent") {
		t.Error("Unknown venues must not be special-cased")
	}
}
