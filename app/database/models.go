package database

import (
	"time"
)

// Meal represents a persisted meal row. External ID is the natural key for
// upsert; re-ingesting the same venue+date+name updates in place.
type Meal struct {
	ID            int64
	ExternalID    string
	Name          string
	Category      string
	Date          string
	Location      string
	PriceStudent  string
	PriceEmployee string
	PriceOther    string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SizeTally aggregates portion-size reports for one meal.
type SizeTally struct {
	TooSmall  int `json:"too_small"`
	JustRight int `json:"just_right"`
	TooBig    int `json:"too_big"`
}

// MealWithStats is a meal row joined with its community counters, the read
// contract of the serving layer.
type MealWithStats struct {
	Meal
	Score        int       `json:"score"`
	UpVotes      int       `json:"up_votes"`
	DownVotes    int       `json:"down_votes"`
	CommentCount int       `json:"comment_count"`
	PhotoCount   int       `json:"photo_count"`
	Sizes        SizeTally `json:"sizes"`
}

type Location struct {
	ID           string
	Name         string
	FeedID       int
	OpeningHours string // JSON-encoded mensa.OpeningTimes, '' until first meta fetch
	UpdatedAt    time.Time
}

type Comment struct {
	ID        int64
	MealID    int64
	ParentID  *int64
	Author    string
	Body      string
	Hidden    bool
	CreatedAt time.Time
}

type Photo struct {
	ID          int64
	MealID      int64
	URL         string
	Caption     string
	ClientToken string
	Approved    bool
	CreatedAt   time.Time
}
