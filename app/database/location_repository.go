package database

import (
	"fmt"

	"github.com/mensahub/mensahub/app/mensa"
)

// LocationRepository handles database operations for the venue registry.
type LocationRepository struct {
	db *DB
}

func NewLocationRepository(db *DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// SeedLocations registers the embedded venue registry, updating name and feed
// id in place so registry changes take effect on restart.
func (r *LocationRepository) SeedLocations(locations []mensa.Location) error {
	for _, loc := range locations {
		_, err := r.db.Exec(`
			INSERT INTO locations (id, name, feed_id)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				feed_id = excluded.feed_id,
				updated_at = CURRENT_TIMESTAMP
		`, loc.ID, loc.Name, loc.FeedID)
		if err != nil {
			return fmt.Errorf("failed to seed location %s: %w", loc.ID, err)
		}
	}
	return nil
}

// UpdateOpeningHours stores the JSON-encoded weekly opening hours fetched
// from a venue's meta document.
func (r *LocationRepository) UpdateOpeningHours(locationID, openingHours string) error {
	_, err := r.db.Exec(`
		UPDATE locations
		SET opening_hours = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, openingHours, locationID)
	if err != nil {
		return fmt.Errorf("failed to update opening hours for %s: %w", locationID, err)
	}
	return nil
}

// GetLocations returns all registered venues in id order.
func (r *LocationRepository) GetLocations() ([]Location, error) {
	rows, err := r.db.Query(`
		SELECT id, name, feed_id, opening_hours, updated_at
		FROM locations
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var loc Location
		var updatedAt string
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.FeedID, &loc.OpeningHours, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		loc.UpdatedAt = parseTimestamp(updatedAt)
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location rows: %w", err)
	}

	return locations, nil
}
