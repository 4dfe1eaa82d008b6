package database

import (
	"database/sql"
	"fmt"
)

// PhotoRepository handles meal photo records. Upload handling lives outside
// this service; rows reference already-uploaded URLs and await moderation.
type PhotoRepository struct {
	db *DB
}

func NewPhotoRepository(db *DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// AddPhoto stores a photo record pending approval and returns its id.
func (r *PhotoRepository) AddPhoto(mealID int64, url, caption, clientToken string) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO photos (meal_id, url, caption, client_token)
		VALUES (?, ?, ?, ?)
	`, mealID, url, caption, clientToken)
	if err != nil {
		return 0, fmt.Errorf("failed to add photo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get photo id: %w", err)
	}

	return id, nil
}

// GetApprovedPhotos returns the moderated photos for a meal, newest first.
func (r *PhotoRepository) GetApprovedPhotos(mealID int64) ([]Photo, error) {
	rows, err := r.db.Query(`
		SELECT id, meal_id, url, caption, client_token, approved, created_at
		FROM photos
		WHERE meal_id = ? AND approved = 1
		ORDER BY created_at DESC, id DESC
	`, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var photo Photo
		var createdAt string
		err := rows.Scan(
			&photo.ID, &photo.MealID, &photo.URL, &photo.Caption,
			&photo.ClientToken, &photo.Approved, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo row: %w", err)
		}
		photo.CreatedAt = parseTimestamp(createdAt)
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photo rows: %w", err)
	}

	return photos, nil
}

// GetPhoto retrieves one photo record regardless of approval state.
func (r *PhotoRepository) GetPhoto(id int64) (*Photo, error) {
	var photo Photo
	var createdAt string
	err := r.db.QueryRow(`
		SELECT id, meal_id, url, caption, client_token, approved, created_at
		FROM photos
		WHERE id = ?
	`, id).Scan(
		&photo.ID, &photo.MealID, &photo.URL, &photo.Caption,
		&photo.ClientToken, &photo.Approved, &createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	photo.CreatedAt = parseTimestamp(createdAt)
	return &photo, nil
}

// ApprovePhoto marks a photo as visible in public listings.
func (r *PhotoRepository) ApprovePhoto(id int64) error {
	if _, err := r.db.Exec("UPDATE photos SET approved = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to approve photo: %w", err)
	}
	return nil
}

// DeletePhoto removes a photo record.
func (r *PhotoRepository) DeletePhoto(id int64) error {
	if _, err := r.db.Exec("DELETE FROM photos WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}
