package database

import (
	"fmt"
)

// VoteRepository handles up/down votes and portion-size reports. Both are
// keyed by (meal, client token); repeating either updates in place.
type VoteRepository struct {
	db *DB
}

func NewVoteRepository(db *DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// CastVote records or replaces a client's vote on a meal. Value must be +1 or
// -1; the CHECK constraint rejects anything else.
func (r *VoteRepository) CastVote(mealID int64, clientToken string, value int) error {
	_, err := r.db.Exec(`
		INSERT INTO votes (meal_id, client_token, value)
		VALUES (?, ?, ?)
		ON CONFLICT(meal_id, client_token) DO UPDATE SET
			value = excluded.value,
			created_at = CURRENT_TIMESTAMP
	`, mealID, clientToken, value)
	if err != nil {
		return fmt.Errorf("failed to cast vote: %w", err)
	}
	return nil
}

// ReportSize records or replaces a client's portion-size report on a meal.
func (r *VoteRepository) ReportSize(mealID int64, clientToken, size string) error {
	_, err := r.db.Exec(`
		INSERT INTO size_reports (meal_id, client_token, size)
		VALUES (?, ?, ?)
		ON CONFLICT(meal_id, client_token) DO UPDATE SET
			size = excluded.size,
			created_at = CURRENT_TIMESTAMP
	`, mealID, clientToken, size)
	if err != nil {
		return fmt.Errorf("failed to report size: %w", err)
	}
	return nil
}

// GetScore returns the summed vote value for a meal.
func (r *VoteRepository) GetScore(mealID int64) (int, error) {
	var score int
	err := r.db.QueryRow(
		"SELECT COALESCE(SUM(value), 0) FROM votes WHERE meal_id = ?",
		mealID,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("failed to get vote score: %w", err)
	}
	return score, nil
}
