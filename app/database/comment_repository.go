package database

import (
	"database/sql"
	"fmt"
)

// CommentRepository handles threaded meal comments.
type CommentRepository struct {
	db *DB
}

func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// AddComment stores a comment and returns its id. ParentID is nil for
// top-level comments.
func (r *CommentRepository) AddComment(mealID int64, parentID *int64, author, body string) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO comments (meal_id, parent_id, author, body)
		VALUES (?, ?, ?, ?)
	`, mealID, parentID, author, body)
	if err != nil {
		return 0, fmt.Errorf("failed to add comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get comment id: %w", err)
	}

	return id, nil
}

// GetComments returns the visible comments for a meal, oldest first. Threads
// are reconstructed client-side from parent_id.
func (r *CommentRepository) GetComments(mealID int64) ([]Comment, error) {
	rows, err := r.db.Query(`
		SELECT id, meal_id, parent_id, author, body, hidden, created_at
		FROM comments
		WHERE meal_id = ? AND hidden = 0
		ORDER BY created_at, id
	`, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var comment Comment
		var createdAt string
		err := rows.Scan(
			&comment.ID, &comment.MealID, &comment.ParentID,
			&comment.Author, &comment.Body, &comment.Hidden, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comment.CreatedAt = parseTimestamp(createdAt)
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}

	return comments, nil
}

// GetComment retrieves one comment regardless of visibility.
func (r *CommentRepository) GetComment(id int64) (*Comment, error) {
	var comment Comment
	var createdAt string
	err := r.db.QueryRow(`
		SELECT id, meal_id, parent_id, author, body, hidden, created_at
		FROM comments
		WHERE id = ?
	`, id).Scan(
		&comment.ID, &comment.MealID, &comment.ParentID,
		&comment.Author, &comment.Body, &comment.Hidden, &createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	comment.CreatedAt = parseTimestamp(createdAt)
	return &comment, nil
}

// DeleteComment removes a comment and, via the FK cascade, its replies.
func (r *CommentRepository) DeleteComment(id int64) error {
	if _, err := r.db.Exec("DELETE FROM comments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// GetCommentCount returns the total number of visible comments.
func (r *CommentRepository) GetCommentCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM comments WHERE hidden = 0").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get comment count: %w", err)
	}
	return count, nil
}
