package database

import (
	"testing"
)

func TestAddAndGetComments(t *testing.T) {
	db := setupTestDB(t)
	mealID := seedMeal(t, NewMealRepository(db), "herrenkrug", "2026-03-02", "Rindergulasch")
	repo := NewCommentRepository(db)

	firstID, err := repo.AddComment(mealID, nil, "Anna", "Sehr lecker heute")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := repo.AddComment(mealID, nil, "", "Zu salzig"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	comments, err := repo.GetComments(mealID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(comments))
	}
	if comments[0].ID != firstID {
		t.Error("Comments must be ordered oldest first")
	}
	if comments[0].Author != "Anna" || comments[0].Body != "Sehr lecker heute" {
		t.Errorf("Unexpected first comment: %+v", comments[0])
	}
}

func TestAddComment_Reply(t *testing.T) {
	db := setupTestDB(t)
	mealID := seedMeal(t, NewMealRepository(db), "herrenkrug", "2026-03-02", "Rindergulasch")
	repo := NewCommentRepository(db)

	parentID, err := repo.AddComment(mealID, nil, "Anna", "Sehr lecker")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	replyID, err := repo.AddComment(mealID, &parentID, "Ben", "Finde ich auch")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	reply, err := repo.GetComment(replyID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if reply == nil || reply.ParentID == nil || *reply.ParentID != parentID {
		t.Errorf("Reply must reference its parent, got %+v", reply)
	}
}

func TestGetComments_ExcludesHidden(t *testing.T) {
	db := setupTestDB(t)
	mealID := seedMeal(t, NewMealRepository(db), "herrenkrug", "2026-03-02", "Rindergulasch")
	repo := NewCommentRepository(db)

	id, err := repo.AddComment(mealID, nil, "Anna", "Spam")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := db.Exec("UPDATE comments SET hidden = 1 WHERE id = ?", id); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	comments, err := repo.GetComments(mealID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("Hidden comments must not be listed, got %d", len(comments))
	}

	// GetComment still returns it for moderation
	hidden, err := repo.GetComment(id)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if hidden == nil || !hidden.Hidden {
		t.Errorf("Expected hidden comment retrievable by id, got %+v", hidden)
	}
}

func TestDeleteComment_CascadesToReplies(t *testing.T) {
	db := setupTestDB(t)
	mealID := seedMeal(t, NewMealRepository(db), "herrenkrug", "2026-03-02", "Rindergulasch")
	repo := NewCommentRepository(db)

	parentID, err := repo.AddComment(mealID, nil, "Anna", "Sehr lecker")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	replyID, err := repo.AddComment(mealID, &parentID, "Ben", "Finde ich auch")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := repo.DeleteComment(parentID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	reply, err := repo.GetComment(replyID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if reply != nil {
		t.Error("Replies must cascade when the parent is deleted")
	}
}

func TestGetComment_NotFound(t *testing.T) {
	repo := NewCommentRepository(setupTestDB(t))

	comment, err := repo.GetComment(99999)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if comment != nil {
		t.Error("Expected nil for unknown comment id")
	}
}
