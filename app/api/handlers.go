package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mensahub/mensahub/app/mensa"
	"github.com/mensahub/mensahub/app/tasks"
)

func NewHandler(mealRepo MealRepositoryInterface, locationRepo LocationRepositoryInterface,
	voteRepo VoteRepositoryInterface, commentRepo CommentRepositoryInterface,
	photoRepo PhotoRepositoryInterface, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		mealRepo:     mealRepo,
		locationRepo: locationRepo,
		voteRepo:     voteRepo,
		commentRepo:  commentRepo,
		photoRepo:    photoRepo,
		scheduler:    scheduler,
		startedAt:    time.Now(),
	}
}

func (h *Handler) GetLocations(c *gin.Context) {
	locations, err := h.locationRepo.GetLocations()
	if err != nil {
		slog.Error("Database error", "operation", "get_locations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result := make([]gin.H, 0, len(locations))
	for _, loc := range locations {
		entry := gin.H{
			"id":   loc.ID,
			"name": loc.Name,
		}
		if loc.OpeningHours != "" {
			var hours mensa.OpeningTimes
			if err := json.Unmarshal([]byte(loc.OpeningHours), &hours); err == nil {
				entry["opening_hours"] = hours
			}
		}
		result = append(result, entry)
	}

	c.JSON(http.StatusOK, gin.H{"locations": result, "total": len(result)})
}

func (h *Handler) GetMeals(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing location parameter"})
		return
	}

	if _, err := mensa.GetLocation(location); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown location"})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().In(time.Local).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	// Opportunistic refresh: when nothing is stored for today's query yet,
	// kick off an ingestion in the background. The current response may
	// still be empty; the next one will not.
	if today := time.Now().In(time.Local).Format("2006-01-02"); date == today {
		if exists, err := h.mealRepo.HasMealsForDate(location, date); err == nil && !exists {
			if err := h.scheduler.EnqueueIngest(location); err != nil {
				slog.Warn("Failed to enqueue opportunistic refresh", "location", location, "error", err)
			}
		}
	}

	meals, err := h.mealRepo.GetMealsWithStats(location, date)
	if err != nil {
		slog.Error("Database error", "operation", "get_meals", "location", location, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result := make([]gin.H, 0, len(meals))
	for _, meal := range meals {
		result = append(result, gin.H{
			"id":             meal.ID,
			"external_id":    meal.ExternalID,
			"name":           meal.Name,
			"category":       meal.Category,
			"date":           meal.Date,
			"location":       meal.Location,
			"price_student":  meal.PriceStudent,
			"price_employee": meal.PriceEmployee,
			"price_other":    meal.PriceOther,
			"notes":          meal.Notes,
			"score":          meal.Score,
			"up_votes":       meal.UpVotes,
			"down_votes":     meal.DownVotes,
			"comment_count":  meal.CommentCount,
			"photo_count":    meal.PhotoCount,
			"sizes":          meal.Sizes,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"location": location,
		"date":     date,
		"meals":    result,
		"total":    len(result),
	})
}

func (h *Handler) PostVote(c *gin.Context) {
	mealID, ok := h.mealIDParam(c)
	if !ok {
		return
	}

	clientToken := c.GetHeader("X-Client-Token")
	if clientToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing X-Client-Token header"})
		return
	}

	var body struct {
		Value int `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || (body.Value != 1 && body.Value != -1) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Value must be 1 or -1"})
		return
	}

	if err := h.voteRepo.CastVote(mealID, clientToken, body.Value); err != nil {
		slog.Error("Database error", "operation", "cast_vote", "meal_id", mealID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

var validSizes = map[string]bool{
	"too_small":  true,
	"just_right": true,
	"too_big":    true,
}

func (h *Handler) PostSizeReport(c *gin.Context) {
	mealID, ok := h.mealIDParam(c)
	if !ok {
		return
	}

	clientToken := c.GetHeader("X-Client-Token")
	if clientToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing X-Client-Token header"})
		return
	}

	var body struct {
		Size string `json:"size"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !validSizes[body.Size] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Size must be one of too_small, just_right, too_big"})
		return
	}

	if err := h.voteRepo.ReportSize(mealID, clientToken, body.Size); err != nil {
		slog.Error("Database error", "operation", "report_size", "meal_id", mealID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetComments(c *gin.Context) {
	mealID, ok := h.mealIDParam(c)
	if !ok {
		return
	}

	comments, err := h.commentRepo.GetComments(mealID)
	if err != nil {
		slog.Error("Database error", "operation", "get_comments", "meal_id", mealID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		result = append(result, gin.H{
			"id":         comment.ID,
			"parent_id":  comment.ParentID,
			"author":     comment.Author,
			"body":       comment.Body,
			"created_at": comment.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"comments": result, "total": len(result)})
}

func (h *Handler) PostComment(c *gin.Context) {
	mealID, ok := h.mealIDParam(c)
	if !ok {
		return
	}

	var body struct {
		Author   string `json:"author"`
		Body     string `json:"body"`
		ParentID *int64 `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment body is required"})
		return
	}

	author := strings.TrimSpace(body.Author)
	if author == "" {
		author = "Anonym"
	}

	if body.ParentID != nil {
		parent, err := h.commentRepo.GetComment(*body.ParentID)
		if err != nil {
			slog.Error("Database error", "operation", "get_parent_comment", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if parent == nil || parent.MealID != mealID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment does not belong to this meal"})
			return
		}
	}

	id, err := h.commentRepo.AddComment(mealID, body.ParentID, author, strings.TrimSpace(body.Body))
	if err != nil {
		slog.Error("Database error", "operation", "add_comment", "meal_id", mealID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) GetPhotos(c *gin.Context) {
	mealID, ok := h.mealIDParam(c)
	if !ok {
		return
	}

	photos, err := h.photoRepo.GetApprovedPhotos(mealID)
	if err != nil {
		slog.Error("Database error", "operation", "get_photos", "meal_id", mealID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result := make([]gin.H, 0, len(photos))
	for _, photo := range photos {
		result = append(result, gin.H{
			"id":         photo.ID,
			"url":        photo.URL,
			"caption":    photo.Caption,
			"created_at": photo.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"photos": result, "total": len(result)})
}

func (h *Handler) PostPhoto(c *gin.Context) {
	mealID, ok := h.mealIDParam(c)
	if !ok {
		return
	}

	clientToken := c.GetHeader("X-Client-Token")
	if clientToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing X-Client-Token header"})
		return
	}

	var body struct {
		URL     string `json:"url"`
		Caption string `json:"caption"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo URL is required"})
		return
	}

	id, err := h.photoRepo.AddPhoto(mealID, strings.TrimSpace(body.URL), strings.TrimSpace(body.Caption), clientToken)
	if err != nil {
		slog.Error("Database error", "operation", "add_photo", "meal_id", mealID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "approved": false})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).String(),
	}

	if mealCount, err := h.mealRepo.GetMealCount(); err == nil {
		health["meals"] = mealCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"uptime": time.Since(h.startedAt).String(),
	}

	if mealCount, err := h.mealRepo.GetMealCount(); err == nil {
		stats["meals"] = mealCount
	}
	if commentCount, err := h.commentRepo.GetCommentCount(); err == nil {
		stats["comments"] = commentCount
	}
	if locations, err := h.locationRepo.GetLocations(); err == nil {
		stats["locations"] = len(locations)
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIRefreshAll(c *gin.Context) {
	if err := h.scheduler.EnqueueIngestAll(); err != nil {
		slog.Error("Error enqueueing refresh", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue refresh", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Refresh enqueued for all locations"})
}

func (h *Handler) APIRefreshLocation(c *gin.Context) {
	location := c.Param("location")

	if _, err := mensa.GetLocation(location); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown location"})
		return
	}

	if err := h.scheduler.EnqueueIngest(location); err != nil {
		slog.Error("Error enqueueing refresh", "location", location, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue refresh", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "location": location})
}

func (h *Handler) APIDeleteComment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment id"})
		return
	}

	comment, err := h.commentRepo.GetComment(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_comment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if err := h.commentRepo.DeleteComment(id); err != nil {
		slog.Error("Database error", "operation", "delete_comment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APIDeletePhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo id"})
		return
	}

	photo, err := h.photoRepo.GetPhoto(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_photo", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if photo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}

	if err := h.photoRepo.DeletePhoto(id); err != nil {
		slog.Error("Database error", "operation", "delete_photo", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APIApprovePhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo id"})
		return
	}

	photo, err := h.photoRepo.GetPhoto(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_photo", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if photo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}

	if err := h.photoRepo.ApprovePhoto(id); err != nil {
		slog.Error("Database error", "operation", "approve_photo", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// mealIDParam parses the :id route parameter and verifies the meal exists.
func (h *Handler) mealIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal id"})
		return 0, false
	}

	meal, err := h.mealRepo.GetMealByID(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_meal", "meal_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return 0, false
	}
	if meal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return 0, false
	}

	return id, true
}
