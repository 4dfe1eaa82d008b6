package api

import (
	"time"

	"github.com/mensahub/mensahub/app/database"
	"github.com/mensahub/mensahub/app/tasks"
)

type MealRepositoryInterface interface {
	GetMealsWithStats(location, date string) ([]database.MealWithStats, error)
	GetMealByID(id int64) (*database.Meal, error)
	HasMealsForDate(location, date string) (bool, error)
	GetMealCount() (int, error)
}

var _ MealRepositoryInterface = (*database.MealRepository)(nil)

type LocationRepositoryInterface interface {
	GetLocations() ([]database.Location, error)
}

var _ LocationRepositoryInterface = (*database.LocationRepository)(nil)

type VoteRepositoryInterface interface {
	CastVote(mealID int64, clientToken string, value int) error
	ReportSize(mealID int64, clientToken, size string) error
}

var _ VoteRepositoryInterface = (*database.VoteRepository)(nil)

type CommentRepositoryInterface interface {
	AddComment(mealID int64, parentID *int64, author, body string) (int64, error)
	GetComments(mealID int64) ([]database.Comment, error)
	GetComment(id int64) (*database.Comment, error)
	DeleteComment(id int64) error
	GetCommentCount() (int, error)
}

var _ CommentRepositoryInterface = (*database.CommentRepository)(nil)

type PhotoRepositoryInterface interface {
	AddPhoto(mealID int64, url, caption, clientToken string) (int64, error)
	GetApprovedPhotos(mealID int64) ([]database.Photo, error)
	GetPhoto(id int64) (*database.Photo, error)
	ApprovePhoto(id int64) error
	DeletePhoto(id int64) error
}

var _ PhotoRepositoryInterface = (*database.PhotoRepository)(nil)

type Handler struct {
	mealRepo     MealRepositoryInterface
	locationRepo LocationRepositoryInterface
	voteRepo     VoteRepositoryInterface
	commentRepo  CommentRepositoryInterface
	photoRepo    PhotoRepositoryInterface
	scheduler    tasks.TaskSchedulerInterface
	startedAt    time.Time
}
