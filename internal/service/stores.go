package service

import (
	"context"

	"github.com/hlsrec/hls-recommender-go/internal/models"
	"github.com/hlsrec/hls-recommender-go/internal/queue"

	"github.com/google/uuid"
)

// VideoStore is the video side of the catalog.
type VideoStore interface {
	CreateVideo(ctx context.Context, video *models.Video) error
	GetVideo(ctx context.Context, id int64) (*models.Video, error)
	ListPopular(ctx context.Context, limit int) ([]models.Video, error)
	ListWatched(ctx context.Context, userID int64) ([]models.Video, error)
}

// UserStore manages viewers.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	EnsureUser(ctx context.Context, username, email string) (*models.User, error)
}

// EngagementStore records watch and like events.
type EngagementStore interface {
	RecordWatch(ctx context.Context, userID, videoID int64) error
	RecordLike(ctx context.Context, userID, videoID int64) (int, error)
}

// JobStore tracks asynchronous transcode jobs.
type JobStore interface {
	CreateJob(ctx context.Context, job *models.TranscodeJob) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.TranscodeJob, error)
	FailJob(ctx context.Context, id uuid.UUID, diagnostics string) error
	CompleteJob(ctx context.Context, id uuid.UUID, video *models.Video) error
}

// JobPublisher hands jobs to the transcoder worker.
type JobPublisher interface {
	PublishJob(ctx context.Context, msg *queue.TranscodeJobMessage) error
}

// Recommender produces recommendations for a user.
type Recommender interface {
	Recommend(ctx context.Context, userID int64) ([]models.Video, error)
}
