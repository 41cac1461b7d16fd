package service

import (
	"context"
	"fmt"

	"github.com/hlsrec/hls-recommender-go/internal/models"
)

// DefaultPopularLimit and MaxPopularLimit bound the catalog listing.
const (
	DefaultPopularLimit = 30
	MaxPopularLimit     = 100
)

// VideoService answers catalog, history and recommendation queries.
type VideoService struct {
	videos      VideoStore
	users       UserStore
	recommender Recommender
}

// NewVideoService creates a new VideoService instance.
func NewVideoService(videos VideoStore, users UserStore, recommender Recommender) *VideoService {
	return &VideoService{
		videos:      videos,
		users:       users,
		recommender: recommender,
	}
}

// Popular lists videos by likes, most liked first.
func (s *VideoService) Popular(ctx context.Context, limit int) ([]models.Video, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	if limit > MaxPopularLimit {
		limit = MaxPopularLimit
	}
	videos, err := s.videos.ListPopular(ctx, limit)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to list videos", Cause: err}
	}
	return videos, nil
}

// GetVideo returns one video.
func (s *VideoService) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	video, err := s.videos.GetVideo(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load video", "video", id)
	}
	return video, nil
}

// Recommend returns recommendations for a user, truncated to limit when
// limit is positive. A user without history gets an empty list.
func (s *VideoService) Recommend(ctx context.Context, userID int64, limit int) ([]models.Video, error) {
	videos, err := s.recommender.Recommend(ctx, userID)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to compute recommendations", Cause: err}
	}
	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

// History lists the videos a user has watched.
func (s *VideoService) History(ctx context.Context, userID int64) ([]models.Video, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, storeError(err, "failed to load user", "user", userID)
	}
	videos, err := s.videos.ListWatched(ctx, userID)
	if err != nil {
		return nil, &ProcessingError{Message: fmt.Sprintf("failed to load history of user %d", userID), Cause: err}
	}
	return videos, nil
}
