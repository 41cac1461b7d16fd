package service

import (
	"context"
	"strings"

	"github.com/hlsrec/hls-recommender-go/internal/db"
	"github.com/hlsrec/hls-recommender-go/internal/models"
	"github.com/hlsrec/hls-recommender-go/pkg/logger"

	"go.uber.org/zap"
)

// EngagementService records what viewers watch and like.
type EngagementService struct {
	events EngagementStore
	users  UserStore
}

// NewEngagementService creates a new EngagementService instance.
func NewEngagementService(events EngagementStore, users UserStore) *EngagementService {
	return &EngagementService{
		events: events,
		users:  users,
	}
}

// Watch marks a video as watched by a user. Repeated calls are idempotent.
func (s *EngagementService) Watch(ctx context.Context, userID, videoID int64) error {
	if err := s.events.RecordWatch(ctx, userID, videoID); err != nil {
		return storeError(err, "failed to record watch", "video", videoID)
	}
	logger.Log.Debug("Watch recorded", zap.Int64("userId", userID), zap.Int64("videoId", videoID))
	return nil
}

// Like marks a video as liked and adds one like. Every call counts.
func (s *EngagementService) Like(ctx context.Context, userID, videoID int64) (int, error) {
	likes, err := s.events.RecordLike(ctx, userID, videoID)
	if err != nil {
		return 0, storeError(err, "failed to record like", "video", videoID)
	}
	logger.Log.Debug("Like recorded",
		zap.Int64("userId", userID),
		zap.Int64("videoId", videoID),
		zap.Int("likes", likes),
	)
	return likes, nil
}

// CreateUser registers a viewer.
func (s *EngagementService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
	}
	if user.Username == "" {
		return nil, &ValidationError{Message: "username is required"}
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, &ConflictError{Message: "username or email already registered"}
		}
		return nil, &ProcessingError{Message: "failed to create user", Cause: err}
	}

	logger.Log.Info("User created", zap.Int64("userId", user.ID), zap.String("username", user.Username))
	return user, nil
}

// EnsureDefaultUser makes sure the configured default viewer exists.
func (s *EngagementService) EnsureDefaultUser(ctx context.Context, username, email string) (*models.User, error) {
	user, err := s.users.EnsureUser(ctx, username, email)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to ensure default user", Cause: err}
	}
	logger.Log.Info("Default user ready", zap.Int64("userId", user.ID), zap.String("username", user.Username))
	return user, nil
}
