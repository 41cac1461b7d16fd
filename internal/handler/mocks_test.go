package handler

import (
	"context"
	"errors"

	"github.com/hlsrec/hls-recommender-go/internal/models"
	"github.com/hlsrec/hls-recommender-go/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var errBoom = errors.New("boom")

type mockUploadService struct {
	mock.Mock
}

func (m *mockUploadService) Upload(ctx context.Context, up *service.Upload) (*models.UploadResponse, error) {
	args := m.Called(ctx, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadResponse), args.Error(1)
}

func (m *mockUploadService) GetJob(ctx context.Context, id uuid.UUID) (*models.TranscodeJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TranscodeJob), args.Error(1)
}

type mockVideoService struct {
	mock.Mock
}

func (m *mockVideoService) Popular(ctx context.Context, limit int) ([]models.Video, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Video), args.Error(1)
}

func (m *mockVideoService) Recommend(ctx context.Context, userID int64, limit int) ([]models.Video, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Video), args.Error(1)
}

func (m *mockVideoService) History(ctx context.Context, userID int64) ([]models.Video, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Video), args.Error(1)
}

type mockEngagementService struct {
	mock.Mock
}

func (m *mockEngagementService) Watch(ctx context.Context, userID, videoID int64) error {
	return m.Called(ctx, userID, videoID).Error(0)
}

func (m *mockEngagementService) Like(ctx context.Context, userID, videoID int64) (int, error) {
	args := m.Called(ctx, userID, videoID)
	return args.Int(0), args.Error(1)
}

func (m *mockEngagementService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}

type fakeReporter bool

func (f fakeReporter) IsHealthy() bool {
	return bool(f)
}
