package service

import (
	"context"

	"github.com/hlsrec/hls-recommender-go/internal/models"
	"github.com/hlsrec/hls-recommender-go/internal/queue"
	"github.com/hlsrec/hls-recommender-go/internal/transcode"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockVideoStore struct {
	mock.Mock
}

func (m *mockVideoStore) CreateVideo(ctx context.Context, video *models.Video) error {
	args := m.Called(ctx, video)
	if args.Error(0) == nil {
		video.ID = 1
	}
	return args.Error(0)
}

func (m *mockVideoStore) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Video), args.Error(1)
}

func (m *mockVideoStore) ListPopular(ctx context.Context, limit int) ([]models.Video, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Video), args.Error(1)
}

func (m *mockVideoStore) ListWatched(ctx context.Context, userID int64) ([]models.Video, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Video), args.Error(1)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserStore) EnsureUser(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockEngagementStore struct {
	mock.Mock
}

func (m *mockEngagementStore) RecordWatch(ctx context.Context, userID, videoID int64) error {
	args := m.Called(ctx, userID, videoID)
	return args.Error(0)
}

func (m *mockEngagementStore) RecordLike(ctx context.Context, userID, videoID int64) (int, error) {
	args := m.Called(ctx, userID, videoID)
	return args.Int(0), args.Error(1)
}

type mockJobStore struct {
	mock.Mock
}

func (m *mockJobStore) CreateJob(ctx context.Context, job *models.TranscodeJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *mockJobStore) GetJob(ctx context.Context, id uuid.UUID) (*models.TranscodeJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TranscodeJob), args.Error(1)
}

func (m *mockJobStore) FailJob(ctx context.Context, id uuid.UUID, diagnostics string) error {
	args := m.Called(ctx, id, diagnostics)
	return args.Error(0)
}

func (m *mockJobStore) CompleteJob(ctx context.Context, id uuid.UUID, video *models.Video) error {
	args := m.Called(ctx, id, video)
	if args.Error(0) == nil {
		video.ID = 7
	}
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJob(ctx context.Context, msg *queue.TranscodeJobMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type mockRecommender struct {
	mock.Mock
}

func (m *mockRecommender) Recommend(ctx context.Context, userID int64) ([]models.Video, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Video), args.Error(1)
}

// fakeEncoder writes a manifest on success so callers can verify cleanup.
type fakeEncoder struct {
	result   transcode.Result
	err      error
	requests []transcode.Request
}

func (f *fakeEncoder) Transcode(_ context.Context, req transcode.Request) (transcode.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return transcode.Result{}, f.err
	}
	res := f.result
	if res.Success {
		res.ManifestPath = writeFakeStream(req)
	}
	return res, nil
}
