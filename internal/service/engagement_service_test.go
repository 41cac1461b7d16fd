package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hlsrec/hls-recommender-go/internal/db"
	"github.com/hlsrec/hls-recommender-go/internal/models"
	"github.com/hlsrec/hls-recommender-go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEngagementService_Watch(t *testing.T) {
	events := new(mockEngagementStore)
	svc := NewEngagementService(events, nil)
	ctx := context.Background()

	events.On("RecordWatch", mock.Anything, int64(1), int64(2)).Return(nil)
	events.On("RecordWatch", mock.Anything, int64(1), int64(99)).
		Return(&repository.MissingRecordError{Entity: "video", ID: 99})
	events.On("RecordWatch", mock.Anything, int64(42), int64(2)).
		Return(&repository.MissingRecordError{Entity: "user", ID: 42})

	require.NoError(t, svc.Watch(ctx, 1, 2))

	var nf *NotFoundError
	require.ErrorAs(t, svc.Watch(ctx, 1, 99), &nf)
	assert.Equal(t, "video", nf.Resource)

	require.ErrorAs(t, svc.Watch(ctx, 42, 2), &nf)
	assert.Equal(t, "user", nf.Resource)
	assert.Equal(t, "42", nf.ID)
}

func TestEngagementService_Like(t *testing.T) {
	events := new(mockEngagementStore)
	svc := NewEngagementService(events, nil)
	ctx := context.Background()

	events.On("RecordLike", mock.Anything, int64(1), int64(2)).Return(1, nil).Once()
	events.On("RecordLike", mock.Anything, int64(1), int64(2)).Return(2, nil).Once()
	events.On("RecordLike", mock.Anything, int64(1), int64(3)).Return(0, errors.New("deadlock detected"))

	likes, err := svc.Like(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
	likes, err = svc.Like(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, likes)

	_, err = svc.Like(ctx, 1, 3)
	var pe *ProcessingError
	assert.ErrorAs(t, err, &pe)
}

func TestEngagementService_CreateUser(t *testing.T) {
	users := new(mockUserStore)
	svc := NewEngagementService(nil, users)
	ctx := context.Background()

	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool { return u.Username == "alice" })).
		Return(nil)
	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool { return u.Username == "bob" })).
		Return(fmt.Errorf("create user: %w", db.ErrDuplicateKey))

	user, err := svc.CreateUser(ctx, &models.CreateUserRequest{Username: " alice ", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.CreateUser(ctx, &models.CreateUserRequest{Username: "bob", Email: "bob@example.com"})
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)

	_, err = svc.CreateUser(ctx, &models.CreateUserRequest{Username: "   ", Email: "x@example.com"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestEngagementService_EnsureDefaultUser(t *testing.T) {
	users := new(mockUserStore)
	svc := NewEngagementService(nil, users)

	users.On("EnsureUser", mock.Anything, "test_user", "test_user@example.com").
		Return(&models.User{ID: 1, Username: "test_user"}, nil)

	user, err := svc.EnsureDefaultUser(context.Background(), "test_user", "test_user@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}
