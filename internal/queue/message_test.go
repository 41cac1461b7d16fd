package queue

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranscodeJobMessage(t *testing.T) {
	id := uuid.New()

	msg, err := NewTranscodeJobMessage(id, "abc", "/uploads/abc.mp4")
	require.NoError(t, err)
	assert.Equal(t, id, msg.JobID)
	assert.Equal(t, "abc", msg.Stem)
	assert.False(t, msg.EnqueuedAt.IsZero())

	_, err = NewTranscodeJobMessage(uuid.Nil, "abc", "")
	assert.Error(t, err)
	_, err = NewTranscodeJobMessage(id, "", "")
	assert.Error(t, err)
}

func TestTranscodeJobMessageRoundTrip(t *testing.T) {
	msg, err := NewTranscodeJobMessage(uuid.New(), "stem", "/uploads/stem.mov")
	require.NoError(t, err)

	body, err := msg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"job_id"`)

	got, err := UnmarshalTranscodeJobMessage(body)
	require.NoError(t, err)
	assert.Equal(t, msg.JobID, got.JobID)
	assert.Equal(t, msg.InputPath, got.InputPath)
	assert.True(t, msg.EnqueuedAt.Equal(got.EnqueuedAt))
}

func TestUnmarshalTranscodeJobMessageRejectsBadInput(t *testing.T) {
	_, err := UnmarshalTranscodeJobMessage([]byte("not json"))
	assert.Error(t, err)

	_, err = UnmarshalTranscodeJobMessage([]byte(`{"stem":"x"}`))
	assert.ErrorContains(t, err, "no job ID")
}

func TestJobHandlerFunc(t *testing.T) {
	var seen uuid.UUID
	h := JobHandlerFunc(func(_ context.Context, msg *TranscodeJobMessage) error {
		seen = msg.JobID
		return nil
	})

	id := uuid.New()
	require.NoError(t, h.HandleJob(context.Background(), &TranscodeJobMessage{JobID: id}))
	assert.Equal(t, id, seen)
}
