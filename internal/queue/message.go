// Package queue carries transcode jobs between the API server and the
// transcoder worker over RabbitMQ.
package queue

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// MessageType identifies the payload of a queue message.
const MessageType = "transcode.requested"

// TranscodeJobMessage is the body of a job published to the queue. It only
// references the job row; the worker reads the rest from the database.
type TranscodeJobMessage struct {
	JobID      uuid.UUID `json:"job_id"`
	Stem       string    `json:"stem"`
	InputPath  string    `json:"input_path"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewTranscodeJobMessage builds a message for job.
func NewTranscodeJobMessage(jobID uuid.UUID, stem, inputPath string) (*TranscodeJobMessage, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("job ID is required")
	}
	if stem == "" {
		return nil, fmt.Errorf("stem is required")
	}
	return &TranscodeJobMessage{
		JobID:      jobID,
		Stem:       stem,
		InputPath:  inputPath,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Marshal serializes the message to JSON.
func (m *TranscodeJobMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalTranscodeJobMessage deserializes and checks a message body.
func UnmarshalTranscodeJobMessage(data []byte) (*TranscodeJobMessage, error) {
	var msg TranscodeJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if msg.JobID == uuid.Nil {
		return nil, fmt.Errorf("message has no job ID")
	}
	return &msg, nil
}
