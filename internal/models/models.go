// Package models contains the catalog entities and the HTTP DTOs of the service.
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of an asynchronous transcode job.
type JobStatus string

// JobStatus constants define the possible states of a transcode job.
const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// Video is a catalog entry for a transcoded upload.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Video struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	HLSURL   string `json:"hls_url"`
	Likes    int    `json:"likes"`
	// Tags is free text, comma separated by convention. May be empty.
	Tags      string    `json:"tags"`
	Duration  *int      `json:"duration,omitempty"`
	Category  *string   `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the invariants enforced before a video is written.
func (v *Video) Validate() error {
	var errs []error
	if strings.TrimSpace(v.Filename) == "" {
		errs = append(errs, errors.New("filename is required"))
	}
	if strings.TrimSpace(v.HLSURL) == "" {
		errs = append(errs, errors.New("hls_url is required"))
	}
	if v.Likes < 0 {
		errs = append(errs, errors.New("likes must not be negative"))
	}
	if v.Duration != nil && *v.Duration < 0 {
		errs = append(errs, errors.New("duration must not be negative"))
	}
	if len(v.Tags) > MaxTagsLength {
		errs = append(errs, errors.New("tags exceed maximum length"))
	}
	return errors.Join(errs...)
}

// Summary returns the listing representation of the video.
func (v *Video) Summary() VideoSummary {
	return VideoSummary{
		ID:       v.ID,
		Filename: v.Filename,
		HLSURL:   v.HLSURL,
		Likes:    v.Likes,
	}
}

// MaxTagsLength mirrors the width of videos.tags.
const MaxTagsLength = 500

// User is a viewer.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// WatchHistory is the per (user, video) engagement row. The pair is unique.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type WatchHistory struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	VideoID   int64     `json:"video_id"`
	Watched   bool      `json:"watched"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TranscodeJob tracks an upload handed to the queue worker.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type TranscodeJob struct {
	ID               uuid.UUID `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	InputPath        string    `json:"-"`
	Stem             string    `json:"stem"`
	Tags             string    `json:"tags"`
	Category         *string   `json:"category,omitempty"`
	Duration         *int      `json:"duration,omitempty"`
	Status           JobStatus `json:"status"`
	Diagnostics      *string   `json:"diagnostics,omitempty"`
	VideoID          *int64    `json:"video_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// VideoSummary is the listing shape used by /recommend, /history and /api/videos.
type VideoSummary struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	HLSURL   string `json:"hls_url"`
	Likes    int    `json:"likes"`
}

// Summaries maps videos to their listing representation, never returning nil.
func Summaries(videos []Video) []VideoSummary {
	out := make([]VideoSummary, 0, len(videos))
	for i := range videos {
		out = append(out, videos[i].Summary())
	}
	return out
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Message string     `json:"message"`
	HLSURL  string     `json:"hls_url,omitempty"`
	VideoID int64      `json:"video_id,omitempty"`
	JobID   *uuid.UUID `json:"job_id,omitempty"`
	Status  JobStatus  `json:"status,omitempty"`
}

// MessageResponse acknowledges watch and like events.
type MessageResponse struct {
	Message string `json:"message"`
	// Likes is the video's like count after a like.
	Likes int `json:"likes,omitempty"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time              `json:"timestamp"`
	Status    int                    `json:"status"`
	Error     string                 `json:"error"`
	Message   string                 `json:"message"`
	Path      string                 `json:"path"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
