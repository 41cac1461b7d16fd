package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/hlsrec/hls-recommender-go/internal/db"
	"github.com/hlsrec/hls-recommender-go/internal/models"
	"github.com/hlsrec/hls-recommender-go/internal/queue"
	"github.com/hlsrec/hls-recommender-go/internal/transcode"
	"github.com/hlsrec/hls-recommender-go/internal/validation"
	"github.com/hlsrec/hls-recommender-go/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadConfig locates upload storage and stream output.
type UploadConfig struct {
	UploadDir     string
	HLSDir        string
	PublicBaseURL string
	// Async publishes a job instead of transcoding inside the request.
	Async bool
}

// Upload is one file received from a client.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
	Tags     string
	Category *string
	Duration *int
}

// UploadService stores uploads and turns them into catalog videos.
type UploadService struct {
	videos    VideoStore
	jobs      JobStore
	encoder   transcode.Encoder
	publisher JobPublisher
	validator *validation.Validator
	config    UploadConfig
}

// NewUploadService creates a new UploadService instance. jobs and publisher
// may be nil when cfg.Async is false.
func NewUploadService(
	videos VideoStore,
	jobs JobStore,
	encoder transcode.Encoder,
	publisher JobPublisher,
	validator *validation.Validator,
	cfg UploadConfig,
) *UploadService {
	return &UploadService{
		videos:    videos,
		jobs:      jobs,
		encoder:   encoder,
		publisher: publisher,
		validator: validator,
		config:    cfg,
	}
}

// StreamURL returns the public manifest URL for stem.
func (s *UploadService) StreamURL(stem string) string {
	return strings.TrimRight(s.config.PublicBaseURL, "/") + "/hls/" + stem + transcode.ManifestExt
}

// Upload validates and stores the file, then either transcodes it in place
// or enqueues it. A catalog row is only ever written for a manifest that exists.
func (s *UploadService) Upload(ctx context.Context, up *Upload) (*models.UploadResponse, error) {
	if err := s.validator.ValidateUpload(up.Filename, up.Size); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := s.validator.ValidateMetadata(up.Tags, up.Category, up.Duration); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	name := validation.SanitizeFilename(up.Filename)
	stem := uuid.NewString()

	inputPath, err := s.save(up.Content, stem, filepath.Ext(name))
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, &ProcessingError{Message: "failed to store upload", Cause: err}
	}

	logger.Log.Info("Upload stored",
		zap.String("filename", name),
		zap.String("stem", stem),
		zap.Bool("async", s.config.Async),
	)

	if s.config.Async {
		return s.enqueue(ctx, up, name, stem, inputPath)
	}
	return s.transcodeNow(ctx, up, name, stem, inputPath)
}

func (s *UploadService) transcodeNow(ctx context.Context, up *Upload, name, stem, inputPath string) (*models.UploadResponse, error) {
	res, err := s.encoder.Transcode(ctx, transcode.Request{
		InputPath: inputPath,
		OutputDir: s.config.HLSDir,
		Stem:      stem,
	})
	if err != nil {
		removeFile(inputPath)
		return nil, &ProcessingError{Message: "failed to run encoder", Cause: err}
	}
	if !res.Success {
		removeFile(inputPath)
		return nil, &TranscodeError{Diagnostics: res.Diagnostics}
	}

	video := &models.Video{
		Filename: name,
		HLSURL:   s.StreamURL(stem),
		Tags:     up.Tags,
		Category: up.Category,
		Duration: up.Duration,
	}
	if err := s.videos.CreateVideo(ctx, video); err != nil {
		transcode.RemoveOutput(s.config.HLSDir, stem)
		removeFile(inputPath)
		return nil, storeError(err, "failed to create video", "video", 0)
	}

	logger.Log.Info("Video created",
		zap.Int64("videoId", video.ID),
		zap.String("hlsUrl", video.HLSURL),
	)

	return &models.UploadResponse{
		Message: "File uploaded successfully",
		HLSURL:  video.HLSURL,
		VideoID: video.ID,
	}, nil
}

func (s *UploadService) enqueue(ctx context.Context, up *Upload, name, stem, inputPath string) (*models.UploadResponse, error) {
	if s.jobs == nil || s.publisher == nil {
		removeFile(inputPath)
		return nil, &ProcessingError{Message: "async transcoding unavailable", Cause: errors.New("no job queue configured")}
	}

	job := &models.TranscodeJob{
		ID:               uuid.New(),
		OriginalFilename: name,
		InputPath:        inputPath,
		Stem:             stem,
		Tags:             up.Tags,
		Category:         up.Category,
		Duration:         up.Duration,
		Status:           models.JobStatusPending,
	}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		removeFile(inputPath)
		return nil, &ProcessingError{Message: "failed to record transcode job", Cause: err}
	}

	msg, err := queue.NewTranscodeJobMessage(job.ID, stem, inputPath)
	if err == nil {
		err = s.publisher.PublishJob(ctx, msg)
	}
	if err != nil {
		logger.Log.Error("Failed to publish transcode job",
			zap.Error(err),
			zap.String("jobId", job.ID.String()),
		)
		if failErr := s.jobs.FailJob(ctx, job.ID, fmt.Sprintf("publishing failed: %v", err)); failErr != nil {
			logger.Log.Error("Failed to mark job failed", zap.Error(failErr), zap.String("jobId", job.ID.String()))
		}
		removeFile(inputPath)
		return nil, &ProcessingError{Message: "failed to publish transcode job", Cause: err}
	}

	jobID := job.ID
	return &models.UploadResponse{
		Message: "Video accepted for conversion",
		HLSURL:  s.StreamURL(stem),
		JobID:   &jobID,
		Status:  models.JobStatusPending,
	}, nil
}

// HandleJob runs one queued job. Encoder failures are recorded on the job and
// acknowledged. Store failures and cancellation of ctx are returned for
// redelivery, leaving the job PENDING with its input in place.
func (s *UploadService) HandleJob(ctx context.Context, msg *queue.TranscodeJobMessage) error {
	job, err := s.jobs.GetJob(ctx, msg.JobID)
	if db.IsNotFound(err) {
		logger.Log.Warn("Dropping message for unknown job", zap.String("jobId", msg.JobID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load job %s: %w", msg.JobID, err)
	}
	if job.Status != models.JobStatusPending {
		logger.Log.Info("Skipping finished job",
			zap.String("jobId", job.ID.String()),
			zap.String("status", string(job.Status)),
		)
		return nil
	}

	res, err := s.encoder.Transcode(ctx, transcode.Request{
		InputPath: job.InputPath,
		OutputDir: s.config.HLSDir,
		Stem:      job.Stem,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		// interrupted, not failed: keep the input and the PENDING row for redelivery
		logger.Log.Warn("Transcode job interrupted", zap.String("jobId", job.ID.String()))
		return fmt.Errorf("transcode job %s interrupted: %w", job.ID, ctxErr)
	}
	if err == nil && !res.Success {
		err = errors.New(res.Diagnostics)
	}
	if err != nil {
		removeFile(job.InputPath)
		if failErr := s.jobs.FailJob(ctx, job.ID, err.Error()); failErr != nil {
			return fmt.Errorf("mark job %s failed: %w", job.ID, failErr)
		}
		logger.Log.Warn("Transcode job failed", zap.String("jobId", job.ID.String()))
		return nil
	}

	video := &models.Video{
		Filename: job.OriginalFilename,
		HLSURL:   s.StreamURL(job.Stem),
		Tags:     job.Tags,
		Category: job.Category,
		Duration: job.Duration,
	}
	if err := s.jobs.CompleteJob(ctx, job.ID, video); err != nil {
		transcode.RemoveOutput(s.config.HLSDir, job.Stem)
		return fmt.Errorf("complete job %s: %w", job.ID, err)
	}

	logger.Log.Info("Transcode job completed",
		zap.String("jobId", job.ID.String()),
		zap.Int64("videoId", video.ID),
	)
	return nil
}

// GetJob returns the status of an asynchronous upload.
func (s *UploadService) GetJob(ctx context.Context, id uuid.UUID) (*models.TranscodeJob, error) {
	if s.jobs == nil {
		return nil, &NotFoundError{Resource: "job", ID: id.String()}
	}
	job, err := s.jobs.GetJob(ctx, id)
	if db.IsNotFound(err) {
		return nil, &NotFoundError{Resource: "job", ID: id.String()}
	}
	if err != nil {
		return nil, &ProcessingError{Message: "failed to load job", Cause: err}
	}
	return job, nil
}

// save copies content to <UploadDir>/<stem><ext>, enforcing the size limit
// on the bytes actually read.
func (s *UploadService) save(content io.Reader, stem, ext string) (string, error) {
	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	path := filepath.Join(s.config.UploadDir, stem+strings.ToLower(ext))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	limit := s.validator.MaxUploadBytes()
	if limit <= 0 {
		limit = math.MaxInt64 - 1
	}
	n, copyErr := io.Copy(f, io.LimitReader(content, limit+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		removeFile(path)
		return "", fmt.Errorf("write upload: %w", copyErr)
	case closeErr != nil:
		removeFile(path)
		return "", fmt.Errorf("close upload: %w", closeErr)
	case n == 0:
		removeFile(path)
		return "", &ValidationError{Message: "uploaded file is empty"}
	case n > limit:
		removeFile(path)
		return "", &ValidationError{Message: fmt.Sprintf("uploaded file exceeds maximum size of %d bytes", limit)}
	}
	return path, nil
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Log.Warn("Failed to remove file", zap.String("path", path), zap.Error(err))
	}
}
