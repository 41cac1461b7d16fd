package repository

import (
	"context"
	"fmt"

	"github.com/hlsrec/hls-recommender-go/internal/db"
	"github.com/hlsrec/hls-recommender-go/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateJob inserts a PENDING transcode job.
func (r *Repository) CreateJob(ctx context.Context, job *models.TranscodeJob) error {
	query := `
		INSERT INTO transcode_jobs
		(id, original_filename, input_path, stem, tags, category, duration, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		job.ID, job.OriginalFilename, job.InputPath, job.Stem, job.Tags, job.Category, job.Duration, job.Status,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	return db.WrapError(err, "create transcode job")
}

// GetJob retrieves a transcode job by ID.
func (r *Repository) GetJob(ctx context.Context, id uuid.UUID) (*models.TranscodeJob, error) {
	query := `
		SELECT id, original_filename, input_path, stem, tags, category, duration,
		       status, diagnostics, video_id, created_at, updated_at
		FROM transcode_jobs
		WHERE id = $1
	`
	var job models.TranscodeJob
	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.OriginalFilename, &job.InputPath, &job.Stem, &job.Tags, &job.Category, &job.Duration,
		&job.Status, &job.Diagnostics, &job.VideoID, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get transcode job")
	}
	return &job, nil
}

// FailJob marks a pending job FAILED with the encoder diagnostics.
func (r *Repository) FailJob(ctx context.Context, id uuid.UUID, diagnostics string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE transcode_jobs
		SET status = $2, diagnostics = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
	`, id, models.JobStatusFailed, diagnostics, models.JobStatusPending)
	if err != nil {
		return db.WrapError(err, "fail transcode job")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("fail transcode job %s: %w", id, db.ErrNotFound)
	}
	return nil
}

// CompleteJob inserts the video produced by a job and marks the job COMPLETED,
// atomically. The job must still be PENDING.
func (r *Repository) CompleteJob(ctx context.Context, id uuid.UUID, video *models.Video) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var status models.JobStatus
		err := tx.QueryRow(ctx, `SELECT status FROM transcode_jobs WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			return db.WrapError(err, "lock transcode job")
		}
		if status != models.JobStatusPending {
			return fmt.Errorf("complete transcode job %s: status is %s", id, status)
		}

		if err := insertVideo(ctx, tx, video); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE transcode_jobs
			SET status = $2, video_id = $3, diagnostics = NULL, updated_at = NOW()
			WHERE id = $1
		`, id, models.JobStatusCompleted, video.ID)
		return db.WrapError(err, "complete transcode job")
	})
}
