package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hlsrec/hls-recommender-go/internal/db"
	"github.com/hlsrec/hls-recommender-go/internal/models"

	"github.com/jackc/pgx/v5"
)

const videoColumns = `id, filename, hls_url, likes, tags, duration, category, created_at`

// CreateVideo validates and inserts a video, filling its ID and CreatedAt.
func (r *Repository) CreateVideo(ctx context.Context, video *models.Video) error {
	return insertVideo(ctx, r.db, video)
}

func insertVideo(ctx context.Context, q querier, video *models.Video) error {
	if err := video.Validate(); err != nil {
		return fmt.Errorf("create video: %w", err)
	}

	query := `
		INSERT INTO videos (filename, hls_url, likes, tags, duration, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := q.QueryRow(ctx, query,
		video.Filename, video.HLSURL, video.Likes, video.Tags, video.Duration, video.Category,
	).Scan(&video.ID, &video.CreatedAt)

	return db.WrapError(err, "create video")
}

// GetVideo retrieves a single video by ID.
func (r *Repository) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	var video models.Video
	if err := scanVideo(r.db.QueryRow(ctx, query, id), &video); err != nil {
		return nil, db.WrapError(err, "get video")
	}
	return &video, nil
}

// ListVideos returns the full catalog ordered by ID, the snapshot order used
// for feature extraction.
func (r *Repository) ListVideos(ctx context.Context) ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, db.WrapError(err, "list videos")
	}
	defer rows.Close()

	return scanVideos(rows)
}

// ListPopular returns up to limit videos ordered by likes descending.
func (r *Repository) ListPopular(ctx context.Context, limit int) ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos ORDER BY likes DESC, id ASC LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, db.WrapError(err, "list popular videos")
	}
	defer rows.Close()

	return scanVideos(rows)
}

// IncrementLikes atomically adds one like to a video and returns the new count.
func (r *Repository) IncrementLikes(ctx context.Context, videoID int64) (int, error) {
	return incrementLikes(ctx, r.db, videoID)
}

func incrementLikes(ctx context.Context, q querier, videoID int64) (int, error) {
	var likes int
	err := q.QueryRow(ctx,
		`UPDATE videos SET likes = likes + 1 WHERE id = $1 RETURNING likes`,
		videoID,
	).Scan(&likes)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &MissingRecordError{Entity: "video", ID: videoID}
	}
	if err != nil {
		return 0, db.WrapError(err, "increment likes")
	}
	return likes, nil
}

func scanVideo(row pgx.Row, video *models.Video) error {
	return row.Scan(
		&video.ID,
		&video.Filename,
		&video.HLSURL,
		&video.Likes,
		&video.Tags,
		&video.Duration,
		&video.Category,
		&video.CreatedAt,
	)
}

// Helper function to scan multiple videos from query results
func scanVideos(rows pgx.Rows) ([]models.Video, error) {
	videos := []models.Video{}

	for rows.Next() {
		var video models.Video
		if err := scanVideo(rows, &video); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}
