package repository

import (
	"context"

	"github.com/hlsrec/hls-recommender-go/internal/db"
	"github.com/hlsrec/hls-recommender-go/internal/models"

	"github.com/jackc/pgx/v5"
)

// ListWatched returns the videos a user has watched, in the order the
// history rows were first created.
func (r *Repository) ListWatched(ctx context.Context, userID int64) ([]models.Video, error) {
	query := `
		SELECT v.id, v.filename, v.hls_url, v.likes, v.tags, v.duration, v.category, v.created_at
		FROM watch_history wh
		JOIN videos v ON v.id = wh.video_id
		WHERE wh.user_id = $1 AND wh.watched
		ORDER BY wh.id ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, db.WrapError(err, "list watched videos")
	}
	defer rows.Close()

	return scanVideos(rows)
}

// GetHistory returns the engagement row for a (user, video) pair.
func (r *Repository) GetHistory(ctx context.Context, userID, videoID int64) (*models.WatchHistory, error) {
	query := `
		SELECT id, user_id, video_id, watched, liked, created_at, updated_at
		FROM watch_history
		WHERE user_id = $1 AND video_id = $2
	`

	var h models.WatchHistory
	err := r.db.QueryRow(ctx, query, userID, videoID).Scan(
		&h.ID, &h.UserID, &h.VideoID, &h.Watched, &h.Liked, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get watch history")
	}
	return &h, nil
}

// RecordWatch marks the pair as watched, creating the history row on first sight.
func (r *Repository) RecordWatch(ctx context.Context, userID, videoID int64) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := requireUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := requireVideo(ctx, tx, videoID); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO watch_history (user_id, video_id, watched)
			VALUES ($1, $2, TRUE)
			ON CONFLICT (user_id, video_id) DO UPDATE
			SET watched = TRUE, updated_at = NOW()
		`, userID, videoID)
		return db.WrapError(err, "record watch")
	})
}

// RecordLike marks the pair as liked and increments the video's like counter
// in the same transaction. Every call adds one like.
func (r *Repository) RecordLike(ctx context.Context, userID, videoID int64) (int, error) {
	var likes int
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := requireUser(ctx, tx, userID); err != nil {
			return err
		}

		var err error
		likes, err = incrementLikes(ctx, tx, videoID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO watch_history (user_id, video_id, liked)
			VALUES ($1, $2, TRUE)
			ON CONFLICT (user_id, video_id) DO UPDATE
			SET liked = TRUE, updated_at = NOW()
		`, userID, videoID)
		return db.WrapError(err, "record like")
	})
	if err != nil {
		return 0, err
	}
	return likes, nil
}

func requireUser(ctx context.Context, q querier, userID int64) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return db.WrapError(err, "check user")
	}
	if !exists {
		return &MissingRecordError{Entity: "user", ID: userID}
	}
	return nil
}

func requireVideo(ctx context.Context, q querier, videoID int64) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM videos WHERE id = $1)`, videoID).Scan(&exists); err != nil {
		return db.WrapError(err, "check video")
	}
	if !exists {
		return &MissingRecordError{Entity: "video", ID: videoID}
	}
	return nil
}
