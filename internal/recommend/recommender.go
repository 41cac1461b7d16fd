package recommend

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/hlsrec/hls-recommender-go/internal/metrics"
	"github.com/hlsrec/hls-recommender-go/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Catalog is the read side of the video store used for recommendations.
type Catalog interface {
	ListVideos(ctx context.Context) ([]models.Video, error)
	ListWatched(ctx context.Context, userID int64) ([]models.Video, error)
}

// Options configures a Recommender. They are fixed at construction.
type Options struct {
	TopK int
	// StopWords replaces DefaultStopWords when non-empty.
	StopWords      []string
	ExtraStopWords []string
}

// Option customizes a Recommender.
type Option func(*Recommender)

// WithIndexBuilder replaces the per-request Extractor.
func WithIndexBuilder(b IndexBuilder) Option {
	return func(r *Recommender) {
		if b != nil {
			r.builder = b
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recommender) {
		if l != nil {
			r.logger = l
		}
	}
}

// Recommender aggregates neighbours of every video a user has watched.
type Recommender struct {
	catalog Catalog
	builder IndexBuilder
	logger  *zap.Logger
	topK    int
}

// New creates a Recommender reading from catalog.
func New(catalog Catalog, opts Options, options ...Option) *Recommender {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	r := &Recommender{
		catalog: catalog,
		builder: NewExtractor(NewStopWords(opts.StopWords, opts.ExtraStopWords)),
		logger:  zap.NewNop(),
		topK:    topK,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Recommend returns the deduplicated neighbours of the user's watched videos.
// Order follows the watch list, then rank within each neighbour list. A user
// with no history or an empty catalog yields an empty slice.
func (r *Recommender) Recommend(ctx context.Context, userID int64) ([]models.Video, error) {
	start := time.Now()

	watched, err := r.catalog.ListWatched(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watched videos: %w", err)
	}
	if len(watched) == 0 {
		metrics.RecommendResults.Observe(0)
		return []models.Video{}, nil
	}

	videos, err := r.catalog.ListVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	if len(videos) == 0 {
		metrics.RecommendResults.Observe(0)
		return []models.Video{}, nil
	}

	snapshot := r.builder.Build(videos)
	metrics.RecommendSnapshotSize.Set(float64(snapshot.Len()))

	neighbors, err := r.neighbors(ctx, snapshot, watched)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*models.Video, len(videos))
	for i := range videos {
		if _, ok := byID[videos[i].ID]; !ok {
			byID[videos[i].ID] = &videos[i]
		}
	}

	result := make([]models.Video, 0)
	seen := make(map[int64]struct{})
	for _, list := range neighbors {
		for _, n := range list {
			if _, dup := seen[n.VideoID]; dup {
				continue
			}
			seen[n.VideoID] = struct{}{}
			result = append(result, *byID[n.VideoID])
		}
	}

	elapsed := time.Since(start)
	metrics.RecommendDuration.Observe(elapsed.Seconds())
	metrics.RecommendResults.Observe(float64(len(result)))

	r.logger.Debug("Recommendations computed",
		zap.Int64("user_id", userID),
		zap.Int("watched", len(watched)),
		zap.Int("catalog", snapshot.Len()),
		zap.Int("results", len(result)),
		zap.Duration("elapsed", elapsed),
	)

	return result, nil
}

// neighbors queries the snapshot once per watched video. Results keep the
// watch-list order regardless of completion order.
func (r *Recommender) neighbors(ctx context.Context, snapshot *Snapshot, watched []models.Video) ([][]Neighbor, error) {
	out := make([][]Neighbor, len(watched))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range watched {
		id := watched[i].ID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = snapshot.TopK(id, r.topK)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rank neighbours: %w", err)
	}
	return out, nil
}
