package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hlsrec/hls-recommender-go/internal/metrics"

	"go.uber.org/zap"
)

var commandContext = exec.CommandContext

const (
	// ManifestExt and SegmentExt name the files produced for a stem.
	ManifestExt = ".m3u8"
	SegmentExt  = ".ts"

	defaultSegmentSeconds = 10
	defaultTimeout        = 30 * time.Minute
	maxDiagnosticsBytes   = 16 << 10
)

// Request names the input file and where its stream should be written.
type Request struct {
	InputPath string
	OutputDir string
	// Stem must be unique per upload; output is <Stem>.m3u8 and <Stem>_NNN.ts.
	Stem string
}

// Result is the outcome of one encoder run.
type Result struct {
	Success      bool
	ManifestPath string
	// Diagnostics holds the tail of the encoder's combined output.
	Diagnostics string
	Elapsed     time.Duration
}

// Encoder produces an HLS stream from a media file.
type Encoder interface {
	Transcode(ctx context.Context, req Request) (Result, error)
}

// Option configures FFmpeg.
type Option func(*FFmpeg)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(f *FFmpeg) {
		if binary != "" {
			f.binary = binary
		}
	}
}

// WithPreset sets the x264 preset.
func WithPreset(preset string) Option {
	return func(f *FFmpeg) {
		if preset != "" {
			f.preset = preset
		}
	}
}

// WithSegmentSeconds sets the target segment duration.
func WithSegmentSeconds(seconds int) Option {
	return func(f *FFmpeg) {
		if seconds > 0 {
			f.segmentSeconds = seconds
		}
	}
}

// WithTimeout bounds a single encoder run.
func WithTimeout(timeout time.Duration) Option {
	return func(f *FFmpeg) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *FFmpeg) {
		if l != nil {
			f.logger = l
		}
	}
}

// FFmpeg runs the ffmpeg command-line encoder.
type FFmpeg struct {
	logger         *zap.Logger
	binary         string
	preset         string
	segmentSeconds int
	timeout        time.Duration
}

// NewFFmpeg constructs an encoder using defaults.
func NewFFmpeg(opts ...Option) *FFmpeg {
	f := &FFmpeg{
		logger:         zap.NewNop(),
		binary:         "ffmpeg",
		preset:         "ultrafast",
		segmentSeconds: defaultSegmentSeconds,
		timeout:        defaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Args returns the encoder arguments for req.
func (f *FFmpeg) Args(req Request) []string {
	return []string{
		"-i", req.InputPath,
		"-preset", f.preset,
		"-f", "hls",
		"-hls_time", strconv.Itoa(f.segmentSeconds),
		"-hls_list_size", "0",
		"-hls_segment_filename", filepath.Join(req.OutputDir, req.Stem+"_%03d"+SegmentExt),
		ManifestPath(req.OutputDir, req.Stem),
	}
}

// ManifestPath returns where the manifest for stem is written.
func ManifestPath(dir, stem string) string {
	return filepath.Join(dir, stem+ManifestExt)
}

// Transcode runs the encoder. A non-zero exit, a timeout or a missing
// manifest yields an unsuccessful Result and a nil error; any partial output
// is removed. The error is reserved for requests that cannot be attempted.
func (f *FFmpeg) Transcode(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.InputPath) == "" {
		return Result{}, errors.New("input path required")
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return Result{}, errors.New("output directory required")
	}
	if strings.TrimSpace(req.Stem) == "" || strings.ContainsAny(req.Stem, `/\`) {
		return Result{}, fmt.Errorf("invalid output stem %q", req.Stem)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var output bytes.Buffer
	cmd := commandContext(runCtx, f.binary, f.Args(req)...) //nolint:gosec
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)
	metrics.TranscodeDuration.Observe(elapsed.Seconds())

	result := Result{
		ManifestPath: ManifestPath(req.OutputDir, req.Stem),
		Diagnostics:  tail(output.String(), maxDiagnosticsBytes),
		Elapsed:      elapsed,
	}

	switch {
	case ctx.Err() != nil:
		// the caller's context ended first, whatever its own deadline
		result.Diagnostics = appendLine(result.Diagnostics, fmt.Sprintf("encoder cancelled after %s: %v", elapsed.Round(time.Millisecond), ctx.Err()))
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.Diagnostics = appendLine(result.Diagnostics, fmt.Sprintf("encoder timed out after %s", f.timeout))
	case runErr != nil:
		result.Diagnostics = appendLine(result.Diagnostics, fmt.Sprintf("encoder failed: %v", runErr))
	default:
		if _, err := os.Stat(result.ManifestPath); err != nil {
			result.Diagnostics = appendLine(result.Diagnostics, "encoder exited cleanly but produced no manifest")
		} else {
			result.Success = true
		}
	}

	if !result.Success {
		metrics.TranscodesTotal.WithLabelValues(metrics.ResultFailure).Inc()
		RemoveOutput(req.OutputDir, req.Stem)
		result.ManifestPath = ""
		f.logger.Warn("Transcode failed",
			zap.String("input", req.InputPath),
			zap.String("stem", req.Stem),
			zap.Duration("elapsed", elapsed),
			zap.String("diagnostics", tail(result.Diagnostics, 1024)),
		)
		return result, nil
	}

	metrics.TranscodesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	f.logger.Info("Transcode completed",
		zap.String("input", req.InputPath),
		zap.String("manifest", result.ManifestPath),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

// RemoveOutput deletes the manifest and segments written for stem.
func RemoveOutput(dir, stem string) {
	_ = os.Remove(ManifestPath(dir, stem))
	segments, _ := filepath.Glob(filepath.Join(dir, stem+"_*"+SegmentExt))
	for _, s := range segments {
		_ = os.Remove(s)
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func appendLine(s, line string) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return line
	}
	return s + "\n" + line
}

var _ Encoder = (*FFmpeg)(nil)
