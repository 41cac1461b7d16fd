package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hlsrec/hls-recommender-go/internal/db"
	"github.com/hlsrec/hls-recommender-go/internal/models"
	"github.com/hlsrec/hls-recommender-go/internal/queue"
	"github.com/hlsrec/hls-recommender-go/internal/transcode"
	"github.com/hlsrec/hls-recommender-go/internal/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeFakeStream(req transcode.Request) string {
	_ = os.MkdirAll(req.OutputDir, 0o755)
	_ = os.WriteFile(filepath.Join(req.OutputDir, req.Stem+"_000.ts"), []byte("seg"), 0o600)
	manifest := transcode.ManifestPath(req.OutputDir, req.Stem)
	_ = os.WriteFile(manifest, []byte("#EXTM3U\n"), 0o600)
	return manifest
}

func testUploadConfig(t *testing.T, async bool) UploadConfig {
	dir := t.TempDir()
	return UploadConfig{
		UploadDir:     filepath.Join(dir, "uploads"),
		HLSDir:        filepath.Join(dir, "hls"),
		PublicBaseURL: "http://localhost:8080/",
		Async:         async,
	}
}

func newUpload(body string) *Upload {
	return &Upload{
		Filename: "holiday.MP4",
		Size:     int64(len(body)),
		Content:  strings.NewReader(body),
		Tags:     "action, adventure",
	}
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUploadService_SyncSuccess(t *testing.T) {
	cfg := testUploadConfig(t, false)
	videos := new(mockVideoStore)
	encoder := &fakeEncoder{result: transcode.Result{Success: true}}
	svc := NewUploadService(videos, nil, encoder, nil, validation.New(1<<20), cfg)

	videos.On("CreateVideo", mock.Anything, mock.MatchedBy(func(v *models.Video) bool {
		return v.Filename == "holiday.MP4" && v.Tags == "action, adventure" &&
			strings.HasPrefix(v.HLSURL, "http://localhost:8080/hls/") && strings.HasSuffix(v.HLSURL, ".m3u8")
	})).Return(nil)

	resp, err := svc.Upload(context.Background(), newUpload("video-bytes"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.VideoID)
	assert.Nil(t, resp.JobID)
	require.Len(t, encoder.requests, 1)
	req := encoder.requests[0]
	assert.Equal(t, cfg.HLSDir, req.OutputDir)
	assert.Equal(t, "http://localhost:8080/hls/"+req.Stem+".m3u8", resp.HLSURL)
	assert.Equal(t, ".mp4", filepath.Ext(req.InputPath))
	assert.FileExists(t, req.InputPath)
	videos.AssertExpectations(t)
}

func TestUploadService_UniqueStems(t *testing.T) {
	cfg := testUploadConfig(t, false)
	videos := new(mockVideoStore)
	videos.On("CreateVideo", mock.Anything, mock.Anything).Return(nil)
	encoder := &fakeEncoder{result: transcode.Result{Success: true}}
	svc := NewUploadService(videos, nil, encoder, nil, validation.New(1<<20), cfg)

	for i := 0; i < 3; i++ {
		_, err := svc.Upload(context.Background(), newUpload("same name, same bytes"))
		require.NoError(t, err)
	}

	stems := map[string]bool{}
	for _, r := range encoder.requests {
		stems[r.Stem] = true
	}
	assert.Len(t, stems, 3)
}

func TestUploadService_EncoderFailureCreatesNoVideo(t *testing.T) {
	cfg := testUploadConfig(t, false)
	videos := new(mockVideoStore)
	encoder := &fakeEncoder{result: transcode.Result{Success: false, Diagnostics: "Invalid data found when processing input"}}
	svc := NewUploadService(videos, nil, encoder, nil, validation.New(1<<20), cfg)

	_, err := svc.Upload(context.Background(), newUpload("garbage"))

	var te *TranscodeError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Diagnostics, "Invalid data")
	videos.AssertNotCalled(t, "CreateVideo", mock.Anything, mock.Anything)
	assert.Empty(t, dirEntries(t, cfg.UploadDir))
}

func TestUploadService_EncoderStartError(t *testing.T) {
	cfg := testUploadConfig(t, false)
	videos := new(mockVideoStore)
	encoder := &fakeEncoder{err: errors.New("invalid output stem")}
	svc := NewUploadService(videos, nil, encoder, nil, validation.New(1<<20), cfg)

	_, err := svc.Upload(context.Background(), newUpload("bytes"))

	var pe *ProcessingError
	require.ErrorAs(t, err, &pe)
	videos.AssertNotCalled(t, "CreateVideo", mock.Anything, mock.Anything)
}

func TestUploadService_StoreFailureRemovesStream(t *testing.T) {
	cfg := testUploadConfig(t, false)
	videos := new(mockVideoStore)
	videos.On("CreateVideo", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	encoder := &fakeEncoder{result: transcode.Result{Success: true}}
	svc := NewUploadService(videos, nil, encoder, nil, validation.New(1<<20), cfg)

	_, err := svc.Upload(context.Background(), newUpload("bytes"))

	var pe *ProcessingError
	require.ErrorAs(t, err, &pe)
	assert.Empty(t, dirEntries(t, cfg.HLSDir))
	assert.Empty(t, dirEntries(t, cfg.UploadDir))
}

func TestUploadService_Validation(t *testing.T) {
	cfg := testUploadConfig(t, false)
	encoder := &fakeEncoder{}
	svc := NewUploadService(new(mockVideoStore), nil, encoder, nil, validation.New(10), cfg)

	tests := []struct {
		name string
		up   *Upload
	}{
		{"missing filename", &Upload{Filename: "", Size: 3, Content: strings.NewReader("abc")}},
		{"empty file", &Upload{Filename: "a.mp4", Size: 0, Content: strings.NewReader("")}},
		{"declared too large", &Upload{Filename: "a.mp4", Size: 11, Content: strings.NewReader("x")}},
		{"actual bytes too large", &Upload{Filename: "a.mp4", Size: 5, Content: strings.NewReader("0123456789ABC")}},
		{"declared size but no bytes", &Upload{Filename: "a.mp4", Size: 5, Content: strings.NewReader("")}},
		{"tags too long", &Upload{Filename: "a.mp4", Size: 1, Content: strings.NewReader("x"), Tags: strings.Repeat("t", 501)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), tt.up)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}

	assert.Empty(t, encoder.requests)
	assert.Empty(t, dirEntries(t, cfg.UploadDir))
}

func TestUploadService_AsyncEnqueues(t *testing.T) {
	cfg := testUploadConfig(t, true)
	jobs := new(mockJobStore)
	publisher := new(mockPublisher)
	encoder := &fakeEncoder{}
	svc := NewUploadService(new(mockVideoStore), jobs, encoder, publisher, validation.New(1<<20), cfg)

	var created *models.TranscodeJob
	jobs.On("CreateJob", mock.Anything, mock.AnythingOfType("*models.TranscodeJob")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*models.TranscodeJob) }).
		Return(nil)
	publisher.On("PublishJob", mock.Anything, mock.AnythingOfType("*queue.TranscodeJobMessage")).Return(nil)

	resp, err := svc.Upload(context.Background(), newUpload("bytes"))
	require.NoError(t, err)

	require.NotNil(t, created)
	require.NotNil(t, resp.JobID)
	assert.Equal(t, created.ID, *resp.JobID)
	assert.Equal(t, models.JobStatusPending, resp.Status)
	assert.Equal(t, models.JobStatusPending, created.Status)
	assert.Zero(t, resp.VideoID)
	assert.Empty(t, encoder.requests)
	assert.FileExists(t, created.InputPath)
	publisher.AssertExpectations(t)
}

func TestUploadService_AsyncPublishFailure(t *testing.T) {
	cfg := testUploadConfig(t, true)
	jobs := new(mockJobStore)
	publisher := new(mockPublisher)
	svc := NewUploadService(new(mockVideoStore), jobs, &fakeEncoder{}, publisher, validation.New(1<<20), cfg)

	jobs.On("CreateJob", mock.Anything, mock.Anything).Return(nil)
	jobs.On("FailJob", mock.Anything, mock.Anything, mock.MatchedBy(func(d string) bool {
		return strings.Contains(d, "publishing failed")
	})).Return(nil)
	publisher.On("PublishJob", mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	_, err := svc.Upload(context.Background(), newUpload("bytes"))

	var pe *ProcessingError
	require.ErrorAs(t, err, &pe)
	jobs.AssertExpectations(t)
	assert.Empty(t, dirEntries(t, cfg.UploadDir))
}

func pendingJob(t *testing.T, cfg UploadConfig) *models.TranscodeJob {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.UploadDir, 0o755))
	input := filepath.Join(cfg.UploadDir, "in.mp4")
	require.NoError(t, os.WriteFile(input, []byte("bytes"), 0o600))
	return &models.TranscodeJob{
		ID:               uuid.New(),
		OriginalFilename: "holiday.mp4",
		InputPath:        input,
		Stem:             uuid.NewString(),
		Tags:             "comedy",
		Status:           models.JobStatusPending,
	}
}

func TestUploadService_HandleJobSuccess(t *testing.T) {
	cfg := testUploadConfig(t, true)
	jobs := new(mockJobStore)
	encoder := &fakeEncoder{result: transcode.Result{Success: true}}
	svc := NewUploadService(nil, jobs, encoder, nil, validation.New(1<<20), cfg)

	job := pendingJob(t, cfg)
	jobs.On("GetJob", mock.Anything, job.ID).Return(job, nil)
	jobs.On("CompleteJob", mock.Anything, job.ID, mock.MatchedBy(func(v *models.Video) bool {
		return v.Filename == "holiday.mp4" && v.Tags == "comedy" &&
			v.HLSURL == "http://localhost:8080/hls/"+job.Stem+".m3u8"
	})).Return(nil)

	err := svc.HandleJob(context.Background(), &queue.TranscodeJobMessage{JobID: job.ID})
	require.NoError(t, err)
	jobs.AssertExpectations(t)
}

func TestUploadService_HandleJobEncoderFailure(t *testing.T) {
	cfg := testUploadConfig(t, true)
	jobs := new(mockJobStore)
	encoder := &fakeEncoder{result: transcode.Result{Diagnostics: "moov atom not found"}}
	svc := NewUploadService(nil, jobs, encoder, nil, validation.New(1<<20), cfg)

	job := pendingJob(t, cfg)
	jobs.On("GetJob", mock.Anything, job.ID).Return(job, nil)
	jobs.On("FailJob", mock.Anything, job.ID, "moov atom not found").Return(nil)

	err := svc.HandleJob(context.Background(), &queue.TranscodeJobMessage{JobID: job.ID})
	require.NoError(t, err)
	jobs.AssertNotCalled(t, "CompleteJob", mock.Anything, mock.Anything, mock.Anything)
	assert.NoFileExists(t, job.InputPath)
}

func TestUploadService_HandleJobInterruptedByShutdown(t *testing.T) {
	cfg := testUploadConfig(t, true)
	jobs := new(mockJobStore)
	encoder := &fakeEncoder{result: transcode.Result{Diagnostics: "encoder cancelled"}}
	svc := NewUploadService(nil, jobs, encoder, nil, validation.New(1<<20), cfg)

	job := pendingJob(t, cfg)
	jobs.On("GetJob", mock.Anything, job.ID).Return(job, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.HandleJob(ctx, &queue.TranscodeJobMessage{JobID: job.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, encoder.requests, 1)
	jobs.AssertNotCalled(t, "FailJob", mock.Anything, mock.Anything, mock.Anything)
	jobs.AssertNotCalled(t, "CompleteJob", mock.Anything, mock.Anything, mock.Anything)
	assert.FileExists(t, job.InputPath)
}

func TestUploadService_HandleJobSkipsFinishedAndUnknown(t *testing.T) {
	cfg := testUploadConfig(t, true)
	jobs := new(mockJobStore)
	encoder := &fakeEncoder{}
	svc := NewUploadService(nil, jobs, encoder, nil, validation.New(1<<20), cfg)

	done := &models.TranscodeJob{ID: uuid.New(), Status: models.JobStatusCompleted}
	unknown := uuid.New()
	jobs.On("GetJob", mock.Anything, done.ID).Return(done, nil)
	jobs.On("GetJob", mock.Anything, unknown).Return(nil, db.ErrNotFound)

	require.NoError(t, svc.HandleJob(context.Background(), &queue.TranscodeJobMessage{JobID: done.ID}))
	require.NoError(t, svc.HandleJob(context.Background(), &queue.TranscodeJobMessage{JobID: unknown}))
	assert.Empty(t, encoder.requests)
}

func TestUploadService_HandleJobStoreFailureIsRetried(t *testing.T) {
	cfg := testUploadConfig(t, true)
	jobs := new(mockJobStore)
	svc := NewUploadService(nil, jobs, &fakeEncoder{}, nil, validation.New(1<<20), cfg)

	id := uuid.New()
	jobs.On("GetJob", mock.Anything, id).Return(nil, errors.New("connection refused"))

	assert.Error(t, svc.HandleJob(context.Background(), &queue.TranscodeJobMessage{JobID: id}))
}

func TestUploadService_GetJob(t *testing.T) {
	cfg := testUploadConfig(t, true)
	jobs := new(mockJobStore)
	svc := NewUploadService(nil, jobs, &fakeEncoder{}, nil, validation.New(1<<20), cfg)

	known := &models.TranscodeJob{ID: uuid.New(), Status: models.JobStatusFailed}
	missing := uuid.New()
	jobs.On("GetJob", mock.Anything, known.ID).Return(known, nil)
	jobs.On("GetJob", mock.Anything, missing).Return(nil, db.ErrNotFound)

	got, err := svc.GetJob(context.Background(), known.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)

	_, err = svc.GetJob(context.Background(), missing)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	sync := NewUploadService(nil, nil, &fakeEncoder{}, nil, validation.New(1), testUploadConfig(t, false))
	_, err = sync.GetJob(context.Background(), missing)
	assert.ErrorAs(t, err, &nf)
}
