package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hlsrec/hls-recommender-go/internal/models"
	"github.com/hlsrec/hls-recommender-go/internal/service"
	"github.com/hlsrec/hls-recommender-go/internal/transcode"
	"github.com/hlsrec/hls-recommender-go/internal/validation"
	"github.com/hlsrec/hls-recommender-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// multipartOverhead allows for form boundaries and the metadata fields.
const multipartOverhead = 1 << 20

// UploadService accepts uploads and reports asynchronous job status.
type UploadService interface {
	Upload(ctx context.Context, up *service.Upload) (*models.UploadResponse, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.TranscodeJob, error)
}

// VideoService answers catalog queries.
type VideoService interface {
	Popular(ctx context.Context, limit int) ([]models.Video, error)
	Recommend(ctx context.Context, userID int64, limit int) ([]models.Video, error)
	History(ctx context.Context, userID int64) ([]models.Video, error)
}

// VideoHandler handles upload, catalog and stream requests.
type VideoHandler struct {
	uploads        UploadService
	videos         VideoService
	hlsDir         string
	maxUploadBytes int64
}

// NewVideoHandler creates a new VideoHandler instance.
func NewVideoHandler(uploads UploadService, videos VideoService, hlsDir string, maxUploadBytes int64) *VideoHandler {
	return &VideoHandler{
		uploads:        uploads,
		videos:         videos,
		hlsDir:         hlsDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload handles POST /upload with a multipart "file" field and optional
// "tags", "category" and "duration" fields.
func (h *VideoHandler) Upload(c *gin.Context) {
	limit := h.maxUploadBytes + multipartOverhead
	if c.Request.ContentLength > limit {
		respondError(c, http.StatusRequestEntityTooLarge, "Uploaded file is too large", nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondError(c, http.StatusRequestEntityTooLarge, "Uploaded file is too large", nil)
		case errors.Is(err, http.ErrMissingFile):
			badRequest(c, "No file part")
		default:
			badRequest(c, "Invalid multipart form: "+err.Error())
		}
		return
	}
	if fileHeader.Filename == "" {
		badRequest(c, "No selected file")
		return
	}

	up := &service.Upload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Tags:     strings.TrimSpace(c.PostForm("tags")),
	}
	if category := strings.TrimSpace(c.PostForm("category")); category != "" {
		up.Category = &category
	}
	if raw := strings.TrimSpace(c.PostForm("duration")); raw != "" {
		duration, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "duration must be an integer number of seconds")
			return
		}
		up.Duration = &duration
	}

	file, err := fileHeader.Open()
	if err != nil {
		handleError(c, &service.ProcessingError{Message: "failed to open upload", Cause: err})
		return
	}
	defer file.Close()
	up.Content = file

	logger.Log.Info("Received upload",
		zap.String("filename", fileHeader.Filename),
		zap.Int64("size", fileHeader.Size),
		zap.String("clientIp", c.ClientIP()),
	)

	resp, err := h.uploads.Upload(c.Request.Context(), up)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusOK
	if resp.JobID != nil {
		status = http.StatusAccepted
	}
	c.JSON(status, resp)
}

// GetJob handles GET /jobs/:jobID.
func (h *VideoHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("jobID"))
	if err != nil {
		badRequest(c, "invalid job id")
		return
	}

	job, err := h.uploads.GetJob(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Recommend handles GET /recommend/:userID with an optional ?limit=N.
func (h *VideoHandler) Recommend(c *gin.Context) {
	userID, err := validation.ParseID(c.Param("userID"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	limit, err := validation.ParseLimit(c.Query("limit"), 0, 0)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	videos, err := h.videos.Recommend(c.Request.Context(), userID, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Summaries(videos))
}

// History handles GET /history/:userID.
func (h *VideoHandler) History(c *gin.Context) {
	userID, err := validation.ParseID(c.Param("userID"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	videos, err := h.videos.History(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Summaries(videos))
}

// ListVideos handles GET /api/videos with an optional ?limit=N.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	limit, err := validation.ParseLimit(c.Query("limit"), service.DefaultPopularLimit, service.MaxPopularLimit)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	videos, err := h.videos.Popular(c.Request.Context(), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Summaries(videos))
}

// ServeHLS handles GET /hls/:filename, serving manifests and segments.
func (h *VideoHandler) ServeHLS(c *gin.Context) {
	name := c.Param("filename")
	if !validation.IsValidHLSFilename(name) {
		respondError(c, http.StatusNotFound, "stream file not found", nil)
		return
	}

	path := filepath.Join(h.hlsDir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		respondError(c, http.StatusNotFound, "stream file not found", nil)
		return
	}

	if strings.HasSuffix(name, transcode.ManifestExt) {
		c.Header("Content-Type", "application/vnd.apple.mpegurl")
		c.Header("Cache-Control", "no-cache")
	} else {
		c.Header("Content-Type", "video/mp2t")
	}
	c.File(path)
}
