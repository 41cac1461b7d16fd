// Package validation checks request input before it reaches the services.
package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/hlsrec/hls-recommender-go/internal/models"
)

var (
	// hlsFileRegex matches what the encoder writes: <stem>.m3u8 or <stem>_NNN.ts.
	hlsFileRegex  = regexp.MustCompile(`^[A-Za-z0-9-]+(\.m3u8|_[0-9]{3,}\.ts)$`)
	categoryRegex = regexp.MustCompile(`^[\p{L}\p{N} _-]{1,50}$`)
)

// MaxFilenameLength mirrors the width of videos.filename.
const MaxFilenameLength = 255

// Validator holds the upload limits.
type Validator struct {
	maxUploadBytes int64
}

// New creates a Validator accepting uploads up to maxUploadBytes.
func New(maxUploadBytes int64) *Validator {
	return &Validator{maxUploadBytes: maxUploadBytes}
}

// MaxUploadBytes returns the configured upload limit.
func (v *Validator) MaxUploadBytes() int64 {
	return v.maxUploadBytes
}

// ValidateUpload checks the client-supplied file name and size.
func (v *Validator) ValidateUpload(filename string, size int64) error {
	name := SanitizeFilename(filename)
	if name == "" {
		return fmt.Errorf("file name is required")
	}
	if len(name) > MaxFilenameLength {
		return fmt.Errorf("file name exceeds %d characters", MaxFilenameLength)
	}
	if size <= 0 {
		return fmt.Errorf("uploaded file is empty")
	}
	if v.maxUploadBytes > 0 && size > v.maxUploadBytes {
		return fmt.Errorf("uploaded file exceeds maximum size of %d bytes", v.maxUploadBytes)
	}
	return nil
}

// ValidateMetadata checks the optional upload form fields.
func (v *Validator) ValidateMetadata(tags string, category *string, duration *int) error {
	if len(tags) > models.MaxTagsLength {
		return fmt.Errorf("tags exceed %d characters", models.MaxTagsLength)
	}
	if category != nil && !categoryRegex.MatchString(*category) {
		return fmt.Errorf("invalid category: %q", *category)
	}
	if duration != nil && *duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}

// SanitizeFilename strips any directory part a client sent with the name.
func SanitizeFilename(filename string) string {
	name := strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// ParseID parses a positive integer path parameter.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", raw)
	}
	return id, nil
}

// ParseLimit parses an optional positive limit, clamped to max. Empty input
// yields def.
func ParseLimit(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid limit: %q", raw)
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}

// IsValidHLSFilename reports whether name can only refer to a file the
// encoder wrote directly under the HLS directory.
func IsValidHLSFilename(name string) bool {
	return hlsFileRegex.MatchString(name)
}
