// Package transcode wraps the external encoder that turns an uploaded file
// into an HLS manifest plus numbered segments.
package transcode
