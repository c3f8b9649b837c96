package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidImage is returned when the payload is not a decodable image data URL.
var ErrInvalidImage = errors.New("invalid image payload")

// Store saves uploaded media and returns an opaque public URL. The rest of
// the system only ever carries the URL around.
type Store interface {
	// Save decodes a base64 data URL and stores it, returning the public URL.
	Save(ctx context.Context, dataURL string) (string, error)
}

var extByMIME = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalStore writes media files to a local directory served under baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the media directory if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save decodes a "data:image/...;base64,..." payload to disk.
func (s *LocalStore) Save(ctx context.Context, dataURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mimeType, raw, ok := splitDataURL(dataURL)
	if !ok {
		return "", ErrInvalidImage
	}
	ext, ok := extByMIME[mimeType]
	if !ok {
		return "", ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrInvalidImage
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

func splitDataURL(dataURL string) (mimeType, payload string, ok bool) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", "", false
	}
	meta, payload, found := strings.Cut(dataURL[len("data:"):], ",")
	if !found {
		return "", "", false
	}
	mimeType, _, _ = strings.Cut(meta, ";")
	if !strings.Contains(meta, ";base64") {
		return "", "", false
	}
	return mimeType, payload, true
}
