// Package storage keeps uploaded pizza images on the local disk and serves
// them under a public URL prefix.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// allowed maps accepted upload extensions to their sniffed MIME type
var allowed = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ImageStore saves images and returns their public URL
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// LocalImageStore writes images into Dir and exposes them under URLPrefix
type LocalImageStore struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
}

// NewLocalImageStore creates the upload directory when missing
func NewLocalImageStore(dir, urlPrefix string, maxBytes int64) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", dir, err)
	}
	return &LocalImageStore{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/"), MaxBytes: maxBytes}, nil
}

// Save checks size, extension and content type, then writes the image under a random name
func (s *LocalImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	expected, ok := allowed[ext]
	if !ok {
		return "", models.NewValidationError("file", "only jpg, jpeg and png images are accepted")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.MaxBytes {
		return "", models.NewValidationError("file", fmt.Sprintf("must not exceed %d bytes", s.MaxBytes))
	}
	if len(data) == 0 {
		return "", models.NewValidationError("file", "must not be empty")
	}
	if detected := mimetype.Detect(data); !detected.Is(expected) {
		return "", models.NewValidationError("file", fmt.Sprintf("content is %s, expected %s", detected.String(), expected))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	log.WithFields(log.Fields{"file": name, "bytes": len(data)}).Info("Stored pizza image")
	return path.Join(s.URLPrefix, name), nil
}

// Delete removes an image previously returned by Save. URLs outside the prefix are ignored.
func (s *LocalImageStore) Delete(_ context.Context, url string) error {
	name, ok := strings.CutPrefix(url, s.URLPrefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing image %s: %w", name, err)
	}
	return nil
}
