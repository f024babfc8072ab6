// Package storage is the blob-storage collaborator: it accepts raw
// image bytes and returns a retrievable URL. The local implementation
// writes under a configured directory served as static files; a cloud
// bucket implementation would satisfy the same interface.
package storage

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrNotAnImage = errors.New("uploaded file is not an image")

// Store saves image bytes and returns their public URL.
type Store interface {
	Store(data []byte) (string, error)
}

type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll -> %w", err)
	}

	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStore) Store(data []byte) (string, error) {
	ext, err := imageExt(data)
	if err != nil {
		return "", err
	}

	filename := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile -> %w", err)
	}

	return s.baseURL + "/" + filename, nil
}

// imageExt sniffs the content type and maps it to a file extension.
// Anything that is not an image is rejected before it touches disk.
func imageExt(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png", nil
	case "image/jpeg":
		return ".jpg", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", ErrNotAnImage
	}
}
