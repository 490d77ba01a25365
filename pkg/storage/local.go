package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage implements Storage on the local filesystem.
type LocalStorage struct {
	basePath string
	urlBase  string
}

// LocalConfig holds configuration for local storage.
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"`
	URLBase  string `mapstructure:"url_base"` // prefix returned by GetURL, e.g. /uploads
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	urlBase := cfg.URLBase
	if urlBase == "" {
		urlBase = "/uploads"
	}

	return &LocalStorage{basePath: absPath, urlBase: strings.TrimSuffix(urlBase, "/")}, nil
}

// fullPath returns the filesystem path for a key, refusing keys that
// would escape basePath.
func (s *LocalStorage) fullPath(key string) string {
	cleanKey := filepath.Clean(key)
	if cleanKey == ".." || strings.HasPrefix(cleanKey, ".."+string(os.PathSeparator)) {
		cleanKey = ""
	}
	return filepath.Join(s.basePath, cleanKey)
}

// BasePath returns the directory files are stored under.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// URLBase returns the URL prefix GetURL builds links under. The HTTP
// layer serves BasePath at this prefix so the links resolve.
func (s *LocalStorage) URLBase() string {
	return s.urlBase
}

func (s *LocalStorage) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	path := s.fullPath(key)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func (s *LocalStorage) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.fullPath(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.fullPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *LocalStorage) GetURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return s.urlBase + "/" + strings.TrimPrefix(key, "/"), nil
}

var _ Storage = (*LocalStorage)(nil)
