package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/deptportal/internal/pkg/logger"
)

// LocalStorage keeps one file per blob under a base directory
type LocalStorage struct {
	basePath string
	create   func(path string) (io.WriteCloser, error)
}

func createFile(path string) (io.WriteCloser, error) { return os.Create(path) }

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath, create: createFile}, nil
}

// Put writes r to a new file named after a fresh uuid, keeping the original extension
func (ls *LocalStorage) Put(_ context.Context, r io.Reader, filename string) (string, string, int64, error) {
	id := uuid.New().String()
	name := id + strings.ToLower(filepath.Ext(filename))
	dstPath := filepath.Join(ls.basePath, name)

	dst, err := ls.create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", "", 0, fmt.Errorf("failed to create destination file: %w", err)
	}

	size, err := io.Copy(dst, r)
	closeErr := dst.Close()
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", "", 0, fmt.Errorf("failed to save file content: %w", err)
	}
	// a failed close can mean the data never reached disk
	if closeErr != nil {
		logger.Error().Err(closeErr).Str("path", dstPath).Msg("Failed to flush uploaded file")
		_ = os.Remove(dstPath)
		return "", "", 0, fmt.Errorf("failed to finish writing file: %w", closeErr)
	}

	logger.Debug().Str("filename", filename).Str("saved_as", name).Int64("size", size).Msg("Blob stored")
	return id, name, size, nil
}

// Open opens the blob stored at path, relative to the base directory
func (ls *LocalStorage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	full, err := ls.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// Delete removes the blob at path. Returns nil if the file doesn't exist.
func (ls *LocalStorage) Delete(_ context.Context, path string) error {
	full, err := ls.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error().Err(err).Str("path", full).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// resolve keeps every access inside basePath
func (ls *LocalStorage) resolve(path string) (string, error) {
	name := filepath.Base(path)
	if name == "" || name == "." || name == "/" || name != path {
		return "", fmt.Errorf("invalid blob path: %s", path)
	}
	return filepath.Join(ls.basePath, name), nil
}
