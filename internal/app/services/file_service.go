package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/filestorage"
	"github.com/yigit/deptportal/internal/pkg/metrics"
)

// DownloadHint attributes a download to the resource that links the blob
type DownloadHint struct {
	Type       string
	ResourceID string
}

// FileService stores uploaded blobs and streams them back
type FileService interface {
	Upload(ctx context.Context, caller *models.Caller, r io.Reader, filename, contentType string, size int64) (*models.File, error)
	Download(ctx context.Context, id string, hint DownloadHint) (*models.File, io.ReadCloser, error)
}

type fileServiceImpl struct {
	files     repositories.IFileRepository
	resources repositories.IResourceRepository
	storage   filestorage.BlobStore
	maxBytes  int64
	logger    zerolog.Logger
}

// NewFileService creates a new FileService
func NewFileService(
	files repositories.IFileRepository,
	resources repositories.IResourceRepository,
	storage filestorage.BlobStore,
	maxBytes int64,
	logger zerolog.Logger,
) FileService {
	return &fileServiceImpl{
		files:     files,
		resources: resources,
		storage:   storage,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

func (s *fileServiceImpl) Upload(ctx context.Context, caller *models.Caller, r io.Reader, filename, contentType string, size int64) (*models.File, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("file exceeds the %d byte upload limit", s.maxBytes))
	}

	name := filepath.Base(filename)
	if name == "." || name == "/" || name == "" {
		return nil, apperrors.NewValidationError("file name is required", map[string]interface{}{"file": "missing file name"})
	}
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
			contentType = byExt
		} else {
			contentType = "application/octet-stream"
		}
	}

	id, path, written, err := s.storage.Put(ctx, r, name)
	if err != nil {
		return nil, err
	}

	uploader := caller.ID
	file := &models.File{
		ID:          id,
		FileName:    name,
		FilePath:    path,
		FileSize:    written,
		ContentType: contentType,
		UploadedBy:  &uploader,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.files.Create(ctx, file); err != nil {
		if delErr := s.storage.Delete(ctx, path); delErr != nil {
			s.logger.Warn().Err(delErr).Str("path", path).Msg("Failed to remove orphaned blob")
		}
		return nil, err
	}

	s.logger.Info().Str("blobID", id).Str("userID", caller.ID).Int64("size", written).Msg("File uploaded")
	return file, nil
}

// Download opens the blob. When hint names a resource its download counter is bumped;
// a failing counter update is logged and does not affect the download.
func (s *fileServiceImpl) Download(ctx context.Context, id string, hint DownloadHint) (*models.File, io.ReadCloser, error) {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.storage.Open(ctx, file.FilePath)
	if err != nil {
		if errors.Is(err, filestorage.ErrBlobNotFound) {
			return nil, nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("file %s not found", id))
		}
		return nil, nil, err
	}

	label := ""
	if hint.Type != "" && hint.ResourceID != "" {
		if t, err := models.ParseResourceType(hint.Type); err == nil {
			label = string(t)
			if err := s.resources.IncrementDownloads(ctx, t, hint.ResourceID); err != nil {
				s.logger.Warn().Err(err).Str("type", hint.Type).Str("resourceID", hint.ResourceID).Msg("Could not count download")
			}
		}
	}
	metrics.DownloadsTotal.WithLabelValues(label).Inc()

	return file, rc, nil
}
