package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

// FileRepository handles database operations for blob metadata
type FileRepository struct {
	db *pgxpool.Pool
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

// GetByID retrieves a file by ID
func (r *FileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `
		SELECT id, file_name, file_path, file_size, content_type, uploaded_by, created_at
		FROM files
		WHERE id = $1
	`

	var file models.File
	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.FileName,
		&file.FilePath,
		&file.FileSize,
		&file.ContentType,
		&file.UploadedBy,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("file %s not found", id))
		}
		return nil, fmt.Errorf("error getting file: %w", err)
	}

	return &file, nil
}

// Create records a stored blob
func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, file_name, file_path, file_size, content_type, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		file.ID,
		file.FileName,
		file.FilePath,
		file.FileSize,
		file.ContentType,
		file.UploadedBy,
		file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	return nil
}

// Delete deletes a file record
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}
