package models

import "time"

// File is the metadata row for one blob held by the file storage backend
type File struct {
	ID          string    `json:"id" db:"id"`
	FileName    string    `json:"fileName" db:"file_name"`
	FilePath    string    `json:"-" db:"file_path"`
	FileSize    int64     `json:"fileSize" db:"file_size"`
	ContentType string    `json:"contentType" db:"content_type"`
	UploadedBy  *string   `json:"uploadedBy,omitempty" db:"uploaded_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
