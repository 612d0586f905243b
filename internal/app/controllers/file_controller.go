package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/app/services"
	"github.com/yigit/deptportal/internal/middleware"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

// multipartOverhead leaves room for the form boundaries around the file part
const multipartOverhead = 1 << 20

// FileController handles uploads and downloads
type FileController struct {
	files    services.FileService
	maxBytes int64
	logger   zerolog.Logger
}

// NewFileController creates a new FileController
func NewFileController(files services.FileService, maxBytes int64, logger zerolog.Logger) *FileController {
	return &FileController{files: files, maxBytes: maxBytes, logger: logger}
}

// Upload stores the multipart field "file"
// @Summary Upload a file
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing or oversized file"
// @Router /upload [post]
func (c *FileController) Upload(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxBytes+multipartOverhead)

	header, err := ctx.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			middleware.HandleAPIError(ctx, apperrors.NewCustomError(apperrors.ErrFileTooLarge,
				fmt.Sprintf("file exceeds the %d byte upload limit", c.maxBytes)))
			return
		}
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("file is required", map[string]interface{}{"file": "file is required"}))
		return
	}

	src, err := header.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer src.Close()

	f, err := c.files.Upload(ctx.Request.Context(), middleware.CallerFrom(ctx), src,
		header.Filename, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.UploadResponse{
		BlobID:      f.ID,
		FileName:    f.FileName,
		FileSize:    f.FileSize,
		ContentType: f.ContentType,
		FileURL:     "/api/files/" + f.ID,
	}))
}

// Download streams a blob
// @Summary Download a file
// @Tags files
// @Produce octet-stream
// @Param id path string true "Blob id"
// @Param type query string false "Resource type to attribute the download to"
// @Param resourceId query string false "Resource id to attribute the download to"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse
// @Router /files/{id} [get]
func (c *FileController) Download(ctx *gin.Context) {
	var q dto.DownloadQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	f, rc, err := c.files.Download(ctx.Request.Context(), ctx.Param("id"), services.DownloadHint{Type: q.Type, ResourceID: q.ResourceID})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer rc.Close()

	ctx.Header("Content-Type", f.ContentType)
	ctx.Header("Content-Length", strconv.FormatInt(f.FileSize, 10))
	ctx.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", f.FileName))
	ctx.Status(http.StatusOK)
	if _, err := io.Copy(ctx.Writer, rc); err != nil {
		c.logger.Warn().Err(err).Str("blobID", f.ID).Msg("Download interrupted")
	}
}
