package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/filestorage"
)

func newFileFixture(t *testing.T, maxBytes int64) (FileService, ResourceService) {
	t.Helper()
	repos := newTestRepos()
	storage, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewFileService(repos.Files, repos.Resources, storage, maxBytes, nopLogger()),
		NewResourceService(repos.Resources, nopLogger())
}

func TestFileUploadAndDownload(t *testing.T) {
	files, resources := newFileFixture(t, 1<<20)
	ctx := context.Background()

	f, err := files.Upload(ctx, testAdmin, strings.NewReader("%PDF-1.4 exam"), "exam.pdf", "", 13)
	require.NoError(t, err)
	require.Equal(t, "exam.pdf", f.FileName)
	require.Equal(t, "application/pdf", f.ContentType)
	require.Equal(t, int64(13), f.FileSize)

	pyq := mustCreate(t, resources, "pyqs", `{"title":"Databases 2024","fileId":"`+f.ID+`"}`)

	meta, rc, err := files.Download(ctx, f.ID, DownloadHint{Type: "pyqs", ResourceID: pyq.ID})
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "%PDF-1.4 exam", string(data))
	require.Equal(t, f.ID, meta.ID)

	got, err := resources.Get(ctx, nil, "pyqs", pyq.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Downloads)
}

func TestFileDownloadCounterIsBestEffort(t *testing.T) {
	files, _ := newFileFixture(t, 1<<20)
	ctx := context.Background()

	f, err := files.Upload(ctx, testStudent, strings.NewReader("notes"), "notes.txt", "text/plain", 5)
	require.NoError(t, err)

	_, rc, err := files.Download(ctx, f.ID, DownloadHint{Type: "pyqs", ResourceID: "gone"})
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	_, _, err = files.Download(ctx, "missing", DownloadHint{})
	require.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestFileUploadLimits(t *testing.T) {
	files, _ := newFileFixture(t, 4)
	ctx := context.Background()

	_, err := files.Upload(ctx, testStudent, strings.NewReader("too large"), "big.bin", "", 9)
	require.True(t, errors.Is(err, apperrors.ErrFileTooLarge))

	_, err = files.Upload(ctx, nil, strings.NewReader("x"), "x.txt", "", 1)
	require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
}
