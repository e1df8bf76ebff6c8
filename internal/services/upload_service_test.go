package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement_backend/internal/imageprocessor"
	"placement_backend/internal/storage"
	"placement_backend/pkg/apperrors"
)

var resumeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func newTestUploadService(t *testing.T, maxSize int64) (UploadService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir(), BaseURL: "/files"})
	require.NoError(t, err)
	svc := NewUploadService(store, imageprocessor.NewProcessor(85), UploadConfig{
		MaxSize:     maxSize,
		ResumeTypes: resumeTypes,
		ImageTypes:  []string{"image/jpeg", "image/png"},
		AvatarSize:  64,
	})
	return svc, store
}

func fileOf(name string, data []byte) *UploadFile {
	return &UploadFile{Reader: bytes.NewReader(data), Filename: name, Size: int64(len(data))}
}

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF")
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadService_UploadResume(t *testing.T) {
	svc, store := newTestUploadService(t, 1024)
	ctx := context.Background()
	userID := newID()

	url, err := svc.UploadResume(ctx, userID, fileOf("CV Final.PDF", pdfBytes()))
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^/files/resumes/` + userID + `/[0-9a-f-]{36}\.pdf$`)
	assert.Regexp(t, pattern, url)

	exists, err := store.Exists(ctx, strings.TrimPrefix(url, "/files/"))
	require.NoError(t, err)
	assert.True(t, exists)

	url, err = svc.UploadResume(ctx, userID, fileOf("cv.docx", []byte("PK\x03\x04 word document")))
	require.NoError(t, err)
	assert.Equal(t, ".docx", path.Ext(url))
}

func TestUploadService_UploadResumeRejects(t *testing.T) {
	svc, _ := newTestUploadService(t, 64)
	ctx := context.Background()

	tests := []struct {
		name string
		file *UploadFile
		want error
	}{
		{"text file", fileOf("cv.txt", []byte("hello")), apperrors.ErrInvalidFileType},
		{"image", fileOf("cv.png", []byte("hello")), apperrors.ErrInvalidFileType},
		{"pdf extension with other content", fileOf("cv.pdf", []byte("<html>not a pdf</html>")), apperrors.ErrInvalidFileType},
		{"declared size over limit", &UploadFile{Reader: bytes.NewReader(pdfBytes()), Filename: "cv.pdf", Size: 65}, apperrors.ErrFileTooLarge},
		{"body over limit", &UploadFile{Reader: bytes.NewReader(append(pdfBytes(), make([]byte, 64)...)), Filename: "cv.pdf", Size: 10}, apperrors.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UploadResume(ctx, newID(), tt.file)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := svc.UploadResume(ctx, newID(), nil)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestUploadService_UploadAvatarAndRemove(t *testing.T) {
	svc, store := newTestUploadService(t, 1<<20)
	ctx := context.Background()
	userID := newID()

	url, err := svc.UploadAvatar(ctx, userID, fileOf("me.png", pngBytes(t, 120, 80)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/files/avatars/"+userID+"/"))
	assert.Equal(t, ".jpg", path.Ext(url))

	key := strings.TrimPrefix(url, "/files/")
	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, exists)

	svc.Remove(ctx, url)
	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.UploadAvatar(ctx, userID, fileOf("me.png", []byte("not an image")))
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)
}

func TestKeyFromURL(t *testing.T) {
	assert.Equal(t, "resumes/u1/a.pdf", keyFromURL("https://cdn.example.com/bucket/resumes/u1/a.pdf"))
	assert.Equal(t, "logos/c1/l.png", keyFromURL("logos/c1/l.png"))
	assert.Empty(t, keyFromURL("https://example.com/other/file"))
	assert.Empty(t, keyFromURL(""))
}
