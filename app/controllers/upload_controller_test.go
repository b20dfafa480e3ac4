package controllers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/bazaar/app/controllers"
	"github.com/bazaarhq/bazaar/pkg/storage"
)

const uploadLimit = 1 << 20

// multipartFile builds a multipart body with one "file" part.
func multipartFile(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func newUploadController(t *testing.T) (*controllers.UploadController, storage.Disk, string) {
	t.Helper()
	assets := t.TempDir()
	spool := t.TempDir()
	disk := storage.NewLocal(assets, "http://assets.test")
	return controllers.NewUploadController(disk, spool, uploadLimit), disk, spool
}

func TestUploadRejectsBadExtension(t *testing.T) {
	c, _, _ := newUploadController(t)

	body, ct := multipartFile(t, "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	c.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File format is incorrect.", decodeBody(t, rec)["msg"])
}

func TestUploadRejectsMismatchedContentType(t *testing.T) {
	c, _, _ := newUploadController(t)

	body, ct := multipartFile(t, "photo.png", "application/octet-stream", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	c.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File format is incorrect.", decodeBody(t, rec)["msg"])
}

func TestUploadMissingFile(t *testing.T) {
	c, _, _ := newUploadController(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("other", "value"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	c.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No files were uploaded.", decodeBody(t, rec)["msg"])
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	c, _, _ := newUploadController(t)

	body, ct := multipartFile(t, "big.png", "image/png", bytes.Repeat([]byte("a"), uploadLimit+1))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	c.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Size too large", decodeBody(t, rec)["msg"])
}

func TestUploadRelaysToDiskAndCleansTempFiles(t *testing.T) {
	c, disk, spool := newUploadController(t)

	content := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	body, ct := multipartFile(t, "photo.png", "image/png", content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	c.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)

	publicID, ok := resp["public_id"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(publicID, "products/"))
	assert.True(t, strings.HasSuffix(publicID, ".png"))
	assert.Equal(t, "http://assets.test/"+publicID, resp["url"])

	// The object reached the store.
	assert.True(t, disk.Exists(req.Context(), publicID))

	// No spooled files left behind.
	entries, err := os.ReadDir(spool)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDestroyRemovesObject(t *testing.T) {
	c, disk, _ := newUploadController(t)

	ctx := context.Background()
	require.NoError(t, disk.PutStream(ctx, "products/gone.png", bytes.NewReader([]byte("x"))))
	require.True(t, disk.Exists(ctx, "products/gone.png"))

	req := httptest.NewRequest(http.MethodPost, "/api/destroy",
		strings.NewReader(`{"public_id":"products/gone.png"}`))
	rec := httptest.NewRecorder()
	c.Destroy(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Deleted", decodeBody(t, rec)["msg"])
	assert.False(t, disk.Exists(ctx, "products/gone.png"))
}

func TestDestroyRequiresPublicID(t *testing.T) {
	c, _, _ := newUploadController(t)

	req := httptest.NewRequest(http.MethodPost, "/api/destroy", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	c.Destroy(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadTempDirCreated(t *testing.T) {
	assets := t.TempDir()
	spool := filepath.Join(t.TempDir(), "nested", "uploads")
	c := controllers.NewUploadController(storage.NewLocal(assets, "http://assets.test"), spool, uploadLimit)

	body, ct := multipartFile(t, "photo.jpg", "image/jpeg", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	c.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
