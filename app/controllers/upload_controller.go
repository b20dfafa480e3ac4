package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bazaarhq/bazaar/pkg/bind"
	"github.com/bazaarhq/bazaar/pkg/logger"
	"github.com/bazaarhq/bazaar/pkg/reqid"
	"github.com/bazaarhq/bazaar/pkg/response"
	"github.com/bazaarhq/bazaar/pkg/storage"
)

// allowedUploadTypes maps the accepted extensions to their content types.
var allowedUploadTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// UploadController relays image uploads to the asset store.
type UploadController struct {
	disk     storage.Disk
	tempDir  string
	maxBytes int64
}

// NewUploadController wires the asset endpoints. tempDir holds files while
// they are relayed; maxBytes caps a single file.
func NewUploadController(disk storage.Disk, tempDir string, maxBytes int64) *UploadController {
	return &UploadController{disk: disk, tempDir: tempDir, maxBytes: maxBytes}
}

// Upload accepts a multipart "file" field, spools it to a temp file, and
// relays it to the asset store under products/. The temp file is removed
// on every exit path.
func (c *UploadController) Upload(w http.ResponseWriter, r *http.Request) {
	// +1 so an exactly-at-limit file parses while an oversized one fails.
	r.Body = http.MaxBytesReader(w, r.Body, c.maxBytes+formOverheadBytes)

	if err := r.ParseMultipartForm(c.maxBytes); err != nil {
		response.BadRequest(w, "Size too large")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No files were uploaded.")
		return
	}
	defer file.Close()

	if header.Size > c.maxBytes {
		response.BadRequest(w, "Size too large")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	wantType, ok := allowedUploadTypes[ext]
	if !ok {
		response.BadRequest(w, "File format is incorrect.")
		return
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != wantType {
		response.BadRequest(w, "File format is incorrect.")
		return
	}

	tempPath, err := c.spool(file)
	if tempPath != "" {
		defer os.Remove(tempPath)
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}

	key := "products/" + reqid.New() + ext

	spooled, err := os.Open(tempPath)
	if err != nil {
		response.ServerError(w, err)
		return
	}
	defer spooled.Close()

	if err := c.disk.PutStream(r.Context(), key, spooled); err != nil {
		response.ServerError(w, err)
		return
	}

	logger.WithCtx(r.Context()).Info("asset uploaded", "key", key, "bytes", header.Size)
	response.JSON(w, http.StatusOK, map[string]string{
		"public_id": key,
		"url":       c.disk.URL(key),
	})
}

type destroyRequest struct {
	PublicID string `json:"public_id" validate:"required"`
}

// Destroy removes an asset from the store.
func (c *UploadController) Destroy(w http.ResponseWriter, r *http.Request) {
	var req destroyRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.disk.Delete(r.Context(), req.PublicID); err != nil {
		response.ServerError(w, err)
		return
	}
	response.Msg(w, http.StatusOK, "Deleted")
}

// formOverheadBytes leaves room for multipart boundaries and headers on
// top of the file itself.
const formOverheadBytes = 10 << 10

// spool writes the uploaded file into the temp directory. The path is
// returned even on a write failure so callers can clean up.
func (c *UploadController) spool(file multipart.File) (string, error) {
	if err := os.MkdirAll(c.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("upload: temp dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.tempDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("upload: temp file: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		return tmp.Name(), fmt.Errorf("upload: spool: %w", err)
	}
	return tmp.Name(), nil
}
