// Package storage keeps uploaded images on local disk.
package storage

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// DefaultMaxUploadBytes mirrors the UPLOAD_MAX_SIZE_MB default.
const DefaultMaxUploadBytes = 1 << 20

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

var allowedFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"webp": true,
}

var (
	ErrTooLarge          = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType   = errors.New("only .png, .jpg, .jpeg and .webp images are allowed")
	ErrNotAnImage        = errors.New("file content is not a supported image")
	ErrEmptyUploadedFile = errors.New("uploaded file is empty")
)

// Uploader validates and stores single image uploads.
type Uploader struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewUploader stores files under dir, rejecting anything larger than maxBytes.
func NewUploader(dir string, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Uploader{dir: dir, maxBytes: maxBytes, now: time.Now}
}

// Dir is the directory uploaded files are written to.
func (u *Uploader) Dir() string {
	return u.dir
}

// Save validates fh and writes it to disk, returning the stored file name.
// Every failure is reported as an upload error.
func (u *Uploader) Save(fh *multipart.FileHeader) (string, error) {
	name, err := u.save(fh)
	if err != nil {
		return "", models.NewUploadError(err)
	}
	return name, nil
}

func (u *Uploader) save(fh *multipart.FileHeader) (string, error) {
	if fh.Size == 0 {
		return "", ErrEmptyUploadedFile
	}
	if fh.Size > u.maxBytes {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	_, format, err := image.DecodeConfig(src)
	if err != nil || !allowedFormats[format] {
		return "", ErrNotAnImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s%s", u.now().UnixMilli(), uuid.NewString(), ext)
	dst, err := os.OpenFile(filepath.Join(u.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(src, u.maxBytes+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written > u.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(filepath.Join(u.dir, name))
		return "", err
	}
	return name, nil
}
