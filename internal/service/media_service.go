package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/config"
)

// Sentinel errors for document uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// UploadURLPrefix is the route prefix uploaded documents are served under.
const UploadURLPrefix = "/uploads/"

// Allowed student document MIME types, detected from content.
var allowedMIMETypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// MediaService stores student proof documents on local disk.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// SaveUpload saves an uploaded document with a UUID filename.
// Returns the relative URL path to the saved file.
func (s *MediaService) SaveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.cfg.MaxUploadBytes() {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes())
	}

	// The declared Content-Type is client controlled, so sniff the bytes.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	destPath := filepath.Join(s.cfg.UploadDir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(file, s.cfg.MaxUploadBytes()+1))
	if err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if written > s.cfg.MaxUploadBytes() {
		os.Remove(destPath)
		return "", fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.cfg.MaxUploadBytes())
	}

	return UploadURLPrefix + filename, nil
}

// Remove deletes a previously saved document. Unknown paths are ignored.
func (s *MediaService) Remove(url string) error {
	name := strings.TrimPrefix(url, UploadURLPrefix)
	if name == url || name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}
	err := os.Remove(filepath.Join(s.cfg.UploadDir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
