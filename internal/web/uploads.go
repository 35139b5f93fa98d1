package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/evereld/staffdesk/internal/platform/id"
)

// maxUploadBytes bounds multipart form memory for image uploads.
const maxUploadBytes = 10 << 20

// saveUpload writes an uploaded image from the named form field to the
// upload directory and returns the public path. It returns "" when the
// field carries no file.
func (s *Server) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", fmt.Errorf("read upload field %s: %w", field, err)
	}
	defer file.Close()

	if s.uploadDir == "" {
		return "", errors.New("uploads are not configured")
	}

	name, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate upload name: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure upload dir: %w", err)
	}

	filename := name + ext
	dst, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path.Join("/uploads", filename), nil
}
