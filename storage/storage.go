package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by ReadFile when the object does not exist.
var ErrNotFound = errors.New("object not found")

// StorageClient stores onboarding documents. Both the local filesystem and
// Firebase Storage implementations satisfy it.
type StorageClient interface {
	UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error)
	ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, objectName string) error
	Close() error
}

// UploadResult describes a stored object.
type UploadResult struct {
	ObjectName  string `json:"objectName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// GenerateObjectName places an uploaded wizard document under its session and
// field: applications/<session>/<field>/<unix>_<file>.
func GenerateObjectName(sessionID, field, filename string) string {
	return fmt.Sprintf("applications/%s/%s/%d_%s", sessionID, field, time.Now().Unix(), sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
