package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"

	"github.com/medli/medli-api/pkg/helpers"
)

// UploadFunc stores r at objectPath and returns its URL.
type UploadFunc func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)

// ExportArchiver writes export bundles as JSON objects under exports/<user>/.
type ExportArchiver struct {
	Upload UploadFunc
}

// NewGCSExportArchiver uploads into bucket with the given client.
func NewGCSExportArchiver(client *storage.Client, bucket string) *ExportArchiver {
	return &ExportArchiver{
		Upload: func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
			return helpers.UploadObject(ctx, client, bucket, objectPath, contentType, r)
		},
	}
}

// ObjectPath is exports/<userID>/<UTC timestamp>.json.
func ObjectPath(userID string, at time.Time) string {
	return path.Join("exports", userID, at.UTC().Format("20060102T150405.000Z")+".json")
}

func (a *ExportArchiver) Archive(ctx context.Context, userID string, at time.Time, bundle any) (string, error) {
	if a == nil || a.Upload == nil {
		return "", errors.New("export archiver not configured")
	}
	b, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", err
	}
	c, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return a.Upload(c, ObjectPath(userID, at), "application/json", bytes.NewReader(b))
}
