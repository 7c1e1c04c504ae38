package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medli/medli-api/pkg/helpers"
)

func TestArchiveUploadsJSON(t *testing.T) {
	var gotPath, gotType, gotBody string
	a := &ExportArchiver{Upload: func(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
		b, _ := io.ReadAll(r)
		gotPath, gotType, gotBody = objectPath, contentType, string(b)
		return helpers.ObjectURL("medli-exports", objectPath), nil
	}}
	at := time.Date(2026, 3, 10, 12, 30, 15, 250_000_000, time.UTC)

	url, err := a.Archive(context.Background(), "user-1", at, map[string]any{"recordings": []any{}})
	require.NoError(t, err)
	assert.Equal(t, "exports/user-1/20260310T123015.250Z.json", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"recordings":[]}`, gotBody)
	assert.Equal(t, "https://storage.cloud.google.com/medli-exports/exports/user-1/20260310T123015.250Z.json", url)
}

func TestArchiveUploadError(t *testing.T) {
	a := &ExportArchiver{Upload: func(context.Context, string, string, io.Reader) (string, error) {
		return "", errors.New("403 forbidden")
	}}
	_, err := a.Archive(context.Background(), "user-1", time.Now(), map[string]any{})
	assert.Error(t, err)

	var unset *ExportArchiver
	_, err = unset.Archive(context.Background(), "user-1", time.Now(), nil)
	assert.Error(t, err)
}
