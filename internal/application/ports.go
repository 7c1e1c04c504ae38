package application

import (
	"context"
	"time"

	"github.com/medli/medli-api/internal/domain/entity"
)

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// RecordingIndex mirrors cough recordings into a search engine.
// Implementations must treat the database as the source of truth.
type RecordingIndex interface {
	Index(ctx context.Context, userID string, rec entity.Recording) error
	Delete(ctx context.Context, userID, recordingID string) error
	DeleteUser(ctx context.Context, userID string) error
	// Search returns ids of the user's recordings matching q, best match first.
	Search(ctx context.Context, userID, q string, size int) ([]string, error)
}

// ExportArchiver stores an export bundle and returns where it can be fetched.
type ExportArchiver interface {
	Archive(ctx context.Context, userID string, at time.Time, bundle any) (string, error)
}

// RequestMeta describes the client that triggered a notification.
type RequestMeta struct {
	IP        string
	UserAgent string
}
