package repository

import (
	"context"
	"errors"

	"github.com/medli/medli-api/internal/domain/entity"
)

var (
	ErrHealthRecordNotFound = errors.New("health record not found")
	ErrRecordingNotFound    = errors.New("recording not found")
)

// HealthRecordRepository stores the per-user health aggregate. Every write
// creates the aggregate if it does not exist yet.
type HealthRecordRepository interface {
	// Get returns nil and no error when the user has no aggregate.
	Get(ctx context.Context, userID string) (*entity.HealthRecord, error)
	PrependRecording(ctx context.Context, userID string, rec entity.Recording) error
	// RemoveRecording returns ErrHealthRecordNotFound or ErrRecordingNotFound.
	RemoveRecording(ctx context.Context, userID, recordingID string) error
	ReplaceRiskAssessment(ctx context.Context, userID string, risk entity.RiskAssessment) error
	ReplaceHabits(ctx context.Context, userID string, habits entity.Habits) error
}
