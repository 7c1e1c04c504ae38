package handlers

import (
	"context"

	"github.com/medli/medli-api/internal/application"
	"github.com/medli/medli-api/internal/domain/entity"
)

// AccountService is the part of application.AccountService the HTTP layer uses.
type AccountService interface {
	Register(ctx context.Context, in application.RegisterInput, meta application.RequestMeta) (*application.AuthResult, error)
	Login(ctx context.Context, in application.LoginInput) (*application.AuthResult, error)
	GetMe(ctx context.Context, userID string) (entity.PublicUser, error)
	UpdateProfile(ctx context.Context, userID string, in application.ProfileInput, meta application.RequestMeta) (entity.PublicUser, error)
	ChangePassword(ctx context.Context, userID string, in application.ChangePasswordInput, meta application.RequestMeta) error
	DeleteAccount(ctx context.Context, u *entity.User, meta application.RequestMeta) error
}

// HealthService is the part of application.HealthService the HTTP layer uses.
type HealthService interface {
	AddRecording(ctx context.Context, userID string, in application.RecordingInput) (*entity.Recording, error)
	ListRecordings(ctx context.Context, userID string) ([]entity.Recording, error)
	SearchRecordings(ctx context.Context, userID, q string, size int) ([]entity.Recording, error)
	DeleteRecording(ctx context.Context, userID, recordingID string) error
	SaveRiskAssessment(ctx context.Context, userID string, in application.RiskAssessmentInput) (*entity.RiskAssessment, error)
	GetRiskAssessment(ctx context.Context, userID string) (*entity.RiskAssessment, error)
	SaveHabits(ctx context.Context, userID string, in application.HabitsInput) (*entity.Habits, error)
	GetHabits(ctx context.Context, userID string) (*entity.Habits, error)
	Export(ctx context.Context, u *entity.User, archive bool) (*application.ExportBundle, string, error)
	Dashboard(ctx context.Context, userID string) (*application.Dashboard, error)
}

var (
	_ AccountService = (*application.AccountService)(nil)
	_ HealthService  = (*application.HealthService)(nil)
)
