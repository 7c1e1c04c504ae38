package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/medli/medli-api/config"
	"github.com/medli/medli-api/internal/domain/entity"
	"github.com/medli/medli-api/internal/domain/repository"
	pginfra "github.com/medli/medli-api/internal/infrastructure/postgres"
	"github.com/medli/medli-api/pkg/helpers"
)

func ptr(f float64) *float64 { return &f }

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Hour)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	users := pginfra.NewUserRepository(pool)
	records := pginfra.NewHealthRecordRepository(pool)

	email := "demo@medli.app"
	password := "password123"
	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		hash, herr := helpers.HashPassword(password)
		if herr != nil {
			logger.WithError(herr).Fatal("failed to hash password")
		}
		u = &entity.User{Name: "Demo User", Email: email, Password: hash}
		err = users.Create(ctx, u)
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed user")
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, email, password)

	h, err := records.Get(ctx, u.ID)
	if err != nil {
		logger.WithError(err).Fatal("failed to load health record")
	}
	if h != nil && len(h.CoughHistory) > 0 {
		fmt.Println("health data already seeded")
		return
	}

	now := time.Now().UTC()
	rec := entity.Recording{
		ID:                uuid.NewString(),
		Timestamp:         now,
		Date:              now.Format("2006-01-02"),
		Time:              now.Format("15:04:05"),
		Duration:          1.8,
		Intensity:         "Moderate",
		IntensityScore:    ptr(5.4),
		Pattern:           "Dry",
		PatternConfidence: ptr(0.82),
		Quality:           "Good",
		Frequency:         ptr(412),
		Observation:       "Short dry cough with a single phase",
		ObservationType:   "info",
		Recommendations:   []string{"Stay hydrated", "Track symptoms for a week"},
		Type:              entity.RecordingType,
	}
	if err := records.PrependRecording(ctx, u.ID, rec); err != nil {
		logger.WithError(err).Fatal("failed to seed recording")
	}
	if err := records.ReplaceRiskAssessment(ctx, u.ID, entity.RiskAssessment{
		Score: ptr(6), Percentage: 30, RiskLevel: "Low", Timestamp: now,
	}); err != nil {
		logger.WithError(err).Fatal("failed to seed risk assessment")
	}
	if err := records.ReplaceHabits(ctx, u.ID, entity.Habits{
		Sleep: ptr(7.5), Exercise: ptr(30), Water: ptr(8), Stress: ptr(4), Timestamp: now,
	}); err != nil {
		logger.WithError(err).Fatal("failed to seed habits")
	}
	fmt.Printf("seeded health data: recording=%s\n", rec.ID)
}
