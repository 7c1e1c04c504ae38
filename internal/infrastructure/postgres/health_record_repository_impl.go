package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medli/medli-api/internal/domain/entity"
	"github.com/medli/medli-api/internal/domain/repository"
)

// HealthRecordRepository keeps each user's aggregate in one health_records row,
// with the recording list and both snapshots as JSONB documents.
type HealthRecordRepository struct {
	db DB
}

func NewHealthRecordRepository(db DB) *HealthRecordRepository {
	return &HealthRecordRepository{db: db}
}

func (r *HealthRecordRepository) Get(ctx context.Context, userID string) (*entity.HealthRecord, error) {
	var (
		h                     = &entity.HealthRecord{}
		history, risk, habits []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT user_id::text, cough_history, risk_test_data, habits_data, created_at, updated_at
		FROM health_records
		WHERE user_id = $1
	`, userID).Scan(&h.UserID, &history, &risk, &habits, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get health record: %w", err)
	}
	if err := decodeJSON(history, &h.CoughHistory); err != nil {
		return nil, fmt.Errorf("decode cough history: %w", err)
	}
	if h.CoughHistory == nil {
		h.CoughHistory = []entity.Recording{}
	}
	if err := decodeJSON(risk, &h.RiskTestData); err != nil {
		return nil, fmt.Errorf("decode risk assessment: %w", err)
	}
	if err := decodeJSON(habits, &h.HabitsData); err != nil {
		return nil, fmt.Errorf("decode habits: %w", err)
	}
	return h, nil
}

func decodeJSON(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

// PrependRecording creates the aggregate or puts rec at the head of its history in one statement.
func (r *HealthRecordRepository) PrependRecording(ctx context.Context, userID string, rec entity.Recording) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO health_records (user_id, cough_history)
		VALUES ($1, jsonb_build_array($2::jsonb))
		ON CONFLICT (user_id) DO UPDATE
		SET cough_history = jsonb_build_array($2::jsonb) || health_records.cough_history,
		    updated_at = now()
	`, userID, string(b))
	if err != nil {
		return fmt.Errorf("prepend recording: %w", err)
	}
	return nil
}

func (r *HealthRecordRepository) RemoveRecording(ctx context.Context, userID, recordingID string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		var raw []byte
		err := tx.QueryRow(ctx, `
			SELECT cough_history FROM health_records WHERE user_id = $1 FOR UPDATE
		`, userID).Scan(&raw)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
				return repository.ErrHealthRecordNotFound
			}
			return fmt.Errorf("lock health record: %w", err)
		}
		h := &entity.HealthRecord{UserID: userID}
		if err := decodeJSON(raw, &h.CoughHistory); err != nil {
			return fmt.Errorf("decode cough history: %w", err)
		}
		if !h.HasRecording(recordingID) {
			return repository.ErrRecordingNotFound
		}
		b, err := json.Marshal(h.WithoutRecording(recordingID))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE health_records SET cough_history = $2::jsonb, updated_at = now() WHERE user_id = $1
		`, userID, string(b)); err != nil {
			return fmt.Errorf("remove recording: %w", err)
		}
		return nil
	})
}

func (r *HealthRecordRepository) ReplaceRiskAssessment(ctx context.Context, userID string, risk entity.RiskAssessment) error {
	return r.replaceSnapshot(ctx, userID, riskColumn, risk)
}

func (r *HealthRecordRepository) ReplaceHabits(ctx context.Context, userID string, habits entity.Habits) error {
	return r.replaceSnapshot(ctx, userID, habitsColumn, habits)
}

type snapshotColumn string

const (
	riskColumn   snapshotColumn = "risk_test_data"
	habitsColumn snapshotColumn = "habits_data"
)

// replaceSnapshot upserts the aggregate with column set to v, overwriting any previous snapshot.
func (r *HealthRecordRepository) replaceSnapshot(ctx context.Context, userID string, column snapshotColumn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO health_records (user_id, %[1]s)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (user_id) DO UPDATE
		SET %[1]s = EXCLUDED.%[1]s, updated_at = now()
	`, column)
	if _, err := r.db.Exec(ctx, query, userID, string(b)); err != nil {
		return fmt.Errorf("replace %s: %w", column, err)
	}
	return nil
}

var _ repository.HealthRecordRepository = (*HealthRecordRepository)(nil)
