package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/internal/domain/entity"
	repo "github.com/medli/medli-api/internal/domain/repository"
	"github.com/medli/medli-api/pkg/apperror"
	"github.com/medli/medli-api/pkg/helpers"
)

const (
	MsgDurationRequired     = "Recording duration is required"
	MsgTimestampInvalid     = "Timestamp must be a valid date"
	MsgNoHealthData         = "No health data found"
	MsgRecordingNotFound    = "Recording not found"
	MsgRiskRequired         = "Risk level and percentage are required"
	MsgArchiveNotConfigured = "Export archiving is not configured"
	MsgRecordingAdded       = "Recording added successfully"
	MsgRecordingDeleted     = "Recording deleted successfully"
	MsgRiskSaved            = "Risk assessment saved successfully"
	MsgHabitsSaved          = "Habits saved successfully"

	msgAddRecordingError  = "Server error adding recording"
	msgRecordingsError    = "Server error fetching recordings"
	msgDeleteRecordingErr = "Server error deleting recording"
	msgSaveRiskError      = "Server error saving risk assessment"
	msgGetRiskError       = "Server error fetching risk assessment"
	msgSaveHabitsError    = "Server error saving habits"
	msgGetHabitsError     = "Server error fetching habits"
	msgExportError        = "Server error exporting data"
	msgDashboardError     = "Server error fetching dashboard"
	msgSearchError        = "Server error searching recordings"

	// DashboardRecent is how many recordings the dashboard shows.
	DashboardRecent = 10
	// DashboardWeek is the trailing window for recordingsThisWeek.
	DashboardWeek = 7 * 24 * time.Hour

	// MaxTimestampMillis is 9999-12-31T23:59:59.999Z in epoch milliseconds.
	MaxTimestampMillis = 253402300799999

	defaultSearchSize = 10
	maxSearchSize     = 50
)

// ExportBundle is everything stored for a user.
type ExportBundle struct {
	Recordings     []entity.Recording     `json:"recordings"`
	RiskAssessment *entity.RiskAssessment `json:"riskAssessment"`
	Habits         *entity.Habits         `json:"habits"`
	ExportDate     string                 `json:"exportDate"`
	User           entity.PublicUser      `json:"user"`
}

type Dashboard struct {
	TotalRecordings    int                    `json:"totalRecordings"`
	RecordingsThisWeek int                    `json:"recordingsThisWeek"`
	RecentRecordings   []entity.Recording     `json:"recentRecordings"`
	RiskAssessment     *entity.RiskAssessment `json:"riskAssessment"`
	Habits             *entity.Habits         `json:"habits"`
	LastUpdated        *time.Time             `json:"lastUpdated"`
}

type HealthService struct {
	Records  repo.HealthRecordRepository
	Index    RecordingIndex
	Archiver ExportArchiver
	Logger   logrus.FieldLogger

	Now   func() time.Time
	NewID func() string
}

func NewHealthService(records repo.HealthRecordRepository, index RecordingIndex, archiver ExportArchiver, logger logrus.FieldLogger) *HealthService {
	return &HealthService{
		Records:  records,
		Index:    index,
		Archiver: archiver,
		Logger:   logger,
		Now:      func() time.Time { return time.Now().UTC() },
		NewID:    uuid.NewString,
	}
}

func (s *HealthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *HealthService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// load returns the user's record, or an empty one when none has been written yet.
func (s *HealthService) load(ctx context.Context, userID string) (*entity.HealthRecord, bool, error) {
	h, err := s.Records.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if h == nil {
		return &entity.HealthRecord{UserID: userID, CoughHistory: []entity.Recording{}}, false, nil
	}
	if h.CoughHistory == nil {
		h.CoughHistory = []entity.Recording{}
	}
	return h, true, nil
}

// AddRecording prepends a recording to the user's history, creating the record if needed.
func (s *HealthService) AddRecording(ctx context.Context, userID string, in RecordingInput) (*entity.Recording, error) {
	if in.Duration == nil || *in.Duration == 0 {
		return nil, apperror.Invalid(MsgDurationRequired)
	}

	if in.Timestamp != nil && (*in.Timestamp < 0 || *in.Timestamp > MaxTimestampMillis) {
		return nil, apperror.Invalid(MsgTimestampInvalid)
	}

	ts := s.now()
	if in.Timestamp != nil && *in.Timestamp > 0 {
		ts = time.UnixMilli(int64(*in.Timestamp)).UTC()
	}
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		typ = entity.RecordingType
	}
	recs := in.Recommendations
	if recs == nil {
		recs = []string{}
	}

	rec := entity.Recording{
		ID:                 s.newID(),
		Timestamp:          ts,
		Date:               in.Date,
		Time:               in.Time,
		Duration:           *in.Duration,
		Intensity:          in.Intensity,
		IntensityScore:     in.IntensityScore,
		Pattern:            in.Pattern,
		PatternConfidence:  in.PatternConfidence,
		Phases:             in.Phases,
		PhaseDescription:   in.PhaseDescription,
		Quality:            in.Quality,
		QualityDescription: in.QualityDescription,
		Frequency:          in.Frequency,
		PeakAmplitude:      in.PeakAmplitude,
		AverageAmplitude:   in.AverageAmplitude,
		DynamicRange:       in.DynamicRange,
		EnergyLevel:        in.EnergyLevel,
		Efficiency:         in.Efficiency,
		Observation:        in.Observation,
		ObservationType:    in.ObservationType,
		Recommendations:    recs,
		Type:               typ,
	}

	if err := s.Records.PrependRecording(ctx, userID, rec); err != nil {
		return nil, apperror.InternalErr(msgAddRecordingError, err)
	}
	if s.Index != nil {
		if err := s.Index.Index(ctx, userID, rec); err != nil {
			helpers.LogWarn(s.Logger, "index recording failed", err, logrus.Fields{"user_id": userID, "recording_id": rec.ID})
		}
	}
	return &rec, nil
}

// ListRecordings returns the history newest first; a missing record is an empty list.
func (s *HealthService) ListRecordings(ctx context.Context, userID string) ([]entity.Recording, error) {
	h, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, apperror.InternalErr(msgRecordingsError, err)
	}
	return h.CoughHistory, nil
}

func (s *HealthService) DeleteRecording(ctx context.Context, userID, recordingID string) error {
	err := s.Records.RemoveRecording(ctx, userID, recordingID)
	switch {
	case errors.Is(err, repo.ErrHealthRecordNotFound):
		return apperror.NotFoundErr(MsgNoHealthData)
	case errors.Is(err, repo.ErrRecordingNotFound):
		return apperror.NotFoundErr(MsgRecordingNotFound)
	case err != nil:
		return apperror.InternalErr(msgDeleteRecordingErr, err)
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, userID, recordingID); err != nil {
			helpers.LogWarn(s.Logger, "unindex recording failed", err, logrus.Fields{"user_id": userID, "recording_id": recordingID})
		}
	}
	return nil
}

// SaveRiskAssessment replaces the stored snapshot.
func (s *HealthService) SaveRiskAssessment(ctx context.Context, userID string, in RiskAssessmentInput) (*entity.RiskAssessment, error) {
	in.Normalize()
	if in.RiskLevel == "" || in.Percentage == nil {
		return nil, apperror.Invalid(MsgRiskRequired)
	}
	risk := entity.RiskAssessment{
		Score:      in.Score,
		Percentage: *in.Percentage,
		RiskLevel:  in.RiskLevel,
		Questions:  in.Questions,
		Answers:    in.Answers,
		Timestamp:  s.now(),
	}
	if err := s.Records.ReplaceRiskAssessment(ctx, userID, risk); err != nil {
		return nil, apperror.InternalErr(msgSaveRiskError, err)
	}
	return &risk, nil
}

// GetRiskAssessment returns nil when nothing has been saved.
func (s *HealthService) GetRiskAssessment(ctx context.Context, userID string) (*entity.RiskAssessment, error) {
	h, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, apperror.InternalErr(msgGetRiskError, err)
	}
	return h.RiskTestData, nil
}

func (s *HealthService) SaveHabits(ctx context.Context, userID string, in HabitsInput) (*entity.Habits, error) {
	habits := entity.Habits{
		Sleep:     in.Sleep,
		Exercise:  in.Exercise,
		Water:     in.Water,
		Stress:    in.Stress,
		Timestamp: s.now(),
	}
	if in.Smoking != nil {
		habits.Smoking = *in.Smoking
	}
	if err := s.Records.ReplaceHabits(ctx, userID, habits); err != nil {
		return nil, apperror.InternalErr(msgSaveHabitsError, err)
	}
	return &habits, nil
}

func (s *HealthService) GetHabits(ctx context.Context, userID string) (*entity.Habits, error) {
	h, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, apperror.InternalErr(msgGetHabitsError, err)
	}
	return h.HabitsData, nil
}

// Export collects the user's data. With archive set the bundle is also
// uploaded and its location returned.
func (s *HealthService) Export(ctx context.Context, u *entity.User, archive bool) (*ExportBundle, string, error) {
	if archive && s.Archiver == nil {
		return nil, "", apperror.Invalid(MsgArchiveNotConfigured)
	}
	h, _, err := s.load(ctx, u.ID)
	if err != nil {
		return nil, "", apperror.InternalErr(msgExportError, err)
	}
	now := s.now()
	bundle := &ExportBundle{
		Recordings:     h.CoughHistory,
		RiskAssessment: h.RiskTestData,
		Habits:         h.HabitsData,
		ExportDate:     now.Format(time.RFC3339Nano),
		User:           u.Summary(),
	}
	if !archive {
		return bundle, "", nil
	}
	url, err := s.Archiver.Archive(ctx, u.ID, now, bundle)
	if err != nil {
		return nil, "", apperror.InternalErr(msgExportError, err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "url": url}).Info("export archived")
	}
	return bundle, url, nil
}

func (s *HealthService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	h, found, err := s.load(ctx, userID)
	if err != nil {
		return nil, apperror.InternalErr(msgDashboardError, err)
	}
	d := &Dashboard{
		TotalRecordings:    len(h.CoughHistory),
		RecordingsThisWeek: h.RecordingsSince(s.now(), DashboardWeek),
		RecentRecordings:   h.Recent(DashboardRecent),
		RiskAssessment:     h.RiskTestData,
		Habits:             h.HabitsData,
	}
	if found {
		updated := h.UpdatedAt
		d.LastUpdated = &updated
	}
	return d, nil
}

// SearchRecordings finds the user's recordings whose descriptive text matches q.
// The search index is used when configured, otherwise the stored history is scanned.
func (s *HealthService) SearchRecordings(ctx context.Context, userID, q string, size int) ([]entity.Recording, error) {
	q = strings.TrimSpace(q)
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	h, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, apperror.InternalErr(msgSearchError, err)
	}
	if q == "" {
		return h.Recent(size), nil
	}

	if s.Index != nil {
		ids, err := s.Index.Search(ctx, userID, q, size)
		if err == nil {
			return pickRecordings(h.CoughHistory, ids), nil
		}
		helpers.LogWarn(s.Logger, "recording search failed, scanning history", err, logrus.Fields{"user_id": userID})
	}

	out := []entity.Recording{}
	needle := strings.ToLower(q)
	for _, r := range h.CoughHistory {
		if recordingMatches(r, needle) {
			out = append(out, r)
			if len(out) == size {
				break
			}
		}
	}
	return out, nil
}

// pickRecordings returns the recordings named by ids in ids order, skipping
// ids the database no longer has.
func pickRecordings(history []entity.Recording, ids []string) []entity.Recording {
	byID := make(map[string]entity.Recording, len(history))
	for _, r := range history {
		byID[r.ID] = r
	}
	out := make([]entity.Recording, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

func recordingMatches(r entity.Recording, needle string) bool {
	fields := []string{r.Intensity, r.Pattern, r.Quality, r.QualityDescription, r.PhaseDescription, r.Observation, r.ObservationType, r.EnergyLevel}
	fields = append(fields, r.Recommendations...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
