package application

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/medli/medli-api/internal/domain/entity"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func (in *RegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = entity.NormalizeEmail(in.Email)
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (in *LoginInput) Normalize() {
	in.Email = entity.NormalizeEmail(in.Email)
}

// ProfileInput is a partial update; nil fields are left unchanged.
type ProfileInput struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=50"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// Normalize drops blank fields so they count as not supplied.
func (in *ProfileInput) Normalize() {
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			in.Name = nil
		} else {
			in.Name = &n
		}
	}
	if in.Email != nil {
		e := entity.NormalizeEmail(*in.Email)
		if e == "" {
			in.Email = nil
		} else {
			in.Email = &e
		}
	}
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
}

// RecordingInput carries the client-measured fields of a cough recording.
// Timestamp is epoch milliseconds; zero or absent means now. The upper bound
// is the last millisecond of year 9999, the latest time JSON can encode.
type RecordingInput struct {
	Timestamp          *float64 `json:"timestamp" binding:"omitempty,gte=0,lte=253402300799999"`
	Date               string   `json:"date"`
	Time               string   `json:"time"`
	Duration           *float64 `json:"duration" binding:"required"`
	Intensity          string   `json:"intensity"`
	IntensityScore     *float64 `json:"intensityScore"`
	Pattern            string   `json:"pattern"`
	PatternConfidence  *float64 `json:"patternConfidence"`
	Phases             string   `json:"phases"`
	PhaseDescription   string   `json:"phaseDescription"`
	Quality            string   `json:"quality"`
	QualityDescription string   `json:"qualityDescription"`
	Frequency          *float64 `json:"frequency"`
	PeakAmplitude      *float64 `json:"peakAmplitude"`
	AverageAmplitude   *float64 `json:"averageAmplitude"`
	DynamicRange       *float64 `json:"dynamicRange"`
	EnergyLevel        string   `json:"energyLevel"`
	Efficiency         string   `json:"efficiency"`
	Observation        string   `json:"observation"`
	ObservationType    string   `json:"observationType"`
	Recommendations    []string `json:"recommendations"`
	Type               string   `json:"type"`
}

type RiskAssessmentInput struct {
	RiskLevel  string          `json:"riskLevel" binding:"required"`
	Percentage *float64        `json:"percentage" binding:"required,pct"`
	Score      *float64        `json:"score"`
	Questions  json.RawMessage `json:"questions"`
	Answers    json.RawMessage `json:"answers"`
}

func (in *RiskAssessmentInput) Normalize() {
	in.RiskLevel = strings.TrimSpace(in.RiskLevel)
	in.Questions = nullToNil(in.Questions)
	in.Answers = nullToNil(in.Answers)
}

type HabitsInput struct {
	Sleep    *float64 `json:"sleep"`
	Exercise *float64 `json:"exercise"`
	Water    *float64 `json:"water"`
	Stress   *float64 `json:"stress"`
	Smoking  *bool    `json:"smoking"`
}

func nullToNil(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}
