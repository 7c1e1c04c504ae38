package entity

import (
	"encoding/json"
	"time"
)

// RecordingType is the default kind of a Recording.
const RecordingType = "cough"

// Recording is one cough recording with its acoustic analysis.
type Recording struct {
	ID                 string    `json:"id"`
	Timestamp          time.Time `json:"timestamp"`
	Date               string    `json:"date,omitempty"`
	Time               string    `json:"time,omitempty"`
	Duration           float64   `json:"duration"`
	Intensity          string    `json:"intensity,omitempty"`
	IntensityScore     *float64  `json:"intensityScore,omitempty"`
	Pattern            string    `json:"pattern,omitempty"`
	PatternConfidence  *float64  `json:"patternConfidence,omitempty"`
	Phases             string    `json:"phases,omitempty"`
	PhaseDescription   string    `json:"phaseDescription,omitempty"`
	Quality            string    `json:"quality,omitempty"`
	QualityDescription string    `json:"qualityDescription,omitempty"`
	Frequency          *float64  `json:"frequency,omitempty"`
	PeakAmplitude      *float64  `json:"peakAmplitude,omitempty"`
	AverageAmplitude   *float64  `json:"averageAmplitude,omitempty"`
	DynamicRange       *float64  `json:"dynamicRange,omitempty"`
	EnergyLevel        string    `json:"energyLevel,omitempty"`
	Efficiency         string    `json:"efficiency,omitempty"`
	Observation        string    `json:"observation,omitempty"`
	ObservationType    string    `json:"observationType,omitempty"`
	Recommendations    []string  `json:"recommendations"`
	Type               string    `json:"type"`
}

// RiskAssessment is the latest risk questionnaire result.
// Questions and Answers are stored as the client sent them.
type RiskAssessment struct {
	Score      *float64        `json:"score,omitempty"`
	Percentage float64         `json:"percentage"`
	RiskLevel  string          `json:"riskLevel"`
	Questions  json.RawMessage `json:"questions,omitempty"`
	Answers    json.RawMessage `json:"answers,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Habits is the latest lifestyle snapshot.
type Habits struct {
	Sleep     *float64  `json:"sleep,omitempty"`
	Exercise  *float64  `json:"exercise,omitempty"`
	Water     *float64  `json:"water,omitempty"`
	Stress    *float64  `json:"stress,omitempty"`
	Smoking   bool      `json:"smoking"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthRecord is the per-user aggregate. CoughHistory is newest first.
type HealthRecord struct {
	UserID       string
	CoughHistory []Recording
	RiskTestData *RiskAssessment
	HabitsData   *Habits
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecordingsSince counts recordings whose timestamp lies within window before now.
func (h *HealthRecord) RecordingsSince(now time.Time, window time.Duration) int {
	n := 0
	for _, r := range h.CoughHistory {
		if now.Sub(r.Timestamp) < window {
			n++
		}
	}
	return n
}

// Recent returns at most n recordings in stored order.
func (h *HealthRecord) Recent(n int) []Recording {
	if len(h.CoughHistory) <= n {
		return h.CoughHistory
	}
	return h.CoughHistory[:n]
}

// HasRecording reports whether a recording with id is in the history.
func (h *HealthRecord) HasRecording(id string) bool {
	for _, r := range h.CoughHistory {
		if r.ID == id {
			return true
		}
	}
	return false
}

// WithoutRecording returns the history with the recording id filtered out.
func (h *HealthRecord) WithoutRecording(id string) []Recording {
	out := make([]Recording, 0, len(h.CoughHistory))
	for _, r := range h.CoughHistory {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
