package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/internal/application"
	"github.com/medli/medli-api/internal/interface/middleware"
	"github.com/medli/medli-api/pkg/response"
	"github.com/medli/medli-api/pkg/validation"
)

const msgInvalidRecordingID = "Invalid recording ID"

type HealthHandler struct {
	Svc    HealthService
	Logger logrus.FieldLogger
}

func NewHealthHandler(svc HealthService, logger logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{Svc: svc, Logger: logger}
}

func userID(c *gin.Context) string { return c.GetString(middleware.CtxUserIDKey) }

// AddRecording POST /api/health/recording
func (h *HealthHandler) AddRecording(c *gin.Context) {
	var req application.RecordingInput
	if !bind(c, &req, nil) {
		return
	}
	rec, err := h.Svc.AddRecording(c.Request.Context(), userID(c), req)
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error adding recording")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": application.MsgRecordingAdded, "recording": rec})
}

// Recordings GET /api/health/recordings
func (h *HealthHandler) Recordings(c *gin.Context) {
	recs, err := h.Svc.ListRecordings(c.Request.Context(), userID(c))
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error fetching recordings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"recordings": recs, "count": len(recs)})
}

// SearchRecordings GET /api/health/recordings/search?q=&size=
func (h *HealthHandler) SearchRecordings(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	recs, err := h.Svc.SearchRecordings(c.Request.Context(), userID(c), c.Query("q"), size)
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error searching recordings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"recordings": recs, "count": len(recs)})
}

// DeleteRecording DELETE /api/health/recording/:id
func (h *HealthHandler) DeleteRecording(c *gin.Context) {
	id := c.Param("id")
	if err := validation.Var(id, "required,uuid"); err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRecordingID)
		return
	}
	if err := h.Svc.DeleteRecording(c.Request.Context(), userID(c), id); err != nil {
		response.FromError(c, h.Logger, err, "Server error deleting recording")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": application.MsgRecordingDeleted})
}

// SaveRiskAssessment POST /api/health/risk-assessment
func (h *HealthHandler) SaveRiskAssessment(c *gin.Context) {
	var req application.RiskAssessmentInput
	if !bind(c, &req, nil) {
		return
	}
	risk, err := h.Svc.SaveRiskAssessment(c.Request.Context(), userID(c), req)
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error saving risk assessment")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": application.MsgRiskSaved, "riskData": risk})
}

// RiskAssessment GET /api/health/risk-assessment
func (h *HealthHandler) RiskAssessment(c *gin.Context) {
	risk, err := h.Svc.GetRiskAssessment(c.Request.Context(), userID(c))
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error fetching risk assessment")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"riskAssessment": risk})
}

// SaveHabits POST /api/health/habits
func (h *HealthHandler) SaveHabits(c *gin.Context) {
	var req application.HabitsInput
	if !bind(c, &req, nil) {
		return
	}
	habits, err := h.Svc.SaveHabits(c.Request.Context(), userID(c), req)
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error saving habits")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": application.MsgHabitsSaved, "habits": habits})
}

// Habits GET /api/health/habits
func (h *HealthHandler) Habits(c *gin.Context) {
	habits, err := h.Svc.GetHabits(c.Request.Context(), userID(c))
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error fetching habits")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"habits": habits})
}

// Export GET /api/health/export[?archive=true]
func (h *HealthHandler) Export(c *gin.Context) {
	archive, _ := strconv.ParseBool(c.DefaultQuery("archive", "false"))
	bundle, url, err := h.Svc.Export(c.Request.Context(), middleware.CurrentUser(c), archive)
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error exporting data")
		return
	}
	payload := gin.H{"data": bundle}
	if url != "" {
		payload["archiveUrl"] = url
	}
	response.Success(c, http.StatusOK, payload)
}

// Dashboard GET /api/health/dashboard
func (h *HealthHandler) Dashboard(c *gin.Context) {
	d, err := h.Svc.Dashboard(c.Request.Context(), userID(c))
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error fetching dashboard")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dashboard": d})
}
