package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/internal/application"
	"github.com/medli/medli-api/internal/interface/middleware"
	"github.com/medli/medli-api/pkg/response"
	"github.com/medli/medli-api/pkg/validation"
)

type AuthHandler struct {
	Svc    AccountService
	Logger logrus.FieldLogger
}

func NewAuthHandler(svc AccountService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

var profileMessages = validation.Messages{
	"name.min": "Name must be between 1 and 50 characters",
	"name.max": "Name must be between 1 and 50 characters",
}

func requestMeta(c *gin.Context) application.RequestMeta {
	return application.RequestMeta{IP: middleware.ClientIP(c), UserAgent: c.GetHeader("User-Agent")}
}

// bind writes the 400 itself and reports whether the handler should go on.
func bind(c *gin.Context, obj any, overrides validation.Messages) bool {
	if err := validation.Bind(c, obj); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err, overrides))
		return false
	}
	return true
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req application.RegisterInput
	if !bind(c, &req, nil) {
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error during registration")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"token": res.Token, "user": res.User})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req application.LoginInput
	if !bind(c, &req, nil) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error during login")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": res.Token, "user": res.User})
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.Svc.GetMe(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error fetching user data")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// UpdateProfile PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req application.ProfileInput
	if !bind(c, &req, profileMessages) {
		return
	}
	user, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req, requestMeta(c))
	if err != nil {
		response.FromError(c, h.Logger, err, "Server error updating profile")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// ChangePassword POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req application.ChangePasswordInput
	if !bind(c, &req, nil) {
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req, requestMeta(c)); err != nil {
		response.FromError(c, h.Logger, err, "Server error changing password")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": application.MsgPasswordUpdated})
}

// DeleteAccount DELETE /api/auth/account
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	if err := h.Svc.DeleteAccount(c.Request.Context(), middleware.CurrentUser(c), requestMeta(c)); err != nil {
		response.FromError(c, h.Logger, err, "Server error deleting account")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": application.MsgAccountDeleted})
}
