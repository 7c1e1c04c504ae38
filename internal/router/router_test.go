package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medli/medli-api/config"
	"github.com/medli/medli-api/internal/application"
	"github.com/medli/medli-api/internal/container"
	"github.com/medli/medli-api/internal/interface/middleware"
	"github.com/medli/medli-api/pkg/helpers"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	logger, _ := logtest.NewNullLogger()

	cfg := &config.Config{
		Env:              "test",
		JWTExpire:        time.Hour,
		IdentityCacheTTL: time.Minute,
		BodyLimitBytes:   1 << 10,
		APIRateLimit:     100,
		APIRateWindow:    time.Minute,
		AuthRateLimit:    3,
		AuthRateWindow:   time.Minute,
	}
	c := &container.Container{
		Config: cfg,
		Logger: logger,
		Redis:  helpers.NewRedisClient(mr.Addr(), "", 0),
		JWT:    helpers.NewJWTManager("test-secret", cfg.JWTExpire),
	}
	return NewEngine(c)
}

func call(r http.Handler, method, path, body string, hdr map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestEngine_PublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	w, body := call(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to Medli Health API", body["message"])

	w, body = call(r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Medli API is running", body["message"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))
}

func TestEngine_UnknownRouteAndMethod(t *testing.T) {
	r := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/api/health/unknown"},
		{http.MethodPatch, "/api/health"},
	} {
		w, body := call(r, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
		assert.Equal(t, false, body["success"], tc.path)
		assert.Equal(t, "Route not found", body["error"], tc.path)
	}
}

func TestEngine_ProtectedRoutesNeedToken(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/auth/me", "/api/health/recordings", "/api/health/dashboard"} {
		w, body := call(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, application.MsgNotAuthorized, body["error"], path)
	}

	w, body := call(r, http.MethodGet, "/api/auth/me", "", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, application.MsgTokenInvalid, body["error"])
}

func TestEngine_AuthLimiterSharedAcrossLoginAndRegister(t *testing.T) {
	r := newTestRouter(t)

	// Validation failures count against the limit.
	for i := 0; i < 2; i++ {
		w, _ := call(r, http.MethodPost, "/api/auth/login", `{}`, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	}
	w, _ := call(r, http.MethodPost, "/api/auth/register", `{}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, body := call(r, http.MethodPost, "/api/auth/register", `{}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, middleware.MsgTooManyAuthAttempts, body["error"])
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestEngine_BodyLimit(t *testing.T) {
	r := newTestRouter(t)

	big := `{"name":"` + strings.Repeat("x", 2048) + `","email":"a@b.co","password":"password1"}`
	w, body := call(r, http.MethodPost, "/api/auth/register", big, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Request body too large", body["error"])
}
