package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupReq struct {
	Name     string   `json:"name" binding:"required,max=50"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,pwd"`
	Score    *float64 `json:"percentage" binding:"omitempty,pct"`
	Smoking  *bool    `json:"smoking"`
}

func (r *signupReq) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func bindBody(t *testing.T, body string, obj any) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return Bind(c, obj)
}

func TestBind_NormalizesBeforeValidating(t *testing.T) {
	var req signupReq
	err := bindBody(t, `{"name":"  Ana  ","email":" ANA@Example.com ","password":"password1"}`, &req)

	require.NoError(t, err)
	assert.Equal(t, "Ana", req.Name)
	assert.Equal(t, "ana@example.com", req.Email)
}

func TestBind_EmptyBodyReportsFirstRequiredField(t *testing.T) {
	var req signupReq
	err := bindBody(t, ``, &req)

	require.Error(t, err)
	assert.Equal(t, "Name is required", Message(err, nil))
}

func TestMessage(t *testing.T) {
	cases := []struct {
		name, body, want string
		overrides        Messages
	}{
		{"whitespace name", `{"name":"   ","email":"a@b.co","password":"password1"}`, "Name is required", nil},
		{"bad email", `{"name":"A","email":"x","password":"password1"}`, "Please provide a valid email", nil},
		{"short password", `{"name":"A","email":"a@b.co","password":"1234567"}`, "Password must be at least 8 characters long", nil},
		{"percentage range", `{"name":"A","email":"a@b.co","password":"password1","percentage":101}`, "Percentage must be between 0 and 100", nil},
		{"wrong type", `{"name":"A","email":"a@b.co","password":"password1","smoking":"yes"}`, "Smoking status must be boolean", nil},
		{"syntax", `{"name":`, "Invalid JSON payload", nil},
		{"override", `{"name":"` + strings.Repeat("x", 51) + `","email":"a@b.co","password":"password1"}`, "too long", Messages{"name.max": "too long"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req signupReq
			err := bindBody(t, tc.body, &req)
			require.Error(t, err)
			assert.Equal(t, tc.want, Message(err, tc.overrides))
		})
	}
}

func TestMessage_BodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`"}`))
	c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 16)

	var req signupReq
	err := Bind(c, &req)

	require.Error(t, err)
	assert.Equal(t, "Request body too large", Message(err, nil))
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("3f1c4a52-8a4e-4f1e-9b7a-2f6d1c0e9a11", "required,uuid"))
	assert.Error(t, Var("not-a-uuid", "required,uuid"))
	assert.Error(t, Var("", "required,uuid"))
}
