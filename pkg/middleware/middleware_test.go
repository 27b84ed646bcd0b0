package middleware

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/auth"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

func newRouter(debug bool, verifier *auth.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("test", "debug")

	r := gin.New()
	r.Use(TraceID(), ErrorHandler(log, debug))

	r.GET("/boom", func(c *gin.Context) {
		c.Error(errors.NewInternal("db exploded", stderrors.New("connection refused")))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	protected := r.Group("/", Authenticate(verifier))
	protected.GET("/me", func(c *gin.Context) {
		p, _ := auth.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})
	protected.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HidesInternalCause(t *testing.T) {
	r := newRouter(false, auth.NewTokenVerifier("secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(TraceIDHeader, "trace-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, errors.CodeInternal, body.Error.Code)
	assert.Equal(t, "An internal error occurred", body.Error.Message)
	assert.Nil(t, body.Error.Details)
	assert.Equal(t, "trace-1", body.TraceID)
}

func TestErrorHandler_DebugExposesCause(t *testing.T) {
	r := newRouter(true, auth.NewTokenVerifier("secret"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	body := decode(t, w)
	assert.Equal(t, "connection refused", body.Error.Details)
	assert.NotEmpty(t, w.Header().Get(TraceIDHeader))
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	r := newRouter(false, auth.NewTokenVerifier("secret"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errors.CodeInternal, decode(t, w).Error.Code)
}

func TestAuthenticate(t *testing.T) {
	verifier := auth.NewTokenVerifier("secret")
	r := newRouter(false, verifier)

	customerToken, err := verifier.Issue(auth.Principal{ID: 7, Role: auth.RoleCustomer}, time.Hour)
	require.NoError(t, err)
	adminToken, err := verifier.Issue(auth.Principal{ID: 1, Role: auth.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
		reason string
	}{
		{"missing token", "/me", "", http.StatusUnauthorized, "AUTH_REQUIRED"},
		{"garbage token", "/me", "not-a-jwt", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"customer", "/me", customerToken, http.StatusOK, ""},
		{"customer on admin route", "/admin", customerToken, http.StatusForbidden, "ADMIN_REQUIRED"},
		{"admin on admin route", "/admin", adminToken, http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, decode(t, w).Error.Reason)
			}
		})
	}
}
