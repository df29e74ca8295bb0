package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/expense-tracker/internal/apperrors"
	"github.com/monocle-dev/expense-tracker/internal/auth"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"github.com/monocle-dev/expense-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers map[uint]*models.User

func (s stubUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := s[id]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	return user, nil
}

func newTestEngine(tokens *auth.TokenManager, users UserLookup, logOutput *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := applog.New(applog.Config{Format: "json", Output: logOutput})
	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/me", AuthMiddleware(tokens, users, log), func(ctx *gin.Context) {
		user := ctx.MustGet(types.ContextUserKey).(types.AuthenticatedUser)
		ctx.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("middleware-test-secret", time.Hour)
	users := stubUsers{
		1: {BaseModel: models.BaseModel{ID: 1}, Email: "a@x.com", Username: "alice", IsActive: true},
		2: {BaseModel: models.BaseModel{ID: 2}, Email: "b@x.com", Username: "bob", IsActive: false},
	}

	valid, _, err := tokens.GenerateJWT(1, "a@x.com")
	require.NoError(t, err)
	inactive, _, err := tokens.GenerateJWT(2, "b@x.com")
	require.NoError(t, err)
	unknown, _, err := tokens.GenerateJWT(3, "c@x.com")
	require.NoError(t, err)
	foreign, _, err := auth.NewTokenManager("another-secret", time.Hour).GenerateJWT(1, "a@x.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"foreign signature", "Bearer " + foreign, http.StatusUnauthorized},
		{"unknown user", "Bearer " + unknown, http.StatusUnauthorized},
		{"inactive user", "Bearer " + inactive, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			r := newTestEngine(tokens, users, &logs)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(types.RequestIDHeader))

			if tt.status == http.StatusUnauthorized {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, string(apperrors.KindUnauthorized), body["kind"])
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestAuthMiddlewareQueryTokenOnlyForWebSocket(t *testing.T) {
	tokens := auth.NewTokenManager("middleware-test-secret", time.Hour)
	users := stubUsers{1: {BaseModel: models.BaseModel{ID: 1}, IsActive: true}}
	token, _, err := tokens.GenerateJWT(1, "a@x.com")
	require.NoError(t, err)

	r := newTestEngine(tokens, users, &bytes.Buffer{})

	plain := httptest.NewRequest(http.MethodGet, "/me?access_token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, plain)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	upgrade := httptest.NewRequest(http.MethodGet, "/me?access_token="+token, nil)
	upgrade.Header.Set("Connection", "Upgrade")
	upgrade.Header.Set("Upgrade", "websocket")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, upgrade)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestLoggerKeepsIncomingRequestID(t *testing.T) {
	var logs bytes.Buffer
	r := newTestEngine(auth.NewTokenManager("middleware-test-secret", time.Hour), stubUsers{}, &logs)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(types.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(types.RequestIDHeader))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "HTTP request", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "req-123", entry[applog.FieldRequestID])
	assert.Equal(t, float64(http.StatusUnauthorized), entry[applog.FieldStatusCode])
	assert.Equal(t, applog.ComponentHTTP, entry[applog.FieldComponent])
}
