package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/middleware"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubActors struct {
	seen []string
}

func (s *stubActors) FindOrCreate(ctx context.Context, username string) (*models.Actor, error) {
	s.seen = append(s.seen, username)
	return &models.Actor{ID: 9, Username: username, System: username == models.SystemActorName}, nil
}

func (s *stubActors) System(ctx context.Context) (*models.Actor, error) {
	return &models.Actor{ID: 1, Username: models.SystemActorName, System: true}, nil
}

func token(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newEngine(auth *middleware.Authenticator, scope string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := func(c *gin.Context) {
		actor := middleware.CurrentActor(c)
		if actor == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, actor.Username)
	}
	r.GET("/x", auth.RequireAccess(scope), handler)
	r.POST("/x", auth.RequireAccess(scope), handler)
	return r
}

func do(r http.Handler, method string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAccess_ResolvesActor(t *testing.T) {
	actors := &stubActors{}
	r := newEngine(middleware.NewAuthenticator("s3cret", actors), "images:write")

	tok := token(t, "s3cret", jwt.MapClaims{"scope": "images:read images:write", "preferred_username": "editor", "sub": "123"})
	w := do(r, http.MethodPost, map[string]string{"Authorization": "Bearer " + tok})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "editor", w.Body.String())
	assert.Equal(t, []string{"editor"}, actors.seen)
}

func TestRequireAccess_FallsBackToSubject(t *testing.T) {
	r := newEngine(middleware.NewAuthenticator("", &stubActors{}), "images:read")

	tok := token(t, "whatever", jwt.MapClaims{"scope": "images:read", "sub": "svc-importer"})
	w := do(r, http.MethodGet, map[string]string{"Authorization": "Bearer " + tok})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "svc-importer", w.Body.String())
}

func TestRequireAccess_Rejections(t *testing.T) {
	r := newEngine(middleware.NewAuthenticator("s3cret", &stubActors{}), "images:write")

	tests := []struct {
		name    string
		method  string
		headers map[string]string
		status  int
	}{
		{"no header", http.MethodPost, nil, http.StatusUnauthorized},
		{"not bearer", http.MethodPost, map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized},
		{"garbage", http.MethodPost, map[string]string{"Authorization": "Bearer not.a.token"}, http.StatusUnauthorized},
		{"wrong secret", http.MethodPost, map[string]string{"Authorization": "Bearer " + token(t, "other", jwt.MapClaims{"scope": "images:write", "sub": "a"})}, http.StatusUnauthorized},
		{"missing scope", http.MethodPost, map[string]string{"Authorization": "Bearer " + token(t, "s3cret", jwt.MapClaims{"scope": "images:read", "sub": "a"})}, http.StatusForbidden},
		{"no username", http.MethodPost, map[string]string{"Authorization": "Bearer " + token(t, "s3cret", jwt.MapClaims{"scope": "images:write"})}, http.StatusUnauthorized},
		{"reserved username", http.MethodPost, map[string]string{"Authorization": "Bearer " + token(t, "s3cret", jwt.MapClaims{"scope": "images:write", "sub": models.SystemActorName})}, http.StatusForbidden},
		{"api key write", http.MethodPost, map[string]string{"x-api-key": "k"}, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, tc.method, tc.headers)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
		})
	}
}

func TestRequireAccess_APIKeyReadsAnonymously(t *testing.T) {
	r := newEngine(middleware.NewAuthenticator("s3cret", &stubActors{}), "images:read")

	w := do(r, http.MethodGet, map[string]string{"x-api-key": "k"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := do(r, http.MethodGet, nil)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = do(r, http.MethodGet, map[string]string{middleware.RequestIDHeader: "abc123"})
	assert.Equal(t, "abc123", w.Header().Get(middleware.RequestIDHeader))
}
