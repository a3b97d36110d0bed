package middlewares

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"qlinme-service/internal/app/config"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerifier struct {
	claims *models.AuthClaims
	err    error
	calls  int
}

func (s *stubVerifier) Verify(ctx context.Context, rawToken string) (*models.AuthClaims, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func newTestMiddlewares(securityEnabled bool, verifier *stubVerifier) *Middlewares {
	internalConfig := &config.InternalConfig{}
	internalConfig.Security.Enabled = securityEnabled
	internalConfig.Security.Publics = []string{"/actuator/health", "/api/v1/auth/login"}
	internalConfig.App.RequestBodyLimitInMegabyte = 1
	return NewMiddlewares(zap.NewNop(), verifier, nil, internalConfig)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestErrorHandler(t *testing.T) {
	m := newTestMiddlewares(true, &stubVerifier{})

	t.Run("panic becomes 500", func(t *testing.T) {
		handler := m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batch/b1", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	})

	t.Run("custom error keeps its status", func(t *testing.T) {
		handler := m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(exceptions.ErrBatchNotFound(nil, "b1"))
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batch/b1", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("aborted handler is not swallowed", func(t *testing.T) {
		handler := m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))
		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		header         string
		verifierErr    error
		expectedStatus int
		expectedCalls  int
	}{
		{"public path", "/actuator/health", "", nil, http.StatusOK, 0},
		{"public prefix", "/api/v1/auth/login/", "", nil, http.StatusOK, 0},
		{"missing header", "/api/v1/batch/b1", "", nil, http.StatusUnauthorized, 0},
		{"not a bearer", "/api/v1/batch/b1", "Basic abc", nil, http.StatusUnauthorized, 0},
		{"rejected token", "/api/v1/batch/b1", "Bearer bad", exceptions.ErrTokenInvalidOrExpired(errors.New("expired")), http.StatusUnauthorized, 1},
		{"accepted token", "/api/v1/batch/b1", "Bearer good", nil, http.StatusOK, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &stubVerifier{
				claims: &models.AuthClaims{Subject: "user-1", Roles: []string{constvars.RoleQlinMe}},
				err:    tt.verifierErr,
			}
			m := newTestMiddlewares(true, verifier)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(constvars.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			m.Authenticate(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCalls, verifier.calls)
		})
	}

	t.Run("claims reach the handler", func(t *testing.T) {
		verifier := &stubVerifier{claims: &models.AuthClaims{Subject: "user-1", Roles: []string{"clin_a"}}}
		m := newTestMiddlewares(true, verifier)

		var token, subject interface{}
		var roles []string
		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token = r.Context().Value(constvars.CONTEXT_AUTH_TOKEN_KEY)
			subject = r.Context().Value(constvars.CONTEXT_AUTH_SUBJECT_KEY)
			roles, _ = r.Context().Value(constvars.CONTEXT_AUTH_ROLES_KEY).([]string)
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/batch/b1", nil)
		req.Header.Set(constvars.HeaderAuthorization, "Bearer  raw-token ")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "raw-token", token)
		assert.Equal(t, "user-1", subject)
		assert.Equal(t, []string{"clin_a"}, roles)
	})

	t.Run("security disabled", func(t *testing.T) {
		verifier := &stubVerifier{}
		m := newTestMiddlewares(false, verifier)
		rec := httptest.NewRecorder()
		m.Authenticate(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batch/b1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, verifier.calls)
	})
}

func TestRequireRole(t *testing.T) {
	withRoles := func(roles []string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/batch/b1", nil)
		return req.WithContext(context.WithValue(req.Context(), constvars.CONTEXT_AUTH_ROLES_KEY, roles))
	}

	m := newTestMiddlewares(true, &stubVerifier{})
	handler := m.RequireRole(constvars.RoleQlinMe)(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withRoles([]string{"clin_other"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withRoles([]string{"clin_other", constvars.RoleQlinMe}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batch/b1", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	disabled := newTestMiddlewares(false, &stubVerifier{}).RequireRole(constvars.RoleQlinMe)(http.HandlerFunc(okHandler))
	rec = httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batch/b1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	m := newTestMiddlewares(true, &stubVerifier{})

	var seen interface{}
	handler := m.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constvars.HeaderXRequestID, "client-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "client-id", seen)
	assert.Equal(t, "client-id", rec.Header().Get(constvars.HeaderXRequestID))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated, ok := seen.(string)
	require.True(t, ok)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Header().Get(constvars.HeaderXRequestID))
}

func TestBodyLimit(t *testing.T) {
	m := newTestMiddlewares(true, &stubVerifier{})

	var readErr error
	handler := m.BodyLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"analyses":[]}`)))
	assert.NoError(t, readErr)

	large := strings.NewReader(strings.Repeat("a", 2<<20))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", large))
	var maxBytesErr *http.MaxBytesError
	assert.ErrorAs(t, readErr, &maxBytesErr)
}
