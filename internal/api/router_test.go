package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/api/handler"
	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
	"github.com/videotube/account-service/internal/infrastructure/security"
)

// fakeUsers implements ports.UserService with fixed answers.
type fakeUsers struct {
	ports.UserService
	users    map[string]*domain.PublicUser
	loginErr error
}

func (f *fakeUsers) Login(_ context.Context, identifier, _ string) (*domain.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &domain.Session{
		User:      &domain.PublicUser{ID: "u1", Username: identifier},
		TokenPair: domain.TokenPair{AccessToken: "a", RefreshToken: "r"},
	}, nil
}

func (f *fakeUsers) CurrentUser(_ context.Context, id string) (*domain.PublicUser, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

type envelope struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
}

func newTestRouter(t *testing.T, users *fakeUsers, tokens *security.JWTIssuer) *echo.Echo {
	t.Helper()
	return NewRouter(Deps{
		Users:  users,
		Tokens: tokens,
		Checks: map[string]handler.Check{
			"mongodb": func(context.Context) error { return nil },
		},
		Handler:    handler.Options{UploadDir: t.TempDir()},
		Log:        zerolog.Nop(),
		BodyLimit:  "1M",
		Registerer: prometheus.NewRegistry(),
	})
}

func do(t *testing.T, e *echo.Echo, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func issuer() *security.JWTIssuer {
	return security.NewJWTIssuer(security.TokenConfig{
		AccessSecret:  "a-secret",
		AccessTTL:     time.Hour,
		RefreshSecret: "r-secret",
		RefreshTTL:    time.Hour,
	})
}

func TestRouter_Health(t *testing.T) {
	e := newTestRouter(t, &fakeUsers{}, issuer())

	rec, env := do(t, e, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("liveness: %d %+v", rec.Code, env)
	}

	rec, _ = do(t, e, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readiness: %d", rec.Code)
	}
}

func TestRouter_UnknownRouteUsesEnvelope(t *testing.T) {
	e := newTestRouter(t, &fakeUsers{}, issuer())

	rec, env := do(t, e, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if rec.Code != http.StatusNotFound || env.Status != http.StatusNotFound || env.Success {
		t.Fatalf("unexpected %d %+v", rec.Code, env)
	}
}

func TestRouter_GateProtectsRoutes(t *testing.T) {
	tokens := issuer()
	users := &fakeUsers{users: map[string]*domain.PublicUser{"u1": {ID: "u1", Username: "alice"}}}
	e := newTestRouter(t, users, tokens)

	rec, env := do(t, e, httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil))
	if rec.Code != http.StatusUnauthorized || env.Message != "unauthorized request" {
		t.Fatalf("no token: %d %+v", rec.Code, env)
	}

	pair, err := tokens.Issue(&domain.User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec, env = do(t, e, req)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("with token: %d %+v", rec.Code, env)
	}
	var user domain.PublicUser
	if err := json.Unmarshal(env.Data, &user); err != nil || user.Username != "alice" {
		t.Fatalf("unexpected user %s: %v", env.Data, err)
	}

	ghost, _ := tokens.Issue(&domain.User{ID: "ghost"})
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: ghost.AccessToken})
	rec, _ = do(t, e, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user: expected 401, got %d", rec.Code)
	}
}

func TestRouter_LoginAndInternalErrors(t *testing.T) {
	users := &fakeUsers{}
	e := newTestRouter(t, users, issuer())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(`{"username":"alice","password":"pw"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec, env := do(t, e, req)
	if rec.Code != http.StatusOK || env.Message == "" {
		t.Fatalf("login: %d %+v", rec.Code, env)
	}

	users.loginErr = errors.New("socket closed")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(`{"username":"alice","password":"pw"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec, env = do(t, e, req)
	if rec.Code != http.StatusInternalServerError || env.Message != "internal server error" {
		t.Fatalf("internal: %d %+v", rec.Code, env)
	}
}

func TestRouter_Metrics(t *testing.T) {
	e := newTestRouter(t, &fakeUsers{}, issuer())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}
