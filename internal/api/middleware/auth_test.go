package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/infrastructure/security"
)

type stubResolver struct {
	users map[string]*domain.PublicUser
	err   error
}

func (s *stubResolver) CurrentUser(_ context.Context, id string) (*domain.PublicUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func newIssuer() *security.JWTIssuer {
	return security.NewJWTIssuer(security.TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Hour,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    24 * time.Hour,
	})
}

func issueFor(t *testing.T, iss *security.JWTIssuer, id string) domain.TokenPair {
	t.Helper()
	pair, err := iss.Issue(&domain.User{ID: id, Username: id, Email: id + "@example.com", FullName: "Test " + id})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return pair
}

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*domain.PublicUser, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())

	var got *domain.PublicUser
	err := mw(func(c echo.Context) error {
		got, _ = c.Get(UserKey).(*domain.PublicUser)
		return c.NoContent(http.StatusOK)
	})(c)
	return got, err
}

func TestAuth_BearerHeader(t *testing.T) {
	iss := newIssuer()
	alice := &domain.PublicUser{ID: "alice", Username: "alice"}
	mw := Auth(iss, &stubResolver{users: map[string]*domain.PublicUser{"alice": alice}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueFor(t, iss, "alice").AccessToken)

	got, err := run(t, mw, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != alice {
		t.Fatalf("expected alice in context, got %+v", got)
	}
}

func TestAuth_CookieBeatsHeader(t *testing.T) {
	iss := newIssuer()
	users := map[string]*domain.PublicUser{
		"alice": {ID: "alice"},
		"bob":   {ID: "bob"},
	}
	mw := Auth(iss, &stubResolver{users: users})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: issueFor(t, iss, "bob").AccessToken})
	req.Header.Set("Authorization", "Bearer "+issueFor(t, iss, "alice").AccessToken)

	got, err := run(t, mw, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "bob" {
		t.Fatalf("expected cookie identity bob, got %+v", got)
	}
}

func TestAuth_Rejections(t *testing.T) {
	iss := newIssuer()
	other := security.NewJWTIssuer(security.TokenConfig{AccessSecret: "other", RefreshSecret: "other-refresh"})

	cases := []struct {
		name   string
		header string
		users  map[string]*domain.PublicUser
	}{
		{name: "missing header"},
		{name: "wrong scheme", header: "Token abc"},
		{name: "garbage", header: "Bearer not-a-token"},
		{name: "foreign signature", header: "Bearer " + issueFor(t, other, "alice").AccessToken},
		{name: "refresh token as access", header: "Bearer " + issueFor(t, iss, "alice").RefreshToken},
		{name: "deleted user", header: "Bearer " + issueFor(t, iss, "ghost").AccessToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mw := Auth(iss, &stubResolver{users: map[string]*domain.PublicUser{"alice": {ID: "alice"}}})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			_, err := run(t, mw, req)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestAuth_ResolverFailureIsNotAuthError(t *testing.T) {
	iss := newIssuer()
	boom := errors.New("mongo down")
	mw := Auth(iss, &stubResolver{err: boom})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueFor(t, iss, "alice").AccessToken)

	_, err := run(t, mw, req)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to pass through, got %v", err)
	}
}
