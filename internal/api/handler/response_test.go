package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/core/domain"
)

func TestResolveError(t *testing.T) {
	cases := []struct {
		err      error
		code     int
		msg      string
		internal bool
	}{
		{domain.Validation("all fields are required"), http.StatusBadRequest, "all fields are required", false},
		{domain.UploadFailed("avatar upload failed"), http.StatusBadRequest, "avatar upload failed", false},
		{domain.Unauthorized("invalid user credentials"), http.StatusUnauthorized, "invalid user credentials", false},
		{domain.ErrUserNotFound, http.StatusNotFound, "user does not exist", false},
		{domain.ErrUserExists, http.StatusConflict, "user with this username or email already exists", false},
		{fmt.Errorf("login: %w", domain.ErrUserNotFound), http.StatusNotFound, "user does not exist", false},
		{echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, "method not allowed", false},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal server error", true},
	}
	for _, tc := range cases {
		code, msg, internal := ResolveError(tc.err)
		if code != tc.code || msg != tc.msg || internal != tc.internal {
			t.Errorf("ResolveError(%v) = (%d, %q, %v), want (%d, %q, %v)", tc.err, code, msg, internal, tc.code, tc.msg, tc.internal)
		}
	}
}

func TestErrorClass(t *testing.T) {
	cases := map[string]error{
		"ok":           nil,
		"validation":   domain.Validation("x"),
		"upload":       domain.UploadFailed("x"),
		"unauthorized": domain.Unauthorized("x"),
		"not_found":    domain.ErrUserNotFound,
		"conflict":     domain.ErrUserExists,
		"internal":     errors.New("x"),
	}
	for want, err := range cases {
		if got := errorClass(err); got != want {
			t.Errorf("errorClass(%v) = %q, want %q", err, got, want)
		}
	}
}
