package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/api/metrics"
	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// Options configures how the handler stores uploads and writes cookies.
type Options struct {
	// UploadDir receives multipart files for the duration of a request.
	UploadDir string
	// SecureCookies sets the Secure attribute; disable only for plain-HTTP dev.
	SecureCookies bool
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// UserHandler serves the /users routes.
type UserHandler struct {
	users ports.UserService
	opts  Options
	log   zerolog.Logger
}

func NewUserHandler(users ports.UserService, opts Options, log zerolog.Logger) *UserHandler {
	if opts.UploadDir == "" {
		opts.UploadDir = os.TempDir()
	}
	return &UserHandler{users: users, opts: opts, log: log}
}

type registerRequest struct {
	FullName string `form:"fullName" validate:"required"`
	Email    string `form:"email"    validate:"required,email"`
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
}

// Register creates an account from a multipart form.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullName    formData  string  true   "Full name"
// @Param        email       formData  string  true   "Email"
// @Param        username    formData  string  true   "Username"
// @Param        password    formData  string  true   "Password"
// @Param        avatar      formData  file    true   "Avatar image"
// @Param        coverImage  formData  file    false  "Cover image"
// @Success      201  {object}  Envelope{data=domain.Session}
// @Failure      400  {object}  Envelope
// @Failure      409  {object}  Envelope
// @Failure      500  {object}  Envelope
// @Router       /api/v1/users/register [post]
func (h *UserHandler) Register(c echo.Context) (err error) {
	defer h.observe("register", &err)

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid payload")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return err
	}

	avatarPath, cleanupAvatar, err := h.saveUpload(c, "avatar")
	if err != nil {
		return err
	}
	defer cleanupAvatar()

	coverPath, cleanupCover, err := h.saveUpload(c, "coverImage")
	if err != nil {
		return err
	}
	defer cleanupCover()

	session, err := h.users.Register(c.Request().Context(), ports.RegisterInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		return err
	}

	h.setSessionCookies(c, session.TokenPair)
	return respond(c, http.StatusCreated, session, "User registered successfully")
}

// Login authenticates by username or email.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  Envelope{data=domain.Session}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /api/v1/users/login [post]
func (h *UserHandler) Login(c echo.Context) (err error) {
	defer h.observe("login", &err)

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid payload")
	}
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = req.Email
	}
	if strings.TrimSpace(identifier) == "" {
		return domain.Validation("username or email is required")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.users.Login(c.Request().Context(), identifier, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, session.TokenPair)
	return respond(c, http.StatusOK, session, "User logged in successfully")
}

// Logout revokes the stored refresh token and clears both cookies.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Router       /api/v1/users/logout [post]
func (h *UserHandler) Logout(c echo.Context) (err error) {
	defer h.observe("logout", &err)

	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.users.Logout(c.Request().Context(), user.ID); err != nil {
		return err
	}

	h.clearSessionCookies(c)
	return respond(c, http.StatusOK, struct{}{}, "User logged out")
}

// RefreshToken exchanges a refresh token for a new pair. The cookie wins over
// the body.
//
// @Summary      Refresh the access token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token when no cookie is sent"
// @Success      200   {object}  Envelope{data=domain.TokenPair}
// @Failure      401   {object}  Envelope
// @Router       /api/v1/users/refresh-token [post]
func (h *UserHandler) RefreshToken(c echo.Context) (err error) {
	defer h.observe("refresh", &err)

	token := ""
	if ck, err := c.Cookie(refreshCookie); err == nil {
		token = ck.Value
	}
	if token == "" {
		var req refreshRequest
		if err := c.Bind(&req); err != nil {
			return domain.Validation("invalid payload")
		}
		token = req.RefreshToken
	}

	pair, err := h.users.RefreshAccessToken(c.Request().Context(), token)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, pair)
	return respond(c, http.StatusOK, pair, "Access token refreshed")
}

// ChangePassword replaces the password after checking the old one.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Router       /api/v1/users/change-password [post]
func (h *UserHandler) ChangePassword(c echo.Context) (err error) {
	defer h.observe("change_password", &err)

	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.users.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, struct{}{}, "Password changed successfully")
}

// CurrentUser returns the authenticated account.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=domain.PublicUser}
// @Failure      401  {object}  Envelope
// @Router       /api/v1/users/current-user [get]
func (h *UserHandler) CurrentUser(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Current user fetched successfully")
}

// UpdateAccount sets full name and email.
//
// @Summary      Update account details
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateAccountRequest  true  "New details"
// @Success      200   {object}  Envelope{data=domain.PublicUser}
// @Failure      400   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Router       /api/v1/users/update-account [patch]
func (h *UserHandler) UpdateAccount(c echo.Context) (err error) {
	defer h.observe("update_profile", &err)

	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid payload")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.users.UpdateProfile(c.Request().Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated, "Account details updated successfully")
}

// UpdateAvatar replaces the avatar image.
//
// @Summary      Replace avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Avatar image"
// @Success      200     {object}  Envelope{data=domain.PublicUser}
// @Failure      400     {object}  Envelope
// @Router       /api/v1/users/avatar [patch]
func (h *UserHandler) UpdateAvatar(c echo.Context) (err error) {
	defer h.observe("replace_avatar", &err)

	return h.replaceMedia(c, "avatar", h.users.ReplaceAvatar, "Avatar updated successfully")
}

// UpdateCoverImage replaces the cover image.
//
// @Summary      Replace cover image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        coverImage  formData  file  true  "Cover image"
// @Success      200         {object}  Envelope{data=domain.PublicUser}
// @Failure      400         {object}  Envelope
// @Router       /api/v1/users/cover-image [patch]
func (h *UserHandler) UpdateCoverImage(c echo.Context) (err error) {
	defer h.observe("replace_cover", &err)

	return h.replaceMedia(c, "coverImage", h.users.ReplaceCoverImage, "Cover image updated successfully")
}

type replaceFunc func(ctx context.Context, userID, localPath string) (*domain.PublicUser, error)

func (h *UserHandler) replaceMedia(c echo.Context, field string, replace replaceFunc, message string) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	path, cleanup, err := h.saveUpload(c, field)
	if err != nil {
		return err
	}
	defer cleanup()

	updated, err := replace(c.Request().Context(), user.ID, path)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated, message)
}

// saveUpload writes the multipart file named field into the upload dir under a
// random name. A missing part yields an empty path and no error; the returned
// cleanup is always safe to call.
func (h *UserHandler) saveUpload(c echo.Context, field string) (string, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", noop, nil
		}
		return "", noop, domain.Validation("invalid " + field + " upload")
	}

	src, err := fh.Open()
	if err != nil {
		return "", noop, fmt.Errorf("open %s part: %w", field, err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.opts.UploadDir, 0o755); err != nil {
		return "", noop, fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(h.opts.UploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", noop, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.log.Warn().Err(err).Str("path", path).Msg("failed to remove temp upload")
		}
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		cleanup()
		return "", noop, fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}

// setSessionCookies is a no-op for an empty pair, which registration returns
// when the account was stored but no session could be started.
func (h *UserHandler) setSessionCookies(c echo.Context, pair domain.TokenPair) {
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return
	}
	c.SetCookie(h.cookie(accessCookie, pair.AccessToken, h.opts.AccessTTL))
	c.SetCookie(h.cookie(refreshCookie, pair.RefreshToken, h.opts.RefreshTTL))
}

func (h *UserHandler) clearSessionCookies(c echo.Context) {
	for _, name := range []string{accessCookie, refreshCookie} {
		ck := h.cookie(name, "", 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}

func (h *UserHandler) cookie(name, value string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	}
	if ttl > 0 {
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

func (h *UserHandler) observe(operation string, errp *error) {
	metrics.AuthOperationsTotal.WithLabelValues(operation, errorClass(*errp)).Inc()
}
