package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// UserService implements registration, the session lifecycle and profile
// maintenance on top of the credential store.
type UserService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	media    ports.MediaUploader
	activity ports.ActivityRecorder
	log      zerolog.Logger
}

func NewUserService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	media ports.MediaUploader,
	activity ports.ActivityRecorder,
	log zerolog.Logger,
) *UserService {
	if activity == nil {
		activity = nopRecorder{}
	}
	return &UserService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		media:    media,
		activity: activity,
		log:      log,
	}
}

// Register creates an account. Text fields are trimmed, username and email
// lowercased. The avatar is mandatory; a failed cover upload is tolerated.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Session, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := normalize(in.Email)
	username := normalize(in.Username)
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, domain.Validation("all fields are required")
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrUserExists
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("register: lookup: %w", err)
	}

	if strings.TrimSpace(in.AvatarPath) == "" {
		return nil, domain.Validation("avatar file is required")
	}

	avatarURL, err := s.media.Upload(ctx, in.AvatarPath)
	if err != nil || avatarURL == "" {
		s.log.Warn().Err(err).Str("username", username).Msg("avatar upload failed")
		return nil, domain.UploadFailed("avatar upload failed")
	}

	var coverURL string
	if strings.TrimSpace(in.CoverImagePath) != "" {
		coverURL, err = s.media.Upload(ctx, in.CoverImagePath)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("cover image upload failed, continuing without it")
			coverURL = ""
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		WatchHistory:  []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("register: create: %w", err)
	}

	s.record(domain.ActivityRegistered, created.ID)
	s.log.Info().Str("user_id", created.ID).Str("username", username).Msg("user registered")

	// The account exists from here on. Without a session the client can still
	// log in, so the registration itself succeeds.
	session, err := s.startSession(ctx, created)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", created.ID).Msg("account created but session could not be started")
		return &domain.Session{User: created.Public()}, nil
	}
	return session, nil
}

// Login authenticates by username or email and issues a fresh token pair,
// replacing whatever refresh token was stored before.
func (s *UserService) Login(ctx context.Context, usernameOrEmail, password string) (*domain.Session, error) {
	identifier := normalize(usernameOrEmail)
	if identifier == "" {
		return nil, domain.Validation("username or email is required")
	}
	if password == "" {
		return nil, domain.Validation("password is required")
	}

	user, err := s.repo.FindByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("login: lookup: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, domain.Unauthorized("invalid user credentials")
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.record(domain.ActivityLoggedIn, user.ID)
	return session, nil
}

// Logout drops the stored refresh token. Logging out twice is not an error.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if _, err := s.repo.UpdateFields(ctx, userID, domain.UserUpdate{ClearRefreshToken: true}); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("logout: %w", err)
	}
	s.record(domain.ActivityLoggedOut, userID)
	return nil
}

// RefreshAccessToken exchanges the current refresh token for a new pair. The
// presented token must be the one stored for the user, so each refresh token
// works at most once.
func (s *UserService) RefreshAccessToken(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if refreshToken == "" {
		return domain.TokenPair{}, domain.Unauthorized("unauthorized request")
	}

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TokenPair{}, domain.Unauthorized("invalid refresh token")
		}
		return domain.TokenPair{}, fmt.Errorf("refresh: lookup: %w", err)
	}
	if user == nil {
		return domain.TokenPair{}, domain.Unauthorized("invalid refresh token")
	}

	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		s.log.Warn().Str("user_id", user.ID).Msg("stale or reused refresh token presented")
		return domain.TokenPair{}, domain.Unauthorized("refresh token is expired or used")
	}

	pair, err := s.rotate(ctx, user, &refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Str("user_id", user.ID).Msg("refresh token rotated concurrently")
			return domain.TokenPair{}, domain.Unauthorized("refresh token is expired or used")
		}
		return domain.TokenPair{}, err
	}

	s.record(domain.ActivityTokenRefreshed, user.ID)
	return pair, nil
}

// ChangePassword replaces the hash after checking the old password.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return domain.Validation("new password is required")
	}
	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return s.lookupErr("change password", err)
	}

	if !s.hasher.Verify(user.PasswordHash, oldPassword) {
		return domain.Unauthorized("invalid old password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return fmt.Errorf("change password: hash: %w", err)
	}

	if _, err := s.repo.UpdateFields(ctx, userID, domain.UserUpdate{PasswordHash: &hash}); err != nil {
		return s.lookupErr("change password", err)
	}

	s.record(domain.ActivityPasswordChanged, userID)
	return nil
}

// UpdateProfile sets full name and email together.
func (s *UserService) UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.PublicUser, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalize(email)
	if fullName == "" || email == "" {
		return nil, domain.Validation("all fields are required")
	}

	updated, err := s.repo.UpdateFields(ctx, userID, domain.UserUpdate{FullName: &fullName, Email: &email})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("email is already in use")
		}
		return nil, s.lookupErr("update profile", err)
	}

	s.record(domain.ActivityProfileUpdated, userID)
	return updated.Public(), nil
}

// ReplaceAvatar uploads a new avatar and points the account at it.
func (s *UserService) ReplaceAvatar(ctx context.Context, userID, localPath string) (*domain.PublicUser, error) {
	url, err := s.uploadMedia(ctx, localPath, "avatar")
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateFields(ctx, userID, domain.UserUpdate{AvatarURL: &url})
	if err != nil {
		return nil, s.lookupErr("replace avatar", err)
	}

	s.record(domain.ActivityAvatarReplaced, userID)
	return updated.Public(), nil
}

// ReplaceCoverImage uploads a new cover image and points the account at it.
func (s *UserService) ReplaceCoverImage(ctx context.Context, userID, localPath string) (*domain.PublicUser, error) {
	url, err := s.uploadMedia(ctx, localPath, "cover image")
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateFields(ctx, userID, domain.UserUpdate{CoverImageURL: &url})
	if err != nil {
		return nil, s.lookupErr("replace cover image", err)
	}

	s.record(domain.ActivityCoverReplaced, userID)
	return updated.Public(), nil
}

// CurrentUser resolves an account id to its sanitized view.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.lookupErr("current user", err)
	}
	return user.Public(), nil
}

func (s *UserService) uploadMedia(ctx context.Context, localPath, label string) (string, error) {
	if strings.TrimSpace(localPath) == "" {
		return "", domain.Validation(label + " file is missing")
	}
	url, err := s.media.Upload(ctx, localPath)
	if err != nil || url == "" {
		s.log.Warn().Err(err).Str("kind", label).Msg("media upload failed")
		return "", domain.UploadFailed("error while uploading " + label)
	}
	return url, nil
}

// startSession issues a pair for the user and stores the refresh half.
func (s *UserService) startSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	pair, err := s.rotate(ctx, user, nil)
	if err != nil {
		return nil, err
	}
	user.RefreshToken = pair.RefreshToken
	return &domain.Session{User: user.Public(), TokenPair: pair}, nil
}

// rotate issues a new pair and stores its refresh half. When expected is set
// the write only lands if the stored token still equals it; otherwise the
// error matches domain.ErrNotFound.
func (s *UserService) rotate(ctx context.Context, user *domain.User, expected *string) (domain.TokenPair, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	upd := domain.UserUpdate{RefreshToken: &pair.RefreshToken, ExpectRefreshToken: expected}
	if _, err := s.repo.UpdateFields(ctx, user.ID, upd); err != nil {
		return domain.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}

func (s *UserService) lookupErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *UserService) record(t domain.ActivityType, userID string) {
	s.activity.Record(domain.ActivityEvent{Type: t, UserID: userID, At: time.Now().UTC()})
}

func checkPasswordLength(password string) error {
	if len(password) > maxPasswordBytes {
		return domain.Validation(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

type nopRecorder struct{}

func (nopRecorder) Record(domain.ActivityEvent) {}
