package ports

import (
	"context"

	"github.com/videotube/account-service/internal/core/domain"
)

// RegisterInput carries the registration form. File fields are local paths
// of the already-received multipart parts; CoverImagePath may be empty.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// UserService is the account and session lifecycle.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Session, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*domain.Session, error)
	Logout(ctx context.Context, userID string) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.PublicUser, error)
	ReplaceAvatar(ctx context.Context, userID, localPath string) (*domain.PublicUser, error)
	ReplaceCoverImage(ctx context.Context, userID, localPath string) (*domain.PublicUser, error)
	CurrentUser(ctx context.Context, userID string) (*domain.PublicUser, error)
}
