package domain

import "time"

// User is the stored account record, secrets included. It never leaves the
// service layer; callers get a PublicUser instead.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  string
	WatchHistory  []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicUser is the sanitized projection of a User.
type PublicUser struct {
	ID            string    `json:"_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	WatchHistory  []string  `json:"watchHistory"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Public strips the password hash and refresh token.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	history := make([]string, len(u.WatchHistory))
	copy(history, u.WatchHistory)
	return &PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		WatchHistory:  history,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserUpdate lists the fields a single atomic write may change. Nil pointers
// are left untouched. ClearRefreshToken takes precedence over RefreshToken.
// ExpectRefreshToken is a precondition: when set, the write applies only if
// the stored refresh token equals it, and a mismatch reads as not found.
type UserUpdate struct {
	FullName          *string
	Email             *string
	PasswordHash      *string
	AvatarURL         *string
	CoverImageURL     *string
	RefreshToken      *string
	ClearRefreshToken bool

	ExpectRefreshToken *string
}
