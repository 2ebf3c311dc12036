package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/videotube/account-service/internal/core/domain"
)

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	UserID   string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token: the user id only.
type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// TokenConfig holds secrets and lifetimes. Access and refresh tokens are
// signed with different secrets so one can never be replayed as the other.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// JWTIssuer issues HS256 token pairs.
type JWTIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

func NewJWTIssuer(cfg TokenConfig) *JWTIssuer {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 10 * 24 * time.Hour
	}
	return &JWTIssuer{cfg: cfg, now: time.Now}
}

func (i *JWTIssuer) Issue(user *domain.User) (domain.TokenPair, error) {
	if user == nil || user.ID == "" {
		return domain.TokenPair{}, errors.New("issue token: user without id")
	}
	now := i.now()

	access := AccessClaims{
		UserID:           user.ID,
		Email:            user.Email,
		Username:         user.Username,
		FullName:         user.FullName,
		RegisteredClaims: i.registered(user.ID, now, i.cfg.AccessTTL),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString([]byte(i.cfg.AccessSecret))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := RefreshClaims{
		UserID:           user.ID,
		RegisteredClaims: i.registered(user.ID, now, i.cfg.RefreshTTL),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString([]byte(i.cfg.RefreshSecret))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (i *JWTIssuer) VerifyAccess(token string) (*domain.Identity, error) {
	claims := &AccessClaims{}
	if err := i.parse(token, claims, i.cfg.AccessSecret); err != nil || claims.UserID == "" {
		return nil, domain.Unauthorized("invalid access token")
	}
	return &domain.Identity{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
		FullName: claims.FullName,
	}, nil
}

func (i *JWTIssuer) VerifyRefresh(token string) (string, error) {
	claims := &RefreshClaims{}
	if err := i.parse(token, claims, i.cfg.RefreshSecret); err != nil || claims.UserID == "" {
		return "", domain.Unauthorized("invalid refresh token")
	}
	return claims.UserID, nil
}

func (i *JWTIssuer) parse(token string, claims jwt.Claims, secret string) error {
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return err
	}
	if !tkn.Valid {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}

// registered fills the standard claims. The random jti keeps two tokens
// issued for the same user within one second distinct.
func (i *JWTIssuer) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
