package ports

import "github.com/videotube/account-service/internal/core/domain"

// PasswordHasher is a one-way salted hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// TokenIssuer signs and verifies access and refresh tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (domain.TokenPair, error)
	VerifyAccess(token string) (*domain.Identity, error)
	// VerifyRefresh returns the user id embedded in a valid refresh token.
	VerifyRefresh(token string) (string, error)
}
