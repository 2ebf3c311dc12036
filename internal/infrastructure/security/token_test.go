package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videotube/account-service/internal/core/domain"
)

func testIssuer() *JWTIssuer {
	return NewJWTIssuer(TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
	})
}

func testUser() *domain.User {
	return &domain.User{
		ID:       "64f000000000000000000001",
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Liddell",
	}
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := testIssuer()

	pair, err := issuer.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	id, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{
		UserID:   "64f000000000000000000001",
		Email:    "alice@example.com",
		Username: "alice",
		FullName: "Alice Liddell",
	}, id)

	userID, err := issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "64f000000000000000000001", userID)
}

func TestJWTIssuer_RefreshClaimsCarryOnlyID(t *testing.T) {
	pair, err := testIssuer().Issue(testUser())
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(pair.RefreshToken, claims)
	require.NoError(t, err)

	assert.Equal(t, "64f000000000000000000001", claims["_id"])
	assert.NotContains(t, claims, "email")
	assert.NotContains(t, claims, "username")
}

func TestJWTIssuer_TokensAreUnique(t *testing.T) {
	issuer := testIssuer()

	first, err := issuer.Issue(testUser())
	require.NoError(t, err)
	second, err := issuer.Issue(testUser())
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestJWTIssuer_TokensAreNotInterchangeable(t *testing.T) {
	issuer := testIssuer()
	pair, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = issuer.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer := testIssuer()
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := issuer.Issue(testUser())
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = issuer.VerifyRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTIssuer_RejectsForeignAlgorithm(t *testing.T) {
	claims := AccessClaims{
		UserID: "64f000000000000000000001",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = testIssuer().VerifyAccess(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTIssuer_RejectsGarbage(t *testing.T) {
	_, err := testIssuer().VerifyAccess("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTIssuer_IssueRequiresID(t *testing.T) {
	_, err := testIssuer().Issue(&domain.User{Username: "ghost"})
	assert.Error(t, err)
}
