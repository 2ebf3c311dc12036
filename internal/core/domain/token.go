package domain

// TokenPair is what a successful authentication hands back to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Identity is the set of claims carried by a verified access token.
type Identity struct {
	UserID   string
	Email    string
	Username string
	FullName string
}

// Session bundles a sanitized user with a freshly issued token pair.
type Session struct {
	User *PublicUser `json:"user"`
	TokenPair
}
