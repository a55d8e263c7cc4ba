package domain

// TokenPair is the credential bundle returned on register, login and refresh.
// ExpiresIn echoes the configured access token lifetime, e.g. "1h".
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    string
}
