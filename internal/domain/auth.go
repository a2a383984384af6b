package domain

// TokenVerifier validates an access token and returns the user ID it carries.
type TokenVerifier interface {
	Verify(token string) (string, error)
}
