package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"studycon/internal/domain"
)

// jwtVerifier validates HS256-signed tokens issued by the account system.
// This backend never issues tokens itself.
type jwtVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a TokenVerifier that validates JWTs signed with HS256
// using the given shared secret.
func NewJWTVerifier(secret string) domain.TokenVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}
