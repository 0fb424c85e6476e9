package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims are the claims envforge cares about when inspecting a token.
type JWTClaims struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// ParseJWT parses a JWT WITHOUT validation, for claim inspection only.
// Returns an error only for malformed tokens, not for expired or
// unsigned ones; expiry decisions belong to Token.Expired.
func ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("failed to extract claims from token")
	}

	parsed := &JWTClaims{}

	if sub, ok := claims["sub"].(string); ok {
		parsed.Subject = sub
	}
	if iss, ok := claims["iss"].(string); ok {
		parsed.Issuer = iss
	}
	if exp, ok := claims["exp"].(float64); ok {
		parsed.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if iat, ok := claims["iat"].(float64); ok {
		parsed.IssuedAt = time.Unix(int64(iat), 0)
	}

	return parsed, nil
}
