package utils

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey verifies caller identity tokens. The identity provider that
// issues them is external to this service; we only validate the signature.
var jwtSecretKey = []byte(Getenv("JWT_SECRET", "dev-only-clubhub-signing-key"))

// Claims defines the caller identity carried in a bearer token.
type Claims struct {
	UserID   int64  `json:"user_id"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

// ValidateToken parses and validates a JWT token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
