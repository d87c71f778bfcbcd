package models

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var JWT = struct {
	ACCESS_COOKIE_NAME string
	SCOPE              string
}{
	ACCESS_COOKIE_NAME: "access_token",
	SCOPE:              "authentication",
}

type JWTClaims struct {
	Username  string `json:"username"`
	Kind      string `json:"kind"`
	Scope     string `json:"scope"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

// NewAccessToken signs an admin access token valid until expiry.
func NewAccessToken(username, secret string, expiry time.Time) (string, error) {
	claims := JWTClaims{
		Username:  username,
		Kind:      Admin,
		Scope:     JWT.SCOPE,
		TokenType: JWT.ACCESS_COOKIE_NAME,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("error signing token %w", err)
	}
	return signed, nil
}

func ValidateJWTToken(tokenString string, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || claims.Scope != JWT.SCOPE {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
