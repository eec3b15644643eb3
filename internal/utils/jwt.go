package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    string   `json:"userId"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	Zones     []string `json:"zones,omitempty"`
	TokenType string   `json:"tokenType"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// TokenSubject is the identity carried in a token.
type TokenSubject struct {
	UserID string
	Email  string
	Role   string
	Zones  []string
}

func GenerateAccessToken(sub TokenSubject, secret string, expiration time.Duration) (string, error) {
	return generateToken(sub, TokenTypeAccess, secret, expiration)
}

func GenerateRefreshToken(sub TokenSubject, secret string, expiration time.Duration) (string, error) {
	return generateToken(sub, TokenTypeRefresh, secret, expiration)
}

func generateToken(sub TokenSubject, tokenType, secret string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    sub.UserID,
		Email:     sub.Email,
		Role:      sub.Role,
		Zones:     sub.Zones,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			// distinct tokens even when issued within the same second
			ID: randomID(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
