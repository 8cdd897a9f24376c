package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultAccessTokenTTL = 24 * time.Hour

var (
	ErrAccessTokenMissing = errors.New("missing access token")
	ErrAccessTokenInvalid = errors.New("invalid access token")
	ErrAccessTokenSubject = errors.New("access token has no subject")
)

type AccessClaims struct {
	jwt.RegisteredClaims
}

// BuildAccessToken signs a bearer token whose subject is the user id.
func BuildAccessToken(secretKey []byte, userID string, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrAccessTokenSubject
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	if now.IsZero() {
		now = time.Now()
	}

	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

func ParseAccessToken(secretKey []byte, rawToken string, now time.Time) (*AccessClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrAccessTokenMissing
	}
	if now.IsZero() {
		now = time.Now()
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrAccessTokenInvalid
			}
			return secretKey, nil
		},
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !token.Valid {
		return nil, ErrAccessTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrAccessTokenSubject
	}
	return claims, nil
}
