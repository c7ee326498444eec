package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PushTokenIssuer is the issuer claim of push ingress tokens.
const PushTokenIssuer = "pos-push"

var (
	ErrInvalidPushTokenParams = errors.New("invalid params for generating push token")
	ErrInvalidAuthHeader      = errors.New("invalid authorization header")
)

// GeneratePushToken signs an HS256 token the push sender presents on the
// push ingress endpoint.
func GeneratePushToken(subject string, duration time.Duration, signKey string) (string, error) {
	if subject == "" || duration <= 0 || signKey == "" {
		return "", ErrInvalidPushTokenParams
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    PushTokenIssuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during signing push token: %w", err)
	}

	return signed, nil
}

// ValidatePushToken verifies signature, expiry and issuer of tokenString
// and returns its subject.
func ValidatePushToken(tokenString, signKey string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(signKey), nil
	},
		jwt.WithIssuer(PushTokenIssuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("error occurred validating push token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error occurred during getting subject from token: %w", err)
	}
	if subject == "" {
		return "", errors.New("empty subject error")
	}

	return subject, nil
}

// ParseBearerToken extracts the token of a "Bearer <token>" header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Fields(authorizationHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidAuthHeader
	}
	return parts[1], nil
}
