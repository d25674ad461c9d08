package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenAuth issues and validates the signed session tokens used for the
// websocket handshake.
type TokenAuth struct {
	Secret []byte
}

func NewTokenAuth(secret string) *TokenAuth {
	return &TokenAuth{Secret: []byte(secret)}
}

// GenerateToken creates a JWT bound to a session, valid for 24 hours.
func (t *TokenAuth) GenerateToken(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

// ValidateToken parses a token and returns the session ID it is bound to.
func (t *TokenAuth) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.Secret, nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return "", fmt.Errorf("token has expired")
		}
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("invalid session ID in token")
	}

	return sessionID, nil
}
