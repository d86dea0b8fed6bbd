package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	// ErrTokenExpired means the token carried an exp claim that has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenMalformed covers every other verification failure: bad
	// structure, bad signature, wrong algorithm, missing username claim.
	ErrTokenMalformed = errors.New("token decode error")
)

// TokenService issues and verifies HS256 bearer tokens carrying a username
// claim. It is stateless; nothing is persisted and nothing can be revoked.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService builds a token service signing with secret. With ttl zero
// tokens are issued without an expiry claim.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue signs a token for username.
func (s *TokenService) Issue(username string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"iat":      time.Now().Unix(),
	}
	if s.ttl != 0 {
		claims["exp"] = time.Now().Add(s.ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry of tokenString and returns the
// username claim. Expiry failures are ErrTokenExpired; everything else is
// ErrTokenMalformed.
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrTokenMalformed
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", ErrTokenMalformed
	}
	return username, nil
}
