// Package auth issues and verifies signed session tokens and hashes
// credentials. The rest of the system only ever learns "the caller is user U,
// admin=bool" through [Identity].
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// Claims carried inside a session token.
type Claims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID   string
	Username string
	IsAdmin  bool
}

// Authenticator signs and verifies session tokens with an HMAC secret.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

// NewAuthenticator builds an Authenticator from security config.
func NewAuthenticator(cfg shared.SecurityConfig) *Authenticator {
	return &Authenticator{
		secret: []byte(cfg.JWTSecret),
		ttl:    time.Duration(cfg.SessionTimeoutHours) * time.Hour,
	}
}

// CreateToken issues a signed token for the given user.
func (a *Authenticator) CreateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken validates a token string and extracts the caller identity.
func (a *Authenticator) VerifyToken(tokenString string) (*Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if !token.Valid {
		return nil, shared.ErrNotAuthenticated
	}

	return &Identity{UserID: claims.Subject, Username: claims.Username, IsAdmin: claims.IsAdmin}, nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored hash.
func CheckPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}
	return nil
}
