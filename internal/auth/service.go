package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDisabled           = errors.New("authentication is disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Config holds the single-admin credential and token parameters.
type Config struct {
	Enabled      bool
	Username     string
	PasswordHash string // bcrypt hash; empty means login always fails until set
	JWTSecret    string
	TokenTTL     time.Duration
}

// Claims carried by issued tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service authenticates the single admin account and issues HS256 JWTs.
// The password hash is mutable at runtime (password change endpoint); it is
// guarded separately from the immutable token parameters.
type Service struct {
	enabled  bool
	username string
	secret   []byte
	ttl      time.Duration

	mu   sync.RWMutex
	hash string
}

func NewService(cfg Config) (*Service, error) {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	username := cfg.Username
	if username == "" {
		username = "admin"
	}
	return &Service{
		enabled:  cfg.Enabled,
		username: username,
		secret:   secret,
		ttl:      ttl,
		hash:     cfg.PasswordHash,
	}, nil
}

// Enabled reports whether the API requires authentication.
func (s *Service) Enabled() bool { return s.enabled }

// Login verifies the credential pair and issues a token.
func (s *Service) Login(username, password string) (string, error) {
	if !s.enabled {
		return "", ErrDisabled
	}
	if username != s.username || password == "" {
		return "", ErrInvalidCredentials
	}
	s.mu.RLock()
	hash := s.hash
	s.mu.RUnlock()
	if hash == "" {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issue(username)
}

func (s *Service) issue(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a raw token string.
func (s *Service) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ChangePassword verifies the current password and returns the bcrypt hash
// of the new one. Persisting the hash is the caller's concern.
func (s *Service) ChangePassword(current, next string) (string, error) {
	if !s.enabled {
		return "", ErrDisabled
	}
	if next == "" {
		return "", errors.New("new password must not be empty")
	}
	s.mu.RLock()
	hash := s.hash
	s.mu.RUnlock()
	if hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)); err != nil {
			return "", ErrInvalidCredentials
		}
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	s.hash = string(newHash)
	s.mu.Unlock()
	return string(newHash), nil
}

// HashPassword produces a bcrypt hash for bootstrap tooling.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// RandomSecret returns a hex-encoded 256-bit secret.
func RandomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}
