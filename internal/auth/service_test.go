package auth

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestService(t *testing.T, password string) *Service {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	s, err := NewService(Config{
		Enabled:      true,
		Username:     "admin",
		PasswordHash: hash,
		JWTSecret:    "test-secret",
		TokenTTL:     time.Minute,
	})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return s
}

func TestLoginAndValidate(t *testing.T) {
	s := newTestService(t, "hunter2")

	token, err := s.Login("admin", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := s.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Username != "admin" || claims.Subject != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLoginRejections(t *testing.T) {
	s := newTestService(t, "hunter2")

	if _, err := s.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := s.Login("root", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong username: %v", err)
	}
	if _, err := s.Login("admin", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty password: %v", err)
	}
}

func TestLoginNoHashConfigured(t *testing.T) {
	s, err := NewService(Config{Enabled: true, JWTSecret: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Login("admin", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected failure with no stored hash, got %v", err)
	}
}

func TestDisabledService(t *testing.T) {
	s, err := NewService(Config{Enabled: false})
	if err != nil {
		t.Fatal(err)
	}
	if s.Enabled() {
		t.Fatalf("service should report disabled")
	}
	if _, err := s.Login("admin", "x"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("login on disabled service: %v", err)
	}
	if _, err := s.ChangePassword("x", "y"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("change password on disabled service: %v", err)
	}
}

func TestValidateRejectsGarbageAndForeignTokens(t *testing.T) {
	s := newTestService(t, "hunter2")

	if _, err := s.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: %v", err)
	}

	other := newTestService(t, "hunter2")
	other.secret = []byte("different-secret")
	token, err := other.issue("admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token signed with another secret accepted: %v", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	s := newTestService(t, "hunter2")
	s.ttl = -time.Minute
	token, err := s.issue("admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	s := newTestService(t, "hunter2")

	if _, err := s.ChangePassword("wrong", "next"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong current password: %v", err)
	}
	if _, err := s.ChangePassword("hunter2", ""); err == nil {
		t.Fatalf("empty new password accepted")
	}

	newHash, err := s.ChangePassword("hunter2", "correct horse")
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	if newHash == "" {
		t.Fatalf("no hash returned")
	}
	if _, err := s.Login("admin", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still works")
	}
	if _, err := s.Login("admin", "correct horse"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestRandomSecret(t *testing.T) {
	a, b := RandomSecret(), RandomSecret()
	if len(a) != 64 || a == b {
		t.Fatalf("secrets look wrong: %q %q", a, b)
	}
}

func TestLoginLimiter(t *testing.T) {
	l := NewLoginLimiter()
	for i := 0; i < 5; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d within burst was denied", i)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("sixth rapid attempt should be throttled")
	}
	// Other clients are unaffected.
	if !l.Allow("10.0.0.2") {
		t.Fatalf("separate ip throttled by neighbor")
	}
}

func TestLoginLimiterMapReset(t *testing.T) {
	l := NewLoginLimiter()
	for i := 0; i < maxTrackedIPs+50; i++ {
		l.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	if len(l.ips) > maxTrackedIPs {
		t.Fatalf("limiter map grew past the cap: %d", len(l.ips))
	}
}
