package auth

import (
	"errors"
	"testing"
	"time"

	"meetmii/internal/models"
)

func TestTokenServiceIssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", 30*time.Minute)
	user := &models.User{ID: 7, Email: "ana@example.com", Username: "ana"}

	token, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("UserID = %d, want %d", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("Email = %q, want %q", claims.Email, user.Email)
	}
	if claims.Username != user.Username {
		t.Errorf("Username = %q, want %q", claims.Username, user.Username)
	}
}

func TestTokenServiceVerifyFailures(t *testing.T) {
	svc := NewTokenService("test-secret", 30*time.Minute)
	user := &models.User{ID: 7, Email: "ana@example.com", Username: "ana"}

	validToken, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	expiredSvc := NewTokenService("test-secret", -time.Minute)
	expiredToken, err := expiredSvc.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	zeroSubjectToken, err := svc.Issue(&models.User{Email: "no-id@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name  string
		svc   *TokenService
		token string
	}{
		{"expired token", svc, expiredToken},
		{"wrong secret", NewTokenService("other-secret", 30*time.Minute), validToken},
		{"malformed token", svc, "not.a.token"},
		{"empty token", svc, ""},
		{"zero subject", svc, zeroSubjectToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
