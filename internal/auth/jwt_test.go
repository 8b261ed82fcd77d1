package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, _, err := GenerateToken(secret, 1, "admin@agro.com", time.Now())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected user_id 1, got %d", claims.UserID)
	}
	if claims.Email != "admin@agro.com" {
		t.Errorf("expected email 'admin@agro.com', got %q", claims.Email)
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, _ := GenerateToken("secret1", 1, "admin@agro.com", time.Now())

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, _, _ := GenerateToken("secret", 1, "admin@agro.com", time.Now().Add(-2*TokenExpiry))

	_, err := ValidateToken("secret", token)
	if err == nil {
		t.Error("expected error for expired token")
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Now()
	_, claims, _ := GenerateToken("test", 1, "a@b.c", now)

	diff := now.Add(TokenExpiry).Sub(claims.ExpiresAt.Time)
	if diff < -time.Second || diff > time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
