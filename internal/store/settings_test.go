package store

import (
	"context"
	"testing"

	"github.com/agrosoja/agrosoja/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// First call should generate a secret.
	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	// Second call should return the same secret.
	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestSetting(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, ok, err := GetSetting(ctx, database, "site_title")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected missing setting")
	}

	SetSetting(ctx, database, "site_title", "AgroSoja")
	SetSetting(ctx, database, "site_title", "AgroSoja MT")

	value, ok, err := GetSetting(ctx, database, "site_title")
	if err != nil || !ok {
		t.Fatalf("GetSetting: %q %v %v", value, ok, err)
	}
	if value != "AgroSoja MT" {
		t.Errorf("expected overwritten value, got %q", value)
	}
}
