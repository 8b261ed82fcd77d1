package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/agrosoja/agrosoja/internal/config"
	"github.com/agrosoja/agrosoja/internal/db"
	"github.com/agrosoja/agrosoja/internal/store"
)

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	if err != nil {
		t.Fatalf("generatePassword: %v", err)
	}
	b, _ := generatePassword(16)
	if len(a) != 16 {
		t.Errorf("expected 16 characters, got %d", len(a))
	}
	if a == b {
		t.Error("expected two different passwords")
	}
}

func TestEnsureAdminRunsOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := ensureAdmin(ctx, database, "Admin@AgroSoja.com.br"); err != nil {
		t.Fatalf("ensureAdmin: %v", err)
	}
	if err := ensureAdmin(ctx, database, "other@agrosoja.com.br"); err != nil {
		t.Fatalf("ensureAdmin again: %v", err)
	}

	users, err := store.ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].Email != "admin@agrosoja.com.br" {
		t.Errorf("expected only the first admin, got %+v", users)
	}
}

func TestLevelRouter(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(&levelRouter{
		min:    slog.LevelInfo,
		out:    newHandler(config.LogText, &out, nil),
		errOut: newHandler(config.LogText, &errOut, nil),
	}).With("component", "test")

	logger.Info("hello")
	logger.Warn("careful")
	logger.Error("broken")
	logger.Debug("hidden")

	if !bytes.Contains(out.Bytes(), []byte("hello")) || !bytes.Contains(out.Bytes(), []byte("careful")) {
		t.Errorf("expected info and warn on stdout, got %q", out.String())
	}
	if bytes.Contains(out.Bytes(), []byte("broken")) || !bytes.Contains(errOut.Bytes(), []byte("broken")) {
		t.Errorf("expected error only on stderr, got stdout=%q stderr=%q", out.String(), errOut.String())
	}
	if bytes.Contains(out.Bytes(), []byte("hidden")) {
		t.Error("expected debug to be dropped")
	}
	if !bytes.Contains(errOut.Bytes(), []byte("component=test")) {
		t.Error("expected attributes to reach the stderr handler")
	}
}

func TestLevelRouterDebugJSON(t *testing.T) {
	var out bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	logger := slog.New(&levelRouter{
		min:    slog.LevelDebug,
		out:    newHandler(config.LogJSON, &out, opts),
		errOut: newHandler(config.LogJSON, &out, opts),
	})

	logger.Debug("visible", "page", 2)

	if !bytes.Contains(out.Bytes(), []byte(`"msg":"visible"`)) || !bytes.Contains(out.Bytes(), []byte(`"page":2`)) {
		t.Errorf("expected JSON debug record, got %q", out.String())
	}
}
