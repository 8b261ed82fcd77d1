package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrosoja/agrosoja/internal/api"
	"github.com/agrosoja/agrosoja/internal/auth"
	"github.com/agrosoja/agrosoja/internal/catalog"
	"github.com/agrosoja/agrosoja/internal/clock"
	"github.com/agrosoja/agrosoja/internal/config"
	"github.com/agrosoja/agrosoja/internal/db"
	"github.com/agrosoja/agrosoja/internal/docstore"
	"github.com/agrosoja/agrosoja/internal/media"
	"github.com/agrosoja/agrosoja/internal/store"
	"github.com/agrosoja/agrosoja/internal/web"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	clk := clock.Real{}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("database ready", "dialect", string(database.Dialect))

	if err := ensureAdmin(ctx, database, cfg.AdminEmail); err != nil {
		return err
	}

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	var docs docstore.Store
	switch cfg.Docstore {
	case config.DocstoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		mongoStore, err := docstore.NewMongoStore(connectCtx, cfg.MongoURI, cfg.MongoDatabase, clk)
		cancel()
		if err != nil {
			return fmt.Errorf("connecting to mongo: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoStore.Close(closeCtx); err != nil {
				slog.Error("failed to close mongo client", "error", err)
			}
		}()
		docs = mongoStore
	default:
		docs = docstore.NewSQLStore(database, clk)
	}
	slog.Info("document store ready", "backend", cfg.Docstore)

	local := media.NewLocal(database)
	var uploader media.Uploader = local
	if cfg.UseCloudinary() {
		uploader = media.NewCloudinary(cfg.Cloudinary, &http.Client{Timeout: 30 * time.Second}, clk)
		slog.Info("uploading images to cloudinary", "cloud", cfg.Cloudinary.CloudName)
	}

	authSvc := auth.NewService(database, jwtSecret, clk)
	defer auth.LogSessions(authSvc)()
	catalogSvc := catalog.NewService(docs, uploader, cfg.Imaging)

	// Set up routers.
	apiRouter := api.NewRouter(api.Deps{
		DB:       database,
		Auth:     authSvc,
		Catalog:  catalogSvc,
		PageSize: cfg.PageSize,
	})
	webRouter, err := web.NewRouter(web.Deps{
		DB:       database,
		Auth:     authSvc,
		Catalog:  catalogSvc,
		Media:    local,
		PageSize: cfg.PageSize,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	handler := middleware.RequestID(api.LoggingMiddleware(middleware.Recoverer(mux)))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// ensureAdmin creates the first administrator when no account exists yet and
// prints its generated password once.
func ensureAdmin(ctx context.Context, database *db.DB, email string) error {
	users, err := store.ListUsers(ctx, database)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := store.CreateUser(ctx, database, email, string(hash))
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	printInitResult(user.Email, password)
	return nil
}

// printInitResult prints the first-run admin credentials to stdout.
func printInitResult(email, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  E-mail:   %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("It can be changed after logging in at /admin/settings.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
