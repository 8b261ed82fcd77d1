// Package config resolves server settings from a .env file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/agrosoja/agrosoja/internal/gallery"
	"github.com/agrosoja/agrosoja/internal/imaging"
	"github.com/agrosoja/agrosoja/internal/media"
)

// Log output formats.
const (
	LogText = "text"
	LogJSON = "json"
)

// Document store backends.
const (
	DocstoreSQL   = "sql"
	DocstoreMongo = "mongo"
)

// Config holds everything the server needs to start.
type Config struct {
	DBPath     string
	Addr       string
	AdminEmail string
	LogPath    string
	LogLevel   slog.Level
	LogFormat  string

	Docstore      string
	MongoURI      string
	MongoDatabase string

	Cloudinary media.CloudinaryConfig
	PageSize   gallery.PageSizePolicy
	Imaging    imaging.Options
}

// UseCloudinary reports whether uploads go to Cloudinary instead of the
// local media table.
func (c *Config) UseCloudinary() bool {
	return c.Cloudinary.CloudName != "" && c.Cloudinary.UploadPreset != ""
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Docstore {
	case DocstoreSQL:
	case DocstoreMongo:
		if c.MongoURI == "" {
			return errors.New("AGROSOJA_MONGO_URI is required for the mongo docstore")
		}
	default:
		return fmt.Errorf("unknown docstore %q (want %s or %s)", c.Docstore, DocstoreSQL, DocstoreMongo)
	}
	if c.LogFormat != LogText && c.LogFormat != LogJSON {
		return fmt.Errorf("unknown log format %q (want %s or %s)", c.LogFormat, LogText, LogJSON)
	}
	if c.PageSize.Narrow < 1 || c.PageSize.Wide < 1 {
		return errors.New("page sizes must be positive")
	}
	if c.AdminEmail == "" {
		return errors.New("admin email must not be empty")
	}
	return nil
}

const usage = `Usage: agrosoja [flags]

Flags:
  -d, -db <path|url>      SQLite path or postgres:// URL (default: agrosoja.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <email>       admin email on first run (default: admin@agrosoja.com.br)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -v                      debug logging
  -docstore <sql|mongo>   document store backend (default: sql)
  -h, -help               show this help and exit

Environment (also read from .env):
  AGROSOJA_DB, AGROSOJA_ADDR, AGROSOJA_ADMIN_EMAIL, AGROSOJA_LOG,
  AGROSOJA_LOG_LEVEL, AGROSOJA_LOG_FORMAT,
  AGROSOJA_DOCSTORE, AGROSOJA_MONGO_URI, AGROSOJA_MONGO_DATABASE,
  AGROSOJA_PAGE_BREAKPOINT, AGROSOJA_PAGE_SIZE_NARROW, AGROSOJA_PAGE_SIZE_WIDE,
  AGROSOJA_IMAGE_MAX_DIMENSION, AGROSOJA_IMAGE_QUALITY,
  CLOUDINARY_CLOUD_NAME, CLOUDINARY_UPLOAD_PRESET,
  CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET
`

// Load builds the configuration. args excludes the program name. When -h is
// given the usage text is written to out and flag.ErrHelp is returned.
func Load(args []string, out io.Writer) (*Config, error) {
	env, err := newEnv(os.Getenv("AGROSOJA_ENV_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:        env.str("AGROSOJA_DB", "agrosoja.sqlite3"),
		Addr:          env.str("AGROSOJA_ADDR", ":8080"),
		AdminEmail:    env.str("AGROSOJA_ADMIN_EMAIL", "admin@agrosoja.com.br"),
		LogPath:       env.str("AGROSOJA_LOG", ""),
		LogFormat:     strings.ToLower(env.str("AGROSOJA_LOG_FORMAT", LogText)),
		Docstore:      env.str("AGROSOJA_DOCSTORE", DocstoreSQL),
		MongoURI:      env.str("AGROSOJA_MONGO_URI", ""),
		MongoDatabase: env.str("AGROSOJA_MONGO_DATABASE", "agrosoja"),
		Cloudinary: media.CloudinaryConfig{
			CloudName:    env.str("CLOUDINARY_CLOUD_NAME", ""),
			UploadPreset: env.str("CLOUDINARY_UPLOAD_PRESET", ""),
			APIKey:       env.str("CLOUDINARY_API_KEY", ""),
			APISecret:    env.str("CLOUDINARY_API_SECRET", ""),
		},
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(env.str("AGROSOJA_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("AGROSOJA_LOG_LEVEL: %w", err)
	}

	policy := gallery.DefaultPolicy
	if policy.Breakpoint, err = env.int("AGROSOJA_PAGE_BREAKPOINT", policy.Breakpoint); err != nil {
		return nil, err
	}
	if policy.Narrow, err = env.int("AGROSOJA_PAGE_SIZE_NARROW", policy.Narrow); err != nil {
		return nil, err
	}
	if policy.Wide, err = env.int("AGROSOJA_PAGE_SIZE_WIDE", policy.Wide); err != nil {
		return nil, err
	}
	cfg.PageSize = policy

	if cfg.Imaging.MaxDimension, err = env.int("AGROSOJA_IMAGE_MAX_DIMENSION", imaging.DefaultMaxDimension); err != nil {
		return nil, err
	}
	if cfg.Imaging.Quality, err = env.int("AGROSOJA_IMAGE_QUALITY", imaging.DefaultJPEGQuality); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("agrosoja", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.AdminEmail, "user", cfg.AdminEmail, "")
	fs.StringVar(&cfg.AdminEmail, "u", cfg.AdminEmail, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")
	fs.StringVar(&cfg.Docstore, "docstore", cfg.Docstore, "")
	verbose := fs.Bool("v", false, "")
	fs.Usage = func() { fmt.Fprint(out, usage) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.Usage()
			return nil, err
		}
		return nil, fmt.Errorf("parsing flags: %w", err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if *verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	cfg.Docstore = strings.ToLower(cfg.Docstore)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envSource looks variables up in the process environment first and falls back to
// the values read from the .env file.
type envSource struct {
	file map[string]string
}

func newEnv(path string) (*envSource, error) {
	if path == "" {
		path = ".env"
	}
	file, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return &envSource{file: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &envSource{file: file}, nil
}

func (e *envSource) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if v := e.file[key]; v != "" {
		return v
	}
	return def
}

func (e *envSource) int(key string, def int) (int, error) {
	v := e.str(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, v)
	}
	return n, nil
}
