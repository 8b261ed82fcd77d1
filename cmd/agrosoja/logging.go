package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/agrosoja/agrosoja/internal/config"
)

// levelRouter sends records below ERROR to out and the rest to errOut,
// dropping anything under min.
type levelRouter struct {
	min    slog.Leveler
	out    slog.Handler
	errOut slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.min.Level()
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.errOut.Handle(ctx, r)
	}
	return lr.out.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{min: lr.min, out: lr.out.WithAttrs(attrs), errOut: lr.errOut.WithAttrs(attrs)}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{min: lr.min, out: lr.out.WithGroup(name), errOut: lr.errOut.WithGroup(name)}
}

func newHandler(format string, w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if format == config.LogJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// setupLogger installs the default logger. When cfg.LogPath is set every
// record is also appended to that file; the returned func closes it.
func setupLogger(cfg *config.Config) (func(), error) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	out, errOut := io.Writer(os.Stdout), io.Writer(os.Stderr)
	closeFile := func() {}

	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		closeFile = func() { f.Close() }
		out, errOut = io.MultiWriter(out, f), io.MultiWriter(errOut, f)
	}

	slog.SetDefault(slog.New(&levelRouter{
		min:    cfg.LogLevel,
		out:    newHandler(cfg.LogFormat, out, opts),
		errOut: newHandler(cfg.LogFormat, errOut, opts),
	}))
	return closeFile, nil
}
