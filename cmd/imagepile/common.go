package main

import (
	"context"
	"io"
	"os"

	"github.com/iamNilotpal/imagepile/internal/store"
	"github.com/iamNilotpal/imagepile/pkg/options"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// stdioSentinel is the conventional "-" argument meaning stdin or stdout,
// matching the rest of the pack's CLI tools.
const stdioSentinel = "-"

// resolveOptions builds the Options this invocation should use, applying
// --pool-dir (which itself falls back to IMGDIR via the flag's EnvVars).
// internal/store never reads the environment itself (SPEC_FULL.md §3.3) —
// only this CLI layer does.
func resolveOptions(c *cli.Context) options.Options {
	opts := options.NewDefaultOptions()
	if dir := c.String("pool-dir"); dir != "" {
		options.WithPoolDir(dir)(&opts)
	}
	return opts
}

// openStore opens the Pool/Index pair named by the resolved Options.
func openStore(ctx context.Context, c *cli.Context, log *zap.SugaredLogger) (*store.Store, options.Options, error) {
	opts := resolveOptions(c)
	s, err := store.Open(ctx, &store.Config{Options: &opts, Logger: log})
	return s, opts, err
}

// openInput resolves an input path argument, treating "-" as stdin. The
// returned closer is a no-op for stdin so callers can defer it
// unconditionally.
func openInput(path string) (io.ReadCloser, error) {
	if path == stdioSentinel {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}
