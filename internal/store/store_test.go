package store

import (
	"bytes"
	"testing"

	"github.com/iamNilotpal/imagepile/internal/pool"
	"github.com/iamNilotpal/imagepile/pkg/errors"
	"github.com/iamNilotpal/imagepile/pkg/options"
	"go.uber.org/zap"
)

func newTestOptions(dir string) options.Options {
	opts := options.NewDefaultOptions()
	opts.PoolDir = dir
	opts.BlockSize = 16
	return opts
}

func TestOpenRejectsNilConfig(t *testing.T) {
	if _, err := Open(t.Context(), nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestOpenAndCloseEmptyDirectory(t *testing.T) {
	opts := newTestOptions(t.TempDir())
	s, err := Open(t.Context(), &Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got := s.Pool.BlockCount(); got != 0 {
		t.Fatalf("expected empty pool, got %d blocks", got)
	}
	if got := s.Index.Records(); got != 0 {
		t.Fatalf("expected empty index, got %d records", got)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenDetectsLockstepViolation(t *testing.T) {
	dir := t.TempDir()
	opts := newTestOptions(dir)

	// Append a block directly to the Pool without a matching Index record,
	// simulating a crash between the two appends I1 requires to stay in
	// lockstep.
	p, err := pool.New(t.Context(), &pool.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	if _, err := p.Append(bytes.Repeat([]byte{0x1}, p.BlockSize())); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("pool Close: %v", err)
	}

	_, err = Open(t.Context(), &Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err == nil {
		t.Fatal("expected lockstep violation error, got nil")
	}
	if !errors.IsIndexError(err) {
		t.Fatalf("expected an IndexError, got %T: %v", err, err)
	}
	if errors.GetErrorCode(err) != errors.ErrorCodeIndexLockstepViolation {
		t.Fatalf("expected ErrorCodeIndexLockstepViolation, got %v", errors.GetErrorCode(err))
	}
}
