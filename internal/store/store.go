// Package store wires the Block Pool and Hash Index into one process-wide
// context shared by the Ingest and Reconstruct pipelines, and provides the
// signal-aware critical section the Ingest pipeline needs around its
// Pool-append/Index-append pair (spec.md §5).
//
// Open does not itself take any lock against concurrent writers: spec.md §9
// leaves multi-writer coordination to the caller, and cmd/imagepile does not
// take one either, so callers must serialize access to one Pool directory.
// Open only validates that the Pool and Index it found on disk already
// satisfy I1.
package store

import (
	"context"
	stdErrors "errors"

	"github.com/iamNilotpal/imagepile/internal/hashindex"
	"github.com/iamNilotpal/imagepile/internal/pool"
	"github.com/iamNilotpal/imagepile/pkg/errors"
	"github.com/iamNilotpal/imagepile/pkg/options"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Store bundles the Pool and Hash Index that back one imagepile directory.
type Store struct {
	Pool  *pool.Pool
	Index *hashindex.Index
	log   *zap.SugaredLogger
}

// Config carries everything Open needs to locate and validate a Pool/Index
// pair.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// Open opens the Pool and Index files described by config.Options, rebuilds
// the in-memory lookup, and checks I1 (lockstep): the Index record count
// must equal the Pool block count. A mismatch is a fatal corruption error —
// it means a previous run crashed between appending to one file and the
// other.
func Open(ctx context.Context, config *Config) (*Store, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "store configuration is required",
		).WithField("config").WithRule("required")
	}

	config.Logger.Infow("opening imagepile store", "poolDir", config.Options.PoolDir)

	p, err := pool.New(ctx, &pool.Config{Options: config.Options, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	idx, err := hashindex.New(ctx, &hashindex.Config{Options: config.Options, Logger: config.Logger})
	if err != nil {
		p.Close()
		return nil, err
	}

	if idx.Records() != p.BlockCount() {
		config.Logger.Errorw(
			"lockstep violation between index and pool",
			"indexRecords", idx.Records(), "poolBlocks", p.BlockCount(),
		)
		idx.Close()
		p.Close()
		return nil, errors.NewLockstepViolationError(int(idx.Records()), int(p.BlockCount()))
	}

	config.Logger.Infow("imagepile store ready", "blocks", p.BlockCount())
	return &Store{Pool: p, Index: idx, log: config.Logger}, nil
}

// Close flushes and releases the Pool and Index file handles, combining any
// errors from the two so neither close is skipped by the other failing.
func (s *Store) Close() error {
	poolErr := s.Pool.Close()
	if poolErr != nil && !stdErrors.Is(poolErr, pool.ErrPoolClosed) {
		s.log.Errorw("error closing pool", "error", poolErr)
	}

	indexErr := s.Index.Close()
	if indexErr != nil && !stdErrors.Is(indexErr, hashindex.ErrIndexClosed) {
		s.log.Errorw("error closing index", "error", indexErr)
	}

	return multierr.Append(poolErr, indexErr)
}
