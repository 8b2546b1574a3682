// Package ingest implements the Ingest pipeline: it reads a byte stream,
// splits it into fixed-size blocks, deduplicates each block against the
// Pool via the Hash Index, grows the Pool/Index in lockstep for every novel
// block, and emits an IPIL image descriptor referencing every block in
// input order (spec.md §4.3).
package ingest

import (
	"bytes"
	stdErrors "errors"
	"io"

	"github.com/iamNilotpal/imagepile/internal/descriptor"
	"github.com/iamNilotpal/imagepile/internal/store"
	"github.com/iamNilotpal/imagepile/pkg/errors"
	"github.com/iamNilotpal/imagepile/pkg/fingerprint"
	"go.uber.org/zap"
)

// ErrInterrupted is returned when a termination signal arrived during
// ingest (spec.md §5): the process stops at the next safe point instead of
// starting another block. A signal that arrives inside the Pool/Index
// critical section takes effect once that section completes. The descriptor
// written so far is incomplete and must be discarded by the caller
// (spec.md §7).
var ErrInterrupted = stdErrors.New("ingest interrupted by termination signal")

// Pipeline runs the Ingest algorithm against one Store.
type Pipeline struct {
	store *store.Store
	cs    *store.CriticalSection
	log   *zap.SugaredLogger
}

// Config carries the Store, CriticalSection, and Logger an ingest Pipeline
// needs. CriticalSection may be nil, in which case Ingest never treats a
// signal as a reason to stop early (useful for tests).
type Config struct {
	Store           *store.Store
	CriticalSection *store.CriticalSection
	Logger          *zap.SugaredLogger
}

// New builds a Pipeline from config.
func New(config *Config) (*Pipeline, error) {
	if config == nil || config.Store == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "ingest configuration is required",
		).WithField("config").WithRule("required")
	}
	return &Pipeline{store: config.Store, cs: config.CriticalSection, log: config.Logger}, nil
}

// Ingest reads input, writes an image descriptor to output, and returns the
// number of blocks referenced. output must be seekable so the placeholder
// tail_bytes field (spec.md §4.3 step 1) can be corrected once the true
// final-block size is known; callers with a non-seekable destination (e.g.
// stdout) should write to a seekable scratch file and copy it afterward
// (see pkg/tmpfile and cmd/imagepile).
func (p *Pipeline) Ingest(input io.Reader, output io.WriteSeeker, headSkip uint32) (int, error) {
	blockSize := p.store.Pool.BlockSize()

	if int(headSkip) >= blockSize {
		return 0, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "head_skip must be less than the block size",
		).WithField("head_skip").WithRule("range").WithProvided(headSkip).WithExpected(blockSize)
	}

	if err := descriptor.WriteHeader(output, headSkip); err != nil {
		return 0, err
	}

	buf := make([]byte, blockSize)
	blocks := 0
	tailBytes := uint32(blockSize)
	remainingHeadSkip := headSkip

	for {
		if p.cs != nil && p.cs.Pending() {
			p.log.Errorw("ingest stopping: termination signal received between blocks", "blocksWritten", blocks)
			p.flush()
			return blocks, ErrInterrupted
		}

		destOffset := int(remainingHeadSkip)
		want := blockSize - destOffset

		for i := 0; i < destOffset; i++ {
			buf[i] = 0
		}

		n, rerr := io.ReadFull(input, buf[destOffset:destOffset+want])
		if rerr != nil && rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
			return blocks, errors.NewDescriptorError(rerr, errors.ErrorCodeIO, "failed to read ingest input")
		}

		if n == 0 && rerr == io.EOF {
			// Clean end of input at a block boundary: no partial block to
			// append. This also covers the idempotent empty-input case.
			break
		}

		last := rerr == io.EOF || rerr == io.ErrUnexpectedEOF
		if last {
			for i := destOffset + n; i < blockSize; i++ {
				buf[i] = 0
			}
			tailBytes = uint32(destOffset + n)
		}

		ordinal, err := p.resolveBlock(buf)
		if err != nil {
			return blocks, err
		}

		if err := descriptor.WriteOrdinal(output, ordinal); err != nil {
			return blocks, err
		}

		blocks++
		remainingHeadSkip = 0

		if last {
			break
		}
	}

	if err := descriptor.RewriteTailBytes(output, tailBytes); err != nil {
		return blocks, err
	}

	p.flush()
	p.log.Infow("ingest complete", "blocks", blocks, "tailBytes", tailBytes)
	return blocks, nil
}

// resolveBlock returns the ordinal that block should be referenced by: an
// existing ordinal if a byte-identical block is already in the Pool (I2),
// or a freshly appended one otherwise. The append-and-index step is run as
// one critical section (spec.md §5).
func (p *Pipeline) resolveBlock(block []byte) (uint32, error) {
	fp := fingerprint.Of(block)

	candidate := make([]byte, len(block))
	it := p.store.Index.Find(fp)
	for {
		ord, ok := it.Next()
		if !ok {
			break
		}
		if err := p.store.Pool.Read(ord, candidate); err != nil {
			return 0, err
		}
		if bytes.Equal(block, candidate) {
			p.log.Debugw("dedup hit", "ordinal", ord)
			return ord, nil
		}
	}

	var assigned uint32
	critical := func() error {
		ord, err := p.store.Pool.Append(block)
		if err != nil {
			return err
		}
		if err := p.store.Index.Insert(fp, ord, true); err != nil {
			return err
		}
		assigned = ord
		return nil
	}

	if p.cs != nil {
		signaled, err := p.cs.Run(critical)
		if err != nil {
			return 0, err
		}
		if signaled {
			p.log.Errorw("ingest stopping: termination signal deferred past critical section", "ordinal", assigned)
			p.flush()
			return assigned, ErrInterrupted
		}
	} else if err := critical(); err != nil {
		return 0, err
	}

	p.log.Debugw("dedup miss: appended new block", "ordinal", assigned)
	return assigned, nil
}

func (p *Pipeline) flush() {
	if err := p.store.Pool.Sync(); err != nil {
		p.log.Errorw("failed to sync pool during flush", "error", err)
	}
	if err := p.store.Index.Sync(); err != nil {
		p.log.Errorw("failed to sync index during flush", "error", err)
	}
}

