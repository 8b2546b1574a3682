// Package reconstruct implements the Reconstruct pipeline: it reads an
// image descriptor, resolves each ordinal against the Pool the image was
// built from, and emits the original byte stream, honoring head_skip on the
// first block and tail_bytes on the last (spec.md §4.4).
//
// Reconstruct mutates no persistent state, so it carries no critical
// section: a termination signal may stop the process immediately at any
// point (spec.md §5).
package reconstruct

import (
	"io"

	"github.com/iamNilotpal/imagepile/internal/descriptor"
	"github.com/iamNilotpal/imagepile/internal/store"
	"github.com/iamNilotpal/imagepile/pkg/errors"
	"go.uber.org/zap"
)

// Pipeline runs the Reconstruct algorithm against one Store.
type Pipeline struct {
	store *store.Store
	log   *zap.SugaredLogger
}

// Config carries the Store and Logger a reconstruct Pipeline needs.
type Config struct {
	Store  *store.Store
	Logger *zap.SugaredLogger
}

// New builds a Pipeline from config.
func New(config *Config) (*Pipeline, error) {
	if config == nil || config.Store == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "reconstruct configuration is required",
		).WithField("config").WithRule("required")
	}
	return &Pipeline{store: config.Store, log: config.Logger}, nil
}

// Reconstruct reads a descriptor from input and writes the original bytes
// to output, returning the number of blocks resolved.
//
// For the very first ordinal, the bytes before head_skip are omitted; for
// the last ordinal (detected by the descriptor's one-record lookahead),
// only the first tail_bytes bytes are significant. Both trims apply
// together on a single-ordinal descriptor where head_skip > 0, which is a
// generalization beyond spec.md's literal if/else-if phrasing — see
// DESIGN.md for why the literal reading would otherwise break round-trip
// identity on that case. ReadHeader validates head_skip and tail_bytes
// independently, so a hand-crafted descriptor can still pass both checks
// with tail_bytes < head_skip; that combination is caught here and reported
// as descriptor corruption rather than slicing buf with an inverted range.
func (p *Pipeline) Reconstruct(input io.Reader, output io.Writer) (int, error) {
	header, err := descriptor.ReadHeader(input)
	if err != nil {
		return 0, err
	}

	blockSize := p.store.Pool.BlockSize()
	ordinals := descriptor.NewOrdinalReader(input)
	buf := make([]byte, blockSize)

	blocks := 0
	headSkip := int(header.HeadSkip)

	for {
		ordinal, isLast, err := ordinals.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return blocks, err
		}

		if err := p.store.Pool.Read(ordinal, buf); err != nil {
			return blocks, err
		}

		start := 0
		if blocks == 0 {
			start = headSkip
		}

		end := blockSize
		if isLast {
			end = int(header.TailBytes)
		}

		if start > end {
			return blocks, errors.NewInconsistentTrimError(header.HeadSkip, header.TailBytes)
		}

		if _, err := output.Write(buf[start:end]); err != nil {
			return blocks, errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to write reconstructed output")
		}

		blocks++
	}

	p.log.Infow("reconstruct complete", "blocks", blocks)
	return blocks, nil
}
