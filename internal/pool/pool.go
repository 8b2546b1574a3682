// Package pool implements the Block Pool: an append-only file of fixed
// B-byte blocks addressed by dense, zero-based ordinals. It is the lowest
// layer of the dedup store — the Hash Index, Ingest, and Reconstruct
// pipelines all read and write blocks through a Pool, never touching the
// file directly.
package pool

import (
	"context"
	stdErrors "errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/iamNilotpal/imagepile/pkg/blocksize"
	"github.com/iamNilotpal/imagepile/pkg/errors"
	"github.com/iamNilotpal/imagepile/pkg/filesys"
	"github.com/iamNilotpal/imagepile/pkg/options"
	"go.uber.org/zap"
)

// ErrPoolClosed is returned when an operation is attempted on a Pool whose
// Close method has already run.
var ErrPoolClosed = stdErrors.New("operation failed: cannot access closed pool")

// Pool is the append-only block file. An ordinal is the zero-based index of
// a block counted from the start of the file; block i lives at byte offset
// i*blockSize. append only ever extends the file; read never mutates it.
type Pool struct {
	file      *os.File
	fileName  string
	path      string
	blockSize int
	blocks    uint32 // number of whole blocks currently in the file
	closed    atomic.Bool
	log       *zap.SugaredLogger
}

// Config carries everything New needs to open or create a Pool file.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New opens the Pool file named by Options.PoolFileName under
// Options.PoolDir, creating the directory and file if either is missing. If
// the file already exists, its size must be a whole multiple of the block
// size; anything else is a corruption error, since a partial trailing block
// cannot correspond to a completed append (spec.md I1, I4).
func New(ctx context.Context, config *Config) (*Pool, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "pool configuration is required",
		).WithField("config").WithRule("required")
	}

	blockSize := config.Options.BlockSize
	if blockSize <= 0 {
		blockSize = blocksize.Size
	}

	dir := config.Options.PoolDir
	if err := filesys.CreateDir(dir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, dir)
	}

	fileName := config.Options.PoolFileName
	path := filepath.Join(dir, fileName)

	config.Logger.Infow("opening block pool", "path", path, "blockSize", blockSize)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, fileName)
	}

	size, err := filesys.FileSize(path)
	if err != nil {
		file.Close()
		return nil, errors.NewPoolError(err, errors.ErrorCodeIO, "failed to stat pool file").
			WithFileName(fileName).WithPath(path)
	}

	if size%int64(blockSize) != 0 {
		file.Close()
		return nil, errors.NewPoolError(
			nil, errors.ErrorCodeInternal, "pool file size is not a whole multiple of the block size",
		).WithFileName(fileName).WithPath(path).WithOffset(size).
			WithDetail("blockSize", blockSize).
			WithDetail("operation", "open")
	}

	p := &Pool{
		file:      file,
		fileName:  fileName,
		path:      path,
		blockSize: blockSize,
		blocks:    uint32(size / int64(blockSize)),
		log:       config.Logger,
	}

	config.Logger.Infow("block pool ready", "path", path, "blocks", p.blocks)
	return p, nil
}

// BlockCount returns the number of complete blocks currently stored.
func (p *Pool) BlockCount() uint32 {
	return p.blocks
}

// BlockSize returns the fixed block size this Pool was opened with.
func (p *Pool) BlockSize() int {
	return p.blockSize
}

// Append writes block, which must be exactly BlockSize() bytes, to the end
// of the Pool file and returns the ordinal assigned to it. A short write is
// fatal (spec.md §7, "I/O failure"): the Pool must never contain a partial
// block.
func (p *Pool) Append(block []byte) (uint32, error) {
	if p.closed.Load() {
		return 0, ErrPoolClosed
	}

	if len(block) != p.blockSize {
		return 0, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "block is not exactly blockSize bytes",
		).WithField("block").WithRule("length").
			WithProvided(len(block)).WithExpected(p.blockSize)
	}

	ordinal := p.blocks

	offset, err := p.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, errors.NewPoolError(err, errors.ErrorCodeIO, "failed to seek to end of pool file").
			WithFileName(p.fileName).WithPath(p.path).WithOrdinal(int64(ordinal))
	}

	n, err := p.file.Write(block)
	if err != nil {
		return 0, errors.NewPoolError(err, errors.ErrorCodeIO, "failed to append block to pool").
			WithFileName(p.fileName).WithPath(p.path).
			WithOrdinal(int64(ordinal)).WithOffset(offset)
	}
	if n != p.blockSize {
		return 0, errors.NewPoolError(
			nil, errors.ErrorCodePoolShortWrite, "short write appending block to pool",
		).WithFileName(p.fileName).WithPath(p.path).
			WithOrdinal(int64(ordinal)).WithOffset(offset).
			WithDetail("bytesWritten", n).WithDetail("bytesExpected", p.blockSize)
	}

	p.blocks++
	p.log.Debugw("appended pool block", "ordinal", ordinal, "offset", offset)
	return ordinal, nil
}

// Read fills dst, which must be exactly BlockSize() bytes, with the content
// of the block at ordinal. A negative or out-of-range ordinal, or a short
// read, is fatal.
func (p *Pool) Read(ordinal uint32, dst []byte) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	if len(dst) != p.blockSize {
		return errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "destination buffer is not exactly blockSize bytes",
		).WithField("dst").WithRule("length").
			WithProvided(len(dst)).WithExpected(p.blockSize)
	}

	if ordinal >= p.blocks {
		return errors.NewPoolError(
			nil, errors.ErrorCodePoolInvalidOrdinal, "ordinal is out of range for the current pool",
		).WithFileName(p.fileName).WithPath(p.path).
			WithOrdinal(int64(ordinal)).WithDetail("blocks", p.blocks)
	}

	offset := int64(ordinal) * int64(p.blockSize)
	n, err := p.file.ReadAt(dst, offset)
	if err != nil && err != io.EOF {
		return errors.NewPoolError(err, errors.ErrorCodeIO, "failed to read pool block").
			WithFileName(p.fileName).WithPath(p.path).
			WithOrdinal(int64(ordinal)).WithOffset(offset)
	}
	if n != p.blockSize {
		return errors.NewPoolError(
			nil, errors.ErrorCodePoolShortRead, "short read of pool block",
		).WithFileName(p.fileName).WithPath(p.path).
			WithOrdinal(int64(ordinal)).WithOffset(offset).
			WithDetail("bytesRead", n).WithDetail("bytesExpected", p.blockSize)
	}

	return nil
}

// Sync flushes buffered writes to durable storage.
func (p *Pool) Sync() error {
	if err := p.file.Sync(); err != nil {
		return errors.ClassifySyncError(err, p.fileName, p.path, 0)
	}
	return nil
}

// Close flushes and releases the underlying file handle. Close is
// idempotent: calling it a second time returns ErrPoolClosed.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrPoolClosed
	}

	p.log.Infow("closing block pool", "path", p.path, "blocks", p.blocks)
	if err := p.file.Sync(); err != nil {
		p.log.Errorw("failed to sync pool file on close", "error", err, "path", p.path)
	}
	return p.file.Close()
}
