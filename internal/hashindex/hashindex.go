// Package hashindex implements the Hash Index: a persistent flat file of
// 64-bit block fingerprints in Pool order, and the in-memory chained hash
// table that makes dedup lookups cost-effective. The file is the source of
// truth; the in-memory structure is rebuilt from it at startup and is never
// itself persisted directly (spec.md §4.2).
package hashindex

import (
	"bufio"
	"context"
	"encoding/binary"
	stdErrors "errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/iamNilotpal/imagepile/pkg/blocksize"
	"github.com/iamNilotpal/imagepile/pkg/errors"
	"github.com/iamNilotpal/imagepile/pkg/filesys"
	"github.com/iamNilotpal/imagepile/pkg/fingerprint"
	"github.com/iamNilotpal/imagepile/pkg/options"
	"go.uber.org/zap"
)

// recordSize is the on-disk width of one Index record: a single 64-bit
// fingerprint, little-endian (spec.md §6).
const recordSize = 8

// ErrIndexClosed is returned when an operation is attempted on an Index
// whose Close method has already run.
var ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")

// Index owns both the persistent Index file and the in-memory lookup built
// from it. Every Index record corresponds 1:1, in order, with a Pool block
// (spec.md I1) — callers are responsible for appending to the Pool and to
// the Index in lockstep; Index itself has no notion of the Pool.
type Index struct {
	file         *os.File
	fileName     string
	path         string
	leafCapacity int
	heads        []*leaf
	tails        []*leaf
	records      uint32
	closed       atomic.Bool
	log          *zap.SugaredLogger
}

// Config carries everything New needs to open an Index file and rebuild its
// in-memory lookup.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New opens (creating if necessary) the Index file named by
// Options.IndexFileName under Options.PoolDir, then rebuilds the in-memory
// lookup by reading it sequentially from the start. The i-th fingerprint
// read is inserted with ordinal i; a short trailing record is a fatal
// corruption error (spec.md §7).
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "hash index configuration is required",
		).WithField("config").WithRule("required")
	}

	leafCapacity := config.Options.LeafCapacity
	if leafCapacity <= 0 {
		leafCapacity = blocksize.LeafCapacity
	}

	dir := config.Options.PoolDir
	if err := filesys.CreateDir(dir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, dir)
	}

	fileName := config.Options.IndexFileName
	path := filepath.Join(dir, fileName)

	config.Logger.Infow("opening hash index", "path", path, "leafCapacity", leafCapacity)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, fileName)
	}

	idx := &Index{
		file:         file,
		fileName:     fileName,
		path:         path,
		leafCapacity: leafCapacity,
		heads:        make([]*leaf, blocksize.Buckets),
		tails:        make([]*leaf, blocksize.Buckets),
		log:          config.Logger,
	}

	if err := idx.rebuild(); err != nil {
		file.Close()
		return nil, err
	}

	config.Logger.Infow("hash index ready", "path", path, "records", idx.records)
	return idx, nil
}

// rebuild reads every fingerprint record from the Index file in order and
// inserts it into the in-memory lookup without re-persisting it.
func (idx *Index) rebuild() error {
	if _, err := idx.file.Seek(0, io.SeekStart); err != nil {
		return errors.NewIndexError(err, errors.ErrorCodeIO, "failed to seek to start of index file").
			WithOperation("rebuild")
	}

	reader := bufio.NewReader(idx.file)
	buf := make([]byte, recordSize)

	var ordinal uint32
	for {
		n, err := io.ReadFull(reader, buf)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return errors.NewPartialRecordError(int64(ordinal)*recordSize, n, err)
		}
		if err != nil {
			return errors.NewIndexError(err, errors.ErrorCodeIO, "failed to read index record").
				WithOperation("rebuild").WithRecordOffset(int64(ordinal) * recordSize)
		}

		fp := fingerprint.Fingerprint(binary.LittleEndian.Uint64(buf))
		if err := idx.insertMemory(fp, ordinal); err != nil {
			return err
		}
		ordinal++
	}

	idx.records = ordinal
	return nil
}

// Records returns the number of fingerprint records currently known, either
// rebuilt at startup or inserted since.
func (idx *Index) Records() uint32 {
	return idx.records
}

// Iterate walks every persisted fingerprint record in Pool order, calling
// fn with each record's ordinal and fingerprint. It re-reads the Index file
// from the start independently of the in-memory lookup, the same way
// rebuild does at startup, so callers (the verify subcommand's deep check)
// can confirm the file on disk still matches what a fresh process would
// load without disturbing this Index's live state.
func (idx *Index) Iterate(fn func(ordinal uint32, fp fingerprint.Fingerprint) error) error {
	if idx.closed.Load() {
		return ErrIndexClosed
	}

	if _, err := idx.file.Seek(0, io.SeekStart); err != nil {
		return errors.NewIndexError(err, errors.ErrorCodeIO, "failed to seek to start of index file").
			WithOperation("iterate")
	}
	defer idx.file.Seek(0, io.SeekEnd)

	reader := bufio.NewReader(idx.file)
	buf := make([]byte, recordSize)

	var ordinal uint32
	for {
		n, err := io.ReadFull(reader, buf)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			return errors.NewPartialRecordError(int64(ordinal)*recordSize, n, err)
		}
		if err != nil {
			return errors.NewIndexError(err, errors.ErrorCodeIO, "failed to read index record").
				WithOperation("iterate").WithRecordOffset(int64(ordinal) * recordSize)
		}

		fp := fingerprint.Fingerprint(binary.LittleEndian.Uint64(buf))
		if err := fn(ordinal, fp); err != nil {
			return err
		}
		ordinal++
	}
}

// Find returns an iterator over every ordinal previously inserted with
// fingerprint fp, in insertion order. The iterator is resumable: rejecting a
// candidate and calling Next again continues from where it left off without
// rescanning (spec.md §4.2, §9).
func (idx *Index) Find(fp fingerprint.Fingerprint) Iterator {
	return Iterator{leaf: idx.heads[fp.Bucket()], fp: fp}
}

// Insert records a new (fingerprint, ordinal) pair in the in-memory lookup
// and, if persist is true, appends the fingerprint to the Index file.
// persist is false only during startup rebuild, when the record already
// exists on disk.
func (idx *Index) Insert(fp fingerprint.Fingerprint, ordinal uint32, persist bool) error {
	if idx.closed.Load() {
		return ErrIndexClosed
	}

	if persist {
		if err := idx.appendRecord(fp); err != nil {
			return err
		}
		idx.records++
	}

	return idx.insertMemory(fp, ordinal)
}

// appendRecord writes fp to the end of the Index file as an 8-byte
// little-endian record. A short write is fatal, mirroring the Pool's
// append contract (spec.md §4.1, §7).
func (idx *Index) appendRecord(fp fingerprint.Fingerprint) error {
	offset, err := idx.file.Seek(0, io.SeekEnd)
	if err != nil {
		return errors.NewIndexError(err, errors.ErrorCodeIO, "failed to seek to end of index file").
			WithOperation("insert").WithFingerprint(uint64(fp))
	}

	var buf [recordSize]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(fp))

	n, err := idx.file.Write(buf[:])
	if err != nil {
		return errors.NewIndexError(err, errors.ErrorCodeIO, "failed to append index record").
			WithOperation("insert").WithFingerprint(uint64(fp)).WithRecordOffset(offset)
	}
	if n != recordSize {
		return errors.NewIndexError(
			nil, errors.ErrorCodeIndexAppendFailed, "short write appending index record",
		).WithOperation("insert").WithFingerprint(uint64(fp)).WithRecordOffset(offset).
			WithDetail("bytesWritten", n).WithDetail("bytesExpected", recordSize)
	}

	return nil
}

// insertMemory places (fp, ordinal) into the bucket selected by fp's high 16
// bits, appending to the last non-full leaf or allocating a new one. Go's
// allocator panics rather than returning an error on exhaustion, so the
// allocation is recovered here and reported as the documented
// resource-exhaustion error code (spec.md §7).
func (idx *Index) insertMemory(fp fingerprint.Fingerprint, ordinal uint32) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewIndexError(
				nil, errors.ErrorCodeIndexAllocationFailed, "failed to allocate hash index leaf",
			).WithOperation("insert").WithFingerprint(uint64(fp)).WithIndexSize(int(idx.records))
		}
	}()

	bucket := fp.Bucket()
	tail := idx.tails[bucket]
	if tail == nil || tail.full() {
		next := newLeaf(idx.leafCapacity)
		if tail == nil {
			idx.heads[bucket] = next
		} else {
			tail.next = next
		}
		idx.tails[bucket] = next
		tail = next
	}

	tail.fingerprints = append(tail.fingerprints, uint64(fp))
	tail.ordinals = append(tail.ordinals, ordinal)
	return nil
}

// Sync flushes buffered Index writes to durable storage.
func (idx *Index) Sync() error {
	if err := idx.file.Sync(); err != nil {
		return errors.ClassifySyncError(err, idx.fileName, idx.path, 0)
	}
	return nil
}

// Close flushes and releases the underlying file handle. Close is
// idempotent: calling it a second time returns ErrIndexClosed.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("closing hash index", "path", idx.path, "records", idx.records)
	if err := idx.file.Sync(); err != nil {
		idx.log.Errorw("failed to sync index file on close", "error", err, "path", idx.path)
	}
	return idx.file.Close()
}
