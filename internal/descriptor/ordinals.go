package descriptor

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/iamNilotpal/imagepile/pkg/errors"
)

// OrdinalSize is the on-disk width of one packed ordinal: a 32-bit
// little-endian Pool block index.
const OrdinalSize = 4

// BatchSize resolves spec.md §4.4's "batch size is an implementation
// choice" to a fixed 4096 ordinals (16 KiB), matching the Pool block size
// for symmetry (see DESIGN.md).
const BatchSize = 4096

// WriteOrdinal appends ordinal to w as a 4-byte little-endian value, in the
// order blocks were resolved during ingest (spec.md §5, "Ordering
// guarantees").
func WriteOrdinal(w io.Writer, ordinal uint32) error {
	var buf [OrdinalSize]byte
	binary.LittleEndian.PutUint32(buf[:], ordinal)

	n, err := w.Write(buf[:])
	if err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to write ordinal")
	}
	if n != OrdinalSize {
		return errors.NewDescriptorError(
			nil, errors.ErrorCodeIO, "short write of ordinal",
		).WithDetail("bytesWritten", n).WithDetail("bytesExpected", OrdinalSize)
	}
	return nil
}

// OrdinalReader reads a descriptor's packed ordinal stream with a one-record
// lookahead, so the caller learns whether the ordinal it just received is
// the last one in the descriptor without needing to track the total count
// up front (spec.md §4.4, "End-of-descriptor detection"). It reads from its
// underlying reader in BatchSize-sized chunks via a buffered reader.
type OrdinalReader struct {
	r       *bufio.Reader
	started bool
	hasNext bool
	next    uint32
}

// NewOrdinalReader wraps r with a buffer sized to one ordinal batch.
func NewOrdinalReader(r io.Reader) *OrdinalReader {
	return &OrdinalReader{r: bufio.NewReaderSize(r, BatchSize*OrdinalSize)}
}

// Next returns the next ordinal in the stream and whether it is the final
// one, or io.EOF once the stream (and its one-record lookahead buffer) is
// exhausted.
func (o *OrdinalReader) Next() (ordinal uint32, isLast bool, err error) {
	if !o.started {
		o.started = true
		v, rerr := o.readOne()
		if rerr == io.EOF {
			return 0, false, io.EOF
		}
		if rerr != nil {
			return 0, false, rerr
		}
		o.next = v
		o.hasNext = true
	}

	if !o.hasNext {
		return 0, false, io.EOF
	}

	current := o.next
	v, rerr := o.readOne()
	if rerr == io.EOF {
		o.hasNext = false
		return current, true, nil
	}
	if rerr != nil {
		return 0, false, rerr
	}

	o.next = v
	return current, false, nil
}

func (o *OrdinalReader) readOne() (uint32, error) {
	var buf [OrdinalSize]byte
	n, err := io.ReadFull(o.r, buf[:])
	if err == io.EOF {
		return 0, io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		return 0, errors.NewTruncatedOrdinalsError(n)
	}
	if err != nil {
		return 0, errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to read ordinal")
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}
