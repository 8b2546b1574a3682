// Package descriptor implements the IPIL image descriptor format: a 12-byte
// header (signature, head_skip, tail_bytes) followed by a packed sequence of
// 32-bit little-endian Pool ordinals (spec.md §4.3, §6).
package descriptor

import (
	"encoding/binary"
	"io"

	"github.com/iamNilotpal/imagepile/pkg/blocksize"
	"github.com/iamNilotpal/imagepile/pkg/errors"
)

// HeaderSize is the fixed byte width of the descriptor header: 4-byte
// signature + 4-byte head_skip + 4-byte tail_bytes.
const HeaderSize = 12

// TailBytesOffset is the byte offset of the tail_bytes field within the
// header, used when rewriting it in place after ingest completes.
const TailBytesOffset = 8

// signature is the 4-byte ASCII magic every descriptor begins with.
var signature = [4]byte{'I', 'P', 'I', 'L'}

// Header holds the three fixed fields of a descriptor's 12-byte header.
type Header struct {
	HeadSkip  uint32
	TailBytes uint32
}

// WriteHeader writes the 12-byte header to w with the given head_skip and a
// placeholder tail_bytes equal to the block size (spec.md §4.3 step 1). The
// placeholder is corrected later, either by seeking back (RewriteTailBytes)
// or by buffering the whole descriptor in a seekable scratch file (see
// cmd/imagepile's add command for the non-seekable-output path).
func WriteHeader(w io.Writer, headSkip uint32) error {
	var buf [HeaderSize]byte
	copy(buf[0:4], signature[:])
	binary.LittleEndian.PutUint32(buf[4:8], headSkip)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(blocksize.Size))

	n, err := w.Write(buf[:])
	if err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to write descriptor header")
	}
	if n != HeaderSize {
		return errors.NewDescriptorError(
			nil, errors.ErrorCodeIO, "short write of descriptor header",
		).WithDetail("bytesWritten", n).WithDetail("bytesExpected", HeaderSize)
	}
	return nil
}

// ReadHeader reads and validates the 12-byte header from r. It is fatal
// (spec.md §7 "Corruption") if the signature doesn't match, if head_skip is
// not less than the block size, or if tail_bytes is outside (0, block size].
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to read descriptor header")
	}

	var got [4]byte
	copy(got[:], buf[0:4])
	if got != signature {
		return Header{}, errors.NewBadSignatureError(got)
	}

	headSkip := binary.LittleEndian.Uint32(buf[4:8])
	if headSkip >= blocksize.Size {
		return Header{}, errors.NewInvalidHeadSkipError(headSkip, blocksize.Size)
	}

	tailBytes := binary.LittleEndian.Uint32(buf[8:12])
	if tailBytes == 0 || tailBytes > blocksize.Size {
		return Header{}, errors.NewInvalidTailBytesError(tailBytes, blocksize.Size)
	}

	return Header{HeadSkip: headSkip, TailBytes: tailBytes}, nil
}

// RewriteTailBytes seeks ws back to TailBytesOffset and overwrites the
// 4-byte field with tailBytes. Only valid on a seekable output (a regular
// file); non-seekable output like stdout must instead buffer the descriptor
// and correct it before the final copy (see cmd/imagepile's add command).
func RewriteTailBytes(ws io.WriteSeeker, tailBytes uint32) error {
	if _, err := ws.Seek(TailBytesOffset, io.SeekStart); err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to seek back to tail_bytes field").
			WithField("tail_bytes")
	}

	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], tailBytes)
	if _, err := ws.Write(buf[:]); err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to rewrite tail_bytes field").
			WithField("tail_bytes")
	}

	if _, err := ws.Seek(0, io.SeekEnd); err != nil {
		return errors.NewDescriptorError(err, errors.ErrorCodeIO, "failed to seek back to end after rewriting header").
			WithField("tail_bytes")
	}

	return nil
}
