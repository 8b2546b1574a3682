package descriptor

import (
	"bytes"
	"io"
	"testing"

	"github.com/iamNilotpal/imagepile/pkg/blocksize"
	"github.com/iamNilotpal/imagepile/pkg/errors"
)

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHeader(&buf, 512); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	h, err := ReadHeader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.HeadSkip != 512 {
		t.Fatalf("expected head_skip 512, got %d", h.HeadSkip)
	}
	if h.TailBytes != blocksize.Size {
		t.Fatalf("expected placeholder tail_bytes %d, got %d", blocksize.Size, h.TailBytes)
	}
}

func TestReadHeaderRejectsBadSignature(t *testing.T) {
	buf := []byte("IPIZ\x00\x00\x00\x00\x00\x10\x00\x00")
	if _, err := ReadHeader(bytes.NewReader(buf)); err == nil {
		t.Fatal("expected error for bad signature, got nil")
	} else if !errors.IsDescriptorError(err) {
		t.Fatalf("expected a DescriptorError, got %T", err)
	}
}

func TestReadHeaderRejectsHeadSkipTooLarge(t *testing.T) {
	var buf bytes.Buffer
	WriteHeader(&buf, 0)
	raw := buf.Bytes()
	raw[4] = 0xFF
	raw[5] = 0xFF
	raw[6] = 0xFF
	raw[7] = 0xFF

	if _, err := ReadHeader(bytes.NewReader(raw)); err == nil {
		t.Fatal("expected error for head_skip >= block size, got nil")
	}
}

func TestOrdinalReaderDetectsLastOrdinal(t *testing.T) {
	var buf bytes.Buffer
	for _, ord := range []uint32{10, 20, 30} {
		if err := WriteOrdinal(&buf, ord); err != nil {
			t.Fatalf("WriteOrdinal: %v", err)
		}
	}

	r := NewOrdinalReader(&buf)

	want := []struct {
		ordinal uint32
		isLast  bool
	}{
		{10, false},
		{20, false},
		{30, true},
	}

	for i, w := range want {
		ordinal, isLast, err := r.Next()
		if err != nil {
			t.Fatalf("Next() #%d: %v", i, err)
		}
		if ordinal != w.ordinal || isLast != w.isLast {
			t.Fatalf("Next() #%d = (%d, %v), want (%d, %v)", i, ordinal, isLast, w.ordinal, w.isLast)
		}
	}

	if _, _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after exhausting stream, got %v", err)
	}
}

func TestOrdinalReaderEmptyStream(t *testing.T) {
	r := NewOrdinalReader(bytes.NewReader(nil))
	if _, _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF for empty stream, got %v", err)
	}
}

func TestOrdinalReaderRejectsTruncatedRecord(t *testing.T) {
	r := NewOrdinalReader(bytes.NewReader([]byte{1, 2, 3}))
	if _, _, err := r.Next(); err == nil {
		t.Fatal("expected error for a truncated ordinal record, got nil")
	}
}
