package reconstruct

import (
	"bytes"
	"os"
	"testing"

	"github.com/iamNilotpal/imagepile/internal/ingest"
	"github.com/iamNilotpal/imagepile/internal/store"
	"github.com/iamNilotpal/imagepile/pkg/fingerprint"
	"github.com/iamNilotpal/imagepile/pkg/options"
	"go.uber.org/zap"
)

func newRoundTripStore(t *testing.T, blockSize int) *store.Store {
	t.Helper()

	opts := options.NewDefaultOptions()
	opts.PoolDir = t.TempDir()
	opts.BlockSize = blockSize

	s, err := store.Open(t.Context(), &store.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func descriptorScratchFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "descriptor-*.ipil")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func roundTrip(t *testing.T, blockSize int, input []byte, headSkip uint32) []byte {
	t.Helper()

	s := newRoundTripStore(t, blockSize)

	ingestPipe, err := ingest.New(&ingest.Config{Store: s, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("ingest.New: %v", err)
	}

	desc := descriptorScratchFile(t)
	if _, err := ingestPipe.Ingest(bytes.NewReader(input), desc, headSkip); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := desc.Seek(0, 0); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	reconstructPipe, err := New(&Config{Store: s, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("reconstruct.New: %v", err)
	}

	var out bytes.Buffer
	if _, err := reconstructPipe.Reconstruct(desc, &out); err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	return out.Bytes()
}

func TestRoundTripIdentityForEveryHeadSkip(t *testing.T) {
	const blockSize = 16

	for headSkip := uint32(0); headSkip < blockSize; headSkip++ {
		headSkip := headSkip
		t.Run("", func(t *testing.T) {
			input := bytes.Repeat([]byte{byte(headSkip + 1)}, blockSize-int(headSkip))
			got := roundTrip(t, blockSize, input, headSkip)
			if !bytes.Equal(got, input) {
				t.Fatalf("head_skip=%d: round trip mismatch: got %v, want %v", headSkip, got, input)
			}
		})
	}
}

func TestRoundTripMultiBlockWithDedup(t *testing.T) {
	const blockSize = 16

	blockA := bytes.Repeat([]byte{0xAA}, blockSize)
	blockB := bytes.Repeat([]byte{0xBB}, blockSize)
	input := append(append(append([]byte{}, blockA...), blockA...), blockB...)

	got := roundTrip(t, blockSize, input, 0)
	if !bytes.Equal(got, input) {
		t.Fatal("round trip mismatch for repeated-block input")
	}
}

func TestRoundTripShortFinalBlock(t *testing.T) {
	const blockSize = 16

	input := bytes.Repeat([]byte{0x42}, 11)
	got := roundTrip(t, blockSize, input, 0)
	if !bytes.Equal(got, input) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, input)
	}
}

func TestRoundTripHeadSkipThenFullBlock(t *testing.T) {
	const blockSize = 16
	headSkip := uint32(6)

	firstPart := bytes.Repeat([]byte{0x09}, blockSize-int(headSkip))
	secondBlock := bytes.Repeat([]byte{0xCD}, blockSize)
	input := append(append([]byte{}, firstPart...), secondBlock...)

	got := roundTrip(t, blockSize, input, headSkip)
	if !bytes.Equal(got, input) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, input)
	}
}

func TestRoundTripEmptyInput(t *testing.T) {
	const blockSize = 16

	got := roundTrip(t, blockSize, nil, 0)
	if len(got) != 0 {
		t.Fatalf("expected empty output for empty input, got %d bytes", len(got))
	}
}

func TestFingerprintCollisionDoesNotAlias(t *testing.T) {
	const blockSize = 16

	s := newRoundTripStore(t, blockSize)
	ingestPipe, err := ingest.New(&ingest.Config{Store: s, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("ingest.New: %v", err)
	}

	a := bytes.Repeat([]byte{0xAA}, blockSize)
	b := append([]byte{}, a...)
	b[0] = 0x01 // byte-distinct from a

	descA := descriptorScratchFile(t)
	if _, err := ingestPipe.Ingest(bytes.NewReader(a), descA, 0); err != nil {
		t.Fatalf("Ingest(a): %v", err)
	}

	// Forge a collision: make the in-memory lookup report a's ordinal as a
	// candidate for b's fingerprint, so ingesting b must reject it by byte
	// comparison.
	if err := s.Index.Insert(fingerprint.Of(b), s.Pool.BlockCount()-1, false); err != nil {
		t.Fatalf("Insert forged candidate: %v", err)
	}

	descB := descriptorScratchFile(t)
	if _, err := ingestPipe.Ingest(bytes.NewReader(b), descB, 0); err != nil {
		t.Fatalf("Ingest(b): %v", err)
	}

	if got := s.Pool.BlockCount(); got != 2 {
		t.Fatalf("expected two distinct pool blocks for byte-distinct content, got %d", got)
	}
}
