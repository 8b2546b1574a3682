package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/iamNilotpal/imagepile/internal/descriptor"
	"github.com/iamNilotpal/imagepile/internal/store"
	"github.com/iamNilotpal/imagepile/pkg/options"
	"go.uber.org/zap"
)

func newTestPipeline(t *testing.T, blockSize int) (*Pipeline, *store.Store) {
	t.Helper()

	opts := options.NewDefaultOptions()
	opts.PoolDir = t.TempDir()
	opts.BlockSize = blockSize

	s, err := store.Open(t.Context(), &store.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	p, err := New(&Config{Store: s, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, s
}

func descriptorFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "descriptor-*.ipil")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestIngestTwoFullBlocksNoDedup(t *testing.T) {
	p, _ := newTestPipeline(t, 16)

	blockA := bytes.Repeat([]byte{0xAA}, 16)
	blockB := bytes.Repeat([]byte{0xBB}, 16)
	input := append(append([]byte{}, blockA...), blockB...)

	out := descriptorFile(t)
	n, err := p.Ingest(bytes.NewReader(input), out, 0)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 blocks, got %d", n)
	}

	out.Seek(0, 0)
	header, err := descriptor.ReadHeader(out)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if header.HeadSkip != 0 || header.TailBytes != 16 {
		t.Fatalf("unexpected header: %+v", header)
	}
}

func TestIngestDeduplicatesRepeatedBlock(t *testing.T) {
	p, s := newTestPipeline(t, 16)

	block := bytes.Repeat([]byte{0x01}, 16)
	input := append(append([]byte{}, block...), block...)

	out := descriptorFile(t)
	if _, err := p.Ingest(bytes.NewReader(input), out, 0); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if got := s.Pool.BlockCount(); got != 1 {
		t.Fatalf("expected only one pool block for a repeated block, got %d", got)
	}

	out.Seek(int64(descriptor.HeaderSize), 0)
	ords := descriptor.NewOrdinalReader(out)
	first, _, err := ords.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	second, _, err := ords.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if first != second {
		t.Fatalf("expected both ordinals to match (dedup), got %d and %d", first, second)
	}
}

func TestIngestShortFinalBlockSetsTailBytes(t *testing.T) {
	p, _ := newTestPipeline(t, 16)

	input := bytes.Repeat([]byte{0x05}, 10) // shorter than one block

	out := descriptorFile(t)
	if _, err := p.Ingest(bytes.NewReader(input), out, 0); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	out.Seek(0, 0)
	header, err := descriptor.ReadHeader(out)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if header.TailBytes != 10 {
		t.Fatalf("expected tail_bytes 10, got %d", header.TailBytes)
	}
}

func TestIngestEmptyInputProducesZeroOrdinals(t *testing.T) {
	p, _ := newTestPipeline(t, 16)

	out := descriptorFile(t)
	n, err := p.Ingest(bytes.NewReader(nil), out, 0)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 blocks for empty input, got %d", n)
	}
}

func TestIngestHeadSkipConsumesOnlyFirstBlock(t *testing.T) {
	p, _ := newTestPipeline(t, 16)

	headSkip := uint32(6)
	firstBlockBytes := bytes.Repeat([]byte{0x09}, 16-int(headSkip))
	secondBlock := bytes.Repeat([]byte{0xCD}, 16)
	input := append(append([]byte{}, firstBlockBytes...), secondBlock...)

	out := descriptorFile(t)
	n, err := p.Ingest(bytes.NewReader(input), out, headSkip)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 blocks, got %d", n)
	}

	out.Seek(0, 0)
	header, err := descriptor.ReadHeader(out)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if header.HeadSkip != headSkip {
		t.Fatalf("expected head_skip %d, got %d", headSkip, header.HeadSkip)
	}
	if header.TailBytes != 16 {
		t.Fatalf("expected tail_bytes 16, got %d", header.TailBytes)
	}
}

func TestIngestRejectsHeadSkipAtOrAboveBlockSize(t *testing.T) {
	p, _ := newTestPipeline(t, 16)

	out := descriptorFile(t)
	if _, err := p.Ingest(bytes.NewReader(nil), out, 16); err == nil {
		t.Fatal("expected error for head_skip == block size, got nil")
	}
}

func TestRestartEquivalenceAcrossIngests(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pool")

	opts := options.NewDefaultOptions()
	opts.PoolDir = dir
	opts.BlockSize = 16

	s1, err := store.Open(t.Context(), &store.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	p1, err := New(&Config{Store: s1, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	block := bytes.Repeat([]byte{0x22}, 16)
	out1 := descriptorFile(t)
	if _, err := p1.Ingest(bytes.NewReader(block), out1, 0); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := store.Open(t.Context(), &store.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s2.Close()

	if got := s2.Pool.BlockCount(); got != 1 {
		t.Fatalf("expected restarted pool to have 1 block, got %d", got)
	}
	if got := s2.Index.Records(); got != 1 {
		t.Fatalf("expected restarted index to have 1 record, got %d", got)
	}
}
