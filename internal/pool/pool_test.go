package pool

import (
	"bytes"
	"testing"

	"github.com/iamNilotpal/imagepile/pkg/options"
	"go.uber.org/zap"
)

func newTestPool(t *testing.T, dir string) *Pool {
	t.Helper()

	opts := options.NewDefaultOptions()
	opts.PoolDir = dir
	opts.BlockSize = 16

	p, err := New(t.Context(), &Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestAppendAssignsDenseOrdinals(t *testing.T) {
	p := newTestPool(t, t.TempDir())

	blockA := bytes.Repeat([]byte{0xAA}, p.BlockSize())
	blockB := bytes.Repeat([]byte{0xBB}, p.BlockSize())

	ord0, err := p.Append(blockA)
	if err != nil {
		t.Fatalf("Append(blockA): %v", err)
	}
	if ord0 != 0 {
		t.Fatalf("expected first ordinal 0, got %d", ord0)
	}

	ord1, err := p.Append(blockB)
	if err != nil {
		t.Fatalf("Append(blockB): %v", err)
	}
	if ord1 != 1 {
		t.Fatalf("expected second ordinal 1, got %d", ord1)
	}

	if got := p.BlockCount(); got != 2 {
		t.Fatalf("expected block count 2, got %d", got)
	}
}

func TestReadReturnsWhatWasAppended(t *testing.T) {
	p := newTestPool(t, t.TempDir())

	block := bytes.Repeat([]byte{0x42}, p.BlockSize())
	ordinal, err := p.Append(block)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	got := make([]byte, p.BlockSize())
	if err := p.Read(ordinal, got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, block) {
		t.Fatalf("read block does not match appended block")
	}
}

func TestReadRejectsOutOfRangeOrdinal(t *testing.T) {
	p := newTestPool(t, t.TempDir())

	buf := make([]byte, p.BlockSize())
	if err := p.Read(0, buf); err == nil {
		t.Fatal("expected error reading from an empty pool, got nil")
	}
}

func TestAppendRejectsWrongSizedBlock(t *testing.T) {
	p := newTestPool(t, t.TempDir())

	if _, err := p.Append(make([]byte, p.BlockSize()-1)); err == nil {
		t.Fatal("expected error appending a short block, got nil")
	}
}

func TestRestartEquivalence(t *testing.T) {
	dir := t.TempDir()

	p1 := newTestPool(t, dir)
	block := bytes.Repeat([]byte{0x7}, p1.BlockSize())
	if _, err := p1.Append(block); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := p1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	opts := options.NewDefaultOptions()
	opts.PoolDir = dir
	opts.BlockSize = 16
	p2, err := New(t.Context(), &Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close()

	if got := p2.BlockCount(); got != 1 {
		t.Fatalf("expected restarted pool to report 1 block, got %d", got)
	}

	got := make([]byte, p2.BlockSize())
	if err := p2.Read(0, got); err != nil {
		t.Fatalf("Read after restart: %v", err)
	}
	if !bytes.Equal(got, block) {
		t.Fatalf("block read after restart does not match original")
	}
}
