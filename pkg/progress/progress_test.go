package progress

import "testing"

func TestDedupRatioNoUniqueBlocks(t *testing.T) {
	if got := DedupRatio(0, 0); got != "n/a (no blocks referenced)" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestDedupRatioNoDuplication(t *testing.T) {
	got := DedupRatio(4, 4)
	want := "1.00x (4 referenced / 4 unique)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDedupRatioWithDuplication(t *testing.T) {
	got := DedupRatio(14, 4)
	want := "3.50x (14 referenced / 4 unique)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRateZeroSeconds(t *testing.T) {
	if got := Rate(1024, 0); got != "n/a" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestBlocksFormatting(t *testing.T) {
	if got := Blocks(1024); got != "1,024 blocks" {
		t.Fatalf("got %q", got)
	}
}
