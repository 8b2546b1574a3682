// Package progress formats human-readable counters for the CLI: block
// counts, byte sizes, and dedup ratios. It is an external collaborator
// exactly as spec.md §1 describes "progress reporting" — nothing in
// internal/ depends on it, and it never influences Pool/Index/descriptor
// semantics.
package progress

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Bytes formats a byte count the way a human reads it, e.g. "4.0 MB".
func Bytes(n uint64) string {
	return humanize.Bytes(n)
}

// Blocks formats a block count with its thousands separators, e.g.
// "1,024 blocks".
func Blocks(n uint32) string {
	return fmt.Sprintf("%s blocks", humanize.Comma(int64(n)))
}

// DedupRatio reports how many blocks an image descriptor referenced versus
// how many distinct Pool blocks it actually pointed at, e.g. "3.50x
// (14 referenced / 4 unique)". A descriptor with no repeated blocks reports
// 1.00x.
func DedupRatio(referenced, unique uint32) string {
	if unique == 0 {
		return "n/a (no blocks referenced)"
	}
	ratio := float64(referenced) / float64(unique)
	return fmt.Sprintf("%.2fx (%s referenced / %s unique)",
		ratio, humanize.Comma(int64(referenced)), humanize.Comma(int64(unique)))
}

// Rate formats a throughput figure in bytes/second, e.g. "12 MB/s",
// guarding against a zero elapsed time.
func Rate(bytes uint64, seconds float64) string {
	if seconds <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%s/s", humanize.Bytes(uint64(float64(bytes)/seconds)))
}
