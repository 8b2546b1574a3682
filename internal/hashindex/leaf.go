package hashindex

import "github.com/iamNilotpal/imagepile/pkg/fingerprint"

// leaf stores up to its capacity of (fingerprint, ordinal) pairs in
// insertion order. When full, a new leaf is linked onto next rather than
// growing this one — the in-memory lookup never reallocates or re-orders an
// existing leaf (spec.md §4.2, §9 "Lookup structure choice").
type leaf struct {
	fingerprints []uint64
	ordinals     []uint32
	next         *leaf
}

func newLeaf(capacity int) *leaf {
	return &leaf{
		fingerprints: make([]uint64, 0, capacity),
		ordinals:     make([]uint32, 0, capacity),
	}
}

func (l *leaf) full() bool {
	return len(l.fingerprints) == cap(l.fingerprints)
}

// Iterator walks the leaf chain of one bucket, yielding only the ordinals
// whose stored fingerprint equals the one the iterator was created for. It
// holds its cursor as (leaf, index-in-leaf) so resuming after a rejected
// candidate costs no allocation (spec.md §9, "Resumable iteration").
type Iterator struct {
	leaf *leaf
	pos  int
	fp   fingerprint.Fingerprint
}

// Next returns the next candidate ordinal for the fingerprint this iterator
// was created for, in insertion order, or (0, false) once the bucket chain
// is exhausted.
func (it *Iterator) Next() (uint32, bool) {
	for it.leaf != nil {
		for it.pos < len(it.leaf.fingerprints) {
			i := it.pos
			it.pos++
			if it.leaf.fingerprints[i] == uint64(it.fp) {
				return it.leaf.ordinals[i], true
			}
		}
		it.leaf = it.leaf.next
		it.pos = 0
	}
	return 0, false
}
