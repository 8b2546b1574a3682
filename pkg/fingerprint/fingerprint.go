// Package fingerprint computes the 64-bit block fingerprint used by the
// Hash Index. spec.md §1 treats the hash function as an external
// collaborator: "any 64-bit non-cryptographic block hash with good
// distribution is acceptable; the hash is not part of the persisted format
// of the pool, only of the persisted index." xxHash64 is used here for its
// speed and distribution on fixed-size buffers, the same choice
// rpcpool/yellowstone-faithful makes for its compactindex bucket/entry
// hashing.
package fingerprint

import "github.com/cespare/xxhash/v2"

// Fingerprint is the 64-bit hash identifying a block's contents. Equal
// Fingerprints do not imply equal blocks (spec.md I2) — every match must
// still be confirmed with a byte comparison before reuse.
type Fingerprint uint64

// Of computes the Fingerprint of block. Callers must pass exactly
// blocksize.Size bytes for ordinary Pool blocks, but Of itself places no
// length requirement on block so it can also be used on short buffers
// during padding/validation.
func Of(block []byte) Fingerprint {
	return Fingerprint(xxhash.Sum64(block))
}

// Bucket returns the top 16 bits of the fingerprint, selecting which of the
// Hash Index's 65536 buckets this fingerprint belongs to.
func (f Fingerprint) Bucket() uint16 {
	return uint16(f >> 48)
}
