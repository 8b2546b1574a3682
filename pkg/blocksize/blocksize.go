// Package blocksize holds the fixed on-disk block size shared by the Pool,
// Hash Index, and image descriptor formats. It exists as its own package so
// that every other package imports a single source of truth instead of
// redeclaring the constant.
package blocksize

// Size is the fixed number of bytes in one Pool block. It is a compile-time
// constant of the on-disk format: changing it invalidates every existing
// Pool and Index file.
const Size = 4096

// LeafCapacity is the number of (fingerprint, ordinal) pairs stored in one
// in-memory hash index leaf before a new leaf is linked to the chain.
const LeafCapacity = 64

// Buckets is the number of top-level buckets in the in-memory hash index,
// selected by the high 16 bits of a fingerprint.
const Buckets = 65536
