// Package options provides data structures and functions for configuring an
// imagepile Pool: which directory holds the Pool/Index files, what they're
// named, and the block/leaf sizing used by the Hash Index. The functional
// options pattern (OptionFunc) lets callers override only what they need
// while everything else falls back to WithDefaultOptions.
package options

import "strings"

// Options defines the configuration parameters for an imagepile Pool.
type Options struct {
	// PoolDir is the directory containing the Pool and Index files. Resolved
	// from the IMGDIR environment variable by cmd/imagepile (spec.md §6);
	// internal/store itself never reads the environment.
	//
	// Default: "." (current directory)
	PoolDir string `json:"poolDir"`

	// PoolFileName is the Pool's file name within PoolDir.
	//
	// Default: "imagepile.db"
	PoolFileName string `json:"poolFileName"`

	// IndexFileName is the Hash Index's file name within PoolDir.
	//
	// Default: "imagepile.hash_index"
	IndexFileName string `json:"indexFileName"`

	// BlockSize is the fixed block size in bytes. Exposed for tests that
	// want a small block size; production use always leaves this at
	// blocksize.Size (4096), since changing it invalidates any existing
	// Pool/Index pair.
	BlockSize int `json:"blockSize"`

	// LeafCapacity is the number of (fingerprint, ordinal) pairs per Hash
	// Index leaf before a new leaf is chained. Exposed for tests; production
	// use leaves this at blocksize.LeafCapacity (64).
	LeafCapacity int `json:"leafCapacity"`
}

// OptionFunc is a function type that modifies the Options struct.
type OptionFunc func(*Options)

// WithDefaultOptions applies the full set of default configuration values.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.PoolDir = opts.PoolDir
		o.PoolFileName = opts.PoolFileName
		o.IndexFileName = opts.IndexFileName
		o.BlockSize = opts.BlockSize
		o.LeafCapacity = opts.LeafCapacity
	}
}

// WithPoolDir sets the directory holding the Pool and Index files.
func WithPoolDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.PoolDir = directory
		}
	}
}

// WithPoolFileName overrides the Pool file's name.
func WithPoolFileName(name string) OptionFunc {
	return func(o *Options) {
		name = strings.TrimSpace(name)
		if name != "" {
			o.PoolFileName = name
		}
	}
}

// WithIndexFileName overrides the Index file's name.
func WithIndexFileName(name string) OptionFunc {
	return func(o *Options) {
		name = strings.TrimSpace(name)
		if name != "" {
			o.IndexFileName = name
		}
	}
}

// WithBlockSize overrides the block size. Intended for tests only: a Pool
// and Index pair must always be opened with the same block size they were
// created with.
func WithBlockSize(size int) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.BlockSize = size
		}
	}
}

// WithLeafCapacity overrides the Hash Index leaf capacity. Intended for
// tests that want to exercise leaf-chaining with a small capacity.
func WithLeafCapacity(capacity int) OptionFunc {
	return func(o *Options) {
		if capacity > 0 {
			o.LeafCapacity = capacity
		}
	}
}
