package options

import "github.com/iamNilotpal/imagepile/pkg/blocksize"

const (
	// DefaultPoolDir is the directory used when no IMGDIR override is given.
	DefaultPoolDir = "."

	// DefaultPoolFileName is the Pool's file name within PoolDir.
	DefaultPoolFileName = "imagepile.db"

	// DefaultIndexFileName is the Hash Index's file name within PoolDir.
	DefaultIndexFileName = "imagepile.hash_index"

	// DefaultBlockSize is the fixed block size, matching pkg/blocksize.Size.
	DefaultBlockSize = blocksize.Size

	// DefaultLeafCapacity is the Hash Index leaf capacity, matching
	// pkg/blocksize.LeafCapacity.
	DefaultLeafCapacity = blocksize.LeafCapacity
)

// defaultOptions holds the default configuration for an imagepile Pool.
var defaultOptions = Options{
	PoolDir:       DefaultPoolDir,
	PoolFileName:  DefaultPoolFileName,
	IndexFileName: DefaultIndexFileName,
	BlockSize:     DefaultBlockSize,
	LeafCapacity:  DefaultLeafCapacity,
}

// NewDefaultOptions returns a copy of the default Options.
func NewDefaultOptions() Options {
	return defaultOptions
}
