// Package tmpfile names and creates scratch files used while staging an
// image descriptor before it is safe to hand to the caller (SPEC_FULL.md
// §6.2: rewriting the tail_bytes header field requires a seek-back, which a
// non-seekable output like stdout cannot do).
//
// The naming convention — prefix_token.ext — is adapted from the
// segment-file naming idiom in this codebase's earlier revisions, but the
// token is a google/uuid random ID instead of a sequence number, since a
// scratch file has no ordinal position to encode and only needs to avoid
// colliding with another invocation against the same pool directory.
package tmpfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// GenerateName returns a filename of the form "prefix_<uuid>.ext" suitable
// for a scratch file that must not collide with any other file in the pool
// directory.
func GenerateName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, uuid.NewString(), ext)
}

// Create creates a new scratch file under dir named with GenerateName,
// opened for reading and writing. The caller is responsible for removing it
// once its contents have been copied to their final destination.
func Create(dir, prefix, ext string) (*os.File, error) {
	path := filepath.Join(dir, GenerateName(prefix, ext))
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
}

// Remove deletes the scratch file at path, ignoring a not-exist error so
// cleanup after a partially-failed run is idempotent.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
