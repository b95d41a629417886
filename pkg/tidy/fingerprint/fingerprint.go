// Package fingerprint computes content fingerprints for files.
//
// The checksum algorithm is a pluggable function, not a fixed choice:
// callers depend on the Func type and the default XXHash implementation
// is only one provider. Fingerprints are explicitly non-cryptographic,
// which is why every consumer pairs the checksum with the file size as
// a second verification factor.
package fingerprint

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

// Func computes the fingerprint of the file at path.
//
// A Func may fail (unreadable file, file vanished mid-read); callers
// must treat a failed file as skipped and continue with the rest of the
// batch. Failure here is never fatal to a scan or prune.
type Func func(path string) (types.Fingerprint, error)

// XXHash fingerprints a file by streaming its contents through xxHash.
// The reported size is the number of bytes actually hashed, so checksum
// and size always describe the same byte stream even if the file is
// concurrently modified.
func XXHash(path string) (types.Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Fingerprint{}, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	h := xxhash.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return types.Fingerprint{}, fmt.Errorf("read %q: %w", path, err)
	}

	return types.Fingerprint{Sum: h.Sum64(), Size: n}, nil
}
