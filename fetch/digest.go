package fetch

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/zeebo/blake3"
)

const (
	DigestSHA256 = "sha256"
	DigestBLAKE3 = "blake3"
)

func newHash(name string) (hash.Hash, error) {
	switch name {
	case DigestSHA256, "":
		return sha256.New(), nil
	case DigestBLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unsupported digest %q", name)
	}
}
