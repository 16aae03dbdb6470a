package storage

import (
	"fmt"

	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("nrtrewriter-audit-fingerprint-k1")

// Fingerprint returns a short stable hash of file content.
func Fingerprint(data []byte) (string, error) {
	hash, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return "", err
	}
	if _, err := hash.Write(data); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", hash.Sum64()), nil
}
