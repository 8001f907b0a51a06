package serialization

import (
	"crypto/sha256"
	"encoding/hex"
)

// computeChecksum computes the hex-encoded SHA-256 checksum of data.
func computeChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// validateChecksum compares a computed checksum against the stored one.
// An empty stored checksum (file written by a tool that skipped it) passes.
func validateChecksum(computed, stored string) error {
	if stored != "" && computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}
