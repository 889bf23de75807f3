package cache

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes the parts of a request that must match for an
// Idempotency-Key replay. Parts are length-prefixed so that ("ab","c") and
// ("a","bc") differ.
func Fingerprint(parts ...[]byte) string {
	h, _ := blake2b.New256(nil) // only errors for an oversized key
	var prefix [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(prefix[:], uint64(len(p)))
		h.Write(prefix[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
