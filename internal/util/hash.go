// Package util provides shared utility functions.
package util

import (
	"hash/fnv"
)

// Fingerprint computes a 4-byte FNV-32a hash of an encoded session
// description. Logs carry the fingerprint instead of the full SDP blob, which
// is long and leaks candidate addresses.
func Fingerprint(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// ShortID trims an identifier to its first 8 characters for log prefixes.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
