// Package determinism provides primitives for guaranteeing deterministic results:
// half-up decimal rounding, sorted iteration and content hashing of tables.
package determinism

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

// SortedKeys returns the keys of m in ascending order
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RangeMapSorted iterates over a map in sorted key order
func RangeMapSorted[K cmp.Ordered, V any](m map[K]V, fn func(K, V) bool) {
	for _, k := range SortedKeys(m) {
		if !fn(k, m[k]) {
			break
		}
	}
}

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Hex()[:16]
}

// IsZero reports whether the hash was never computed
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

// Hasher accumulates labelled values into a ContentHash.
// Every write is NUL-terminated so adjacent fields cannot collide.
type Hasher struct {
	h hash.Hash
}

// NewHasher creates a hasher scoped to a namespace
func NewHasher(namespace string) *Hasher {
	hs := &Hasher{h: sha256.New()}
	hs.String(namespace)
	return hs
}

// String writes a string field
func (hs *Hasher) String(s string) *Hasher {
	hs.h.Write([]byte(s))
	hs.h.Write([]byte{0})
	return hs
}

// Int writes an integer field
func (hs *Hasher) Int(i int) *Hasher {
	return hs.String(strconv.Itoa(i))
}

// Decimal writes a decimal in canonical form; 0.0100 and 0.01 hash alike.
func (hs *Hasher) Decimal(d decimal.Decimal) *Hasher {
	return hs.String(d.String())
}

// Sum returns the accumulated hash
func (hs *Hasher) Sum() ContentHash {
	var out ContentHash
	copy(out[:], hs.h.Sum(nil))
	return out
}
