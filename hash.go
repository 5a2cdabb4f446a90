package idset

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// hashKey computes the xxh3 hash of the key's little-endian encoding.
// Ids handed out sequentially differ only in their low bits, so the key is
// mixed before it is reduced to a slot index.
func hashKey(key int64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(key))
	return xxh3.Hash(buf[:])
}

// hashSplitPrime splits a hash into a start index and a jump for a table of
// prime capacity n. The jump is in [1, n-2], so it is coprime with n.
func hashSplitPrime(h uint64, n uint64) (index, jump uint64) {
	return h % n, 1 + h%(n-2)
}

// hashSplitMasked splits a hash into a start index and an odd step for a
// power-of-two table. Upper bits pick the step so it is independent of the
// index, which comes from the lower bits.
func hashSplitMasked(h uint64, mask uint64) (index, step uint64) {
	return h & mask, ((h >> 32) | 1) & mask
}
