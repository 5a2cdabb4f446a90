// Package idset provides a compact, allocation-free set of int64 ids for
// very fast membership testing.
//
// A [Set] stores keys directly in one flat, cache-line aligned []int64 and
// resolves collisions by open addressing. There are no per-key heap
// objects: memory is 8 bytes per slot and the slot count is the key count
// scaled by the load factor.
//
// # Architecture
//
// Two reserved values encode slot state. [Empty] (math.MinInt64) marks a
// slot that has never held a key since the last rehash, and [Tombstone]
// (math.MaxInt64) marks a removed key. Neither can be stored; [Set.Add]
// rejects them with [ErrReservedKey].
//
// Keys are mixed with xxh3 before they are reduced to a slot index, so
// sequential ids spread over the table.
//
// Lookups walk a probe sequence until they find the key or an Empty slot.
// Tombstones do not end a lookup. Insertions reuse the first tombstone on
// the sequence once the key is known to be absent.
//
// # Strategies
//
// The probing strategy is chosen at construction with [NewWithParams]:
//
// [TwinPrime] sizes the table to p where p and p+2 are both prime, starts
// at hash mod p and steps backwards by 1 + hash mod (p-2). Since p is
// prime every step is coprime with it, and a probe visits all slots before
// repeating. This is the default used by [New].
//
// [PowerOfTwo] sizes the table to a power of two and replaces the modulus
// with a mask. The step comes from the upper half of the hash and is
// forced odd, which keeps it coprime with the capacity.
//
// [Linear] uses power-of-two sizing with a step of one.
//
// # Growth
//
// Before each insertion the set checks whether occupied slots (keys plus
// tombstones) times the load factor has reached the capacity. If so and
// most occupied slots hold live keys, the table grows by the load factor.
// Otherwise it is rebuilt at a size fit for the live keys, which purges
// the tombstones. [Set.Compact] runs that rebuild on demand.
//
// Growth past [MaxTwinPrime] or [MaxPowerOfTwo] slots fails with
// [ErrCapacityExhausted]. The set keeps every key it had.
//
// # Thread Safety
//
// [Set] is NOT thread-safe. Build it on one goroutine, then share it:
// [Set.Contains] and the other read-only methods never write and may be
// called from any number of goroutines once mutation has stopped.
//
// To measure probe lengths, attach a [ProbeCounter] such as an
// *atomic.Uint64 with [Set.SetProbeCounter].
package idset
