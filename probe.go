package idset

import "fmt"

// Strategy selects how a Set sizes its table and walks probe sequences.
type Strategy uint8

const (
	// TwinPrime sizes tables to the first member of a twin prime pair and
	// probes with prime-modulus double hashing. Every jump is coprime with
	// the capacity, so a probe visits all slots before repeating.
	TwinPrime Strategy = iota

	// PowerOfTwo sizes tables to a power of two and probes with a masked
	// double hash. The step is always odd, so it is coprime with the
	// capacity and a probe visits all slots before repeating.
	PowerOfTwo

	// Linear sizes tables like PowerOfTwo but probes the next slot each
	// step. Cheapest per step; clusters under sequential keys.
	Linear
)

// String returns the name of the strategy.
func (s Strategy) String() string {
	switch s {
	case TwinPrime:
		return "twin-prime"
	case PowerOfTwo:
		return "power-of-two"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ProbeCounter receives the number of probe steps taken past the first
// slot. *sync/atomic.Uint64 satisfies it, so a counter can be shared by
// concurrent readers.
type ProbeCounter interface {
	Add(delta uint64) uint64
}

// find returns the index of the slot holding key, or of the Empty slot
// where the lookup ended. Tombstones do not stop a lookup: the key may
// have been placed further along the sequence before the tombstone was
// written.
func (s *Set) find(key int64) int {
	h := hashKey(key)
	slots := s.slots
	var steps uint64

	var index uint64
	switch s.strategy {
	case TwinPrime:
		n := uint64(len(slots))
		var jump uint64
		index, jump = hashSplitPrime(h, n)
		for cur := slots[index]; cur != Empty && cur != key; cur = slots[index] {
			if index < jump {
				index += n - jump
			} else {
				index -= jump
			}
			steps++
		}

	case PowerOfTwo:
		var step uint64
		index, step = hashSplitMasked(h, s.mask)
		for cur := slots[index]; cur != Empty && cur != key; cur = slots[index] {
			index = (index + step) & s.mask
			steps++
		}

	case Linear:
		index = h & s.mask
		for cur := slots[index]; cur != Empty && cur != key; cur = slots[index] {
			index = (index + 1) & s.mask
			steps++
		}
	}

	if steps != 0 && s.probes != nil {
		s.probes.Add(steps)
	}
	return int(index)
}

// findForAdd returns the slot an insertion of key should use: the slot
// already holding key, else the first Tombstone on the sequence, else the
// Empty slot that ended it. The walk continues past a reusable tombstone
// until the key or an Empty slot is seen, so a key stored beyond a
// tombstone is never inserted twice.
func (s *Set) findForAdd(key int64) int {
	h := hashKey(key)
	slots := s.slots
	reuse := -1

	var index uint64
	switch s.strategy {
	case TwinPrime:
		n := uint64(len(slots))
		var jump uint64
		index, jump = hashSplitPrime(h, n)
		for cur := slots[index]; cur != Empty && cur != key; cur = slots[index] {
			if cur == Tombstone && reuse < 0 {
				reuse = int(index)
			}
			if index < jump {
				index += n - jump
			} else {
				index -= jump
			}
		}

	case PowerOfTwo:
		var step uint64
		index, step = hashSplitMasked(h, s.mask)
		for cur := slots[index]; cur != Empty && cur != key; cur = slots[index] {
			if cur == Tombstone && reuse < 0 {
				reuse = int(index)
			}
			index = (index + step) & s.mask
		}

	case Linear:
		index = h & s.mask
		for cur := slots[index]; cur != Empty && cur != key; cur = slots[index] {
			if cur == Tombstone && reuse < 0 {
				reuse = int(index)
			}
			index = (index + 1) & s.mask
		}
	}

	if slots[index] == Empty && reuse >= 0 {
		return reuse
	}
	return int(index)
}
