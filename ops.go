package idset

import (
	"iter"
	"strconv"
	"strings"
)

// AddAll adds every key and reports whether the set changed. It stops at
// the first error; keys before it stay added.
func (s *Set) AddAll(keys []int64) (bool, error) {
	changed := false
	for _, key := range keys {
		added, err := s.Add(key)
		if err != nil {
			return changed, err
		}
		changed = changed || added
	}
	return changed, nil
}

// AddSet adds every key of other and reports whether s changed.
func (s *Set) AddSet(other *Set) (bool, error) {
	changed := false
	for _, key := range other.slots {
		if !isKey(key) {
			continue
		}
		added, err := s.Add(key)
		if err != nil {
			return changed, err
		}
		changed = changed || added
	}
	return changed, nil
}

// RemoveAll removes every key and reports whether the set changed.
func (s *Set) RemoveAll(keys []int64) bool {
	changed := false
	for _, key := range keys {
		if s.Remove(key) {
			changed = true
		}
	}
	return changed
}

// RemoveSet removes every key of other and reports whether s changed.
func (s *Set) RemoveSet(other *Set) bool {
	changed := false
	for _, key := range other.slots {
		if isKey(key) && s.Remove(key) {
			changed = true
		}
	}
	return changed
}

// RetainAll removes every key not in other and reports whether s changed.
func (s *Set) RetainAll(other *Set) bool {
	changed := false
	for i, key := range s.slots {
		if isKey(key) && !other.Contains(key) {
			s.slots[i] = Tombstone
			s.live--
			changed = true
		}
	}
	return changed
}

// IntersectionSize returns the number of keys of other that are also in s.
// It walks other's table and probes s, so pass the smaller set as other.
func (s *Set) IntersectionSize(other *Set) int {
	count := 0
	for _, key := range other.slots {
		if isKey(key) && s.slots[s.find(key)] == key {
			count++
		}
	}
	return count
}

// ToSlice returns the keys in table order.
func (s *Set) ToSlice() []int64 {
	keys := make([]int64, 0, s.live)
	for _, key := range s.slots {
		if isKey(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// All returns an iterator over the keys in table order. The set must not
// be mutated during iteration.
func (s *Set) All() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for _, key := range s.slots {
			if isKey(key) && !yield(key) {
				return
			}
		}
	}
}

// Equal reports whether s and other hold the same keys. Capacity, strategy
// and tombstone layout are ignored.
func (s *Set) Equal(other *Set) bool {
	if s == other {
		return true
	}
	if other == nil || s.live != other.live {
		return false
	}
	for _, key := range s.slots {
		if isKey(key) && !other.Contains(key) {
			return false
		}
	}
	return true
}

// Hash returns an order-independent hash of the keys. Sets that are Equal
// have the same Hash.
func (s *Set) Hash() uint64 {
	var sum uint64
	for _, key := range s.slots {
		if isKey(key) {
			sum += hashKey(key)
		}
	}
	return sum
}

// String formats the keys in table order, e.g. "[3,1,2]".
func (s *Set) String() string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for _, key := range s.slots {
		if !isKey(key) {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(strconv.FormatInt(key, 10))
	}
	b.WriteByte(']')
	return b.String()
}
