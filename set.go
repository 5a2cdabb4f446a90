package idset

import (
	"errors"
	"fmt"
	"math"
	"unsafe"
)

// cacheLineSize is the size of a CPU cache line in bytes.
const cacheLineSize = 64

const (
	// Empty marks a slot that has never held a key since the last rehash.
	// It cannot be stored in a Set.
	Empty int64 = math.MinInt64

	// Tombstone marks a slot whose key was removed. It cannot be stored in
	// a Set.
	Tombstone int64 = math.MaxInt64
)

var (
	// ErrInvalidCapacity is returned when a requested size is larger than
	// the strategy can address.
	ErrInvalidCapacity = errors.New("idset: requested capacity exceeds maximum")

	// ErrCapacityExhausted is returned when a set would have to grow past
	// its ceiling. The set is left unchanged and cannot take more keys.
	ErrCapacityExhausted = errors.New("idset: capacity exhausted")

	// ErrReservedKey is returned when adding Empty or Tombstone.
	ErrReservedKey = errors.New("idset: key is a reserved sentinel value")

	// ErrInvalidLoadFactor is returned for a load factor outside (1, MaxLoadFactor].
	ErrInvalidLoadFactor = errors.New("idset: invalid load factor")

	// ErrInvalidStrategy is returned for an unknown Strategy.
	ErrInvalidStrategy = errors.New("idset: invalid strategy")
)

// Set is a non-thread-safe set of int64 keys stored in a single flat,
// cache-line aligned slot array with open addressing.
//
// A Set must not be mutated concurrently. Once every mutation is done it
// may be shared by any number of goroutines calling Contains and the other
// read-only methods.
type Set struct {
	raw        []byte  // Raw allocation to keep aligned memory alive for GC
	slots      []int64 // Keys, Empty or Tombstone
	live       int     // Slots holding a key
	occupied   int     // Slots holding a key or a Tombstone
	mask       uint64  // len(slots)-1 for the power-of-two strategies
	strategy   Strategy
	loadFactor float64
	probes     ProbeCounter

	// limit is the largest capacity growth may reach.
	limit int
}

// New creates a TwinPrime set sized to hold sizeHint keys without growing.
func New(sizeHint int) (*Set, error) {
	return NewWithParams(sizeHint, TwinPrime, DefaultLoadFactor)
}

// MustNew is like New but panics if the set cannot be created.
func MustNew(sizeHint int) *Set {
	s, err := New(sizeHint)
	if err != nil {
		panic(err)
	}
	return s
}

// NewWithParams creates a set with an explicit strategy and load factor.
// The load factor is the ratio of slots to occupied slots kept before the
// table grows or compacts; it must be greater than 1.
func NewWithParams(sizeHint int, strategy Strategy, loadFactor float64) (*Set, error) {
	if math.IsNaN(loadFactor) || loadFactor <= 1 || loadFactor > MaxLoadFactor {
		return nil, fmt.Errorf("%w: %v (valid range: (1, %d])", ErrInvalidLoadFactor, loadFactor, MaxLoadFactor)
	}
	if sizeHint < 0 {
		sizeHint = 0
	}

	capacity, err := capacityFor(strategy, requestedSlots(sizeHint, loadFactor))
	if err != nil {
		return nil, err
	}

	s := &Set{
		strategy:   strategy,
		loadFactor: loadFactor,
		limit:      capacityLimit(strategy),
	}
	s.reset(capacity)
	return s, nil
}

// makeAlignedSlots allocates a cache-line aligned slice of n Empty slots.
// Returns the raw byte slice (to keep alive for GC) and the aligned slots.
func makeAlignedSlots(n int) ([]byte, []int64) {
	raw := make([]byte, n*8+cacheLineSize-1)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	offset := (cacheLineSize - int(addr%cacheLineSize)) % cacheLineSize
	aligned := unsafe.Slice((*int64)(unsafe.Pointer(&raw[offset])), n)
	fillEmpty(aligned)
	return raw, aligned
}

func fillEmpty(slots []int64) {
	for i := range slots {
		slots[i] = Empty
	}
}

// reset replaces the storage with capacity fresh Empty slots.
func (s *Set) reset(capacity int) {
	s.raw, s.slots = makeAlignedSlots(capacity)
	s.mask = uint64(capacity - 1)
	s.live = 0
	s.occupied = 0
}

// SetProbeCounter attaches a counter that receives the number of extra
// probe steps taken by lookups. Pass nil to detach. The counter is owned by
// the caller and is shared with clones of s.
func (s *Set) SetProbeCounter(c ProbeCounter) {
	s.probes = c
}

// isKey reports whether v is a storable key rather than a sentinel.
func isKey(v int64) bool {
	return v != Empty && v != Tombstone
}

// Contains reports whether key is in the set. It never mutates the set
// and is safe to call concurrently once mutation has stopped.
func (s *Set) Contains(key int64) bool {
	return isKey(key) && s.slots[s.find(key)] == key
}

// Add inserts key and reports whether it was absent. Adding a sentinel
// returns ErrReservedKey. If the set must grow past its ceiling, Add
// returns ErrCapacityExhausted and the set is unchanged.
func (s *Set) Add(key int64) (bool, error) {
	if !isKey(key) {
		return false, fmt.Errorf("%w: %d", ErrReservedKey, key)
	}
	if err := s.ensureRoom(); err != nil {
		return false, err
	}
	return s.insert(key), nil
}

// insert places key without checking for room.
func (s *Set) insert(key int64) bool {
	index := s.findForAdd(key)
	prev := s.slots[index]
	if prev == key {
		return false
	}
	s.slots[index] = key
	s.live++
	if prev == Empty {
		s.occupied++
	}
	return true
}

// Remove deletes key and reports whether it was present. The slot becomes
// a Tombstone and stays occupied until the next rehash.
func (s *Set) Remove(key int64) bool {
	if !isKey(key) {
		return false
	}
	index := s.find(key)
	if s.slots[index] != key {
		return false
	}
	s.slots[index] = Tombstone
	s.live--
	return true
}

// ensureRoom grows or compacts the table so one more key can be placed
// while leaving at least one Empty slot behind.
func (s *Set) ensureRoom() error {
	capacity := len(s.slots)
	if float64(s.occupied)*s.loadFactor < float64(capacity) && s.occupied+1 < capacity {
		return nil
	}

	// Mostly live keys: grow. Mostly tombstones: rebuild at the same scale.
	if float64(s.live)*s.loadFactor >= float64(s.occupied) {
		return s.grow()
	}
	return s.Compact()
}

// grow rehashes into a table scaled up by the load factor.
func (s *Set) grow() error {
	want := requestedSlots(len(s.slots), s.loadFactor)
	if want > s.limit {
		return fmt.Errorf("%w: cannot grow %d slots past %d", ErrCapacityExhausted, len(s.slots), s.limit)
	}
	capacity, err := capacityFor(s.strategy, want)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCapacityExhausted, err)
	}
	s.rehash(capacity)
	return nil
}

// Compact rebuilds the table sized for the live keys, purging every
// tombstone. It may shrink the table.
func (s *Set) Compact() error {
	want := max(requestedSlots(s.live, s.loadFactor), s.live+2)
	capacity, err := capacityFor(s.strategy, want)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCapacityExhausted, err)
	}
	s.rehash(capacity)
	return nil
}

// rehash moves every live key into fresh storage of the given capacity.
// The capacity always exceeds the live count by at least two, so the
// reinsertions can skip the room check.
func (s *Set) rehash(capacity int) {
	old := s.slots
	s.reset(capacity)
	for _, key := range old {
		if isKey(key) {
			s.insert(key)
		}
	}
}

// Len returns the number of keys in the set.
func (s *Set) Len() int {
	return s.live
}

// IsEmpty reports whether the set holds no keys.
func (s *Set) IsEmpty() bool {
	return s.live == 0
}

// Cap returns the number of slots in the table.
func (s *Set) Cap() int {
	return len(s.slots)
}

// Tombstones returns the number of removed keys still occupying slots.
func (s *Set) Tombstones() int {
	return s.occupied - s.live
}

// FillRatio returns the proportion of slots that are not Empty.
func (s *Set) FillRatio() float64 {
	return float64(s.occupied) / float64(len(s.slots))
}

// Strategy returns the probing strategy the set was created with.
func (s *Set) Strategy() Strategy {
	return s.strategy
}

// LoadFactor returns the load factor the set was created with.
func (s *Set) LoadFactor() float64 {
	return s.loadFactor
}

// Clear removes every key without reallocating the table.
func (s *Set) Clear() {
	fillEmpty(s.slots)
	s.live = 0
	s.occupied = 0
}

// Clone returns an independent copy of s with its own storage.
func (s *Set) Clone() *Set {
	raw, slots := makeAlignedSlots(len(s.slots))
	copy(slots, s.slots)

	c := *s
	c.raw = raw
	c.slots = slots
	return &c
}
