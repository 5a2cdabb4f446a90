package idset

import (
	"fmt"
	"math"
)

const (
	// DefaultLoadFactor is the ratio of slots to occupied slots that a set
	// maintains before it grows or compacts.
	DefaultLoadFactor = 1.5

	// MaxLoadFactor bounds the load factor to keep capacity math in range.
	MaxLoadFactor = 64

	// MaxTwinPrime is the smaller member of the largest twin prime pair
	// below 2^31. It is the capacity ceiling for the TwinPrime strategy.
	MaxTwinPrime = 2147482949

	// MaxPowerOfTwo is the capacity ceiling for the power-of-two strategies.
	MaxPowerOfTwo = 1 << 30

	// minTwinPrime is the smallest capacity handed out by NextTwinPrime.
	// The jump modulus is capacity-2, so it must leave room for more than
	// one distinct jump.
	minTwinPrime = 5

	// minPowerOfTwo is the smallest capacity handed out by NextPowerOfTwo.
	minPowerOfTwo = 8
)

// IsPrime reports whether n is prime.
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n&1 == 0 {
		return n == 2
	}
	limit := int(math.Sqrt(float64(n))) + 1
	for d := 3; d <= limit; d += 2 {
		if n%d == 0 {
			return n == d
		}
	}
	return true
}

// nextPrime returns the smallest prime >= n.
func nextPrime(n int) int {
	if n <= 2 {
		return 2
	}
	n |= 1
	for !IsPrime(n) {
		n += 2
	}
	return n
}

// NextTwinPrime returns the smallest p >= n such that p and p+2 are both
// prime. Requests above MaxTwinPrime return ErrInvalidCapacity.
func NextTwinPrime(n int) (int, error) {
	if n > MaxTwinPrime {
		return 0, fmt.Errorf("%w: %d exceeds twin prime ceiling %d", ErrInvalidCapacity, n, MaxTwinPrime)
	}
	if n <= minTwinPrime {
		return minTwinPrime, nil
	}

	p := nextPrime(n)
	for !IsPrime(p + 2) {
		p = nextPrime(p + 2)
	}
	return p, nil
}

// NextPowerOfTwo returns the smallest power of two >= n. Requests above
// MaxPowerOfTwo return ErrInvalidCapacity.
func NextPowerOfTwo(n int) (int, error) {
	if n > MaxPowerOfTwo {
		return 0, fmt.Errorf("%w: %d exceeds power of two ceiling %d", ErrInvalidCapacity, n, MaxPowerOfTwo)
	}
	if n <= minPowerOfTwo {
		return minPowerOfTwo, nil
	}
	return int(nextPowerOf2(uint64(n))), nil
}

// nextPowerOf2 returns the smallest power of 2 >= n.
func nextPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// requestedSlots scales n by the load factor, rounded so the result is
// strictly greater than n*loadFactor.
func requestedSlots(n int, loadFactor float64) int {
	want := math.Floor(float64(n)*loadFactor) + 1
	if want > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(want)
}

// capacityFor rounds n up to a capacity valid for the strategy.
func capacityFor(strategy Strategy, n int) (int, error) {
	switch strategy {
	case TwinPrime:
		return NextTwinPrime(n)
	case PowerOfTwo, Linear:
		return NextPowerOfTwo(n)
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidStrategy, strategy)
	}
}

// capacityLimit returns the largest capacity the strategy can hand out.
func capacityLimit(strategy Strategy) int {
	if strategy == TwinPrime {
		return MaxTwinPrime
	}
	return MaxPowerOfTwo
}
