package benchmarks

import (
	"encoding/binary"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"

	bab "github.com/bits-and-blooms/bloom/v3"
	"github.com/bits-and-blooms/bitset"
	"github.com/bytedance/gopkg/collection/hashset"
	"github.com/cespare/xxhash/v2"
	atomicbloom "github.com/ericvolp12/atomic-bloom"
	"github.com/greatroar/blobloom"
	"github.com/jcalabro/idset"
	"golang.org/x/tools/container/intsets"
)

const (
	benchItems  = 1_000_000
	benchFPRate = 0.01

	// followees and feedRange model a user following 1,000 authors out of
	// 100,000, scanning a feed of posts by random authors.
	followees = 1_000
	feedRange = 100_000
	feedLen   = 1 << 20
)

// Pre-generate test data to avoid measuring key generation
var (
	testKeys      []int64
	testKeyBytes  [][]byte
	followeeIDs   []int64
	feedAuthorIDs []int64
)

func init() {
	r := rand.New(rand.NewPCG(1, 2))

	testKeys = make([]int64, benchItems)
	testKeyBytes = make([][]byte, benchItems)
	for i := range benchItems {
		testKeys[i] = r.Int64N(1 << 40)
		testKeyBytes[i] = binary.LittleEndian.AppendUint64(nil, uint64(testKeys[i]))
	}

	followeeIDs = make([]int64, followees)
	for i := range followees {
		followeeIDs[i] = r.Int64N(feedRange)
	}
	feedAuthorIDs = make([]int64, feedLen)
	for i := range feedLen {
		feedAuthorIDs[i] = r.Int64N(feedRange)
	}
}

func newSet(b *testing.B, n int, strategy idset.Strategy) *idset.Set {
	s, err := idset.NewWithParams(n, strategy, idset.DefaultLoadFactor)
	if err != nil {
		b.Fatal(err)
	}
	return s
}

func filledSet(b *testing.B, strategy idset.Strategy) *idset.Set {
	s := newSet(b, benchItems, strategy)
	if _, err := s.AddAll(testKeys); err != nil {
		b.Fatal(err)
	}
	return s
}

// ============================================================================
// Build Benchmarks
// ============================================================================

func benchmarkAdd(b *testing.B, strategy idset.Strategy, presized bool) {
	hint := 0
	if presized {
		hint = benchItems
	}
	s := newSet(b, hint, strategy)
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		if i%benchItems == 0 && i > 0 {
			s.Clear()
		}
		s.Add(testKeys[i%benchItems])
	}
}

func BenchmarkAdd_TwinPrime(b *testing.B)         { benchmarkAdd(b, idset.TwinPrime, true) }
func BenchmarkAdd_PowerOfTwo(b *testing.B)        { benchmarkAdd(b, idset.PowerOfTwo, true) }
func BenchmarkAdd_Linear(b *testing.B)            { benchmarkAdd(b, idset.Linear, true) }
func BenchmarkAddGrowing_TwinPrime(b *testing.B)  { benchmarkAdd(b, idset.TwinPrime, false) }
func BenchmarkAddGrowing_PowerOfTwo(b *testing.B) { benchmarkAdd(b, idset.PowerOfTwo, false) }

func BenchmarkAdd_Map(b *testing.B) {
	m := make(map[int64]struct{}, benchItems)
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		m[testKeys[i%benchItems]] = struct{}{}
	}
}

func BenchmarkAdd_Hashset(b *testing.B) {
	s := hashset.NewInt64WithSize(benchItems)
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		s.Add(testKeys[i%benchItems])
	}
}

func BenchmarkAdd_Intsets(b *testing.B) {
	var s intsets.Sparse
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		s.Insert(int(testKeys[i%benchItems]))
	}
}

// ============================================================================
// Sequential Contains Benchmarks
// ============================================================================

func benchmarkContains(b *testing.B, strategy idset.Strategy) {
	s := filledSet(b, strategy)
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		s.Contains(testKeys[i%benchItems])
	}
}

func BenchmarkContains_TwinPrime(b *testing.B)  { benchmarkContains(b, idset.TwinPrime) }
func BenchmarkContains_PowerOfTwo(b *testing.B) { benchmarkContains(b, idset.PowerOfTwo) }
func BenchmarkContains_Linear(b *testing.B)     { benchmarkContains(b, idset.Linear) }

func BenchmarkContains_Map(b *testing.B) {
	m := make(map[int64]struct{}, benchItems)
	for _, k := range testKeys {
		m[k] = struct{}{}
	}
	b.ResetTimer()
	for i := range b.N {
		_ = m[testKeys[i%benchItems]]
	}
}

func BenchmarkContains_Hashset(b *testing.B) {
	s := hashset.NewInt64WithSize(benchItems)
	for _, k := range testKeys {
		s.Add(k)
	}
	b.ResetTimer()
	for i := range b.N {
		s.Contains(testKeys[i%benchItems])
	}
}

func BenchmarkContains_Intsets(b *testing.B) {
	var s intsets.Sparse
	for _, k := range testKeys {
		s.Insert(int(k))
	}
	b.ResetTimer()
	for i := range b.N {
		s.Has(int(testKeys[i%benchItems]))
	}
}

func BenchmarkContains_BitsAndBlooms(b *testing.B) {
	f := bab.NewWithEstimates(benchItems, benchFPRate)
	for _, k := range testKeyBytes {
		f.Add(k)
	}
	b.ResetTimer()
	for i := range b.N {
		f.Test(testKeyBytes[i%benchItems])
	}
}

func BenchmarkContains_Blobloom(b *testing.B) {
	f := blobloom.NewOptimized(blobloom.Config{
		Capacity: benchItems,
		FPRate:   benchFPRate,
	})
	// blobloom requires pre-hashing
	hashes := make([]uint64, benchItems)
	for i, k := range testKeyBytes {
		hashes[i] = xxhash.Sum64(k)
		f.Add(hashes[i])
	}
	b.ResetTimer()
	for i := range b.N {
		f.Has(hashes[i%benchItems])
	}
}

// ============================================================================
// Parallel Contains Benchmarks
// ============================================================================

func benchmarkContainsParallel(b *testing.B, strategy idset.Strategy) {
	s := filledSet(b, strategy)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			s.Contains(testKeys[i%benchItems])
			i++
		}
	})
}

func BenchmarkContainsParallel_TwinPrime(b *testing.B) {
	benchmarkContainsParallel(b, idset.TwinPrime)
}

func BenchmarkContainsParallel_PowerOfTwo(b *testing.B) {
	benchmarkContainsParallel(b, idset.PowerOfTwo)
}

func BenchmarkContainsParallel_AtomicBloom(b *testing.B) {
	f := atomicbloom.NewWithEstimates(benchItems, benchFPRate)
	for _, k := range testKeyBytes {
		f.Add(k)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			f.Test(testKeyBytes[i%benchItems])
			i++
		}
	})
}

// ============================================================================
// Feed Scan Benchmarks (followee filter over a feed of author ids)
// ============================================================================

func followeeSet(b *testing.B, strategy idset.Strategy) *idset.Set {
	s := newSet(b, followees, strategy)
	if _, err := s.AddAll(followeeIDs); err != nil {
		b.Fatal(err)
	}
	return s
}

func benchmarkScan(b *testing.B, strategy idset.Strategy) {
	s := followeeSet(b, strategy)
	var probes atomic.Uint64
	s.SetProbeCounter(&probes)
	b.ResetTimer()
	hits := 0
	for range b.N {
		for _, author := range feedAuthorIDs {
			if s.Contains(author) {
				hits++
			}
		}
	}
	b.ReportMetric(float64(feedLen), "ids/op")
	b.ReportMetric(float64(probes.Load())/float64(b.N*feedLen), "probes/id")
	_ = hits
}

func BenchmarkScan_TwinPrime(b *testing.B)  { benchmarkScan(b, idset.TwinPrime) }
func BenchmarkScan_PowerOfTwo(b *testing.B) { benchmarkScan(b, idset.PowerOfTwo) }
func BenchmarkScan_Linear(b *testing.B)     { benchmarkScan(b, idset.Linear) }

func BenchmarkScan_Map(b *testing.B) {
	m := make(map[int64]struct{}, followees)
	for _, id := range followeeIDs {
		m[id] = struct{}{}
	}
	b.ResetTimer()
	hits := 0
	for range b.N {
		for _, author := range feedAuthorIDs {
			if _, ok := m[author]; ok {
				hits++
			}
		}
	}
	b.ReportMetric(float64(feedLen), "ids/op")
	_ = hits
}

func BenchmarkScan_Bitset(b *testing.B) {
	bs := bitset.New(feedRange)
	for _, id := range followeeIDs {
		bs.Set(uint(id))
	}
	b.ResetTimer()
	hits := 0
	for range b.N {
		for _, author := range feedAuthorIDs {
			if bs.Test(uint(author)) {
				hits++
			}
		}
	}
	b.ReportMetric(float64(feedLen), "ids/op")
	_ = hits
}

// BenchmarkScanThroughput splits the feed across goroutines sharing one
// read-only set, the way a scan service fans out.
func BenchmarkScanThroughput_TwinPrime(b *testing.B) {
	const goroutines = 8
	const perGoroutine = feedLen / goroutines

	s := followeeSet(b, idset.TwinPrime)

	b.ResetTimer()
	for range b.N {
		var hits atomic.Int64
		var wg sync.WaitGroup
		wg.Add(goroutines)
		for g := range goroutines {
			go func(gid int) {
				defer wg.Done()
				local := 0
				for _, author := range feedAuthorIDs[gid*perGoroutine : (gid+1)*perGoroutine] {
					if s.Contains(author) {
						local++
					}
				}
				hits.Add(int64(local))
			}(g)
		}
		wg.Wait()
	}
	b.ReportMetric(float64(feedLen), "ids/op")
}
