package testing

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/rbKV/lib/db"
)

// parallelBenchmark fills a fresh database with prefill keys and then calls op from
// b.RunParallel. op receives the goroutine local operation counter and rng.
type parallelBenchmark struct {
	name     string
	features db.Feature
	prefill  int
	fill     func(database db.KVDB, i int)
	op       func(database db.KVDB, counter int, rng *rand.Rand)
}

// benchKey returns the i-th key; keys are zero padded so that their order matches i
func benchKey(i int) string {
	return fmt.Sprintf("test-key-%07d", i)
}

func setPlain(database db.KVDB, i int) {
	database.Set(benchKey(i), []byte(benchKey(i)), 0)
}

var parallelBenchmarks = []parallelBenchmark{
	{
		name:     "Set",
		features: db.FeatureSet,
		op: func(database db.KVDB, _ int, rng *rand.Rand) {
			database.Set(fmt.Sprintf("set-%d", rng.Int63()), []byte("test-value"), 0)
		},
	},
	{
		name:     "SetExisting",
		features: db.FeatureSet,
		prefill:  10_000,
		fill:     setPlain,
		op: func(database db.KVDB, counter int, _ *rand.Rand) {
			database.Set(benchKey(counter%10_000), []byte("updated-value"), 0)
		},
	},
	{
		name:     "SetLargeValue",
		features: db.FeatureSet,
		op: func(database db.KVDB, counter int, _ *rand.Rand) {
			database.Set(benchKey(counter%1000), largeBenchValue, 0)
		},
	},
	{
		name:     "SetWithExpiry",
		features: db.FeatureSetE,
		op: func(database db.KVDB, counter int, _ *rand.Rand) {
			idx := uint64(counter)
			database.SetE(benchKey(counter), []byte("test-value"), idx, idx+1, idx+2)
		},
	},
	{
		name:     "Get",
		features: db.FeatureSet | db.FeatureGet,
		prefill:  10_000,
		fill:     setPlain,
		op: func(database db.KVDB, counter int, _ *rand.Rand) {
			database.Get(benchKey(counter % 10_000))
		},
	},
	{
		// half of the keys carry a deletion deadline, about a quarter of them is due
		name:     "GetWithExpiry",
		features: db.FeatureSetE | db.FeatureGet,
		prefill:  10_000,
		fill: func(database db.KVDB, i int) {
			var deleteIn uint64
			if i%2 == 0 {
				deleteIn = uint64(i % 1000)
			}
			database.SetE(benchKey(i), []byte("test-value"), 1000, 0, deleteIn)
		},
		op: func(database db.KVDB, counter int, _ *rand.Rand) {
			database.SetWriteIdx(1500)
			database.Get(benchKey(counter % 10_000))
		},
	},
	{
		name:     "Delete",
		features: db.FeatureSet | db.FeatureDelete,
		prefill:  10_000,
		fill:     setPlain,
		op: func(database db.KVDB, counter int, _ *rand.Rand) {
			database.Delete(benchKey(counter%10_000), uint64(counter))
		},
	},
	{
		name:     "Has",
		features: db.FeatureSet | db.FeatureHas,
		prefill:  10_000,
		fill:     setPlain,
		op: func(database db.KVDB, counter int, _ *rand.Rand) {
			database.Has(benchKey(counter % 10_000))
		},
	},
	{
		name:     "Has(not)",
		features: db.FeatureHas,
		op: func(database db.KVDB, counter int, _ *rand.Rand) {
			database.Has(benchKey(counter % 10_000))
		},
	},
	{
		// 20% each of get, set, delete, has and a short range scan; every tenth key is new
		name:     "MixedUsage",
		features: db.FeatureSet | db.FeatureGet | db.FeatureDelete | db.FeatureHas | db.FeatureRange,
		prefill:  100_000,
		fill:     setPlain,
		op: func(database db.KVDB, counter int, rng *rand.Rand) {
			key := benchKey(rng.Intn(100_000))
			if counter%10 == 0 {
				key = fmt.Sprintf("new-key-%d", counter)
			}
			switch counter % 5 {
			case 0:
				database.Get(key)
			case 1:
				database.Set(key, []byte("mixed-value"), 0)
			case 2:
				database.Delete(key, 0)
			case 3:
				database.Has(key)
			case 4:
				database.Range(key, "", 10, false)
			}
		},
	},
	{
		// 70% get, 30% set with a random deletion deadline
		name:     "MixedUsageWithExpiry",
		features: db.FeatureSetE | db.FeatureGet,
		prefill:  50_000,
		fill: func(database db.KVDB, i int) {
			database.SetE(benchKey(i), []byte("test-value"), 1000, 0, uint64(i%2000))
		},
		op: func(database db.KVDB, counter int, rng *rand.Rand) {
			key := benchKey(counter % 50_000)
			if rng.Float32() < .7 {
				database.Get(key)
				return
			}
			database.SetE(key, []byte("updated-value"), 1000+uint64(counter), 0, uint64(rng.Intn(1000)))
		},
	},
	{
		// windows of 100 keys, alternating direction
		name:     "Range",
		features: db.FeatureSet | db.FeatureRange,
		prefill:  10_000,
		fill:     setPlain,
		op: func(database db.KVDB, counter int, _ *rand.Rand) {
			database.Range(benchKey(counter%10_000), "", 100, counter%2 == 1)
		},
	},
	{
		name:     "Count",
		features: db.FeatureSet | db.FeatureCount,
		prefill:  10_000,
		fill:     setPlain,
		op: func(database db.KVDB, counter int, _ *rand.Rand) {
			start := counter % 9_000
			database.Count(benchKey(start), benchKey(start+1000))
		},
	},
	{
		// only even keys are stored, every lookup has to find the ceiling
		name:     "Seek",
		features: db.FeatureSet | db.FeatureSeek,
		prefill:  10_000,
		fill: func(database db.KVDB, i int) {
			database.Set(benchKey(i*2), []byte("test-value"), 0)
		},
		op: func(database db.KVDB, counter int, _ *rand.Rand) {
			database.Seek(benchKey((counter%10_000)*2 + 1))
		},
	},
}

var largeBenchValue = bytes.Repeat([]byte{0xAB}, 1024*1024)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementations
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {
	b.Run(name, func(b *testing.B) {
		for _, bm := range parallelBenchmarks {
			b.Run(bm.name, func(b *testing.B) {
				runParallelBenchmark(b, bm, factory())
			})
		}

		b.Run("DeleteRange", func(b *testing.B) {
			benchmarkDeleteRange(b, factory())
		})

		b.Run("SaveLoad", func(b *testing.B) {
			benchmarkSaveLoad(b, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func runParallelBenchmark(b *testing.B, bm parallelBenchmark, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, bm.features)

	for i := 0; i < bm.prefill; i++ {
		bm.fill(database, i)
	}

	var seed atomic.Int64
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(seed.Add(1)))
		counter := 0
		for pb.Next() {
			bm.op(database, counter, rng)
			counter++
		}
	})
}

// benchmarkDeleteRange removes windows of 100 keys that are refilled outside the timer
func benchmarkDeleteRange(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureDeleteRange)

	const window = 100
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		idx := uint64(i) * 2
		for k := 0; k < window; k++ {
			database.Set(benchKey(k), []byte("test-value"), idx)
		}
		b.StartTimer()

		database.DeleteRange(benchKey(0), benchKey(window), idx+1)
	}
}

// Benchmark for Save and Load operations
// For these operations, parallelization is not meaningful as they typically
// lock the entire database
func benchmarkSaveLoad(b *testing.B, factory DBFactory) {
	database := factory()

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureSave|db.FeatureLoad)

	for i := 0; i < 10_000; i++ {
		setPlain(database, i)
	}

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		b.Fatalf("Failed to save database: %v", err)
	}
	data := buf.Bytes()

	b.Run("Save", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var out bytes.Buffer
			out.Grow(len(data))
			if err := database.Save(&out); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Load", func(b *testing.B) {
		loadDB := factory()
		defer loadDB.Close()

		for i := 0; i < b.N; i++ {
			if err := loadDB.Load(bytes.NewReader(data)); err != nil {
				b.Fatal(err)
			}
		}
	})
}
