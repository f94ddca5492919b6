package testing

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
	"sync"
	"testing"

	"github.com/ValentinKolb/rbKV/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// conformanceTest is one entry of the suite. Tests that need a single database get it
// through withDB, tests that compare two instances (Save/Load) use the factory directly.
type conformanceTest struct {
	name string
	run  func(t *testing.T, factory DBFactory)
}

func withDB(fn func(t *testing.T, database db.KVDB)) func(*testing.T, DBFactory) {
	return func(t *testing.T, factory DBFactory) {
		fn(t, factory())
	}
}

var conformanceTests = []conformanceTest{
	// point operations
	{"Set&Get", withDB(testSetGet)},
	{"Expire", withDB(testExpire)},
	{"Delete", withDB(testDelete)},
	{"Has", withDB(testHas)},
	{"SetEIfUnset", withDB(testSetEIfUnset)},
	{"KeyExpiry", withDB(testKeyExpiry)},
	{"ManyExpiringKeys", withDB(testManyExpiringKeys)},
	{"SaveLoad", testSaveLoad},
	{"EdgeCases", withDB(testEdgeCases)},
	{"PrefixNeighbours", withDB(testPrefixNeighbours)},
	{"RealisticUsage", withDB(testRealisticUsage)},

	// ordered operations (db_ordered_testing.go)
	{"RangeOrder", withDB(testRangeOrder)},
	{"RangeWindows", withDB(testRangeWindows)},
	{"RangeVisibility", withDB(testRangeVisibility)},
	{"Count", withDB(testCount)},
	{"Seek", withDB(testSeek)},
	{"DeleteRange", withDB(testDeleteRange)},
	{"SaveLoadOrdered", testSaveLoadOrdered},
	{"ConcurrentRange", withDB(testConcurrentRange)},
}

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		for _, tc := range conformanceTests {
			t.Run(tc.name, func(t *testing.T) {
				tc.run(t, factory)
			})
		}
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// expectValue fails the test if key is not visible to Get or holds another value
func expectValue(t *testing.T, database db.KVDB, key string, want []byte) {
	t.Helper()
	got, ok := database.Get(key)
	if !ok {
		t.Errorf("Expected key %q to be visible", key)
		return
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Expected value %q for key %q, got %q", want, key, got)
	}
}

// expectHidden fails the test if key is visible to Get
func expectHidden(t *testing.T, database db.KVDB, key string) {
	t.Helper()
	if v, ok := database.Get(key); ok {
		t.Errorf("Expected key %q to be hidden, got value %q", key, v)
	}
}

// expectSorted fails the test if the keys of pairs are not strictly ascending
func expectSorted(t *testing.T, pairs []db.KVPair) {
	t.Helper()
	for i := 1; i < len(pairs); i++ {
		if pairs[i-1].Key >= pairs[i].Key {
			t.Errorf("Range result out of order at %d: %q >= %q", i, pairs[i-1].Key, pairs[i].Key)
			return
		}
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	database.Set("test-key", []byte("test-value1"), 0)
	expectValue(t, database, "test-key", []byte("test-value1"))

	database.Set("test-key", []byte("test-value2"), 0)
	expectValue(t, database, "test-key", []byte("test-value2"))

	expectHidden(t, database, "nonexistent-key")

	// Get returns a copy
	retrieved, _ := database.Get("test-key")
	retrieved[0] = 'X'
	expectValue(t, database, "test-key", []byte("test-value2"))

	// the caller may reuse the slice passed to Set
	buf := []byte("updated-value")
	database.Set("test-key", buf, 0)
	buf[0] = 'X'
	expectValue(t, database, "test-key", []byte("updated-value"))

	if database.SupportsFeature(db.FeatureRange) {
		expectKeys(t, "single key", database.Range("", "", 0, false), "test-key")
	}
}

func testKeyExpiry(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureSetE|db.FeatureGet|db.FeatureHas)

	type step struct {
		index   uint64
		wantGet bool
		wantHas bool
	}

	// phases run in order since the write index never moves back
	phases := []struct {
		key                string
		index              uint64
		expireIn, deleteIn uint64
		steps              []step
	}{
		// expires at 110, deleted at 120
		{"expiring-key", 100, 10, 20, []step{{109, true, true}, {110, false, true}, {120, false, false}}},
		// deleted at 210 without expiring first
		{"deleting-key", 200, 0, 10, []step{{209, true, true}, {210, false, false}}},
		// no deadlines at all
		{"not-expiring-key", 300, 0, 0, []step{{1000, true, true}}},
	}

	for _, phase := range phases {
		value := []byte("value-" + phase.key)
		database.SetE(phase.key, value, phase.index, phase.expireIn, phase.deleteIn)

		for _, s := range phase.steps {
			database.SetWriteIdx(s.index)
			if _, ok := database.Get(phase.key); ok != s.wantGet {
				t.Errorf("Get(%q) at index %d = %v, expected %v", phase.key, s.index, ok, s.wantGet)
			}
			if ok := database.Has(phase.key); ok != s.wantHas {
				t.Errorf("Has(%q) at index %d = %v, expected %v", phase.key, s.index, ok, s.wantHas)
			}
			if s.wantGet {
				expectValue(t, database, phase.key, value)
			}
		}
	}
}

func testManyExpiringKeys(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureSetE|db.FeatureGet|db.FeatureHas)

	const numKeys = 1000
	const baseIndex = uint64(1000)

	// key i expires after i%100 writes, 0 meaning never
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("expire-key-%04d", i)
		database.SetE(key, []byte(key), baseIndex, uint64(i%100), 0)
		if !database.Has(key) {
			t.Fatalf("Key %s not found after SetE", key)
		}
	}

	for offset := uint64(0); offset <= 100; offset += 10 {
		database.SetWriteIdx(baseIndex + offset)

		live := 0
		for i := 0; i < numKeys; i++ {
			key := fmt.Sprintf("expire-key-%04d", i)
			ttl := uint64(i % 100)
			_, visible := database.Get(key)
			if wantVisible := ttl == 0 || ttl > offset; visible != wantVisible {
				t.Fatalf("Key %s (TTL=%d) at index %d: visible=%v, expected %v",
					key, ttl, baseIndex+offset, visible, wantVisible)
			}
			if visible {
				live++
			}
		}

		if database.SupportsFeature(db.FeatureCount) {
			if n := database.Count("expire-key-", "expire-key."); n != uint64(live) {
				t.Errorf("Count at index %d = %d, expected %d", baseIndex+offset, n, live)
			}
		}
	}
}

func testExpire(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureExpire|db.FeatureHas)

	database.Set("expire-test-key", []byte("v"), 0)
	expectValue(t, database, "expire-test-key", []byte("v"))

	database.Expire("expire-test-key", 10)
	expectHidden(t, database, "expire-test-key")
	if !database.Has("expire-test-key") {
		t.Errorf("Expected expired key to be reported by Has")
	}

	// a later write revives the key
	database.Set("expire-test-key", []byte("again"), 11)
	expectValue(t, database, "expire-test-key", []byte("again"))

	database.Expire("nonexistent-key", 12)
	if database.Has("nonexistent-key") {
		t.Errorf("Expire must not create missing keys")
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete|db.FeatureHas)

	database.Set("delete-test-key", []byte("v"), 0)
	expectValue(t, database, "delete-test-key", []byte("v"))

	database.Delete("delete-test-key", 10)
	expectHidden(t, database, "delete-test-key")
	if database.Has("delete-test-key") {
		t.Errorf("Expected deleted key to be gone for Has")
	}

	database.Delete("nonexistent-key", 11)
	if database.Has("nonexistent-key") {
		t.Errorf("Delete must not create missing keys")
	}
}

func testHas(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureHas|db.FeatureExpire)

	if database.Has("has-test-key") {
		t.Errorf("Expected Has to return false for nonexistent key")
	}

	database.Set("has-test-key", []byte("v"), 0)
	if !database.Has("has-test-key") {
		t.Errorf("Expected Has to return true after Set")
	}

	database.Expire("has-test-key", 0)
	if !database.Has("has-test-key") {
		t.Errorf("Expected Has to return true after Expire")
	}
}

func testSetEIfUnset(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSetEIfUnset|db.FeatureGet)

	database.SetEIfUnset("test-key", []byte("first"), 0, 10, 0)
	expectValue(t, database, "test-key", []byte("first"))

	// the second write neither replaces the value nor the deadline
	database.SetEIfUnset("test-key", []byte("second"), 5, 20, 0)
	expectValue(t, database, "test-key", []byte("first"))

	database.SetWriteIdx(11)
	expectHidden(t, database, "test-key")
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	database := factory()
	database2 := factory()

	// close the databases after the test
	defer database.Close()
	defer database2.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureSave|db.FeatureLoad)

	const numEntries = 1000
	keys := make([]string, numEntries)

	// insert in reverse order so that the snapshot has to sort them
	for i := numEntries - 1; i >= 0; i-- {
		keys[i] = fmt.Sprintf("save-load-test-key-%04d", i)
		database.Set(keys[i], []byte("value-"+keys[i]), 0)
	}

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}
	if err := database2.Load(&buf); err != nil {
		t.Fatalf("Unexpected error during Load: %v", err)
	}

	for _, key := range keys {
		expectValue(t, database2, key, []byte("value-"+key))
		expectValue(t, database, key, []byte("value-"+key))
	}

	if database2.SupportsFeature(db.FeatureRange) {
		if got := pairKeys(database2.Range("", "", 0, false)); !slices.Equal(got, keys) {
			t.Errorf("Loaded database does not scan in key order")
		}
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	// the empty key is a regular key and the smallest one
	database.Set("", []byte("value for empty key"), 0)
	expectValue(t, database, "", []byte("value for empty key"))

	database.Set("empty-value-key", []byte{}, 0)
	if v, ok := database.Get("empty-value-key"); !ok || len(v) != 0 {
		t.Errorf("Expected empty value, got (%q, %v)", v, ok)
	}

	database.Set("nil-value-key", nil, 0)
	if v, ok := database.Get("nil-value-key"); !ok || len(v) != 0 {
		t.Errorf("Expected nil value to read back empty, got (%q, %v)", v, ok)
	}

	if database.SupportsFeature(db.FeatureSeek) {
		if p, ok := database.Seek(""); !ok || p.Key != "" {
			t.Errorf("Seek(\"\") should find the empty key, got (%q, %v)", p.Key, ok)
		}
	}

	if t.Failed() {
		return
	}

	largeKey := string(make([]byte, 1000))
	database.Set(largeKey, []byte("value for large key"), 0)
	expectValue(t, database, largeKey, []byte("value for large key"))

	largeValue := make([]byte, 8*1024*1024)
	for i := range largeValue {
		largeValue[i] = byte(i % 256)
	}
	database.Set("large-value-key", largeValue, 0)
	if v, ok := database.Get("large-value-key"); !ok || !bytes.Equal(v, largeValue) {
		t.Errorf("Large value mismatch (found=%v, size=%d, expected size=%d)", ok, len(v), len(largeValue))
	}
}

// testPrefixNeighbours stores keys that are prefixes of each other and therefore
// sort next to each other, then deletes every second one.
func testPrefixNeighbours(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	keys := []string{"p"}
	for i := 0; i < 9; i++ {
		keys = append(keys, keys[len(keys)-1]+"0", fmt.Sprintf("%s%d", keys[len(keys)-1], i+1))
	}
	for _, k := range keys {
		database.Set(k, []byte("value-"+k), 0)
	}

	sorted := slices.Clone(keys)
	sort.Strings(sorted)
	var remaining []string
	for i, k := range sorted {
		if i%2 == 0 {
			database.Delete(k, 10)
		} else {
			remaining = append(remaining, k)
		}
	}

	for i, k := range sorted {
		if i%2 == 0 {
			expectHidden(t, database, k)
		} else {
			expectValue(t, database, k, []byte("value-"+k))
		}
	}

	if database.SupportsFeature(db.FeatureRange) {
		expectKeys(t, "prefix neighbours", database.Range("p", "q", 0, false), remaining...)
	}
}

func testRealisticUsage(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	const (
		numOperations = 10_000
		numWorkers    = 8
	)

	// 70% set, 20% get, 10% delete; every fifth operation hits one of 50 hot keys
	keyFor := func(i int) string {
		if i%5 == 0 {
			return fmt.Sprintf("hot-key-%02d", i%50)
		}
		return fmt.Sprintf("key-%05d", i)
	}
	valueFor := func(i int) []byte {
		size := 64
		if i%10 == 0 {
			size = 1024
		}
		value := make([]byte, size)
		for j := range value {
			value[j] = byte((i + j) % 256)
		}
		return value
	}

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	opsPerWorker := numOperations / numWorkers

	for w := 0; w < numWorkers; w++ {
		go func(start int) {
			defer wg.Done()
			for i := start; i < start+opsPerWorker; i++ {
				switch i % 10 {
				case 7, 8:
					database.Get(keyFor(i))
				case 9:
					database.Delete(keyFor(i), 0)
				default:
					database.Set(keyFor(i), valueFor(i), 0)
				}
			}
		}(w * opsPerWorker)
	}

	wg.Wait()

	// a quiescent database must answer Get and Range consistently
	if !database.SupportsFeature(db.FeatureRange) {
		return
	}
	pairs := database.Range("", "", 0, false)
	expectSorted(t, pairs)
	for _, p := range pairs {
		expectValue(t, database, p.Key, p.Value)
	}
	for i := 0; i < numOperations; i++ {
		key := keyFor(i)
		_, visible := database.Get(key)
		_, found := slices.BinarySearchFunc(pairs, key, func(p db.KVPair, k string) int {
			switch {
			case p.Key < k:
				return -1
			case p.Key > k:
				return 1
			}
			return 0
		})
		if visible != found {
			t.Errorf("Key %s: Get visible=%v but Range found=%v", key, visible, found)
		}
	}
}
