package testing

import (
	"bytes"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/ValentinKolb/rbKV/lib/db"
)

// --------------------------------------------------------------------------
// Ordered operation tests
// --------------------------------------------------------------------------

func pairKeys(pairs []db.KVPair) []string {
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.Key
	}
	return keys
}

func expectKeys(t *testing.T, what string, got []db.KVPair, want ...string) {
	t.Helper()
	if gotKeys := pairKeys(got); !slices.Equal(gotKeys, want) {
		t.Errorf("%s: expected keys %v, got %v", what, want, gotKeys)
	}
}

func testRangeOrder(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureRange)

	// insert in an order unrelated to the key order
	keys := []string{"m", "c", "x", "a", "q", "b", "z", "k"}
	for i, k := range keys {
		database.Set(k, []byte(fmt.Sprintf("v-%s", k)), uint64(i))
	}

	all := database.Range("", "", 0, false)
	expectKeys(t, "full scan", all, "a", "b", "c", "k", "m", "q", "x", "z")
	for _, p := range all {
		if want := []byte("v-" + p.Key); !bytes.Equal(p.Value, want) {
			t.Errorf("Expected value %s for key %s, got %s", want, p.Key, p.Value)
		}
	}

	expectKeys(t, "reverse scan", database.Range("", "", 0, true), "z", "x", "q", "m", "k", "c", "b", "a")

	// returned values are copies
	all[0].Value[0] = 'X'
	if v, _ := database.Get("a"); !bytes.Equal(v, []byte("v-a")) {
		t.Errorf("Range should return copies, stored value changed to %s", v)
	}
}

func testRangeWindows(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureRange)

	for i := 0; i < 20; i++ {
		database.Set(fmt.Sprintf("key-%02d", i), []byte{byte(i)}, 0)
	}

	tests := []struct {
		name       string
		start, end string
		limit      int
		reverse    bool
		want       []string
	}{
		{"half open", "key-03", "key-06", 0, false, []string{"key-03", "key-04", "key-05"}},
		{"bounds between keys", "key-03a", "key-05a", 0, false, []string{"key-04", "key-05"}},
		{"limit", "key-10", "", 3, false, []string{"key-10", "key-11", "key-12"}},
		{"reverse window", "key-03", "key-06", 0, true, []string{"key-05", "key-04", "key-03"}},
		{"reverse limit", "", "", 2, true, []string{"key-19", "key-18"}},
		{"reverse open end", "key-17", "", 0, true, []string{"key-19", "key-18", "key-17"}},
		{"reverse end before first", "", "key-", 0, true, nil},
		{"start after last", "zzz", "", 0, false, nil},
		{"inverted", "key-06", "key-03", 0, false, nil},
		{"empty", "key-05", "key-05", 0, false, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := database.Range(tc.start, tc.end, tc.limit, tc.reverse)
			expectKeys(t, tc.name, got, tc.want...)
		})
	}
}

func testRangeVisibility(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureSetE|db.FeatureRange|db.FeatureDelete|db.FeatureExpire)

	database.Set("a", []byte("a"), 100)
	database.SetE("b", []byte("b"), 100, 10, 0) // expires at 110
	database.SetE("c", []byte("c"), 100, 0, 20) // deleted at 120
	database.Set("d", []byte("d"), 100)
	database.Set("e", []byte("e"), 100)

	expectKeys(t, "all live", database.Range("", "", 0, false), "a", "b", "c", "d", "e")

	database.Delete("d", 101)
	database.Expire("e", 101)
	expectKeys(t, "after delete and expire", database.Range("", "", 0, false), "a", "b", "c")

	database.SetWriteIdx(110)
	expectKeys(t, "after ttl expiry", database.Range("", "", 0, false), "a", "c")
	if !database.Has("b") {
		t.Errorf("Expired key b should still be found with Has")
	}

	database.SetWriteIdx(120)
	expectKeys(t, "after ttl deletion", database.Range("", "", 0, true), "a")

	// limit counts live entries only
	database.Set("f", []byte("f"), 121)
	expectKeys(t, "limit skips hidden", database.Range("b", "", 1, false), "f")
}

func testCount(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureCount|db.FeatureDelete)

	if n := database.Count("", ""); n != 0 {
		t.Errorf("Expected count 0 on empty database, got %d", n)
	}

	for i := 0; i < 100; i++ {
		database.Set(fmt.Sprintf("user:%03d", i), []byte("x"), 0)
		database.Set(fmt.Sprintf("item:%03d", i), []byte("x"), 0)
	}

	if n := database.Count("", ""); n != 200 {
		t.Errorf("Expected count 200, got %d", n)
	}
	if n := database.Count("user:", "user;"); n != 100 {
		t.Errorf("Expected 100 user keys, got %d", n)
	}
	if n := database.Count("user:010", "user:020"); n != 10 {
		t.Errorf("Expected 10 keys in window, got %d", n)
	}

	database.Delete("user:015", 1)
	if n := database.Count("user:010", "user:020"); n != 9 {
		t.Errorf("Expected 9 keys after delete, got %d", n)
	}
	if n := database.Count("user:020", "user:010"); n != 0 {
		t.Errorf("Expected 0 for inverted window, got %d", n)
	}
}

func testSeek(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureSeek|db.FeatureDelete)

	if _, ok := database.Seek(""); ok {
		t.Errorf("Seek on empty database should fail")
	}

	for _, k := range []string{"b", "d", "f"} {
		database.Set(k, []byte("v-"+k), 0)
	}

	tests := []struct {
		key    string
		want   string
		wantOk bool
	}{
		{"", "b", true},
		{"b", "b", true},
		{"c", "d", true},
		{"f", "f", true},
		{"g", "", false},
	}
	for _, tc := range tests {
		entry, ok := database.Seek(tc.key)
		if ok != tc.wantOk || entry.Key != tc.want {
			t.Errorf("Seek(%q) = (%q, %v), expected (%q, %v)", tc.key, entry.Key, ok, tc.want, tc.wantOk)
		}
		if ok && !bytes.Equal(entry.Value, []byte("v-"+entry.Key)) {
			t.Errorf("Seek(%q) returned wrong value %s", tc.key, entry.Value)
		}
	}

	// deleted keys are skipped
	database.Delete("d", 1)
	if entry, ok := database.Seek("c"); !ok || entry.Key != "f" {
		t.Errorf("Seek should skip deleted key, got (%q, %v)", entry.Key, ok)
	}
}

func testDeleteRange(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureHas|db.FeatureDeleteRange|db.FeatureRange)

	for i := 0; i < 10; i++ {
		database.Set(fmt.Sprintf("k%d", i), []byte("x"), 10)
	}

	if n := database.DeleteRange("k2", "k5", 20); n != 3 {
		t.Errorf("Expected 3 removed entries, got %d", n)
	}
	for _, k := range []string{"k2", "k3", "k4"} {
		if database.Has(k) {
			t.Errorf("Key %s should be removed by DeleteRange", k)
		}
	}
	expectKeys(t, "after delete range", database.Range("", "", 0, false),
		"k0", "k1", "k5", "k6", "k7", "k8", "k9")

	if n := database.DeleteRange("k2", "k5", 21); n != 0 {
		t.Errorf("Expected repeated DeleteRange to remove 0, got %d", n)
	}
	if n := database.DeleteRange("k9", "k0", 22); n != 0 {
		t.Errorf("Expected inverted DeleteRange to remove 0, got %d", n)
	}

	// a write newer than the delete survives
	database.Set("k7", []byte("new"), 100)
	if n := database.DeleteRange("k6", "", 50); n != 3 {
		t.Errorf("Expected 3 removed entries (k6, k8, k9), got %d", n)
	}
	if v, ok := database.Get("k7"); !ok || !bytes.Equal(v, []byte("new")) {
		t.Errorf("Newer entry k7 should survive a stale DeleteRange")
	}

	// the key can be written again afterwards
	database.Set("k3", []byte("again"), 200)
	if v, ok := database.Get("k3"); !ok || !bytes.Equal(v, []byte("again")) {
		t.Errorf("Expected k3 to be writable after DeleteRange")
	}
}

func testSaveLoadOrdered(t *testing.T, factory DBFactory) {
	database := factory()
	database2 := factory()
	defer database.Close()
	defer database2.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureSetE|db.FeatureSave|db.FeatureLoad|db.FeatureRange|db.FeatureHas)

	database.SetE("a-expiring", []byte("1"), 10, 5, 0)
	database.SetE("b-deleting", []byte("2"), 10, 0, 5)
	database.Set("c-plain", []byte("3"), 10)
	database.Set("d-deleted", []byte("4"), 10)
	database.Delete("d-deleted", 11)

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}
	if err := database2.Load(&buf); err != nil {
		t.Fatalf("Unexpected error during Load: %v", err)
	}

	expectKeys(t, "loaded", database2.Range("", "", 0, false), "a-expiring", "b-deleting", "c-plain")
	if database2.Has("d-deleted") {
		t.Errorf("Deleted entries should not be saved")
	}

	// deadlines survive the round trip
	database2.SetWriteIdx(15)
	expectKeys(t, "loaded after ttl", database2.Range("", "", 0, false), "c-plain")
	if !database2.Has("a-expiring") {
		t.Errorf("Expired entry should still be found with Has after Load")
	}
	if database2.Has("b-deleting") {
		t.Errorf("Deleted entry should not be found after Load")
	}

	// garbage input is rejected
	if err := database2.Load(bytes.NewReader([]byte("not a snapshot"))); err == nil {
		t.Errorf("Expected error when loading invalid data")
	}
}

func testConcurrentRange(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureRange|db.FeatureDelete)

	const numKeys = 500
	for i := 0; i < numKeys; i++ {
		database.Set(fmt.Sprintf("stable-%04d", i), []byte("x"), 0)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			key := fmt.Sprintf("churn-%04d", i%100)
			if i%3 == 0 {
				database.Delete(key, 0)
			} else {
				database.Set(key, []byte("y"), 0)
			}
		}
	}()

	errs := make(chan string, 1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			got := database.Range("stable-", "stable.", 0, i%2 == 0)
			if len(got) != numKeys {
				select {
				case errs <- fmt.Sprintf("expected %d stable keys, got %d", numKeys, len(got)):
				default:
				}
				return
			}
		}
	}()

	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}
