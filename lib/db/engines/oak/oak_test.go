package oak

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// newTestDB returns an engine whose GC does not run on its own, so tests can
// drive collect directly.
func newTestDB(t *testing.T) *oakImpl {
	t.Helper()
	database := NewOakDB(&DBOptions{GCInterval: time.Hour}).(*oakImpl)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestCollectRemovesDueEntries(t *testing.T) {
	database := newTestDB(t)

	for i := 0; i < 10; i++ {
		database.SetE(fmt.Sprintf("exp-%d", i), []byte("v"), 0, uint64(i+1), 0)
		database.SetE(fmt.Sprintf("del-%d", i), []byte("v"), 0, 0, uint64(i+1))
	}
	database.Set("keep", []byte("v"), 0)
	require.Equal(t, 10, database.expiries.Len())
	require.Equal(t, 10, database.deletions.Len())

	database.SetWriteIdx(5)
	expired, deleted := database.collect()
	require.Equal(t, 5, expired)
	require.Equal(t, 5, deleted)
	require.Equal(t, 5, database.expiries.Len())
	require.Equal(t, 5, database.deletions.Len())
	require.Equal(t, 16, database.data.Len())

	// expired entries stay findable, deleted ones are gone
	require.True(t, database.Has("exp-0"))
	require.False(t, database.data.Contains("del-0"))
	require.True(t, database.data.Contains("del-9"))

	database.SetWriteIdx(100)
	database.collect()
	require.Zero(t, database.expiries.Len())
	require.Zero(t, database.deletions.Len())
	require.Equal(t, 11, database.data.Len())
	require.NoError(t, database.data.Validate())
	require.NoError(t, database.expiries.Tree().Validate())
}

func TestOverwriteReschedules(t *testing.T) {
	database := newTestDB(t)

	database.SetE("k", []byte("v1"), 0, 5, 10)
	database.SetE("k", []byte("v2"), 1, 50, 100)
	require.Equal(t, 1, database.expiries.Len(), "old deadline must be unscheduled")
	require.Equal(t, 1, database.deletions.Len())

	database.SetWriteIdx(20)
	database.collect()
	v, ok := database.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("v2"), v)

	database.Set("k", []byte("v3"), 30)
	require.Zero(t, database.expiries.Len(), "plain set must clear deadlines")
	require.Zero(t, database.deletions.Len())
}

func TestDeleteIsCollected(t *testing.T) {
	database := newTestDB(t)

	database.Set("a", []byte("1"), 1)
	database.Delete("a", 2)
	require.True(t, database.data.Contains("a"), "delete is logical until gc")
	require.False(t, database.Has("a"))

	_, deleted := database.collect()
	require.Equal(t, 1, deleted)
	require.False(t, database.data.Contains("a"))
	require.Zero(t, database.keyBytes)
}

func TestStaleWritesIgnored(t *testing.T) {
	database := newTestDB(t)

	database.Set("k", []byte("new"), 10)
	database.Set("k", []byte("old"), 5)
	database.Delete("k", 7)

	v, ok := database.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("new"), v)
	require.Equal(t, uint64(10), database.WriteIdx())
}

func TestBackgroundGC(t *testing.T) {
	database := NewOakDB(&DBOptions{GCInterval: time.Millisecond}).(*oakImpl)
	defer database.Close()

	database.SetE("gone", []byte("v"), 0, 0, 1)
	database.SetWriteIdx(1)

	require.Eventually(t, func() bool {
		database.mu.RLock()
		defer database.mu.RUnlock()
		return !database.data.Contains("gone")
	}, time.Second, time.Millisecond)
}

func TestCloseIsIdempotent(t *testing.T) {
	database := NewOakDB(nil)
	require.NoError(t, database.Close())
	require.NoError(t, database.Close())
}

func TestLoadRejectsInvalidInput(t *testing.T) {
	database := newTestDB(t)
	database.Set("survivor", []byte("v"), 1)

	t.Run("Magic", func(t *testing.T) {
		err := database.Load(bytes.NewReader([]byte("MAPLEDB\x00rest")))
		require.True(t, errors.Is(err, ErrInvalidFormat), "got %v", err)
	})

	t.Run("Version", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(magicNum)
		buf.WriteByte(oakVersion + 1)
		err := database.Load(&buf)
		require.True(t, errors.Is(err, ErrInvalidFormat), "got %v", err)
	})

	t.Run("Order", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(magicNum)
		buf.WriteByte(oakVersion)
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(2)))
		for _, key := range []string{"b", "a"} {
			require.NoError(t, writeEntry(&buf, savedEntry{key: key}))
		}
		err := database.Load(&buf)
		require.True(t, errors.Is(err, ErrInvalidFormat), "got %v", err)
	})

	t.Run("Truncated", func(t *testing.T) {
		var full bytes.Buffer
		require.NoError(t, database.Save(&full))
		err := database.Load(bytes.NewReader(full.Bytes()[:full.Len()-2]))
		require.Error(t, err)
		require.False(t, errors.Is(err, ErrInvalidFormat))
	})

	// failed loads leave the data untouched
	v, ok := database.Get("survivor")
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)
}

func TestGetInfo(t *testing.T) {
	database := newTestDB(t)
	for i := 0; i < 1000; i++ {
		database.SetE(fmt.Sprintf("key-%04d", i), make([]byte, 100), uint64(i), 0, 2000)
	}

	info := database.GetInfo()
	require.Equal(t, db.ImplOak, info.DbType)
	require.Greater(t, info.SizeBytes, 1000*100)
	require.Contains(t, info.SupportedFeatures, db.FeatureRange)

	for _, f := range info.SupportedFeatures {
		require.True(t, database.SupportsFeature(f), "feature %s", f)
	}
	require.True(t, database.SupportsFeature(db.FeatureRange|db.FeatureSeek|db.FeatureCount|db.FeatureDeleteRange))

	raw := fmt.Sprintf("%+v", info.Metadata)
	require.Contains(t, raw, "Entries:1000")
	require.Contains(t, raw, "DeleteScheduled:1000")
}
