package oak

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/ValentinKolb/rbKV/lib/db/engines/oak/internal"
	"github.com/ValentinKolb/rbKV/lib/ordered"
	"github.com/ValentinKolb/rbKV/lib/rbtree"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
)

var log = logger.GetLogger("oak")

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	defaultGCInterval = 100 * time.Millisecond // Default interval between GC runs
	sizeReservoir     = 1028                   // Reservoir size of the value size sample
	sizeSampleAlpha   = 0.015                  // Decay of the value size sample
)

// --------------------------------------------------------------------------
// Core Oak database structure
// --------------------------------------------------------------------------

// schedule orders keys by the write index at which they are due. Several
// keys may share a deadline.
type schedule = ordered.MultiMap[uint64, string]

// oakImpl implements db.KVDB on a single red-black tree
type oakImpl struct {
	mu        sync.RWMutex
	data      *rbtree.Tree[string, internal.Entry] // all entries in key order
	expiries  *schedule                            // pending expirations
	deletions *schedule                            // pending deletions
	keyBytes  int64                                // total key length of all entries

	currIndex atomic.Uint64 // Current logical timestamp

	valueSizes gometrics.Histogram // sizes of written values

	// garbage collection
	gcInterval  time.Duration
	gcIsRunning atomic.Bool
	gcStop      chan struct{}
	gcDone      chan struct{}
}

// DBOptions configures the oakImpl behavior during initialization
type DBOptions struct {
	GCInterval time.Duration // Time between GC runs (0 = use default)
}

// DefaultOptions returns the default oakImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		GCInterval: defaultGCInterval,
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewOakDB creates a new OakDB instance with the specified options (optional)
// and starts its garbage collector.
func NewOakDB(opts *DBOptions) db.KVDB {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.GCInterval <= 0 {
		opts.GCInterval = defaultGCInterval
	}

	newDB := &oakImpl{
		data:       rbtree.NewOrdered[string, internal.Entry](rbtree.Unique),
		expiries:   ordered.NewOrderedMultiMap[uint64, string](),
		deletions:  ordered.NewOrderedMultiMap[uint64, string](),
		valueSizes: gometrics.NewHistogram(gometrics.NewExpDecaySample(sizeReservoir, sizeSampleAlpha)),
		gcInterval: opts.GCInterval,
	}

	newDB.startGC()
	return newDB
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry with the given key, value, and currentIndex.
// If the key already exists, the old value is overwritten.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) Set(key string, value []byte, writeIdx uint64) {
	oak.compute(key, value, writeIdx, 0, 0, func(new, _ internal.Entry, _ bool) (internal.Entry, bool) {
		return new, false
	})
}

// SetE stores a value for a key with an expiration and/or deletion time
// relative to writeIndex. If the key already exists, value and times are overwritten.
//
// Note: expireIn=0 or deleteIn=0 means no expiration or deletion.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) SetE(key string, value []byte, writeIndex uint64, expireIn, deleteIn uint64) {
	oak.compute(key, value, writeIndex, expireIn, deleteIn, func(new, _ internal.Entry, _ bool) (internal.Entry, bool) {
		return new, false
	})
}

// SetEIfUnset behaves like SetE but leaves an existing (not deleted) entry unchanged.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) SetEIfUnset(key string, value []byte, writeIndex uint64, expireIn, deleteIn uint64) {
	oak.compute(key, value, writeIndex, expireIn, deleteIn, func(new, old internal.Entry, loaded bool) (internal.Entry, bool) {
		if loaded {
			return old, false
		}
		return new, false
	})
}

// Expire marks the entry with the specified key as expired. This change is immediate.
// The key is still findable with the Has() method.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) Expire(key string, writeIndex uint64) {
	oak.compute(key, nil, writeIndex, 0, 0, func(_, old internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			return old, true
		}
		old.ExpireAt = writeIndex
		old.Value = nil
		return old, false
	})
}

// Delete removes an entry with the specified key. This change is immediate,
// the entry itself is reclaimed by the garbage collector.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) Delete(key string, writeIndex uint64) {
	oak.compute(key, nil, writeIndex, 0, 0, func(_, old internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			return old, true
		}
		old.DeleteAt = writeIndex
		return old, false
	})
}

// DeleteRange removes all entries in [start, end) that are not newer than writeIndex.
// It returns the number of entries that were visible to Has() before removal.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) DeleteRange(start, end string, writeIndex uint64) uint64 {
	oak.SetWriteIdx(writeIndex)
	if emptyWindow(start, end) {
		return 0
	}

	oak.mu.Lock()
	defer oak.mu.Unlock()

	var removed uint64
	for c := oak.data.LowerBound(start); !c.IsEnd() && inWindow(c.Key(), end); {
		e := c.ValuePtr()
		if writeIndex < e.Index {
			c = c.Next()
			continue
		}
		if _, isDeleted := e.TTLInfo(writeIndex); !isDeleted {
			removed++
		}
		c = oak.erase(c)
	}
	return removed
}

// compute is the shared implementation of all single-key writes. It copies the value,
// ignores stale writes, presents fn with a consistent view of the old entry and keeps
// the expiry schedules in sync with the result.
//
// fn receives the new and the old entry (and whether the old one is logically present)
// and returns the entry to store, or delete=true to drop the key.
//
// Thread-safety: This function takes the write lock.
func (oak *oakImpl) compute(key string, value []byte, writeIndex uint64, expireIn, deleteIn uint64, fn func(new, old internal.Entry, loaded bool) (entry internal.Entry, delete bool)) {

	// update the current index
	oak.SetWriteIdx(writeIndex)

	// Copy value to prevent memory corruption
	valueCopy := cloneBytes(value)

	var expireAt, deleteAt uint64
	if expireIn > 0 {
		expireAt = writeIndex + expireIn
	}
	if deleteIn > 0 {
		deleteAt = writeIndex + deleteIn
	}

	oak.mu.Lock()
	defer oak.mu.Unlock()

	c := oak.data.Find(key)
	exists := !c.IsEnd()

	var old internal.Entry
	loaded := false
	if exists {
		old = c.Value()

		// stale writes are ignored
		if writeIndex < old.Index {
			return
		}

		isExpired, isDeleted := old.TTLInfo(writeIndex)
		loaded = !isDeleted
		if isExpired {
			old.Value = nil
			old.ExpireAt = writeIndex
		}
	}

	entry, del := fn(internal.Entry{
		Value:    valueCopy,
		ExpireAt: expireAt,
		DeleteAt: deleteAt,
		Index:    writeIndex,
	}, old, loaded)

	// CASE DELETE
	if del {
		if exists {
			oak.erase(c)
		}
		return
	}

	// CASE WRITE
	if exists {
		oak.unschedule(c.ValuePtr())
		c.SetValue(entry)
	} else {
		c, _ = oak.data.Insert(key, entry)
		oak.keyBytes += int64(len(key))
	}
	if entry.Value != nil {
		oak.valueSizes.Update(int64(len(entry.Value)))
	}
	oak.schedule(c)
}

// schedule registers the deadlines of the entry at c.
// The caller must hold the write lock.
func (oak *oakImpl) schedule(c rbtree.Cursor[string, internal.Entry]) {
	e := c.ValuePtr()
	e.ExpireSlot, e.DeleteSlot = internal.Slot{}, internal.Slot{}
	if e.ExpireAt != 0 && e.Value != nil {
		e.ExpireSlot = oak.expiries.Insert(e.ExpireAt, c.Key())
	}
	if e.DeleteAt != 0 {
		e.DeleteSlot = oak.deletions.Insert(e.DeleteAt, c.Key())
	}
}

// unschedule removes the deadlines of e from both schedules.
// The caller must hold the write lock.
func (oak *oakImpl) unschedule(e *internal.Entry) {
	if e.ExpireSlot.Valid() {
		oak.expiries.EraseAt(e.ExpireSlot)
	}
	if e.DeleteSlot.Valid() {
		oak.deletions.EraseAt(e.DeleteSlot)
	}
	e.ExpireSlot, e.DeleteSlot = internal.Slot{}, internal.Slot{}
}

// erase physically removes the entry at c and returns its successor.
// The caller must hold the write lock.
func (oak *oakImpl) erase(c rbtree.Cursor[string, internal.Entry]) rbtree.Cursor[string, internal.Entry] {
	oak.unschedule(c.ValuePtr())
	oak.keyBytes -= int64(len(c.Key()))
	return oak.data.Erase(c)
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves a value for a key.
// The boolean indicates whether a (not expired) value for the key was found.
// The returned value is a copy of the stored data.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) Get(key string) ([]byte, bool) {
	idx := oak.currIndex.Load()

	oak.mu.RLock()
	defer oak.mu.RUnlock()

	c := oak.data.Find(key)
	if c.IsEnd() {
		return nil, false
	}
	e := c.ValuePtr()
	if !e.Live(idx) {
		return nil, false
	}
	return cloneBytes(e.Value), true
}

// Has checks if a key exists in the database.
// This method does not check if the value for the key is expired. Use Get() for that.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) Has(key string) bool {
	idx := oak.currIndex.Load()

	oak.mu.RLock()
	defer oak.mu.RUnlock()

	c := oak.data.Find(key)
	if c.IsEnd() {
		return false
	}
	_, isDeleted := c.ValuePtr().TTLInfo(idx)
	return !isDeleted
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Ordered Operations
// --------------------------------------------------------------------------

// Range returns the live entries in [start, end). See db.KVDB.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) Range(start, end string, limit int, reverse bool) []db.KVPair {
	if emptyWindow(start, end) {
		return nil
	}
	idx := oak.currIndex.Load()

	oak.mu.RLock()
	defer oak.mu.RUnlock()

	var entries []db.KVPair
	oak.scan(start, end, reverse, func(key string, e *internal.Entry) bool {
		if !e.Live(idx) {
			return true
		}
		entries = append(entries, db.KVPair{Key: key, Value: cloneBytes(e.Value)})
		return limit <= 0 || len(entries) < limit
	})
	return entries
}

// Count returns the number of live entries in [start, end).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) Count(start, end string) uint64 {
	if emptyWindow(start, end) {
		return 0
	}
	idx := oak.currIndex.Load()

	oak.mu.RLock()
	defer oak.mu.RUnlock()

	var n uint64
	oak.scan(start, end, false, func(_ string, e *internal.Entry) bool {
		if e.Live(idx) {
			n++
		}
		return true
	})
	return n
}

// Seek returns the first live entry with a key not less than key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) Seek(key string) (db.KVPair, bool) {
	idx := oak.currIndex.Load()

	oak.mu.RLock()
	defer oak.mu.RUnlock()

	for c := oak.data.LowerBound(key); !c.IsEnd(); c = c.Next() {
		if e := c.ValuePtr(); e.Live(idx) {
			return db.KVPair{Key: c.Key(), Value: cloneBytes(e.Value)}, true
		}
	}
	return db.KVPair{}, false
}

// scan calls fn for every entry in [start, end) in key order (or reverse key order)
// until fn returns false. The caller must hold the lock.
func (oak *oakImpl) scan(start, end string, reverse bool, fn func(key string, e *internal.Entry) bool) {
	if !reverse {
		for c := oak.data.LowerBound(start); !c.IsEnd() && inWindow(c.Key(), end); c = c.Next() {
			if !fn(c.Key(), c.ValuePtr()) {
				return
			}
		}
		return
	}

	c := oak.data.RBegin()
	if end != "" {
		// the last element before end; End.Prev() wraps to the maximum
		c = oak.data.LowerBound(end).Prev()
	}
	for ; !c.IsEnd() && c.Key() >= start; c = c.Prev() {
		if !fn(c.Key(), c.ValuePtr()) {
			return
		}
	}
}

// --------------------------------------------------------------------------
// Features and Metadata
// --------------------------------------------------------------------------

const supportedFeatures = db.FeatureSet |
	db.FeatureSetE |
	db.FeatureSetEIfUnset |
	db.FeatureGet |
	db.FeatureExpire |
	db.FeatureDelete |
	db.FeatureHas |
	db.FeatureSave |
	db.FeatureLoad |
	db.FeatureGarbageCollect |
	db.FeatureRange |
	db.FeatureCount |
	db.FeatureSeek |
	db.FeatureDeleteRange

// SupportsFeature checks if this implementation supports a specific KVDB feature
func (oak *oakImpl) SupportsFeature(feature db.Feature) bool {
	return supportedFeatures&feature == feature
}

// GetInfo returns statistics about the database
func (oak *oakImpl) GetInfo() db.DatabaseInfo {
	currentWriteIndex := oak.currIndex.Load()
	sizes := oak.valueSizes.Snapshot()

	oak.mu.RLock()
	entries := oak.data.Len()
	keyBytes := oak.keyBytes
	height, blackHeight := oak.data.Height(), oak.data.BlackHeight()
	expireScheduled, deleteScheduled := oak.expiries.Len(), oak.deletions.Len()
	expiredBacklog := dueCount(oak.expiries, currentWriteIndex)
	deletedBacklog := dueCount(oak.deletions, currentWriteIndex)
	oak.mu.RUnlock()

	// 8 bytes each for expireAt, deleteAt, index plus tree node links
	const entryOverhead = 24 + 40
	ps := sizes.Percentiles([]float64{0.5, 0.95, 0.99})
	// weighted estimate (60% median, 40% average)
	valueEstimate := (ps[0]*60 + sizes.Mean()*40) / 100
	sizeBytes := int(keyBytes) + entries*(entryOverhead+int(valueEstimate))

	meta := &struct {
		CurrentWriteIndex uint64  `json:"current_write_index"`
		Entries           int     `json:"entries"`
		TreeHeight        int     `json:"tree_height"`
		BlackHeight       int     `json:"black_height"`
		ExpireScheduled   int     `json:"expire_scheduled"`
		DeleteScheduled   int     `json:"delete_scheduled"`
		ExpiredBacklog    int     `json:"expired_backlog"`
		DeletedBacklog    int     `json:"deleted_backlog"`
		ValueSizeP50      float64 `json:"value_size_p50"`
		ValueSizeP95      float64 `json:"value_size_p95"`
		ValueSizeP99      float64 `json:"value_size_p99"`
		Info              string  `json:"info"`
	}{
		CurrentWriteIndex: currentWriteIndex,
		Entries:           entries,
		TreeHeight:        height,
		BlackHeight:       blackHeight,
		ExpireScheduled:   expireScheduled,
		DeleteScheduled:   deleteScheduled,
		ExpiredBacklog:    expiredBacklog,
		DeletedBacklog:    deletedBacklog,
		ValueSizeP50:      ps[0],
		ValueSizeP95:      ps[1],
		ValueSizeP99:      ps[2],
		Info:              "SizeBytes and value sizes are estimates based on a decaying sample of recent writes.",
	}

	features := []db.Feature{
		db.FeatureSet, db.FeatureSetE, db.FeatureSetEIfUnset,
		db.FeatureExpire | db.FeatureDelete,
		db.FeatureGet, db.FeatureHas,
		db.FeatureSave, db.FeatureLoad,
		db.FeatureGarbageCollect,
		db.FeatureRange, db.FeatureCount, db.FeatureSeek, db.FeatureDeleteRange,
	}

	return db.DatabaseInfo{
		SizeBytes:         sizeBytes,
		DbType:            db.ImplOak,
		SupportedFeatures: features,
		Metadata:          meta,
	}
}

// Close stops the garbage collector
func (oak *oakImpl) Close() error {
	oak.stopGC()
	return nil
}

// --------------------------------------------------------------------------
// Index and Timestamp Management
// --------------------------------------------------------------------------

// SetWriteIdx safely updates the current index
// It only updates if the new index is greater than the current one
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) SetWriteIdx(newIdx uint64) {
	for {
		currIdx := oak.currIndex.Load()
		if newIdx <= currIdx {
			return
		}
		if oak.currIndex.CompareAndSwap(currIdx, newIdx) {
			return
		}
	}
}

// WriteIdx returns the current index of the database
func (oak *oakImpl) WriteIdx() uint64 {
	return oak.currIndex.Load()
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func emptyWindow(start, end string) bool {
	return end != "" && end <= start
}

func inWindow(key, end string) bool {
	return end == "" || key < end
}

// dueCount counts the deadlines in s that are not after idx
func dueCount(s *schedule, idx uint64) int {
	t := s.Tree()
	n := 0
	for range t.Range(t.Begin(), t.UpperBound(idx)) {
		n++
	}
	return n
}

// cloneBytes returns a non-nil copy of b
func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
