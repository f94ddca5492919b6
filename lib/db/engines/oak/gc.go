package oak

import (
	"time"
)

// --------------------------------------------------------------------------
// Garbage Collection
// --------------------------------------------------------------------------

// startGC starts the garbage collector.
// If the GC is already running, this function does nothing.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) startGC() {
	if oak.gcIsRunning.CompareAndSwap(false, true) {
		oak.gcStop = make(chan struct{})
		oak.gcDone = make(chan struct{})
		go oak.garbageCollector(oak.gcStop, oak.gcDone)
	}
}

// stopGC stops the garbage collector and waits for the running cycle to finish.
// If the GC is not running, this function does nothing.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (oak *oakImpl) stopGC() {
	if oak.gcIsRunning.CompareAndSwap(true, false) {
		close(oak.gcStop)
		<-oak.gcDone
	}
}

// garbageCollector runs collect every gcInterval until stop is closed.
// WARNING: this method should never be called directly! Use startGC() and stopGC().
func (oak *oakImpl) garbageCollector(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(oak.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if expired, deleted := oak.collect(); expired+deleted > 0 {
				log.Debugf("gc cycle at index %d: %d expired, %d deleted", oak.currIndex.Load(), expired, deleted)
			}
		}
	}
}

// collect processes every schedule entry that is due at the current write index.
// Expired entries lose their value, deleted entries are removed from the tree.
//
// Note: The index is read once per cycle so that a concurrently advancing index
// cannot keep the cycle running forever.
func (oak *oakImpl) collect() (expired, deleted int) {
	writeIndex := oak.currIndex.Load()

	oak.mu.Lock()
	defer oak.mu.Unlock()

	for {
		deadline, key, ok := oak.expiries.PeekMin()
		if !ok || deadline > writeIndex {
			break
		}
		oak.expiries.PopMin()

		c := oak.data.Find(key)
		if c.IsEnd() {
			continue
		}
		// an updated entry is always rescheduled, so this is a double-check only
		if e := c.ValuePtr(); !e.Live(writeIndex) {
			e.Value = nil
			expired++
		}
	}

	for {
		deadline, key, ok := oak.deletions.PeekMin()
		if !ok || deadline > writeIndex {
			break
		}
		oak.deletions.PopMin()

		c := oak.data.Find(key)
		if c.IsEnd() {
			continue
		}
		if _, isDeleted := c.ValuePtr().TTLInfo(writeIndex); isDeleted {
			oak.erase(c)
			deleted++
		}
	}

	return expired, deleted
}
