package oak

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/ValentinKolb/rbKV/lib/db/engines/oak/internal"
	"github.com/ValentinKolb/rbKV/lib/ordered"
	"github.com/ValentinKolb/rbKV/lib/rbtree"
	"github.com/cockroachdb/errors"
)

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

const (
	magicNum   = "OAKDB\x00\x00\x00" // File format identifier
	oakVersion = 1                   // File format version
	ioBufSize  = 1024 * 1024         // 1 MB buffer
)

// ErrInvalidFormat is returned by Load when the input is not a valid snapshot.
var ErrInvalidFormat = errors.New("oak: invalid file format")

type savedEntry struct {
	key   string
	entry internal.Entry
}

// Save persists all entries that are not logically deleted to the writer, in key order.
//
// Thread-safety: Save copies the entries under the read lock and writes them
// afterwards, so writers are only blocked during the copy.
func (oak *oakImpl) Save(w io.Writer) error {
	idx := oak.currIndex.Load()

	oak.mu.RLock()
	entries := make([]savedEntry, 0, oak.data.Len())
	for key, e := range oak.data.All() {
		if _, isDeleted := e.TTLInfo(idx); isDeleted {
			continue
		}
		entries = append(entries, savedEntry{key: key, entry: internal.Entry{
			Value:    cloneBytes(e.Value),
			ExpireAt: e.ExpireAt,
			DeleteAt: e.DeleteAt,
			Index:    e.Index,
		}})
	}
	oak.mu.RUnlock()

	bw := bufio.NewWriterSize(w, ioBufSize)

	if _, err := bw.WriteString(magicNum); err != nil {
		return errors.Wrap(err, "write header")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(oakVersion)); err != nil {
		return errors.Wrap(err, "write version")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return errors.Wrap(err, "write entry count")
	}

	for _, item := range entries {
		if err := writeEntry(bw, item); err != nil {
			return errors.Wrapf(err, "write entry %q", item.key)
		}
	}

	return errors.Wrap(bw.Flush(), "flush")
}

func writeEntry(w io.Writer, item savedEntry) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(item.key))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, item.key); err != nil {
		return err
	}
	header := [3]uint64{item.entry.ExpireAt, item.entry.DeleteAt, item.entry.Index}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(item.entry.Value))); err != nil {
		return err
	}
	_, err := w.Write(item.entry.Value)
	return err
}

// Load replaces the database content with the snapshot read from r. The write index is
// reset to the highest index found in the snapshot. On error the database is unchanged.
//
// Thread-safety: Load takes the write lock for the final swap only.
func (oak *oakImpl) Load(r io.Reader) error {
	br := bufio.NewReaderSize(r, ioBufSize)

	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return errors.Wrap(err, "read header")
	}
	if string(magicBytes) != magicNum {
		return errors.Wrap(ErrInvalidFormat, "magic number mismatch")
	}

	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return errors.Wrap(err, "read version")
	}
	if version != oakVersion {
		return errors.Wrapf(ErrInvalidFormat, "unsupported version: %d (expected %d)", version, oakVersion)
	}

	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return errors.Wrap(err, "read entry count")
	}

	data := rbtree.NewOrdered[string, internal.Entry](rbtree.Unique)
	expiries := ordered.NewOrderedMultiMap[uint64, string]()
	deletions := ordered.NewOrderedMultiMap[uint64, string]()
	var (
		maxIndex uint64
		keyBytes int64
		prevKey  string
	)

	for i := uint64(0); i < count; i++ {
		item, err := readEntry(br)
		if err != nil {
			return errors.Wrapf(err, "read entry %d of %d", i+1, count)
		}
		if i > 0 && item.key <= prevKey {
			return errors.Wrapf(ErrInvalidFormat, "key %q out of order", item.key)
		}
		prevKey = item.key

		c, _ := data.Insert(item.key, item.entry)
		e := c.ValuePtr()
		if e.ExpireAt != 0 && e.Value != nil {
			e.ExpireSlot = expiries.Insert(e.ExpireAt, item.key)
		}
		if e.DeleteAt != 0 {
			e.DeleteSlot = deletions.Insert(e.DeleteAt, item.key)
		}

		keyBytes += int64(len(item.key))
		maxIndex = max(maxIndex, e.Index)
	}

	oak.mu.Lock()
	oak.data, oak.expiries, oak.deletions = data, expiries, deletions
	oak.keyBytes = keyBytes
	oak.currIndex.Store(0)
	oak.SetWriteIdx(maxIndex)
	oak.mu.Unlock()

	return nil
}

func readEntry(r io.Reader) (savedEntry, error) {
	var keyLen uint32
	if err := binary.Read(r, binary.LittleEndian, &keyLen); err != nil {
		return savedEntry{}, err
	}
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return savedEntry{}, err
	}
	var header [3]uint64
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return savedEntry{}, err
	}
	var valueLen uint32
	if err := binary.Read(r, binary.LittleEndian, &valueLen); err != nil {
		return savedEntry{}, err
	}
	value := make([]byte, valueLen)
	if _, err := io.ReadFull(r, value); err != nil {
		return savedEntry{}, err
	}
	return savedEntry{key: string(key), entry: internal.Entry{
		Value:    value,
		ExpireAt: header[0],
		DeleteAt: header[1],
		Index:    header[2],
	}}, nil
}
