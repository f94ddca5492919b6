package serializer

import (
	"encoding/binary"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/ValentinKolb/rbKV/rpc/common"
	"github.com/cockroachdb/errors"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format:
//
//	1 byte message type, 2 bytes flags (big endian), then every present field in flag order.
//	Strings and byte slices are prefixed with a uint32 length, numbers are 8 bytes.
//	Ok and Reverse are encoded in the flags only.
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey      uint16 = 1 << 0
	hasExpireIn uint16 = 1 << 1
	hasDeleteIn uint16 = 1 << 2
	hasValue    uint16 = 1 << 3
	hasOk       uint16 = 1 << 4
	hasErr      uint16 = 1 << 5
	hasMeta     uint16 = 1 << 6
	hasEnd      uint16 = 1 << 7
	hasLimit    uint16 = 1 << 8
	hasReverse  uint16 = 1 << 9
	hasCount    uint16 = 1 << 10
	hasEntries  uint16 = 1 << 11
)

const headerSize = 3 // MsgType + flags

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	w := binWriter{buf: make([]byte, headerSize, b.sizeBytes(msg))}
	var flags uint16

	if msg.Key != "" {
		flags |= hasKey
		w.str(msg.Key)
	}
	if msg.ExpireIn > 0 {
		flags |= hasExpireIn
		w.u64(msg.ExpireIn)
	}
	if msg.DeleteIn > 0 {
		flags |= hasDeleteIn
		w.u64(msg.DeleteIn)
	}
	if msg.Value != nil {
		flags |= hasValue
		w.bytes(msg.Value)
	}
	if msg.Ok {
		flags |= hasOk
	}
	if msg.Err != "" {
		flags |= hasErr
		w.str(msg.Err)
	}
	if msg.Meta != nil {
		flags |= hasMeta
		w.bytes(msg.Meta)
	}
	if msg.End != "" {
		flags |= hasEnd
		w.str(msg.End)
	}
	if msg.Limit != 0 {
		flags |= hasLimit
		w.u64(uint64(int64(msg.Limit)))
	}
	if msg.Reverse {
		flags |= hasReverse
	}
	if msg.Count > 0 {
		flags |= hasCount
		w.u64(msg.Count)
	}
	if msg.Entries != nil {
		flags |= hasEntries
		w.u32(uint32(len(msg.Entries)))
		for _, e := range msg.Entries {
			w.str(e.Key)
			w.bytes(e.Value)
		}
	}

	w.buf[0] = byte(msg.MsgType)
	binary.BigEndian.PutUint16(w.buf[1:3], flags)
	return w.buf, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < headerSize {
		return errors.New("data too short for message header")
	}

	flags := binary.BigEndian.Uint16(data[1:3])
	r := binReader{data: data, pos: headerSize}

	// reset all fields, buffers of the old message are reused where possible
	*msg = common.Message{
		MsgType: common.MessageType(data[0]),
		Ok:      flags&hasOk != 0,
		Reverse: flags&hasReverse != 0,
		Value:   msg.Value,
		Meta:    msg.Meta,
	}

	if flags&hasKey != 0 {
		msg.Key = r.str("key")
	}
	if flags&hasExpireIn != 0 {
		msg.ExpireIn = r.u64("ExpireIn")
	}
	if flags&hasDeleteIn != 0 {
		msg.DeleteIn = r.u64("DeleteIn")
	}
	if flags&hasValue != 0 {
		msg.Value = r.bytesInto(msg.Value, "value")
	} else {
		msg.Value = nil
	}
	if flags&hasErr != 0 {
		msg.Err = r.str("error")
	}
	if flags&hasMeta != 0 {
		msg.Meta = r.bytesInto(msg.Meta, "meta")
	} else {
		msg.Meta = nil
	}
	if flags&hasEnd != 0 {
		msg.End = r.str("end")
	}
	if flags&hasLimit != 0 {
		msg.Limit = int(int64(r.u64("limit")))
	}
	if flags&hasCount != 0 {
		msg.Count = r.u64("count")
	}
	if flags&hasEntries != 0 {
		n := r.u32("entry count")
		// every entry needs at least 8 bytes, this bounds the allocation for corrupt input
		if r.err == nil && uint64(n)*8 > uint64(len(data)-r.pos) {
			r.fail("entries")
		}
		if r.err == nil {
			msg.Entries = make([]db.KVPair, n)
			for i := range msg.Entries {
				msg.Entries[i].Key = r.str("entry key")
				msg.Entries[i].Value = r.bytesInto(nil, "entry value")
			}
		}
	}

	return r.err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := headerSize
	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.ExpireIn > 0 {
		size += 8
	}
	if msg.DeleteIn > 0 {
		size += 8
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}
	if msg.End != "" {
		size += 4 + len(msg.End)
	}
	if msg.Limit != 0 {
		size += 8
	}
	if msg.Count > 0 {
		size += 8
	}
	if msg.Entries != nil {
		size += 4
		for _, e := range msg.Entries {
			size += 8 + len(e.Key) + len(e.Value)
		}
	}
	return size
}

// binWriter appends big endian fields to buf
type binWriter struct {
	buf []byte
}

func (w *binWriter) u32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }
func (w *binWriter) u64(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }

func (w *binWriter) str(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *binWriter) bytes(b []byte) {
	w.u32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// binReader reads big endian fields from data. After the first error all reads
// return zero values and err keeps the first error.
type binReader struct {
	data []byte
	pos  int
	err  error
}

func (r *binReader) fail(field string) {
	if r.err == nil {
		r.err = errors.Newf("data too short for %s", field)
	}
}

func (r *binReader) take(n int, field string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.fail(field)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *binReader) u32(field string) uint32 {
	if b := r.take(4, field); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (r *binReader) u64(field string) uint64 {
	if b := r.take(8, field); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

func (r *binReader) str(field string) string {
	n := r.u32(field + " length")
	return string(r.take(int(n), field+" data"))
}

// bytesInto reads a length prefixed byte slice, reusing dst if it is large enough.
// The result is never nil on success, so empty values survive the round trip.
func (r *binReader) bytesInto(dst []byte, field string) []byte {
	n := int(r.u32(field + " length"))
	src := r.take(n, field+" data")
	if r.err != nil {
		return nil
	}
	if dst == nil || cap(dst) < n {
		dst = make([]byte, n)
	} else {
		dst = dst[:n]
	}
	copy(dst, src)
	return dst
}
