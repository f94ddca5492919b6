package serializer

import (
	"fmt"
	"testing"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/ValentinKolb/rbKV/rpc/common"
)

// rangeEntries returns n entries with 16 byte keys and valueSize byte values
func rangeEntries(n, valueSize int) []db.KVPair {
	entries := make([]db.KVPair, n)
	for i := range entries {
		entries[i] = db.KVPair{Key: fmt.Sprintf("key-%012d", i), Value: make([]byte, valueSize)}
	}
	return entries
}

// benchmarkMessages returns a set of messages for targeted benchmarking
func benchmarkMessages() map[string]common.Message {
	return map[string]common.Message{
		"Empty":         {MsgType: common.MsgTSuccess},
		"SmallKeyOnly":  *common.NewGetRequest("k"),
		"LargeKeyOnly":  *common.NewGetRequest("this-is-a-very-large-key-that-could-be-used-for-storing-data-or-as-a-document-id-in-some-cases"),
		"SmallValue":    *common.NewSetRequest("key", []byte("v")),
		"LargeValue":    *common.NewSetRequest("key", make([]byte, 1024)),
		"VeryLargeVal":  *common.NewSetRequest("key", make([]byte, 16*1024)),
		"RangeRequest":  *common.NewRangeRequest("user:", "user;", 100, false),
		"RangeSmall":    *common.NewRangeResponse(rangeEntries(10, 32), nil),
		"RangeLarge":    *common.NewRangeResponse(rangeEntries(1000, 32), nil),
		"CountResponse": *common.NewCountResponse(123456, nil),
		"ErrorMessage": {
			MsgType: common.MsgTError,
			Err:     "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
		},
	}
}

// BenchmarkSerialize benchmarks serialization for all implementations and reports the encoded size
func BenchmarkSerialize(b *testing.B) {
	for name, factory := range testSerializers {
		for msgName, msg := range benchmarkMessages() {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				var size int
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					data, err := serializer.Serialize(msg)
					if err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
					size = len(data)
				}
				b.ReportMetric(float64(size), "bytes")
			})
		}
	}
}

// BenchmarkDeserialize benchmarks deserialization for all implementations with various message types
func BenchmarkDeserialize(b *testing.B) {
	for name, factory := range testSerializers {
		for msgName, msg := range benchmarkMessages() {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				data, err := serializer.Serialize(msg)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					var out common.Message
					if err := serializer.Deserialize(data, &out); err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}
