// Package client implements store.IStore on top of the rpc transport and serializer
// layers, so a remote rbKV shard can be used like a local store.
//
// Every IStore call is turned into a common.Message request, sent to the configured
// shard, and the response is checked for errors and for the expected message type.
// Ordered operations (Range, Count, Seek, DeleteRange) are forwarded as well; their
// windows are half-open [start, end) with an empty end meaning unbounded.
//
// Usage Example:
//
//	conf := common.ClientConfig{
//	  Endpoints:     []string{"http://localhost:8080"},
//	  TimeoutSecond: 5,
//	  RetryCount:    3,
//	}
//
//	s, err := client.NewRPCStore(100, conf, http.NewHttpClientTransport(), serializer.NewBinarySerializer())
//	if err != nil { ... }
//
//	_ = s.Set("user:1", []byte("alice"))
//	users, _ := s.Range("user:", "user;", 50, false)
//
// GetDBInfo is not available over rpc and returns an UnsupportedOperation error.
package client
