// Package server implements the rbKV RPC server. It maps shard IDs to stores and
// dispatches decoded requests to them.
//
// Key Components:
//
//   - NewRPCServer: creates a server from a common.ServerConfig, a transport and a
//     serializer. Serve initializes the loggers, creates every configured shard and
//     blocks in the transport's Listen.
//
//   - Shards: each shard is an oak backed store. "lstore" shards use lstore and are
//     local to the node. "dstore" shards are replicated with dragonboat; the node
//     host is only created when at least one such shard is configured. Shards are
//     kept in an xsync.MapOf so request handling never takes a lock.
//
//   - IRPCServerAdapter: translates a common.Message into store.IStore calls. The
//     IStore adapter handles all key-value and ordered operations.
//
//   - Metrics: every handled request updates VictoriaMetrics counters and a duration
//     histogram labelled with the shard and message type (rbkv_requests_total,
//     rbkv_request_errors_total, rbkv_request_duration_seconds). The http transport
//     exposes them on GET /metrics.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Shards:   []common.ServerShard{{ShardID: 100, Type: common.ShardTypeLocalIStore}},
//	  Endpoint: "0.0.0.0:8080",
//	  LogLevel: "info",
//	}
//	s := server.NewRPCServer(config, http.NewHttpServerTransport(), serializer.NewBinarySerializer())
//	if err := s.Serve(); err != nil { ... }
package server
