// Package common holds the types shared by the rpc client, server, serializers
// and transports of rbKV.
//
//   - Message: the single request/response structure. Point operations use Key
//     and Value. Window operations (Range, Count, DeleteRange) use Key as the
//     inclusive start and End as the exclusive end; an empty End is unbounded.
//     Responses carry Ok, Count, Entries or Err depending on the MessageType.
//
//   - MessageType: the operation of a message. Names are stable and are used
//     for JSON encoding and as metric labels.
//
//   - ServerConfig / ClientConfig: settings read by the cmd package. Shard lists
//     ("100=lstore,200=dstore") and cluster members ("node-1=host:port") are
//     parsed here; replica names are hashed to dragonboat replica ids with xxhash.
//
//   - Logger: a dragonboat logger.ILogger factory that writes aligned
//     "LEVEL | package | message" lines. InitLoggers installs it for dragonboat
//     and the rbKV packages (rpc, store, oak, transport/rpc).
package common
