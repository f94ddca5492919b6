// Package rpc is the network layer of rbKV. It makes the stores of one server
// available to remote clients.
//
// Subpackages:
//
//   - common: the Message protocol, server and client configuration, logging.
//
//   - transport: the transport interfaces and the http implementation.
//
//   - serializer: Message encodings (binary, json, gob).
//
//   - client: a store.IStore that forwards every call to a server.
//
//   - server: shard registry, request dispatch and request metrics.
package rpc
