// Package transport defines the contract between the rpc layer and the network.
// A transport moves opaque, already serialized messages; it knows nothing about
// message types or stores.
//
//   - IRPCServerTransport: accepts requests, extracts the shard id and passes the
//     body to the registered ServerHandleFunc.
//
//   - IRPCClientTransport: sends a request body to a shard and returns the raw
//     response body.
//
// The only implementation is the http sub-package.
package transport
