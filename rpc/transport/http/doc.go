// Package http implements the rpc transport over plain HTTP.
//
// Server: POST /{shardId} passes the request body to the registered handler and
// writes the handler's bytes back with status 200. Errors of the store are part of
// the encoded message; non-200 statuses are used for transport problems only (bad
// shard id, unreadable body). GET /metrics exposes the VictoriaMetrics registry in
// the Prometheus text format. With log level debug every request is logged.
//
// Client: requests are distributed round-robin over the configured endpoints. A
// failed request is retried on the next endpoint, up to RetryCount attempts.
// Endpoints without a scheme default to http://. The client is safe for concurrent use.
package http
