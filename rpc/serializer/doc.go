// Package serializer encodes common.Message values for the rpc transports.
//
// Implementations:
//
//   - binary: a flag word (16 bits) marks which fields are present, and only those
//     are written. Range results are a uint32 entry count followed by length
//     prefixed keys and values. This is the smallest and fastest format and keeps
//     the difference between nil and empty byte slices.
//
//   - json: human readable, message types are encoded by name. Useful with curl.
//
//   - gob: Go's self describing format. Mostly kept for comparison in the benchmarks.
//
// All serializers are stateless and safe for concurrent use. Client and server
// must use the same serializer; the choice is made with the --serializer flag.
package serializer
