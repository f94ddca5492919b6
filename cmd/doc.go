// Package cmd implements the command-line interface of rbKV. It provides a
// hierarchical command structure with operations for running the server and
// for interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (get, set, range, count, seek, etc.)
//   - serve: Commands for starting and configuring the rbKV server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//   - rbkv: The main package of the rbkv binary
//
// All flags can also be set as environment variables with the RBKV_ prefix.
// See rbkv --help for a list of all commands.
package cmd
