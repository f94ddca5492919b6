package transport

import (
	"github.com/ValentinKolb/rbKV/rpc/common"
)

// ServerHandleFunc handles one serialized request for a shard and returns the
// serialized response. Errors are reported inside the response message.
type ServerHandleFunc func(shardId uint64, req []byte) (resp []byte)

// IRPCServerTransport accepts requests and hands them to the registered handler.
type IRPCServerTransport interface {
	// RegisterHandler sets the handler for all shards. It must be called before Listen.
	RegisterHandler(handler ServerHandleFunc)
	// Listen serves on config.Endpoint and blocks until the transport fails.
	Listen(config common.ServerConfig) error
}

// IRPCClientTransport delivers serialized requests to a server.
type IRPCClientTransport interface {
	// Connect prepares the transport for the endpoints in config.
	Connect(config common.ClientConfig) error
	// Send delivers req to shardId and returns the raw response.
	Send(shardId uint64, req []byte) (resp []byte, err error)
	// Close releases idle connections.
	Close() error
}
