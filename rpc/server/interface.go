package server

import (
	"github.com/ValentinKolb/rbKV/lib/store"
	"github.com/ValentinKolb/rbKV/rpc/common"
)

// IRPCServerAdapter maps a decoded request onto a store call. Failures are returned
// as a response carrying Err, never as a Go error.
type IRPCServerAdapter interface {
	Handle(req *common.Message, store store.IStore) (resp *common.Message)
}
