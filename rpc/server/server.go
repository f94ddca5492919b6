package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/ValentinKolb/rbKV/lib/db/engines/oak"
	"github.com/ValentinKolb/rbKV/lib/store"
	"github.com/ValentinKolb/rbKV/lib/store/dstore"
	"github.com/ValentinKolb/rbKV/lib/store/lstore"
	"github.com/ValentinKolb/rbKV/rpc/common"
	"github.com/ValentinKolb/rbKV/rpc/serializer"
	"github.com/ValentinKolb/rbKV/rpc/transport"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a store served under a shard ID together with the adapter
// that handles requests for it
type serverShard struct {
	Store   store.IStore
	Adapter IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	return &rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     xsync.NewMapOf[uint64, serverShard](),
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
	nodeHost   *dragonboat.NodeHost
}

// handle decodes a request, passes it to the adapter of the shard and encodes the response.
func (s *rpcServer) handle(shardId uint64, req []byte) []byte {
	var msg common.Message
	var resp *common.Message

	shard, ok := s.shards.Load(shardId)
	if !ok {
		unknownShardRequests.Inc()
		resp = common.NewErrorResponse(fmt.Sprintf("shard %d not found", shardId))
	} else if err := s.serializer.Deserialize(req, &msg); err != nil {
		resp = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	} else {
		start := time.Now()
		resp = shard.Adapter.Handle(&msg, shard.Store)
		metricsFor(shardId, msg.MsgType).observe(start, resp)
	}

	val, err := s.serializer.Serialize(*resp)
	if err != nil {
		Logger.Errorf("failed to serialize %s response: %v", resp.MsgType, err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
	}
	return val
}

// dbFactory creates the oak engine used by every shard
func (s *rpcServer) dbFactory() db.KVDB {
	return oak.NewOakDB(&oak.DBOptions{GCInterval: s.config.GCInterval})
}

// setupShards creates the store of every configured shard.
// A single server can serve any number of local and raft replicated shards.
func (s *rpcServer) setupShards() error {
	if err := s.config.Validate(); err != nil {
		return errors.Wrap(err, "invalid server config")
	}

	// the NodeHost is only needed for remote shards
	if s.config.HasRemoteShard() {
		nodeHost, err := dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
		if err != nil {
			return errors.Wrap(err, "failed to create node host")
		}
		s.nodeHost = nodeHost
	}

	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	for _, shardConfig := range s.config.Shards {
		var st store.IStore

		switch shardConfig.Type {
		case common.ShardTypeLocalIStore:
			st = lstore.NewLocalStore(s.dbFactory)
			Logger.Infof("created local store for shard %d", shardConfig.ShardID)
		case common.ShardTypeRemoteIStore:
			if err := s.nodeHost.StartConcurrentReplica(
				s.config.ClusterMembers,
				false,
				dstore.CreateStateMachineFactory(s.dbFactory),
				s.config.ToDragonboatConfig(shardConfig.ShardID),
			); err != nil {
				return errors.Wrapf(err, "failed to start shard %d", shardConfig.ShardID)
			}
			st = dstore.NewDistributedStore(s.nodeHost, shardConfig.ShardID, timeout)
			Logger.Infof("started raft replica for shard %d", shardConfig.ShardID)
		default:
			return errors.Newf("invalid shard type: %s", shardConfig.Type)
		}

		if _, loaded := s.shards.LoadOrStore(shardConfig.ShardID, serverShard{
			Store:   st,
			Adapter: NewIStoreServerAdapter(),
		}); loaded {
			return errors.Newf("shard %d configured twice", shardConfig.ShardID)
		}
	}

	s.transport.RegisterHandler(s.handle)
	return nil
}

// Serve initializes the loggers and shards and starts the transport layer.
// It blocks until the transport stops.
func (s *rpcServer) Serve() error {
	if err := common.InitLoggers(s.config); err != nil {
		return err
	}
	Logger.Infof("starting rbKV server%s", s.config.String())

	if err := s.setupShards(); err != nil {
		return err
	}
	defer s.close()

	Logger.Infof("rbKV setup completed successfully")
	return s.transport.Listen(s.config)
}

// close stops the raft node host, if one was started.
func (s *rpcServer) close() {
	if s.nodeHost != nil {
		s.nodeHost.Close()
	}
}
