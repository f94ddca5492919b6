package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/ValentinKolb/rbKV/lib/db/engines/oak"
	"github.com/ValentinKolb/rbKV/lib/store"
	"github.com/ValentinKolb/rbKV/lib/store/lstore"
	"github.com/ValentinKolb/rbKV/rpc/client"
	"github.com/ValentinKolb/rbKV/rpc/common"
	"github.com/ValentinKolb/rbKV/rpc/serializer"
	"github.com/ValentinKolb/rbKV/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/require"
)

// loopbackTransport connects a client directly to the handler of a server
type loopbackTransport struct {
	handler transport.ServerHandleFunc
}

func (l *loopbackTransport) RegisterHandler(handler transport.ServerHandleFunc) { l.handler = handler }
func (l *loopbackTransport) Listen(common.ServerConfig) error                    { return nil }
func (l *loopbackTransport) Connect(common.ClientConfig) error                   { return nil }
func (l *loopbackTransport) Close() error                                        { return nil }

func (l *loopbackTransport) Send(shardId uint64, req []byte) ([]byte, error) {
	return l.handler(shardId, req), nil
}

func newTestServer(t *testing.T, s serializer.IRPCSerializer) *loopbackTransport {
	t.Helper()
	lt := &loopbackTransport{}
	srv := NewRPCServer(common.ServerConfig{
		Shards: []common.ServerShard{
			{ShardID: 1, Type: common.ShardTypeLocalIStore},
			{ShardID: 2, Type: common.ShardTypeLocalIStore},
		},
		GCInterval: time.Hour,
		LogLevel:   "info",
	}, lt, s)
	require.NoError(t, srv.setupShards())
	return lt
}

func newTestClient(t *testing.T, lt *loopbackTransport, shardId uint64, s serializer.IRPCSerializer) store.IStore {
	t.Helper()
	st, err := client.NewRPCStore(shardId, common.ClientConfig{}, lt, s)
	require.NoError(t, err)
	return st
}

func TestServerOrderedOperations(t *testing.T) {
	for name, s := range map[string]serializer.IRPCSerializer{
		"binary": serializer.NewBinarySerializer(),
		"json":   serializer.NewJSONSerializer(),
		"gob":    serializer.NewGOBSerializer(),
	} {
		t.Run(name, func(t *testing.T) {
			lt := newTestServer(t, s)
			st := newTestClient(t, lt, 1, s)

			for i := 9; i >= 0; i-- {
				require.NoError(t, st.Set(fmt.Sprintf("user:%d", i), []byte{byte('a' + i)}))
			}
			require.NoError(t, st.Set("item:1", []byte("x")))

			entries, err := st.Range("user:", "user;", 3, false)
			require.NoError(t, err)
			require.Len(t, entries, 3)
			require.Equal(t, "user:0", entries[0].Key)
			require.Equal(t, []byte("a"), entries[0].Value)
			require.Equal(t, "user:2", entries[2].Key)

			entries, err = st.Range("", "", 2, true)
			require.NoError(t, err)
			require.Equal(t, "user:9", entries[0].Key)
			require.Equal(t, "user:8", entries[1].Key)

			count, err := st.Count("user:", "user;")
			require.NoError(t, err)
			require.Equal(t, uint64(10), count)

			entry, ok, err := st.Seek("j")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "user:0", entry.Key)

			_, ok, err = st.Seek("zzz")
			require.NoError(t, err)
			require.False(t, ok)

			removed, err := st.DeleteRange("user:3", "user:7")
			require.NoError(t, err)
			require.Equal(t, uint64(4), removed)

			count, err = st.Count("", "")
			require.NoError(t, err)
			require.Equal(t, uint64(7), count)

			ok, err = st.Has("user:5")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestServerShardsAreIsolated(t *testing.T) {
	s := serializer.NewBinarySerializer()
	lt := newTestServer(t, s)
	one := newTestClient(t, lt, 1, s)
	two := newTestClient(t, lt, 2, s)

	require.NoError(t, one.Set("k", []byte("v")))

	_, ok, err := two.Get("k")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = newTestClient(t, lt, 3, s).Has("k")
	require.ErrorContains(t, err, "shard 3 not found")
}

func TestServerRejectsGarbage(t *testing.T) {
	s := serializer.NewBinarySerializer()
	lt := newTestServer(t, s)

	var resp common.Message
	require.NoError(t, s.Deserialize(lt.Send(1, []byte{1}), &resp))
	require.Equal(t, common.MsgTError, resp.MsgType)
	require.Contains(t, resp.Err, "failed to deserialize request")
}

func TestServerCountsRequests(t *testing.T) {
	s := serializer.NewBinarySerializer()
	lt := newTestServer(t, s)
	st := newTestClient(t, lt, 2, s)

	counter := metrics.GetOrCreateCounter(`rbkv_requests_total{shard="2",type="count"}`)
	before := counter.Get()
	for i := 0; i < 3; i++ {
		_, err := st.Count("", "")
		require.NoError(t, err)
	}
	require.Equal(t, before+3, counter.Get())
}

func TestServerRejectsInvalidConfig(t *testing.T) {
	srv := NewRPCServer(common.ServerConfig{
		Shards: []common.ServerShard{{ShardID: 1, Type: common.ShardTypeRemoteIStore}},
	}, &loopbackTransport{}, serializer.NewBinarySerializer())
	require.Error(t, srv.setupShards())
}

func TestAdapterRejectsInvalidRequests(t *testing.T) {
	adapter := NewIStoreServerAdapter()
	st := lstore.NewLocalStore(func() db.KVDB { return oak.NewOakDB(nil) })

	resp := adapter.Handle(&common.Message{MsgType: common.MsgTCustom}, st)
	require.Equal(t, common.MsgTError, resp.MsgType)
	require.Contains(t, resp.Err, "Unsupported message type: custom")

	resp = adapter.Handle(common.NewGetRequest("k"), nil)
	require.Equal(t, common.MsgTError, resp.MsgType)
}
