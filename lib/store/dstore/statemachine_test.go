package dstore

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/ValentinKolb/rbKV/lib/db/engines/oak"
	"github.com/ValentinKolb/rbKV/lib/store"
	"github.com/ValentinKolb/rbKV/lib/store/dstore/internal"
	"github.com/cockroachdb/errors"
	sm "github.com/lni/dragonboat/v4/statemachine"
	"github.com/stretchr/testify/require"
)

func newTestMachine(t *testing.T) *KVStateMachine {
	t.Helper()
	factory := CreateStateMachineFactory(func() db.KVDB { return oak.NewOakDB(oak.DefaultOptions()) })
	fsm := factory(1, 1).(*KVStateMachine)
	t.Cleanup(func() { _ = fsm.Close() })
	return fsm
}

func apply(t *testing.T, fsm *KVStateMachine, index uint64, cmds ...internal.Command) []sm.Entry {
	t.Helper()
	entries := make([]sm.Entry, len(cmds))
	for i, cmd := range cmds {
		entries[i] = sm.Entry{Index: index + uint64(i), Cmd: cmd.Serialize()}
	}
	out, err := fsm.Update(entries)
	require.NoError(t, err)
	return out
}

func lookup[R any](t *testing.T, fsm *KVStateMachine, q internal.Query) R {
	t.Helper()
	res, err := fsm.Lookup(q)
	require.NoError(t, err)
	casted, ok := res.(R)
	require.True(t, ok, "unexpected result type %T", res)
	return casted
}

func TestStateMachineOrderedQueries(t *testing.T) {
	fsm := newTestMachine(t)

	var cmds []internal.Command
	for _, k := range []string{"user:3", "user:1", "item:1", "user:2"} {
		cmds = append(cmds, internal.Command{Type: internal.CommandTSet, Key: k, Value: []byte(k)})
	}
	for _, e := range apply(t, fsm, 1, cmds...) {
		require.Equal(t, uint64(store.RetCSuccess), e.Result.Value)
	}

	pairs := lookup[[]db.KVPair](t, fsm, internal.Query{Type: internal.QueryTRange, Key: "user:", End: "user;"})
	require.Len(t, pairs, 3)
	require.Equal(t, "user:1", pairs[0].Key)
	require.Equal(t, "user:3", pairs[2].Key)

	pairs = lookup[[]db.KVPair](t, fsm, internal.Query{Type: internal.QueryTRange, Limit: 2, Reverse: true})
	require.Equal(t, []string{"user:3", "user:2"}, []string{pairs[0].Key, pairs[1].Key})

	require.Equal(t, uint64(4), lookup[uint64](t, fsm, internal.Query{Type: internal.QueryTCount}))

	res := lookup[internal.QueryResult](t, fsm, internal.Query{Type: internal.QueryTSeek, Key: "j"})
	require.True(t, res.Ok)
	require.Equal(t, "user:1", res.Key)
	require.True(t, bytes.Equal([]byte("user:1"), res.Value))
}

func TestStateMachineDeleteRange(t *testing.T) {
	fsm := newTestMachine(t)

	apply(t, fsm, 1,
		internal.Command{Type: internal.CommandTSet, Key: "a", Value: []byte("1")},
		internal.Command{Type: internal.CommandTSet, Key: "b", Value: []byte("2")},
		internal.Command{Type: internal.CommandTSet, Key: "c", Value: []byte("3")},
	)

	out := apply(t, fsm, 10, internal.Command{Type: internal.CommandTDeleteRange, Key: "a", End: "c"})
	require.Equal(t, uint64(store.RetCSuccess), out[0].Result.Value)
	require.Equal(t, uint64(2), binary.BigEndian.Uint64(out[0].Result.Data))

	require.Equal(t, uint64(1), lookup[uint64](t, fsm, internal.Query{Type: internal.QueryTCount}))
	require.False(t, lookup[bool](t, fsm, internal.Query{Type: internal.QueryTHas, Key: "a"}))
}

func TestStateMachineRejectsInvalidInput(t *testing.T) {
	fsm := newTestMachine(t)

	out, err := fsm.Update([]sm.Entry{
		{Index: 1, Cmd: nil},
		{Index: 2, Cmd: []byte{1, 2, 3}},
		{Index: 3, Cmd: (&internal.Command{Type: internal.CommandType(99), Key: "k"}).Serialize()},
	})
	require.NoError(t, err)
	require.Equal(t, uint64(store.RetCInvalidOperation), out[0].Result.Value)
	require.Equal(t, uint64(store.RetCInternalError), out[1].Result.Value)
	require.Equal(t, uint64(store.RetCInvalidOperation), out[2].Result.Value)

	_, err = fsm.Lookup("not a query")
	var se *store.Error
	require.True(t, errors.As(err, &se))
	require.Equal(t, store.RetCInternalError, se.Code)
}

func TestStateMachineSnapshot(t *testing.T) {
	fsm := newTestMachine(t)
	apply(t, fsm, 1,
		internal.Command{Type: internal.CommandTSet, Key: "x", Value: []byte("1")},
		internal.Command{Type: internal.CommandTSet, Key: "y", Value: []byte("2")},
	)

	var buf bytes.Buffer
	require.NoError(t, fsm.SaveSnapshot(nil, &buf, nil, nil))

	restored := newTestMachine(t)
	require.NoError(t, restored.RecoverFromSnapshot(&buf, nil, nil))
	pairs := lookup[[]db.KVPair](t, restored, internal.Query{Type: internal.QueryTRange})
	require.Len(t, pairs, 2)
	require.Equal(t, "x", pairs[0].Key)
}
