package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ValentinKolb/rbKV/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/require"
)

func newTestTransportServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := &httpServerTransport{}
	st.RegisterHandler(func(shardId uint64, req []byte) []byte {
		return append([]byte(fmt.Sprintf("%d:", shardId)), req...)
	})
	ts := httptest.NewServer(st.routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestClientServerRoundTrip(t *testing.T) {
	ts := newTestTransportServer(t)

	ct := NewHttpClientTransport()
	require.NoError(t, ct.Connect(common.ClientConfig{Endpoints: []string{ts.URL}, TimeoutSecond: 5, RetryCount: 2}))
	defer ct.Close()

	resp, err := ct.Send(42, []byte("payload"))
	require.NoError(t, err)
	require.Equal(t, []byte("42:payload"), resp)
}

func TestClientRetriesOnNextEndpoint(t *testing.T) {
	ts := newTestTransportServer(t)
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	ct := NewHttpClientTransport()
	require.NoError(t, ct.Connect(common.ClientConfig{Endpoints: []string{down.URL, ts.URL}, TimeoutSecond: 5, RetryCount: 2}))

	// whichever endpoint comes first, two attempts always reach the live one
	for i := 0; i < 4; i++ {
		resp, err := ct.Send(1, []byte("x"))
		require.NoError(t, err)
		require.Equal(t, []byte("1:x"), resp)
	}
}

func TestClientErrors(t *testing.T) {
	ct := NewHttpClientTransport()
	_, err := ct.Send(1, nil)
	require.Error(t, err, "send before connect")

	require.Error(t, ct.Connect(common.ClientConfig{}))
}

func TestServerRejectsInvalidShard(t *testing.T) {
	ts := newTestTransportServer(t)

	resp, err := http.Post(ts.URL+"/not-a-number", "application/octet-stream", bytes.NewReader(nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestTransportServer(t)
	metrics.GetOrCreateCounter("rbkv_transport_test_total").Inc()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "rbkv_transport_test_total 1")
}
