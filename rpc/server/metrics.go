package server

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/rbKV/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// requestMetrics holds the per message type metrics of the server.
// Metrics are registered in the default VictoriaMetrics set, which the http
// transport exposes on GET /metrics.
type requestMetrics struct {
	requests *metrics.Counter
	errors   *metrics.Counter
	duration *metrics.Histogram
}

// metricsFor returns the metrics of a shard and message type, creating them on first use.
func metricsFor(shardId uint64, msgType common.MessageType) requestMetrics {
	labels := fmt.Sprintf(`{shard="%d",type=%q}`, shardId, msgType.String())
	return requestMetrics{
		requests: metrics.GetOrCreateCounter("rbkv_requests_total" + labels),
		errors:   metrics.GetOrCreateCounter("rbkv_request_errors_total" + labels),
		duration: metrics.GetOrCreateHistogram("rbkv_request_duration_seconds" + labels),
	}
}

// observe records a finished request.
func (m requestMetrics) observe(start time.Time, resp *common.Message) {
	m.requests.Inc()
	if resp.MsgType == common.MsgTError || resp.Err != "" {
		m.errors.Inc()
	}
	m.duration.UpdateDuration(start)
}

// unknownShardRequests counts requests for shards that are not served by this node
var unknownShardRequests = metrics.NewCounter("rbkv_unknown_shard_requests_total")
