package common

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/config"
)

// --------------------------------------------------------------------------
// helper functions for to interface with Dragonboat (for the server config)
// --------------------------------------------------------------------------

// Dragonboat uses RTT (Round Trip Time) to determine the timing of elections and heartbeats.
// These default values are selected according to the RAFT Paper
const (
	electionRTTFactor  = 10
	heartbeatRTTFactor = 1
)

// ToDragonboatConfig converts the ServerConfig to Dragonboat Config
func (c *ServerConfig) ToDragonboatConfig(shardId uint64) config.Config {
	return config.Config{
		ReplicaID:          c.ReplicaID,
		ShardID:            shardId,
		ElectionRTT:        electionRTTFactor,
		HeartbeatRTT:       heartbeatRTTFactor,
		CheckQuorum:        true,
		SnapshotEntries:    c.SnapshotEntries,
		CompactionOverhead: c.CompactionOverhead,
		MaxInMemLogSize:    0,
	}
}

// ToNodeHostConfig creates a NodeHostConfig for Dragonboat
func (c *ServerConfig) ToNodeHostConfig() config.NodeHostConfig {
	return config.NodeHostConfig{
		WALDir:         c.DataDir,
		NodeHostDir:    c.DataDir,
		RTTMillisecond: c.RTTMillisecond,
		RaftAddress:    c.ClusterMembers[c.ReplicaID],
	}
}

// ReplicaIDFromName maps a human readable replica name (e.g. 'node-1') to the numeric
// replica id used by dragonboat. Zero is reserved by dragonboat and never returned.
func ReplicaIDFromName(name string) uint64 {
	if id := xxhash.Sum64String(name); id != 0 {
		return id
	}
	return 1
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

type ServerShardType string

const (
	ShardTypeLocalIStore  ServerShardType = "lstore" // single node store
	ShardTypeRemoteIStore ServerShardType = "dstore" // raft replicated store
)

type ServerShard struct {
	// ShardID is the ID of the shard
	ShardID uint64
	// Type selects the store implementation for the shard
	Type ServerShardType
}

// ParseShards parses a comma-separated list of ID=TYPE pairs, e.g. "100=lstore,200=dstore".
func ParseShards(s string) ([]ServerShard, error) {
	var shards []ServerShard
	seen := make(map[uint64]bool)
	for _, shardConfig := range strings.Split(s, ",") {
		id, typ, ok := strings.Cut(shardConfig, "=")
		if !ok {
			return nil, errors.Newf("invalid shard format: %s (expected ID=TYPE)", shardConfig)
		}

		shardID, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid shard ID %s", id)
		}
		if seen[shardID] {
			return nil, errors.Newf("duplicate shard ID %d", shardID)
		}
		seen[shardID] = true

		shardType := ServerShardType(strings.TrimSpace(typ))
		if shardType != ShardTypeLocalIStore && shardType != ShardTypeRemoteIStore {
			return nil, errors.Newf("invalid shard type: %s (expected one of: %s, %s)",
				shardType, ShardTypeLocalIStore, ShardTypeRemoteIStore)
		}

		shards = append(shards, ServerShard{ShardID: shardID, Type: shardType})
	}
	return shards, nil
}

// ParseClusterMembers parses a comma-separated list of NAME=ADDRESS pairs and
// keys the addresses by ReplicaIDFromName(NAME).
func ParseClusterMembers(s string) (map[uint64]string, error) {
	members := make(map[uint64]string)
	for _, member := range strings.Split(s, ",") {
		name, addr, ok := strings.Cut(member, "=")
		if !ok || name == "" || addr == "" {
			return nil, errors.Newf("invalid cluster member format: %s (expected NAME=ADDRESS)", member)
		}
		id := ReplicaIDFromName(strings.TrimSpace(name))
		if _, dup := members[id]; dup {
			return nil, errors.Newf("duplicate cluster member %s", name)
		}
		members[id] = strings.TrimSpace(addr)
	}
	return members, nil
}

// ServerConfig holds all configuration parameters of a server.
type ServerConfig struct {
	// the shards served by this node
	Shards []ServerShard

	// Dragonboat parameters
	RTTMillisecond     uint64
	SnapshotEntries    uint64
	CompactionOverhead uint64
	DataDir            string
	ReplicaID          uint64
	ClusterMembers     map[uint64]string

	// remote store parameters
	TimeoutSecond int64

	// oak engine garbage collection period
	GCInterval time.Duration

	// HTTP api settings
	Endpoint string

	// Logging configuration
	LogLevel string
}

// HasRemoteShard checks if the configuration contains any remote shards
func (c *ServerConfig) HasRemoteShard() bool {
	for _, shard := range c.Shards {
		if shard.Type == ShardTypeRemoteIStore {
			return true
		}
	}
	return false
}

// Validate checks the cluster settings, which are only required if a remote shard is served.
func (c *ServerConfig) Validate() error {
	if len(c.Shards) == 0 {
		return errors.New("no shards configured")
	}
	if !c.HasRemoteShard() {
		return nil
	}
	if c.ReplicaID == 0 {
		return errors.New("replica id is required for remote shards")
	}
	if len(c.ClusterMembers) == 0 {
		return errors.New("cluster members are required for remote shards")
	}
	if _, ok := c.ClusterMembers[c.ReplicaID]; !ok {
		return errors.Newf("no address found for replica ID %d in cluster members", c.ReplicaID)
	}
	return nil
}

// configWriter renders aligned "name: value" sections for the String methods.
type configWriter struct {
	sb strings.Builder
}

func (w *configWriter) section(title string) {
	w.sb.WriteString("\n")
	w.sb.WriteString(strings.ToUpper(title) + "\n")
}

func (w *configWriter) field(name, value string) {
	w.sb.WriteString(fmt.Sprintf("  %-24s: %s\n", name, value))
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var w configWriter

	w.section("RPC Server")
	w.field("Endpoint", c.Endpoint)
	w.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	w.section("Engine")
	w.field("GC Interval", c.GCInterval.String())

	w.section("Logging")
	w.field("Log Level", c.LogLevel)

	w.section("Shards")
	for _, shard := range c.Shards {
		w.field(strconv.FormatUint(shard.ShardID, 10), string(shard.Type))
	}

	if c.HasRemoteShard() {
		w.section("Node Identity")
		w.field("RAFT Address", c.ClusterMembers[c.ReplicaID])
		w.field("Replica ID", strconv.FormatUint(c.ReplicaID, 10))

		w.section("RAFT Parameters")
		w.field("Round Trip Time", fmt.Sprintf("%d ms", c.RTTMillisecond))
		w.field("Election RTT", fmt.Sprintf("%d ms", c.RTTMillisecond*electionRTTFactor))
		w.field("Heartbeat RTT", fmt.Sprintf("%d ms", c.RTTMillisecond*heartbeatRTTFactor))
		w.field("Snapshot Entries", strconv.FormatUint(c.SnapshotEntries, 10))
		w.field("Compaction Overhead", strconv.FormatUint(c.CompactionOverhead, 10))
		w.field("Data Directory", c.DataDir)

		w.section("Cluster Members")
		ids := make([]uint64, 0, len(c.ClusterMembers))
		for id := range c.ClusterMembers {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			w.field(strconv.FormatUint(id, 10), c.ClusterMembers[id])
		}
	}
	return w.sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var w configWriter

	w.section("Client Configuration")
	w.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	w.field("Retry Count", strconv.Itoa(c.RetryCount))
	w.field("Connections Per Endpoint", strconv.Itoa(max(1, c.ConnectionsPerEndpoint)))

	w.section("Endpoints")
	for i, endpoint := range c.Endpoints {
		w.field(strconv.Itoa(i), endpoint)
	}

	return w.sb.String()
}
