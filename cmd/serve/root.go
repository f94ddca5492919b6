package serve

import (
	cmdUtil "github.com/ValentinKolb/rbKV/cmd/util"
	"github.com/ValentinKolb/rbKV/rpc/common"
	"github.com/ValentinKolb/rbKV/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the rbKV server",
		Long:    `Start the rbKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is RBKV_<flag> (e.g. RBKV_GC_INTERVAL=5s)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "shards"
	ServeCmd.PersistentFlags().String(key, "100=lstore", cmdUtil.WrapString("Comma-separated list of shards to serve. Format: ID=TYPE where TYPE is one of: dstore, lstore"))

	key = "rtt-millisecond"
	ServeCmd.PersistentFlags().Int(key, 100, cmdUtil.WrapString("(dstore) RTTMillisecond defines the average Round Trip Time (RTT) in milliseconds between two NodeHost instances. \nOther raft configuration parameters (ElectionRTT=value/10, HeartbeatRTT=value/100) are derived from this value"))

	key = "snapshot-entries"
	ServeCmd.PersistentFlags().Int(key, 10, cmdUtil.WrapString("(dstore) SnapshotEntries defines how often the state machine should be snapshotted automatically. It is defined in terms of the number of applied Raft log entries. SnapshotEntries can be set to 0 to disable such automatic snapshotting (not recommended)"))

	key = "compaction-overhead"
	ServeCmd.PersistentFlags().Int(key, 5, cmdUtil.WrapString("(dstore) CompactionOverhead defines the number of snapshots that should be retained in the system. Recommended value is about 1/2 of SnapshotEntries"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "data", cmdUtil.WrapString("(dstore) DataDir is the directory used for storing the snapshots"))

	key = "replica-id"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(dstore) ReplicaID is the unique name of this NodeHost instance (e.g. 'node-1')"))

	key = "cluster-members"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(dstore) ClusterMembers is a comma-separated list of NodeHost addresses in the format 'node-1=localhost:63001,node-2=localhost:63002,...'"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("(dstore) Timeout in seconds"))

	key = "gc-interval"
	ServeCmd.PersistentFlags().Duration(key, 0, cmdUtil.WrapString("How often the storage engine removes expired and deleted entries (0 = engine default)"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the HTTP API will listen (e.g. localhost:8080)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	conf, err := readConfig()
	if err != nil {
		return err
	}
	*serveCmdConfig = *conf
	return nil
}

// readConfig builds and validates the server configuration from viper
func readConfig() (*common.ServerConfig, error) {
	shards, err := common.ParseShards(viper.GetString("shards"))
	if err != nil {
		return nil, err
	}

	conf := &common.ServerConfig{
		Shards:             shards,
		RTTMillisecond:     viper.GetUint64("rtt-millisecond"),
		SnapshotEntries:    viper.GetUint64("snapshot-entries"),
		CompactionOverhead: viper.GetUint64("compaction-overhead"),
		DataDir:            viper.GetString("data-dir"),
		TimeoutSecond:      viper.GetInt64("timeout"),
		GCInterval:         viper.GetDuration("gc-interval"),
		Endpoint:           viper.GetString("endpoint"),
		LogLevel:           viper.GetString("log-level"),
	}

	if id := viper.GetString("replica-id"); id != "" {
		conf.ReplicaID = common.ReplicaIDFromName(id)
	}

	if members := viper.GetString("cluster-members"); members != "" {
		if conf.ClusterMembers, err = common.ParseClusterMembers(members); err != nil {
			return nil, err
		}
	}

	return conf, conf.Validate()
}

// run starts the rbKV server
func run(_ *cobra.Command, _ []string) error {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	return server.NewRPCServer(
		*serveCmdConfig,
		cmdUtil.GetServerTransport(),
		s,
	).Serve()
}
