package kv

import (
	"github.com/ValentinKolb/rbKV/cmd/util"
	"github.com/ValentinKolb/rbKV/lib/store"
	"github.com/ValentinKolb/rbKV/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcStore store.IStore

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform key-value store operations",
		PersistentPreRunE: setupKVClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common RPC flags to the KV command
	util.SetupRPCClientFlags(KeyValueCommands)

	KeyValueCommands.PersistentFlags().Int("shard", 100, util.WrapString("ID of the shard to connect to"))

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(setECmd)
	KeyValueCommands.AddCommand(setEIfUnsetCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(exprCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(rangeCmd)
	KeyValueCommands.AddCommand(countCmd)
	KeyValueCommands.AddCommand(seekCmd)
	KeyValueCommands.AddCommand(delRangeCmd)
	KeyValueCommands.AddCommand(perfTestCmd)

	rangeCmd.Flags().Int("limit", 0, util.WrapString("Maximum number of entries to print (0 = no limit)"))
	rangeCmd.Flags().Bool("reverse", false, util.WrapString("Walk the range from the largest key downwards"))
}

// setupKVClient initializes the RPC store client
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	rpcStore, err = client.NewRPCStore(
		util.GetShardID(),
		*util.GetClientConfig(),
		util.GetClientTransport(),
		s,
	)

	return err
}
