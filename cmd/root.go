package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/rbKV/cmd/kv"
	"github.com/ValentinKolb/rbKV/cmd/serve"
	"github.com/ValentinKolb/rbKV/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "rbkv",
		Short: "ordered key-value store",
		Long: fmt.Sprintf(`rbKV (v%s)

An ordered key-value store written in Go. Keys are kept in a red-black
tree, so besides point operations the store answers range scans, counts
and seeks. Shards can run on a single node or be replicated with RAFT.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rbKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rbKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
