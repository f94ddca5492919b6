package kv

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// parseDeadlines parses the [expireIn] [deleteIn] arguments shared by setE and setEIfUnset
func parseDeadlines(expireArg, deleteArg string) (expireIn, deleteIn uint64, err error) {
	expireIn, err = strconv.ParseUint(expireArg, 10, 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "expireIn must be a number")
	}
	deleteIn, err = strconv.ParseUint(deleteArg, 10, 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "deleteIn must be a number")
	}
	return expireIn, deleteIn, nil
}

// rangeBounds returns the start and the optional end argument of a range command
func rangeBounds(args []string) (start, end string) {
	start = args[0]
	if len(args) > 1 {
		end = args[1]
	}
	return start, end
}

// printPairs writes one "key=value" line per entry
func printPairs(w io.Writer, pairs []db.KVPair) {
	for _, p := range pairs {
		fmt.Fprintf(w, "%s=%s\n", p.Key, p.Value)
	}
}

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Set(args[0], []byte(args[1])); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	setECmd = &cobra.Command{
		Use:   "setE [key] [value] [expireIn] [deleteIn]",
		Short: "Sets the value for a key with expiration and deletion time",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			expireIn, deleteIn, err := parseDeadlines(args[2], args[3])
			if err != nil {
				return err
			}
			if err := rpcStore.SetE(args[0], []byte(args[1]), expireIn, deleteIn); err != nil {
				return err
			}
			fmt.Println("setE successfully")
			return nil
		},
	}
	setEIfUnsetCmd = &cobra.Command{
		Use:   "setEIfUnset [key] [value] [expireIn] [deleteIn]",
		Short: "Sets the value for a key with expiration and deletion time if the key is not already set",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			expireIn, deleteIn, err := parseDeadlines(args[2], args[3])
			if err != nil {
				return err
			}
			if err := rpcStore.SetEIfUnset(args[0], []byte(args[1]), expireIn, deleteIn); err != nil {
				return err
			}
			fmt.Println("setEIfUnset successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, ok, err := rpcStore.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v, resp=%s\n", args[0], ok, resp)
			return nil
		},
	}
	exprCmd = &cobra.Command{
		Use:   "expr [key]",
		Short: "Expires the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Expire(args[0]); err != nil {
				return err
			}
			fmt.Println("expire successfully")
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Delete(args[0]); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := rpcStore.Has(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", args[0], found)
			return nil
		},
	}
	rangeCmd = &cobra.Command{
		Use:   "range [start] [end]",
		Short: "Lists the entries with start <= key < end in key order",
		Long:  `Lists the entries with start <= key < end in key order. An empty start ("") begins at the smallest key, a missing or empty end scans to the largest key.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			reverse, _ := cmd.Flags().GetBool("reverse")
			start, end := rangeBounds(args)

			pairs, err := rpcStore.Range(start, end, limit, reverse)
			if err != nil {
				return err
			}
			printPairs(cmd.OutOrStdout(), pairs)
			return nil
		},
	}
	countCmd = &cobra.Command{
		Use:   "count [start] [end]",
		Short: "Counts the live entries with start <= key < end",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rpcStore.Count(rangeBounds(args))
			if err != nil {
				return err
			}
			fmt.Printf("count=%d\n", n)
			return nil
		},
	}
	seekCmd = &cobra.Command{
		Use:   "seek [key]",
		Short: "Finds the first entry whose key is not less than the given key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, ok, err := rpcStore.Seek(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("found=%t, key=%s, value=%s\n", ok, pair.Key, pair.Value)
			return nil
		},
	}
	delRangeCmd = &cobra.Command{
		Use:   "delrange [start] [end]",
		Short: "Deletes every entry with start <= key < end",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rpcStore.DeleteRange(rangeBounds(args))
			if err != nil {
				return err
			}
			fmt.Printf("deleted=%d\n", n)
			return nil
		},
	}
)
