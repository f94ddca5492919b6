package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/rbKV/cmd/util"
	"github.com/ValentinKolb/rbKV/rpc/common"
	"github.com/cockroachdb/errors"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:   "perf",
		Short: "Performance testing tool for rbKV servers",
		Long: `Runs a set of parallel benchmarks against the configured shard and prints
the mean latency, the latency percentiles and the throughput of every operation.
All keys used by the benchmarks start with "` + perfKeyPrefix + `" and are removed afterwards.`,
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)

	perfPercentiles = []float64{0.5, 0.95, 0.99}
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// perfBenchmark is a single benchmarked operation. op receives the key prefix of the
// benchmark, a key out of the prepared key set and the per-goroutine operation counter.
type perfBenchmark struct {
	name    string
	prepare bool // write all keys before the benchmark starts
	op      func(prefix, key string, i int) error
}

// perfResult combines the result of testing.Benchmark with the latency distribution
// recorded by a go-metrics timer
type perfResult struct {
	result  testing.BenchmarkResult
	timer   gometrics.Timer
	skipped bool
}

func perfBenchmarks() []perfBenchmark {
	largeValue := make([]byte, perfLargeValueSizeKB*1024)

	return []perfBenchmark{
		{name: "set", op: func(_, key string, _ int) error {
			return rpcStore.Set(key, []byte("test"))
		}},
		{name: "set-large", op: func(_, key string, _ int) error {
			return rpcStore.Set(key, largeValue)
		}},
		{name: "get", prepare: true, op: func(_, key string, _ int) error {
			_, _, err := rpcStore.Get(key)
			return err
		}},
		{name: "delete", prepare: true, op: func(_, key string, _ int) error {
			return rpcStore.Delete(key)
		}},
		{name: "has", prepare: true, op: func(_, key string, _ int) error {
			_, err := rpcStore.Has(key)
			return err
		}},
		{name: "has-not", op: func(prefix, _ string, i int) error {
			_, err := rpcStore.Has(fmt.Sprintf("%s/missing-%d", prefix, i%100))
			return err
		}},
		{name: "range", prepare: true, op: func(_, key string, _ int) error {
			_, err := rpcStore.Range(key, "", 10, false)
			return err
		}},
		{name: "range-reverse", prepare: true, op: func(prefix, key string, _ int) error {
			_, err := rpcStore.Range(prefix, key, 10, true)
			return err
		}},
		{name: "count", prepare: true, op: func(prefix, _ string, _ int) error {
			_, err := rpcStore.Count(prefix, prefix+"~")
			return err
		}},
		{name: "seek", prepare: true, op: func(_, key string, _ int) error {
			_, _, err := rpcStore.Seek(key)
			return err
		}},
		{name: "mixed", prepare: true, op: func(_, key string, i int) error {
			var err error
			switch i % 5 {
			case 0:
				err = rpcStore.Set(key, []byte("test"))
			case 1:
				_, _, err = rpcStore.Get(key)
			case 2:
				err = rpcStore.Delete(key)
			case 3:
				_, err = rpcStore.Has(key)
			case 4:
				_, err = rpcStore.Range(key, "", 10, false)
			}
			return err
		}},
	}
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for rbKV servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	benchmarks := perfBenchmarks()
	results := make(map[string]perfResult, len(benchmarks))

	for _, bm := range benchmarks {
		res := runBenchmark(bm)
		results[bm.name] = res
		printResult(bm.name, res)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, benchmarks, results, util.GetClientConfig()); err != nil {
			return errors.Wrap(err, "failed to export results to CSV")
		}
		fmt.Println("Export complete")
	}

	return nil
}

// runBenchmark runs bm in parallel and records every operation's latency
func runBenchmark(bm perfBenchmark) perfResult {
	if shouldSkip(bm.name) {
		return perfResult{skipped: true, timer: gometrics.NilTimer{}}
	}

	timer := gometrics.NewTimer()
	prefix := fmt.Sprintf("%s-%s-", perfKeyPrefix, bm.name)

	result := testing.Benchmark(func(b *testing.B) {
		getKey, iter := getKeys(bm.name)

		if bm.prepare {
			iter(func(k string) {
				if err := rpcStore.Set(k, []byte("test")); err != nil {
					log.Printf("(%s) - error setting key: %v\n", bm.name, err)
				}
			})
		}

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if err := rpcStore.Delete(k); err != nil {
					log.Printf("(%s) - error deleting key: %v\n", bm.name, err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				err := bm.op(prefix, getKey(counter), counter)
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(%s) - error performing operation: %v\n", bm.name, err)
				}
				counter++
			}
		})
	})

	return perfResult{result: result, timer: timer}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// opsPerSecond converts the mean duration of a benchmark result into a rate
func opsPerSecond(result testing.BenchmarkResult) (nsPerOp, opsPerSec float64) {
	nsPerOp = math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	return nsPerOp, 1.0 / (nsPerOp / 1e9)
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, res perfResult) {
	if res.skipped || res.result.N == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp, opsPerSec := opsPerSecond(res.result)
	ps := res.timer.Percentiles(perfPercentiles)

	fmt.Printf("%-20s%s/op\tp50=%s p95=%s p99=%s\t%.0f ops/sec\n",
		test,
		time.Duration(nsPerOp),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(ps[2]),
		opsPerSec,
	)
}

// writeResultsToCSV writes benchmark results to a CSV file in benchmark order
func writeResultsToCSV(csvPath string, benchmarks []perfBenchmark, results map[string]perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return errors.Wrap(err, "failed to create CSV file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P95Ns", "P99Ns", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"ShardID", "Serializer",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}

	// Write test results
	for _, bm := range benchmarks {
		res := results[bm.name]

		var nsPerOp, opsPerSec float64
		ps := make([]float64, len(perfPercentiles))
		skipped := res.skipped || res.result.N == 0
		if !skipped {
			nsPerOp, opsPerSec = opsPerSecond(res.result)
			ps = res.timer.Percentiles(perfPercentiles)
		}

		row := []string{
			bm.name,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			strconv.FormatBool(skipped),
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			strconv.FormatUint(util.GetShardID(), 10),
			viper.GetString("serializer"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write row for test %s", bm.name)
		}
	}

	writer.Flush()
	return writer.Error()
}
