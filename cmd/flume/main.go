package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/go-flume/flume/cluster"
	"github.com/go-flume/flume/decode"
	"github.com/go-flume/flume/logging"
	"github.com/go-flume/flume/report"
	"github.com/go-flume/flume/transport/amqpgroup"
)

var (
	dataPath   string
	outputDir  string
	numWorkers int
	segmentMB  int
	topK       int
	maxScans   int

	transportKind string
	amqpURL       string
	runID         string
	rank          int

	timePath    string
	entityID    string
	entityLabel string
	metricPath  string
)

var rootCmd = &cobra.Command{
	Use:   "flume",
	Short: "Shard a newline-delimited record file across parallel workers and aggregate it",
	Long: `flume splits one large newline-delimited JSON file into byte-range shards,
aggregates each shard on its own worker, merges the partial tables into
exact global sums and reports the top-K extremal time buckets and entities.

With --transport local, all workers run as goroutines in this process. With
--transport amqp, this process is a single worker of a multi-process group
coordinating through RabbitMQ: start one process per rank with the same
--run-id and --workers.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&dataPath, "data", "d", "", "path to the input NDJSON file")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "./output", "output directory for result files")
	rootCmd.Flags().IntVarP(&numWorkers, "workers", "w", runtime.NumCPU(), "number of workers in the group")
	rootCmd.Flags().IntVar(&segmentMB, "segment-mb", 100, "per-segment byte cap in MiB while scanning")
	rootCmd.Flags().IntVar(&topK, "top", 5, "number of extremal entries reported per table")
	rootCmd.Flags().IntVar(&maxScans, "max-concurrent-scans", 0, "bound on concurrently scanning local workers (0 = unbounded)")

	rootCmd.Flags().StringVar(&transportKind, "transport", "local", "worker transport: local or amqp")
	rootCmd.Flags().StringVar(&amqpURL, "amqp-url", "", "broker URL for --transport amqp")
	rootCmd.Flags().StringVar(&runID, "run-id", "", "shared run identifier for --transport amqp (defaults to a fresh UUID)")
	rootCmd.Flags().IntVar(&rank, "rank", 0, "this process's rank for --transport amqp")

	rootCmd.Flags().StringVar(&timePath, "time-path", "", "gjson path to the record timestamp (default created_at)")
	rootCmd.Flags().StringVar(&entityID, "entity-id-path", "", "gjson path to the entity id (default account.id)")
	rootCmd.Flags().StringVar(&entityLabel, "entity-label-path", "", "gjson path to the entity label (default account.username)")
	rootCmd.Flags().StringVar(&metricPath, "metric-path", "", "gjson path to the metric (default sentiment)")

	rootCmd.MarkFlagRequired("data")
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.CreateLogger("flume", logging.InfoLevel)
	opts := &cluster.NodeOptions{
		DataPath:        dataPath,
		NumWorkers:      numWorkers,
		MaxSegmentBytes: segmentMB * 1024 * 1024,
		TopK:            topK,
		Decoder: decode.CreateDecoder(&decode.Conf{
			TimePath:        timePath,
			EntityIDPath:    entityID,
			EntityLabelPath: entityLabel,
			MetricPath:      metricPath,
		}),
		Log: log,
	}

	var result *cluster.Result
	switch transportKind {
	case "local":
		log.Infof("running with %d workers", numWorkers)
		res, err := cluster.RunLocal(ctx, opts, maxScans)
		if err != nil {
			return err
		}
		result = res
	case "amqp":
		if len(runID) == 0 {
			runID = uuid.NewString()
			log.Warnf("generated run id %s: every member of the group must be started with --run-id %s", runID, runID)
		}
		group, err := amqpgroup.Join(&amqpgroup.Conf{
			URL:   amqpURL,
			RunID: runID,
			Rank:  rank,
			Size:  numWorkers,
		})
		if err != nil {
			return err
		}
		defer group.Close()
		node, err := cluster.CreateNode(group, opts)
		if err != nil {
			return err
		}
		result, err = node.Run(ctx)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown transport %q: expected local or amqp", transportKind)
	}

	// only the merge point holds a result
	if result == nil {
		return nil
	}
	return report.CreateWriter(os.Stdout, outputDir, "").Write(result)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
