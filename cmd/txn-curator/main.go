package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridata/txn-curator/internal/config"
	"github.com/veridata/txn-curator/internal/curator"
	"github.com/veridata/txn-curator/internal/generate"
	"github.com/veridata/txn-curator/internal/logging"
	"github.com/veridata/txn-curator/internal/metrics"
	"github.com/veridata/txn-curator/internal/schema"
	"github.com/veridata/txn-curator/internal/source"
	"github.com/veridata/txn-curator/internal/storage"
)

var (
	flagConfig  string
	flagRunDate string
	flagRecords int
	flagSeed    int64
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	root := &cobra.Command{
		Use:           "txn-curator",
		Short:         "Synthesize and curate daily transaction batches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&flagRunDate, "run-date", "", "run date (YYYY-MM-DD), defaults to today")

	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic raw transaction batch for the run-date",
		RunE:  runGenerate,
	}
	genCmd.Flags().IntVarP(&flagRecords, "records", "n", 0, "number of records to generate")
	genCmd.Flags().Int64Var(&flagSeed, "seed", 0, "random seed for deterministic output")

	transformCmd := &cobra.Command{
		Use:   "transform",
		Short: "Validate the raw batch and partition it into curated and quarantine",
		RunE:  runTransform,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("txn-curator %s (%s)\n", curator.Version, curator.GitSHA)
		},
	}

	root.AddCommand(genCmd, transformCmd, versionCmd)

	if err := root.Execute(); err != nil {
		log.Fatalf("[main] %v", err)
	}
}

// setup performs the shared startup sequence: config, logging, schema,
// storage, metrics. Configuration errors are fatal here, before any data is
// touched.
func setup(cmd *cobra.Command) (config.Config, *schema.Schema, storage.BatchStore, *metrics.Metrics, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, nil, nil, nil, err
	}

	logging.Setup(logging.Config{Format: cfg.Logging.Format, Level: cfg.Logging.Level})

	sch := schema.Transactions()
	if err := sch.Compile(); err != nil {
		return cfg, nil, nil, nil, fmt.Errorf("compile schema: %w", err)
	}

	store, err := storage.NewBatchStore(storage.StorageConfig{
		Backend:    cfg.Storage.Backend,
		LocalDir:   cfg.Storage.LocalDir,
		GCSBucket:  cfg.Storage.GCSBucket,
		S3Bucket:   cfg.Storage.S3Bucket,
		S3Endpoint: cfg.Storage.S3Endpoint,
		S3Region:   cfg.Storage.S3Region,
		Prefix:     cfg.Storage.Prefix,
	})
	if err != nil {
		return cfg, nil, nil, nil, fmt.Errorf("create storage: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.Init("txn_curator")
		go metrics.Serve(metrics.Config{Enabled: true, Address: cfg.Metrics.Address})
	}

	return cfg, sch, store, m, nil
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if flagRunDate != "" {
		os.Setenv("RUN_DATE", flagRunDate)
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("records") {
		cfg.Generator.Records = flagRecords
	}
	if cmd.Flags().Changed("seed") {
		cfg.Generator.Seed = flagSeed
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, sch, store, m, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	corrID := logging.GenerateCorrelationID()
	ctx := logging.WithCorrelationID(signalContext(), corrID)
	logging.RunLogger(corrID, "generate", cfg.Run.Date).Info("starting run")

	c := curator.New(cfg, sch, nil, store, m)
	defer c.Close()

	start := time.Now()
	err = c.RunGenerate(ctx, generate.New(cfg.Generator))
	observeRun(m, "generate", start, err)
	return err
}

func runTransform(cmd *cobra.Command, args []string) error {
	cfg, sch, store, m, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	src, err := source.NewBatchSource(source.SourceConfig{
		Backend:    cfg.Source.Backend,
		LocalDir:   cfg.Source.LocalDir,
		GCSBucket:  cfg.Source.GCSBucket,
		S3Bucket:   cfg.Source.S3Bucket,
		S3Endpoint: cfg.Source.S3Endpoint,
		S3Region:   cfg.Source.S3Region,
		Prefix:     cfg.Source.Prefix,
	})
	if err != nil {
		return fmt.Errorf("create source: %w", err)
	}
	defer src.Close()

	corrID := logging.GenerateCorrelationID()
	ctx := logging.WithCorrelationID(signalContext(), corrID)
	logging.RunLogger(corrID, "transform", cfg.Run.Date).Info("starting run")

	c := curator.New(cfg, sch, src, store, m)
	defer c.Close()

	start := time.Now()
	err = c.Run(ctx)
	observeRun(m, "transform", start, err)
	return err
}

// observeRun feeds run duration and failure counts into the metrics
// registry, if enabled.
func observeRun(m *metrics.Metrics, command string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ObserveRun(command, start)
	if err != nil {
		m.RunsFailed.WithLabelValues(command).Inc()
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-ch
		log.Printf("[shutdown] received signal: %v", sig)
		cancel()
	}()
	return ctx
}
