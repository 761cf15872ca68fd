// Command tabrun runs a batch of simulation episodes across a worker pool
// and writes the assembled result table.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tabrun/tabrun/pkg/config"
	"github.com/tabrun/tabrun/pkg/export"
	"github.com/tabrun/tabrun/pkg/logger"
	"github.com/tabrun/tabrun/pkg/runner"
	"github.com/tabrun/tabrun/pkg/sim"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "tabrun",
		Short: "tabrun - batch task runner with columnar result tables",
		Long: `tabrun executes a batch of independent simulation tasks across a pool of
workers and assembles the per-task results into a single columnar table,
preserving input order regardless of completion order.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tabrun v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newConfigCmd())
	root.AddCommand(newRunCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}

	var out string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			rendered, err := config.RenderDefault()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, rendered, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&out, "output", "o", "tabrun.yaml", "Destination path")
	configCmd.AddCommand(initCmd)

	return configCmd
}

func newRunCmd() *cobra.Command {
	var (
		configFile  string
		parallelism int
		episodes    int
		horizon     int
		seed        int64
		policies    []string
		output      string
		format      string
		compress    bool
		noProgress  bool
		logLevel    string
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch of episodes and export the result table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			// Flags override file and environment settings
			flags := cmd.Flags()
			if flags.Changed("parallelism") {
				cfg.Run.Parallelism = parallelism
			}
			if flags.Changed("episodes") {
				cfg.Sim.Episodes = episodes
			}
			if flags.Changed("horizon") {
				cfg.Sim.Horizon = horizon
			}
			if flags.Changed("seed") {
				cfg.Sim.Seed = seed
			}
			if flags.Changed("policies") {
				cfg.Sim.Policies = policies
			}
			if flags.Changed("output") {
				cfg.Export.Path = output
			}
			if flags.Changed("format") {
				cfg.Export.Format = format
			}
			if flags.Changed("compress") {
				cfg.Export.Compress = compress
			}
			if noProgress {
				cfg.Run.Progress = false
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runBatch(cmd.Context(), cfg)
		},
	}

	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./tabrun.yaml if present)")
	runCmd.Flags().IntVarP(&parallelism, "parallelism", "p", 1, "Number of concurrent workers")
	runCmd.Flags().IntVar(&episodes, "episodes", 100, "Episodes per policy")
	runCmd.Flags().IntVar(&horizon, "horizon", 1000, "Step cap per episode")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Base RNG seed")
	runCmd.Flags().StringSliceVar(&policies, "policies", nil, "Policies to evaluate")
	runCmd.Flags().StringVarP(&output, "output", "o", "results.csv", "Export path")
	runCmd.Flags().StringVarP(&format, "format", "f", "csv", "Export format (csv, json, arrow)")
	runCmd.Flags().BoolVar(&compress, "compress", false, "Gzip the export (csv, json)")
	runCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress logging")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")

	return runCmd
}

func runBatch(ctx context.Context, cfg *config.Config) error {
	if err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
		Development: cfg.Log.Development,
	}); err != nil {
		return err
	}
	defer logger.Sync()

	log := logger.Get()
	if ctx == nil {
		ctx = context.Background()
	}

	tasks := sim.Batch(sim.BatchConfig{
		Policies: cfg.Sim.Policies,
		Episodes: cfg.Sim.Episodes,
		Horizon:  cfg.Sim.Horizon,
		Discount: cfg.Sim.Discount,
		Seed:     cfg.Sim.Seed,
	})

	log.Info("starting batch",
		zap.Int("tasks", len(tasks)),
		zap.Int("parallelism", cfg.Run.Parallelism),
		zap.Strings("policies", cfg.Sim.Policies),
		zap.Int64("seed", cfg.Sim.Seed))

	start := time.Now()
	tbl, err := runner.Run(ctx, tasks, runner.Config{
		Parallelism:   cfg.Run.Parallelism,
		Progress:      cfg.Run.Progress,
		ProgressEvery: cfg.Run.ProgressEvery,
		Process:       sim.ProcessEpisode,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	if err := export.WriteFile(cfg.Export.Path, tbl, export.Options{
		Format:   export.Format(cfg.Export.Format),
		Compress: cfg.Export.Compress,
	}); err != nil {
		return err
	}

	log.Info("table exported",
		zap.String("path", cfg.Export.Path),
		zap.String("format", cfg.Export.Format),
		zap.Int("rows", tbl.NumRows()),
		zap.Int("columns", tbl.NumCols()),
		zap.Duration("elapsed", time.Since(start)))

	for _, fs := range tbl.Schema() {
		fmt.Printf("  %-12s %s\n", fs.Name, fs.Type)
	}
	fmt.Printf("%d rows -> %s\n", tbl.NumRows(), cfg.Export.Path)
	return nil
}
