// Package main is the CLI entry point for capmon.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/eliteGoblin/capmon/internal/config"
	"github.com/eliteGoblin/capmon/internal/daemon"
	"github.com/eliteGoblin/capmon/internal/domain"
	"github.com/eliteGoblin/capmon/internal/infra"
	"github.com/eliteGoblin/capmon/internal/queue"
	"github.com/eliteGoblin/capmon/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "capmon",
	Short: "Capture file monitor - detects lost and stuck producer files",
	Long: `capmon watches a directory that producer applications append capture
files into. Files whose producer has stopped ("lost") are handed off for
downstream processing; files whose producer hangs while still growing the
file ("stuck") cause a restart trigger file to be written so the external
process supervisor can restart the producer.`,
	Version: Version,
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scanner daemon in the background",
	Long: `Spawns a detached capmon process running the scan loop.
Use 'capmon status' to check on it afterwards.`,
	RunE: runStart,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scanner loop in the foreground",
	Long: `Runs the scan loop until interrupted. One cycle per scan interval;
SIGINT/SIGTERM stop the loop at the next iteration boundary.`,
	RunE: runRun,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single scan cycle immediately",
	Long: `Runs exactly one scan cycle against the configured directory and
prints a summary. Useful for verifying configuration and for debugging
classification behavior.`,
	RunE: runScan,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check scanner daemon status",
	Long:  `Shows whether the scanner daemon is running and when it last completed a cycle.`,
	RunE:  runStatus,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	configPath string
	jsonOutput bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "/etc/capmon/capmon.yaml", "Path to config file")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	// Validate the config before detaching so errors surface here.
	if _, err := config.Load(configPath); err != nil {
		return err
	}

	pm := infra.NewProcessManager()
	registry := infra.NewFileRegistry(pm)
	if alive, err := registry.IsAlive(); err == nil && alive {
		fmt.Println("capmon is already running")
		return nil
	}

	if err := daemon.StartDetached(configPath); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Println("capmon scanner daemon started")
	fmt.Println("Run 'capmon status' to check on it.")
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	// Wire the engine.
	clock := infra.NewSystemClock()
	lister := infra.NewDirLister(cfg.ScanDirectoryPath, cfg.FileExtensionToScan, logger)
	triggers := infra.NewTriggerWriter(cfg.CSVRestartDirectory)
	lostQueue := queue.NewLostFileQueue(cfg.LostQueueCapacity)

	engine := usecase.NewEngine(
		usecase.EngineConfig{
			LostTimeout:        cfg.LostTimeout(),
			StuckActiveTimeout: cfg.StuckActiveTimeout(),
		},
		clock, lister, triggers, lostQueue, logger,
	)

	pm := infra.NewProcessManager()
	registry := infra.NewFileRegistry(pm)

	scanner := daemon.NewScanner(
		daemon.ScannerConfig{ScanInterval: cfg.ScanInterval()},
		engine,
		registry,
		domain.DaemonInfo{
			PID:        pm.GetCurrentPID(),
			StartedAt:  time.Now(),
			AppVersion: Version,
		},
		logger,
	)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer lostQueue.Close()
		return scanner.Run(gctx)
	})
	g.Go(func() error {
		drainLostFiles(gctx, lostQueue, logger)
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// drainLostFiles is the binary's built-in downstream consumer: it logs
// each hand-off. A real uploader/compactor would attach to Items instead.
func drainLostFiles(ctx context.Context, q *queue.LostFileQueue, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-q.Items():
			if !ok {
				return
			}
			logger.Info("lost file ready for pickup", zap.String("path", path))
		}
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	clock := infra.NewSystemClock()
	lister := infra.NewDirLister(cfg.ScanDirectoryPath, cfg.FileExtensionToScan, logger)
	triggers := infra.NewTriggerWriter(cfg.CSVRestartDirectory)
	lostQueue := queue.NewLostFileQueue(cfg.LostQueueCapacity)

	engine := usecase.NewEngine(
		usecase.EngineConfig{
			LostTimeout:        cfg.LostTimeout(),
			StuckActiveTimeout: cfg.StuckActiveTimeout(),
		},
		clock, lister, triggers, lostQueue, logger,
	)

	fmt.Println("\n=== Running Scan Cycle ===")

	report, err := engine.RunCycle(context.Background())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Printf("Tracked files:  %d\n", report.TrackedFiles)
	fmt.Printf("Newly lost:     %d\n", len(report.NewlyLostPaths))
	for _, path := range report.NewlyLostPaths {
		fmt.Printf("  - %s\n", path)
	}
	fmt.Printf("Stuck active:   %d\n", len(report.StuckActivePaths))
	for _, path := range report.StuckActivePaths {
		fmt.Printf("  - %s\n", path)
	}
	fmt.Printf("Signaled apps:  %d\n", len(report.SignaledApps))
	for _, app := range report.SignaledApps {
		fmt.Printf("  - %s (%s)\n", app, triggers.TriggerPath(app))
	}
	if report.FailedTriggerWrites > 0 {
		fmt.Printf("Failed trigger writes: %d (see log)\n", report.FailedTriggerWrites)
	}
	fmt.Printf("Duration:       %dms\n", report.DurationMs)
	fmt.Println("==========================")

	// Note: a single cycle never reports stuck files - activity needs a
	// previous observation to compare against.
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	pm := infra.NewProcessManager()
	registry := infra.NewFileRegistry(pm)

	fmt.Println("\n=== capmon Status ===")

	entry, err := registry.GetAll()
	if err != nil {
		fmt.Println("Status: NOT RUNNING")
		fmt.Println("\nRun 'capmon start' to start the scanner daemon.")
		return nil
	}

	if pm.IsRunning(entry.PID) {
		fmt.Printf("Status: RUNNING (pid %d)\n", entry.PID)
	} else {
		fmt.Printf("Status: NOT RUNNING (stale registry entry, pid %d)\n", entry.PID)
	}

	if entry.StartedAt > 0 {
		fmt.Printf("Started: %s\n", time.Unix(entry.StartedAt, 0).Format(time.RFC3339))
	}
	if entry.LastHeartbeat > 0 {
		lastBeat := time.Unix(entry.LastHeartbeat, 0)
		fmt.Printf("Last cycle: %s ago\n", time.Since(lastBeat).Round(time.Second))
	}
	if entry.AppVersion != "" {
		fmt.Printf("Version: %s\n", entry.AppVersion)
	}

	fmt.Println("=====================")
	return nil
}

func createLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"/var/tmp/capmon.log"}
	config.ErrorOutputPaths = []string{"/var/tmp/capmon.error.log"}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		// Fallback to stdout if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("capmon %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
