package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/slopwatch/slopwatch/internal/gate"
	"github.com/slopwatch/slopwatch/internal/monitor"
	"github.com/slopwatch/slopwatch/internal/novelty"
	"github.com/slopwatch/slopwatch/internal/storage"
	"github.com/slopwatch/slopwatch/internal/types"
)

var (
	monitorInterval string
	monitorProducer string
	monitorCategory string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the monitoring engine until interrupted",
	Long: `Start the monitoring engine: each cycle analyzes per-producer trends,
checks alert thresholds, rolls up producer profiles, and persists events to
the configured SQLite database.

Lines read from stdin are validated through the gate and fed to the engine,
so piping producer output in exercises the whole pipeline. Ctrl-C stops the
engine cleanly; on stdin EOF a final cycle flushes buffered events first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if monitorInterval != "" {
			cfg.Interval = monitorInterval
		}
		interval, err := cfg.IntervalDuration()
		if err != nil {
			return fmt.Errorf("invalid interval: %w", err)
		}
		category := types.Category(monitorCategory)
		if !category.IsValid() {
			return fmt.Errorf("invalid category: %q", monitorCategory)
		}

		store, err := storage.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = store.Close() }()

		engine := monitor.NewEngine(&monitor.EngineDeps{
			BufferCapacity:  cfg.BufferCapacity,
			AlertThresholds: cfg.Alerts,
			Sink:            store,
		})

		noveltyStore, err := buildNoveltyStore(cfg)
		if err != nil {
			return err
		}
		g, err := gate.New(&gate.Config{
			CacheSize: cfg.CacheSize,
			Novelty:   noveltyStore,
			Recorder:  engine,
		})
		if err != nil {
			return err
		}

		engine.Start(cmd.Context(), interval)
		defer engine.Stop()

		fmt.Printf("Monitoring with interval %v (db=%s). Press Ctrl-C to stop.\n", interval, cfg.DatabasePath)

		done := make(chan struct{})
		go func() {
			defer close(done)
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
			for scanner.Scan() {
				content := strings.TrimSpace(scanner.Text())
				if content == "" {
					continue
				}
				verdict := g.Validate(cmd.Context(), gate.Request{
					Content:    content,
					Category:   category,
					ProducerID: monitorProducer,
				})
				fmt.Printf("Monitor: %s scored %.2f (%s)\n",
					monitorProducer, verdict.Profile.OverallScore, verdict.Profile.QualityLevel)
			}
		}()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sig:
			fmt.Println("\nShutting down...")
		case <-done:
			// stdin drained; flush buffered events before exiting
			if err := engine.RunCycle(cmd.Context()); err != nil {
				fmt.Printf("warning: final cycle failed: %v\n", err)
			}
		}
		return nil
	},
}

// buildNoveltyStore creates the configured recent-outputs backend.
func buildNoveltyStore(cfg *monitor.Config) (novelty.Store, error) {
	switch cfg.Novelty.Backend {
	case "", "memory":
		return novelty.NewMemoryStore(cfg.Novelty.Capacity), nil
	case "redis":
		ttl := time.Hour
		if cfg.Novelty.TTL != "" {
			parsed, err := time.ParseDuration(cfg.Novelty.TTL)
			if err != nil {
				return nil, fmt.Errorf("invalid novelty ttl: %w", err)
			}
			ttl = parsed
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.Novelty.Addr})
		return novelty.NewRedisStore(client, ttl), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown novelty backend %q", cfg.Novelty.Backend)
	}
}

func init() {
	monitorCmd.Flags().StringVar(&monitorInterval, "interval", "", "override the cycle interval (e.g. 30s, 5m)")
	monitorCmd.Flags().StringVar(&monitorProducer, "producer", "stdin", "producer id for events ingested from stdin")
	monitorCmd.Flags().StringVar(&monitorCategory, "category", string(types.CategoryGeneral), "category for events ingested from stdin")
	rootCmd.AddCommand(monitorCmd)
}
