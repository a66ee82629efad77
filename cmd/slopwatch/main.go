// slopwatch screens machine-generated text for slop before it reaches a
// user and tracks how producers behave over time.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slopwatch/slopwatch/internal/monitor"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "slopwatch",
	Short: "Content quality gate and producer monitoring",
	Long: `slopwatch scores machine-generated text for slop (generic, unsupported,
or circular content), gates it against per-category thresholds, and tracks
every producer's quality over time with trends and alerts.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (defaults apply when omitted)")
}

// loadConfig returns the file config when --config is set, defaults otherwise.
func loadConfig() (*monitor.Config, error) {
	if configPath == "" {
		return monitor.DefaultConfig(), nil
	}
	return monitor.LoadConfig(configPath)
}
