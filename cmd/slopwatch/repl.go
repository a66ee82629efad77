package main

import (
	"github.com/spf13/cobra"

	"github.com/slopwatch/slopwatch/internal/gate"
	"github.com/slopwatch/slopwatch/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive scoring shell",
	Long: `Open an interactive shell for scoring content by hand. Paste text to
see the full quality breakdown for the active category; use :category and
:strict to change scoring behavior.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		noveltyStore, err := buildNoveltyStore(cfg)
		if err != nil {
			return err
		}

		g, err := gate.New(&gate.Config{
			CacheSize: cfg.CacheSize,
			Novelty:   noveltyStore,
		})
		if err != nil {
			return err
		}

		r, err := repl.New(&repl.Config{Gate: g})
		if err != nil {
			return err
		}
		return r.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
