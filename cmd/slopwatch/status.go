package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slopwatch/slopwatch/internal/types"
)

var statusTopN int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show producer quality stats and recent alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		ctx := cmd.Context()
		yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		profiles, err := store.GetAgentProfiles(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", yellow("Producers:"))
		if len(profiles) == 0 {
			fmt.Println("  no profiles recorded yet")
		}
		shown := profiles
		if statusTopN > 0 && len(shown) > statusTopN {
			shown = shown[:statusTopN]
		}
		for _, p := range shown {
			fmt.Printf("  %-20s avg=%.2f requests=%d slop=%d\n",
				p.ProducerID, p.AverageScore, p.RequestCount, p.SlopCount)
			for _, issue := range p.Issues {
				fmt.Printf("      issue: %s\n", issue)
			}
		}

		fmt.Println()
		fmt.Printf("%s\n", yellow("Open alerts:"))
		alerts, err := store.GetOpenAlerts(ctx)
		if err != nil {
			return err
		}
		if len(alerts) == 0 {
			fmt.Println("  none")
		}
		for _, a := range alerts {
			severity := string(a.Severity)
			if a.Severity == types.SeverityCritical {
				severity = red(severity)
			}
			fmt.Printf("  [%s] %s  %s\n", severity, a.ID[:8], a.Message)
		}

		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusTopN, "top", 10, "number of producers to show")
	rootCmd.AddCommand(statusCmd)
}
