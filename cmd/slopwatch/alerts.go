package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slopwatch/slopwatch/internal/storage"
	"github.com/slopwatch/slopwatch/internal/types"
)

var alertsShowAll bool

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List quality alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		ctx := cmd.Context()
		var alerts []*types.QualityAlert
		if alertsShowAll {
			alerts, err = store.GetRecentAlerts(ctx, 50)
		} else {
			alerts, err = store.GetOpenAlerts(ctx)
		}
		if err != nil {
			return err
		}
		if len(alerts) == 0 {
			fmt.Println("No alerts.")
			return nil
		}

		red := color.New(color.FgRed).SprintFunc()
		for _, a := range alerts {
			severity := string(a.Severity)
			if a.Severity == types.SeverityCritical {
				severity = red(severity)
			}
			state := "open"
			if a.Resolved {
				state = "resolved"
			} else if a.Acknowledged {
				state = "acked"
			}
			fmt.Printf("%s  [%s] %-8s producer=%s\n      %s\n",
				a.ID, severity, state, a.ProducerID, a.Message)
		}
		return nil
	},
}

var alertsAckCmd = &cobra.Command{
	Use:   "ack <alert-id>",
	Short: "Acknowledge an alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		ok, err := store.AcknowledgeAlert(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no alert with id %s", args[0])
		}
		fmt.Printf("Acknowledged %s\n", args[0])
		return nil
	},
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "Resolve an alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		ok, err := store.ResolveAlert(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no alert with id %s", args[0])
		}
		fmt.Printf("Resolved %s\n", args[0])
		return nil
	},
}

func openStore() (*storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsShowAll, "all", false, "include acknowledged and resolved alerts")
	alertsCmd.AddCommand(alertsAckCmd)
	alertsCmd.AddCommand(alertsResolveCmd)
	rootCmd.AddCommand(alertsCmd)
}
