package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slopwatch/slopwatch/internal/advisor"
	"github.com/slopwatch/slopwatch/internal/types"
)

var adviseCmd = &cobra.Command{
	Use:   "advise <producer-id>",
	Short: "Generate a remediation plan for a producer using the Anthropic API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		producerID := args[0]

		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		ctx := cmd.Context()
		profile, err := store.GetAgentProfile(ctx, producerID)
		if err != nil {
			return err
		}
		if profile == nil {
			return fmt.Errorf("no profile recorded for producer %s", producerID)
		}

		open, err := store.GetOpenAlerts(ctx)
		if err != nil {
			return err
		}
		var alerts []*types.QualityAlert
		for _, a := range open {
			if a.ProducerID == producerID {
				alerts = append(alerts, a)
			}
		}

		adv, err := advisor.New(nil)
		if err != nil {
			return err
		}

		fmt.Printf("Generating advice for %s...\n\n", producerID)
		plan, err := adv.Advise(ctx, profile, alerts)
		if err != nil {
			return err
		}

		header := color.New(color.FgYellow, color.Bold).SprintFunc()
		fmt.Printf("%s\n%s\n", header("Remediation plan:"), plan)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adviseCmd)
}
