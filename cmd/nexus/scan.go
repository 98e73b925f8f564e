package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func scanCmd() *cobra.Command {
	var agent string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the anomaly detection agents over the knowledge graph",
		Long: `Run the agent roster and report findings.

Examples:
  nexus scan
  nexus scan --agent contradiction`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			if agent != "" {
				res, err := a.orchestrator.RunOne(ctx, agent)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %d findings\n", res.Agent, len(res.Findings))
				for _, f := range res.Findings {
					if !f.IsDetected() {
						continue
					}
					fmt.Printf("  [%s] %s\n", f.Severity, f.Headline)
					if f.Detail != "" {
						fmt.Printf("      %s\n", f.Detail)
					}
				}
				return nil
			}

			scan, err := a.orchestrator.RunAll(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Scan %s: %d findings, %d alerts\n",
				scan.ID, scan.TotalFindings, scan.AlertsGenerated)
			for _, name := range scan.AgentsRun {
				res := scan.ByAgent[name]
				if res == nil {
					continue
				}
				if res.Err != "" {
					fmt.Printf("  %-14s FAILED (%s)\n", name+":", res.Err)
					continue
				}
				fmt.Printf("  %-14s %d findings\n", name+":", len(res.Findings))
			}
			if len(scan.Alerts) > 0 {
				fmt.Println("\nAlerts:")
				for _, al := range scan.Alerts {
					fmt.Printf("  [%s] %s (%s)\n",
						strings.ToUpper(al.Severity), al.Headline, al.Scope)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&agent, "agent", "", "run a single agent (contradiction, staleness, silo, overload, coordination, drift)")
	return cmd
}
