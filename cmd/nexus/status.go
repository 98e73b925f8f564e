package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system status and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Println("NEXUS Status")
			fmt.Println(strings.Repeat("=", 40))

			fmt.Println("\nConfiguration:")
			fmt.Printf("  Company:    %s\n", a.cfg.CompanyName)
			fmt.Printf("  Data dir:   %s\n", a.cfg.Storage.DataDir)
			fmt.Printf("  Fast model: %s\n", a.cfg.LLM.FastModel)
			fmt.Printf("  Heavy model:%s\n", " "+a.cfg.LLM.HeavyModel)
			fmt.Printf("  Embedding:  %s\n", a.cfg.Embedding.Model)
			fmt.Printf("  API key:    %s\n", keyStatus(a.cfg.LLM.APIKey))

			fmt.Println("\nKnowledge graph:")
			snap, err := a.graph.Snapshot(cmd.Context())
			if err != nil {
				fmt.Printf("  Status:     FAILED (%s)\n", err)
				return nil
			}
			fmt.Printf("  Nodes:      %d\n", len(snap.Nodes))
			fmt.Printf("  Edges:      %d\n", len(snap.Edges))

			st := a.index.Status()
			fmt.Println("\nSemantic index:")
			if st.Built {
				fmt.Printf("  Built:      yes (%d vectors)\n", st.Vectors)
			} else {
				fmt.Println("  Built:      no")
			}

			return nil
		},
	}
}

func keyStatus(key string) string {
	if key == "" {
		return "not configured"
	}
	return "configured"
}
