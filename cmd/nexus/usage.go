package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func usageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show completion usage and cost totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.tracker.Summarize(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Total: %d calls, %d in / %d out tokens, $%.4f\n",
				s.TotalCalls, s.TotalInputTokens, s.TotalOutputTokens, s.TotalCost)

			if len(s.ByModel) > 0 {
				fmt.Println("\nBy model:")
				for _, model := range sortedKeys(s.ByModel) {
					u := s.ByModel[model]
					fmt.Printf("  %-28s %4d calls  $%.4f\n", model, u.Calls, u.Cost)
				}
			}
			if len(s.ByTask) > 0 {
				fmt.Println("\nBy task type:")
				for _, task := range sortedKeys(s.ByTask) {
					u := s.ByTask[task]
					fmt.Printf("  %-28s %4d calls  $%.4f\n", task, u.Calls, u.Cost)
				}
			}
			return nil
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
