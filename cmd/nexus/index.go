package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the semantic index over the knowledge graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.index.Build(cmd.Context()); err != nil {
				return fmt.Errorf("index build: %w", err)
			}

			st := a.index.Status()
			fmt.Printf("Indexed %d nodes (%d vectors, model %s)\n",
				st.Nodes, st.Vectors, st.Model)
			return nil
		},
	}
}
