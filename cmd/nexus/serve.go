package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridianlabs/nexus/internal/web"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the NEXUS web server",
		Long: `Start the REST and SSE server.

Examples:
  nexus serve
  nexus serve --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			fmt.Printf("Starting NEXUS at http://localhost%s\n", addr)
			server := web.NewServer(a.pipeline, a.orchestrator, a.briefer, a.index,
				a.tracker, a.mem, a.graph, a.logger)
			return server.Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to config)")
	return cmd
}
