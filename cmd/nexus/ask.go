package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	var (
		stream       bool
		conversation string
	)

	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Ask NEXUS a question about the organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			query := args[0]
			ctx := cmd.Context()

			if stream {
				s, err := a.pipeline.AnswerStream(ctx, query)
				if err != nil {
					return err
				}
				defer s.Close()
				for {
					token, err := s.Next()
					if err == io.EOF {
						fmt.Println()
						return nil
					}
					if err != nil {
						return err
					}
					fmt.Print(token)
				}
			}

			result, err := a.pipeline.Answer(ctx, query, conversation)
			if err != nil {
				return err
			}

			fmt.Println(result.Answer)
			if len(result.Citations) > 0 {
				fmt.Println("\nSources:")
				for _, c := range result.Citations {
					fmt.Printf("  - %s (%s)\n", c.Label, c.NodeID)
				}
			}
			if len(result.SuggestedFollowups) > 0 {
				fmt.Println("\nFollow-ups:")
				for _, q := range result.SuggestedFollowups {
					fmt.Printf("  - %s\n", q)
				}
			}
			if conversation != "" {
				fmt.Printf("\n[conversation: %s]\n", strings.TrimSpace(conversation))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false, "stream the answer token by token")
	cmd.Flags().StringVar(&conversation, "conversation", "", "conversation ID for multi-turn memory")
	return cmd
}
