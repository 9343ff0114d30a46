package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syntruptor/syntctl/internal/breakgraph"
	"github.com/syntruptor/syntctl/internal/store"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Group related breaks into graphs and detect cycles (§4.8)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		ctx, cancel := s.Context()
		defer cancel()

		return breakgraph.Run(ctx, s)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
