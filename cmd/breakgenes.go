package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syntruptor/syntctl/internal/store"
	"github.com/syntruptor/syntctl/internal/synteny/breakgenes"
)

var breakGenesCmd = &cobra.Command{
	Use:   "breakgenes",
	Short: "Materialize the gene contents flanking each break (§4.6)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		ctx, cancel := s.Context()
		defer cancel()

		return breakgenes.Run(ctx, s)
	},
}

func init() {
	rootCmd.AddCommand(breakGenesCmd)
}
