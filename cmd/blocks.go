package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syntruptor/syntctl/internal/store"
	"github.com/syntruptor/syntctl/internal/synteny/block"
)

var blockTolerance int

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Aggregate ortholog pairs into maximal synteny blocks (§4.4)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		ctx, cancel := s.Context()
		defer cancel()

		return block.Run(ctx, s, block.Params{Tolerance: viper.GetInt("block.tolerance")})
	},
}

func init() {
	blocksCmd.Flags().IntVarP(&blockTolerance, "tolerance", "t", 2, "CDS-gap tolerance for consecutive ortholog pairs")
	_ = viper.BindPFlag("block.tolerance", blocksCmd.Flags().Lookup("tolerance"))
	rootCmd.AddCommand(blocksCmd)
}
