package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syntruptor/syntctl/internal/store"
	"github.com/syntruptor/syntctl/internal/synteny/breakfinder"
)

var breakMaxIncludedBlocks int

var breaksCmd = &cobra.Command{
	Use:   "breaks",
	Short: "Derive breaks between near-consecutive blocks (§4.5)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		ctx, cancel := s.Context()
		defer cancel()

		return breakfinder.Run(ctx, s, breakfinder.Params{
			MaxIncludedBlocks: viper.GetInt("break.max-included-blocks"),
		})
	},
}

func init() {
	breaksCmd.Flags().IntVarP(&breakMaxIncludedBlocks, "max-included-blocks", "b", 0, "blocks allowed between a break's endpoints")
	_ = viper.BindPFlag("break.max-included-blocks", breaksCmd.Flags().Lookup("max-included-blocks"))
	rootCmd.AddCommand(breaksCmd)
}
