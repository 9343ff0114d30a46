package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syntruptor/syntctl/internal/ranker"
	"github.com/syntruptor/syntctl/internal/store"
)

var rankClean bool

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score break content and optionally prune low-quality breaks (§4.7)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		ctx, cancel := s.Context()
		defer cancel()

		return ranker.Run(ctx, s, ranker.Params{Clean: viper.GetBool("ranker.clean")})
	},
}

func init() {
	rankCmd.Flags().BoolVarP(&rankClean, "clean", "C", false, "delete low-quality breaks after ranking")
	_ = viper.BindPFlag("ranker.clean", rankCmd.Flags().Lookup("clean"))
	rootCmd.AddCommand(rankCmd)
}
